package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const lpABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

var (
	lpABI     abi.ABI
	lpABIOnce sync.Once
	lpABIErr  error
)

func lpABIInstance() (abi.ABI, error) {
	lpABIOnce.Do(func() {
		lpABI, lpABIErr = abi.JSON(strings.NewReader(lpABIJSON))
	})
	return lpABI, lpABIErr
}

// Underlying resolves the constituent tokens of a staking token. When the
// token exposes the two-token LP interface it returns [token0, token1];
// otherwise the staking token itself is the sole underlying token.
func (c *Client) Underlying(ctx context.Context, staking common.Address, logger *zap.Logger) []common.Address {
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := lpABIInstance()
	if err != nil {
		logger.Warn("parse lp abi", zap.Error(err))
		return []common.Address{staking}
	}

	token0, err := c.callAddressMethod(ctx, staking, parsed, "token0")
	if err != nil {
		logger.Debug("token0 call failed, treating as single-token", zap.String("token", staking.Hex()), zap.Error(err))
		return []common.Address{staking}
	}
	token1, err := c.callAddressMethod(ctx, staking, parsed, "token1")
	if err != nil {
		logger.Debug("token1 call failed, treating as single-token", zap.String("token", staking.Hex()), zap.Error(err))
		return []common.Address{staking}
	}

	return []common.Address{token0, token1}
}

func (c *Client) callAddressMethod(ctx context.Context, target common.Address, parsed abi.ABI, method string) (common.Address, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return common.Address{}, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := c.CallContract(ctx, msg, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return common.Address{}, fmt.Errorf("%s returned no values", method)
	}
	return asAddress(values[0])
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}
