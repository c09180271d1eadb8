package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const pageSize = 100

const addressesQuery = `query Vaults($skip: Int!, $first: Int!) {
  vaults(skip: $skip, first: $first) {
    vaultAddress
  }
}`

const vaultsQuery = `query Vaults($skip: Int!, $first: Int!) {
  vaults(skip: $skip, first: $first) {
    vaultAddress
    name
    logoURI
    url
    protocolName
    protocolIcon
    description
    categories
    action
    stakingToken {
      address
      name
      symbol
    }
  }
}`

// StakingTokenRow is the staking token sub-object of a remote vault row.
type StakingTokenRow struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// VaultRow is one vault as returned by the remote listing API.
type VaultRow struct {
	VaultAddress string          `json:"vaultAddress"`
	Name         string          `json:"name"`
	LogoURI      string          `json:"logoURI"`
	URL          string          `json:"url"`
	ProtocolName string          `json:"protocolName"`
	ProtocolIcon string          `json:"protocolIcon"`
	Description  string          `json:"description"`
	Categories   []string        `json:"categories"`
	Action       string          `json:"action"`
	StakingToken StakingTokenRow `json:"stakingToken"`
}

// Client pages through the remote vault-listing GraphQL endpoint.
type Client struct {
	endpoint     string
	httpc        *http.Client
	maxRetries   int
	retryBackoff time.Duration
	pageDelay    time.Duration
	logger       *zap.Logger
}

// Config holds the remote client settings.
type Config struct {
	Endpoint     string
	MaxRetries   int
	RetryBackoff time.Duration
	PageDelay    time.Duration
}

// NewClient builds a remote listing client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	return &Client{
		endpoint:     cfg.Endpoint,
		httpc:        &http.Client{Timeout: 30 * time.Second},
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		pageDelay:    cfg.PageDelay,
		logger:       logger,
	}
}

// ListAddresses collects every vault address known remotely, case-folded.
func (c *Client) ListAddresses(ctx context.Context) (map[string]struct{}, error) {
	rows, err := c.listPages(ctx, addressesQuery)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		set[strings.ToLower(row.VaultAddress)] = struct{}{}
	}
	return set, nil
}

// ListVaults collects every full vault row known remotely.
func (c *Client) ListVaults(ctx context.Context) ([]VaultRow, error) {
	return c.listPages(ctx, vaultsQuery)
}

func (c *Client) listPages(ctx context.Context, query string) ([]VaultRow, error) {
	var all []VaultRow
	for skip := 0; ; skip += pageSize {
		page, err := c.fetchPage(ctx, query, skip)
		if err != nil {
			return nil, fmt.Errorf("fetch vault page at skip=%d: %w", skip, err)
		}
		all = append(all, page...)
		c.logger.Debug("fetched vault page", zap.Int("skip", skip), zap.Int("count", len(page)))
		if len(page) < pageSize {
			return all, nil
		}

		if c.pageDelay > 0 {
			timer := time.NewTimer(c.pageDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, query string, skip int) ([]VaultRow, error) {
	var page []VaultRow
	err := withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		rows, err := c.post(ctx, query, map[string]any{"skip": skip, "first": pageSize})
		if err != nil {
			return err
		}
		page = rows
		return nil
	})
	return page, err
}

func (c *Client) post(ctx context.Context, query string, variables map[string]any) ([]VaultRow, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var envelope struct {
		Data struct {
			Vaults []VaultRow `json:"vaults"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}

	return envelope.Data.Vaults, nil
}
