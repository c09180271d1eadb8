package icon

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"metalist/internal/assets"
	"metalist/internal/listfile"
	"metalist/internal/model"

	_ "image/gif"
	_ "image/jpeg"
)

// Uploader pushes a composited badge to the hosted image store and returns
// the hosted URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, publicID string) (string, error)
}

// UnderlyingResolver resolves the constituent tokens of a staking token.
type UnderlyingResolver interface {
	Underlying(ctx context.Context, staking common.Address, logger *zap.Logger) []common.Address
}

// Generator builds, uploads, and records vault badge images.
type Generator struct {
	Vaults     *model.VaultList
	VaultsPath string
	Tokens     *model.TokenList
	AssetsDir  string
	Resolver   UnderlyingResolver
	Uploader   Uploader

	// HostedPrefix marks logoURIs that were already generated; vaults whose
	// logo starts with it are skipped unless Force is set.
	HostedPrefix string

	HTTPClient *http.Client
	DryRun     bool
	Force      bool
	SaveLocal  bool
	OutDir     string
	Logger     *zap.Logger
}

// Generate produces and publishes the badge for one vault. Any missing
// underlying-token image, failed upload, or failed metadata update aborts
// this vault only.
func (g *Generator) Generate(ctx context.Context, vaultAddr common.Address, override string) error {
	logger := g.logger().With(zap.String("vault", vaultAddr.Hex()))

	vault, ok := g.Vaults.FindVault(vaultAddr.Hex())
	if !ok {
		return fmt.Errorf("vault %s not found in local metadata", vaultAddr.Hex())
	}

	if !g.Force && g.HostedPrefix != "" && strings.HasPrefix(vault.LogoURI, g.HostedPrefix) {
		logger.Info("logo already hosted, skipping (use force to regenerate)")
		return nil
	}

	staking := common.HexToAddress(vault.StakingTokenAddress)
	underlying := g.Resolver.Underlying(ctx, staking, logger)

	images, err := g.resolveImages(ctx, underlying)
	if err != nil {
		return err
	}

	paint := g.resolvePaint(vault, override, logger)
	badge, err := Compose(images, paint)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, badge); err != nil {
		return fmt.Errorf("encode badge: %w", err)
	}
	data := buf.Bytes()

	if g.SaveLocal {
		if err := g.saveLocal(vaultAddr, data); err != nil {
			return err
		}
	}

	if g.DryRun {
		logger.Info("dry run, skipping upload and metadata update")
		return nil
	}

	hostedURL, err := g.Uploader.Upload(ctx, data, vaultAddr.Hex())
	if err != nil {
		return fmt.Errorf("upload badge: %w", err)
	}

	if !g.Vaults.SetVaultLogo(vaultAddr.Hex(), hostedURL) {
		return fmt.Errorf("vault %s disappeared from metadata", vaultAddr.Hex())
	}
	if err := listfile.Save(g.VaultsPath, g.Vaults); err != nil {
		return fmt.Errorf("update vault metadata: %w", err)
	}

	logger.Info("badge published", zap.String("url", hostedURL), zap.Int("tokens", len(underlying)))
	return nil
}

// GenerateAll runs Generate for every vault; per-vault failures are logged
// and counted without halting the batch.
func (g *Generator) GenerateAll(ctx context.Context, override string) (succeeded, failed int) {
	addrs := make([]string, len(g.Vaults.Vaults))
	for i, v := range g.Vaults.Vaults {
		addrs[i] = v.VaultAddress
	}

	for _, addr := range addrs {
		if ctx.Err() != nil {
			return succeeded, failed
		}
		if err := g.Generate(ctx, common.HexToAddress(addr), override); err != nil {
			g.logger().Warn("badge generation failed", zap.String("vault", addr), zap.Error(err))
			failed++
			continue
		}
		succeeded++
	}
	return succeeded, failed
}

// resolveImages fetches one image per underlying token, local asset first,
// then the token's recorded logoURI. The fetches run concurrently; any
// missing token image fails the whole resolution.
func (g *Generator) resolveImages(ctx context.Context, tokens []common.Address) ([]image.Image, error) {
	images := make([]image.Image, len(tokens))
	errs := make([]error, len(tokens))

	var wg sync.WaitGroup
	for i, addr := range tokens {
		wg.Add(1)
		go func(i int, addr common.Address) {
			defer wg.Done()
			images[i], errs[i] = g.resolveImage(ctx, addr)
		}(i, addr)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("token %s image: %w", tokens[i].Hex(), err)
		}
	}
	return images, nil
}

func (g *Generator) resolveImage(ctx context.Context, addr common.Address) (image.Image, error) {
	if path, ok := assets.FindIcon(g.AssetsDir, addr); ok {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open local asset: %w", err)
		}
		defer file.Close()
		img, _, err := image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("decode local asset %s: %w", path, err)
		}
		return img, nil
	}

	token, ok := g.Tokens.FindToken(addr.Hex())
	if !ok || token.LogoURI == "" {
		return nil, fmt.Errorf("no local asset and no recorded logoURI")
	}

	return g.download(ctx, token.LogoURI)
}

func (g *Generator) download(ctx context.Context, url string) (image.Image, error) {
	httpc := g.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: http %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}

// resolvePaint applies the brand color resolution order: explicit override,
// then the owner's registered brand color, then white.
func (g *Generator) resolvePaint(vault model.VaultRecord, override string, logger *zap.Logger) Paint {
	if override != "" {
		paint, err := ParsePaint(override)
		if err == nil {
			return paint
		}
		logger.Warn("invalid brand color override, falling back", zap.String("spec", override), zap.Error(err))
	}

	if spec, ok := g.Vaults.BrandColor(vault.Owner); ok {
		paint, err := ParsePaint(spec)
		if err == nil {
			return paint
		}
		logger.Warn("invalid registered brand color, falling back", zap.String("owner", vault.Owner), zap.Error(err))
	}

	return White
}

func (g *Generator) saveLocal(vaultAddr common.Address, data []byte) error {
	if err := os.MkdirAll(g.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(g.OutDir, vaultAddr.Hex()+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write local badge: %w", err)
	}
	g.logger().Info("badge saved locally", zap.String("path", path))
	return nil
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}
