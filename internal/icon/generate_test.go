package icon

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"metalist/internal/listfile"
	"metalist/internal/model"
)

var (
	vaultAddr   = common.HexToAddress("0x7777777777777777777777777777777777777777")
	stakingAddr = common.HexToAddress("0x5555555555555555555555555555555555555555")
	tokenA      = common.HexToAddress("0xAAAA00000000000000000000000000000000AAAA")
	tokenB      = common.HexToAddress("0xBBBB00000000000000000000000000000000BBBB")
)

type fakeResolver struct {
	underlying []common.Address
}

func (f *fakeResolver) Underlying(_ context.Context, staking common.Address, _ *zap.Logger) []common.Address {
	if staking == stakingAddr && len(f.underlying) > 0 {
		return f.underlying
	}
	return []common.Address{staking}
}

type fakeUploader struct {
	calls    int
	publicID string
	data     []byte
	fail     bool
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, publicID string) (string, error) {
	f.calls++
	f.publicID = publicID
	f.data = data
	if f.fail {
		return "", fmt.Errorf("upload rejected")
	}
	return "https://res.cloudinary.com/metadata/image/upload/vaults/" + publicID + ".png", nil
}

func encodePNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.New(64, 64, c)); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newGenerator(t *testing.T, srvURL string) (*Generator, string, *fakeUploader) {
	t.Helper()
	dir := t.TempDir()

	assetsDir := filepath.Join(dir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(assetsDir, tokenA.Hex()+".png"), encodePNG(t, color.NRGBA{R: 255, A: 255}), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	vaultsPath := filepath.Join(dir, "vaults.json")
	vaults := &model.VaultList{
		Schema: "../schemas/vaults.schema.json",
		Name:   "Test vaults",
		Vaults: []model.VaultRecord{
			{
				StakingTokenAddress: stakingAddr.Hex(),
				VaultAddress:        vaultAddr.Hex(),
				Name:                "LP Vault",
				Protocol:            "Kodiak",
				URL:                 "https://example.org",
				Categories:          []string{"defi/yield"},
			},
		},
	}
	if err := listfile.Save(vaultsPath, vaults); err != nil {
		t.Fatalf("save vaults: %v", err)
	}

	tokens := &model.TokenList{
		Tokens: []model.TokenRecord{
			{ChainID: 1, Address: tokenB.Hex(), Symbol: "B", Name: "Token B", Decimals: 18, LogoURI: srvURL + "/b.png"},
		},
	}

	uploader := &fakeUploader{}
	gen := &Generator{
		Vaults:     vaults,
		VaultsPath: vaultsPath,
		Tokens:     tokens,
		AssetsDir:  assetsDir,
		Resolver:   &fakeResolver{underlying: []common.Address{tokenA, tokenB}},
		Uploader:   uploader,
	}
	return gen, vaultsPath, uploader
}

func TestGenerateLPVaultUpdatesOnlyLogo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, color.NRGBA{B: 255, A: 255}))
	}))
	defer srv.Close()

	gen, vaultsPath, uploader := newGenerator(t, srv.URL)

	var before model.VaultList
	if err := listfile.Load(vaultsPath, &before); err != nil {
		t.Fatalf("load before: %v", err)
	}

	if err := gen.Generate(context.Background(), vaultAddr, "#00FF00"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if uploader.calls != 1 || uploader.publicID != vaultAddr.Hex() {
		t.Fatalf("unexpected upload: calls=%d id=%s", uploader.calls, uploader.publicID)
	}

	var after model.VaultList
	if err := listfile.Load(vaultsPath, &after); err != nil {
		t.Fatalf("load after: %v", err)
	}

	wantLogo := "https://res.cloudinary.com/metadata/image/upload/vaults/" + vaultAddr.Hex() + ".png"
	if after.Vaults[0].LogoURI != wantLogo {
		t.Fatalf("logoURI not updated: %q", after.Vaults[0].LogoURI)
	}

	// Everything except logoURI must be untouched.
	got := after.Vaults[0]
	got.LogoURI = before.Vaults[0].LogoURI
	if !reflect.DeepEqual(got, before.Vaults[0]) {
		t.Fatalf("entry changed beyond logoURI: %+v != %+v", got, before.Vaults[0])
	}

	// The uploaded badge decodes to the full canvas.
	img, err := png.Decode(bytes.NewReader(uploader.data))
	if err != nil {
		t.Fatalf("decode uploaded badge: %v", err)
	}
	if img.Bounds().Dx() != Size || img.Bounds().Dy() != Size {
		t.Fatalf("unexpected badge size: %v", img.Bounds())
	}
}

func TestGenerateMissingTokenImageAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	gen, vaultsPath, uploader := newGenerator(t, srv.URL)

	if err := gen.Generate(context.Background(), vaultAddr, ""); err == nil {
		t.Fatalf("expected failure when a token image is missing")
	}
	if uploader.calls != 0 {
		t.Fatalf("no upload should happen for a partial badge")
	}

	var after model.VaultList
	if err := listfile.Load(vaultsPath, &after); err != nil {
		t.Fatalf("load after: %v", err)
	}
	if after.Vaults[0].LogoURI != "" {
		t.Fatalf("metadata must stay untouched on failure")
	}
}

func TestGenerateDryRunSkipsUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, color.NRGBA{B: 255, A: 255}))
	}))
	defer srv.Close()

	gen, _, uploader := newGenerator(t, srv.URL)
	gen.DryRun = true

	if err := gen.Generate(context.Background(), vaultAddr, ""); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if uploader.calls != 0 {
		t.Fatalf("dry run must not upload")
	}
}

func TestGenerateSaveLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, color.NRGBA{B: 255, A: 255}))
	}))
	defer srv.Close()

	gen, _, _ := newGenerator(t, srv.URL)
	gen.DryRun = true
	gen.SaveLocal = true
	gen.OutDir = filepath.Join(t.TempDir(), "out")

	if err := gen.Generate(context.Background(), vaultAddr, ""); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(gen.OutDir, vaultAddr.Hex()+".png")); err != nil {
		t.Fatalf("local badge missing: %v", err)
	}
}

func TestGenerateSkipsHostedUnlessForced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, color.NRGBA{B: 255, A: 255}))
	}))
	defer srv.Close()

	gen, _, uploader := newGenerator(t, srv.URL)
	gen.HostedPrefix = "https://res.cloudinary.com/metadata/"
	gen.Vaults.Vaults[0].LogoURI = "https://res.cloudinary.com/metadata/image/upload/vaults/x.png"

	if err := gen.Generate(context.Background(), vaultAddr, ""); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if uploader.calls != 0 {
		t.Fatalf("hosted logo should be skipped without force")
	}

	gen.Force = true
	if err := gen.Generate(context.Background(), vaultAddr, ""); err != nil {
		t.Fatalf("forced generate failed: %v", err)
	}
	if uploader.calls != 1 {
		t.Fatalf("force should regenerate")
	}
}

func TestGenerateUnknownVault(t *testing.T) {
	gen, _, _ := newGenerator(t, "http://127.0.0.1:0")
	unknown := common.HexToAddress("0x9999999999999999999999999999999999999999")
	if err := gen.Generate(context.Background(), unknown, ""); err == nil {
		t.Fatalf("expected error for unknown vault")
	}
}

func TestGenerateAllContinuesOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, color.NRGBA{B: 255, A: 255}))
	}))
	defer srv.Close()

	gen, _, _ := newGenerator(t, srv.URL)
	// Second vault has a staking token with no asset and no token entry.
	gen.Vaults.Vaults = append(gen.Vaults.Vaults, model.VaultRecord{
		StakingTokenAddress: "0x4444444444444444444444444444444444444444",
		VaultAddress:        "0x8888888888888888888888888888888888888888",
		Name:                "Broken Vault",
		Protocol:            "UNKNOWN",
		URL:                 "https://example.org",
		Categories:          []string{"defi/yield"},
	})

	succeeded, failed := gen.GenerateAll(context.Background(), "")
	if succeeded != 1 || failed != 1 {
		t.Fatalf("expected 1 success and 1 failure, got %d/%d", succeeded, failed)
	}
}
