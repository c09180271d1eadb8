package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ethereum/go-ethereum/common"
)

const sampleAddr = "0x6969696969696969696969696969696969696969"

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

func TestChecksumRenames(t *testing.T) {
	dir := t.TempDir()
	lower := "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	writePNG(t, filepath.Join(dir, lower+".png"), solidImage(4, 4, color.White))

	report, err := Checksum(dir, nil)
	if err != nil {
		t.Fatalf("checksum failed: %v", err)
	}
	if report.Fixed != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	want := common.HexToAddress(lower).Hex() + ".png"
	if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
		t.Fatalf("checksummed file missing: %v", err)
	}
}

func TestChecksumIdempotent(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48.png"), solidImage(4, 4, color.White))

	if _, err := Checksum(dir, nil); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	report, err := Checksum(dir, nil)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if report.Fixed != 0 {
		t.Fatalf("second pass renamed %d files", report.Fixed)
	}
}

func TestChecksumSkipsDefaultAndCountsInvalid(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "0xdefault.png"), solidImage(4, 4, color.White))
	writePNG(t, filepath.Join(dir, "0xnothex.png"), solidImage(4, 4, color.White))
	writePNG(t, filepath.Join(dir, "logo.png"), solidImage(4, 4, color.White))

	report, err := Checksum(dir, nil)
	if err != nil {
		t.Fatalf("checksum failed: %v", err)
	}
	if report.Fixed != 0 {
		t.Fatalf("unexpected renames: %+v", report)
	}
	if report.Failed != 1 {
		t.Fatalf("expected one invalid-hex failure, got %+v", report)
	}
}

func TestChecksumContinuesPastUnreadableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o000); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })
	writePNG(t, filepath.Join(dir, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48.png"), solidImage(4, 4, color.White))

	report, err := Checksum(dir, nil)
	if err != nil {
		t.Fatalf("walk should not abort: %v", err)
	}
	if report.Fixed != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestResizeNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, sampleAddr+".png")
	writePNG(t, path, solidImage(300, 500, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

	report, err := Resize(dir, nil)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if report.Processed != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open result: %v", err)
	}
	defer file.Close()
	img, format, err := image.Decode(file)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if format != "png" {
		t.Fatalf("expected png, got %s", format)
	}
	if img.Bounds().Dx() != CanvasSize || img.Bounds().Dy() != CanvasSize {
		t.Fatalf("unexpected dimensions: %v", img.Bounds())
	}
}

func TestResizeIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, sampleAddr+".png")
	writePNG(t, path, solidImage(CanvasSize, CanvasSize, color.NRGBA{R: 200, G: 100, B: 50, A: 255}))

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	report, err := Resize(dir, nil)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if report.Skipped != 1 || report.Processed != 0 {
		t.Fatalf("expected skip, got %+v", report)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatalf("file was rewritten")
	}
}

func TestResizeFlattensTransparency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, sampleAddr+".png")
	writePNG(t, path, solidImage(CanvasSize, CanvasSize, color.NRGBA{R: 0, G: 0, B: 0, A: 0}))

	report, err := Resize(dir, nil)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if report.Processed != 1 {
		t.Fatalf("transparent image not reprocessed: %+v", report)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open result: %v", err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !isOpaque(img) {
		t.Fatalf("result still has transparency")
	}
}

func TestResizeContinuesPastUnreadableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o000); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })
	writePNG(t, filepath.Join(dir, sampleAddr+".png"), solidImage(300, 500, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

	report, err := Resize(dir, nil)
	if err != nil {
		t.Fatalf("walk should not abort: %v", err)
	}
	if report.Processed != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestFindIconPriority(t *testing.T) {
	dir := t.TempDir()
	addr := common.HexToAddress(sampleAddr)
	writePNG(t, filepath.Join(dir, addr.Hex()+".jpeg"), solidImage(4, 4, color.White))
	writePNG(t, filepath.Join(dir, addr.Hex()+".png"), solidImage(4, 4, color.White))

	path, ok := FindIcon(dir, addr)
	if !ok {
		t.Fatalf("icon not found")
	}
	if filepath.Ext(path) != ".png" {
		t.Fatalf("expected png to win, got %s", path)
	}

	if _, ok := FindIcon(dir, common.HexToAddress("0x1111111111111111111111111111111111111111")); ok {
		t.Fatalf("unexpected icon for unknown address")
	}
}
