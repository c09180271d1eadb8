package assets

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	_ "image/gif"
	_ "image/jpeg"
)

// CanvasSize is the normalized square edge length for every asset image.
const CanvasSize = 1024

// ResizeReport counts the outcome of a dimension-normalization pass.
type ResizeReport struct {
	Processed int
	Skipped   int
	Failed    int
}

// Resize walks the asset tree and normalizes every image onto a 1024x1024
// opaque white PNG canvas. Images already in that form are skipped, so the
// pass is idempotent. Per-file failures are logged and counted.
func Resize(root string, logger *zap.Logger) (ResizeReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var report ResizeReport
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			report.Failed++
			logger.Warn("walk entry failed", zap.String("file", path), zap.Error(err))
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !imageExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		changed, err := normalizeImage(path)
		if err != nil {
			report.Failed++
			logger.Warn("normalize failed", zap.String("file", path), zap.Error(err))
			return nil
		}
		if changed {
			report.Processed++
			logger.Info("normalized image", zap.String("file", path))
		} else {
			report.Skipped++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk assets: %w", err)
	}

	return report, nil
}

func normalizeImage(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open image: %w", err)
	}
	img, format, err := image.Decode(file)
	file.Close()
	if err != nil {
		return false, fmt.Errorf("decode image: %w", err)
	}

	if format == "png" && isNormalized(img) {
		return false, nil
	}

	canvas := Flatten(img)

	tmpPath := path + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return false, fmt.Errorf("create tmp image: %w", err)
	}
	if err := png.Encode(tmp, canvas); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("close tmp image: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("replace image: %w", err)
	}

	return true, nil
}

// Flatten fits img within the square canvas over a solid white background.
// Overlay (not paste) so transparency blends into the background.
func Flatten(img image.Image) *image.NRGBA {
	canvas := imaging.New(CanvasSize, CanvasSize, color.White)
	fitted := imaging.Fit(img, CanvasSize, CanvasSize, imaging.Lanczos)
	return imaging.OverlayCenter(canvas, fitted, 1.0)
}

func isNormalized(img image.Image) bool {
	bounds := img.Bounds()
	if bounds.Dx() != CanvasSize || bounds.Dy() != CanvasSize {
		return false
	}
	return isOpaque(img)
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
