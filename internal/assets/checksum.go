package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ChecksumReport counts the outcome of a checksum-rename pass.
type ChecksumReport struct {
	Fixed  int
	Failed int
}

// Checksum walks the asset tree and renames address-named image files to
// their canonical EIP-55 checksummed form. Invalid hex names are counted as
// failures without aborting the walk.
func Checksum(root string, logger *zap.Logger) (ChecksumReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var report ChecksumReport
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

		ext := strings.ToLower(filepath.Ext(path))
		if !imageExts[ext] {
			return nil
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if !strings.HasPrefix(base, "0x") || strings.Contains(base, "default") {
			return nil
		}

		if !common.IsHexAddress(base) {
			report.Failed++
			logger.Warn("invalid address in file name", zap.String("file", path))
			return nil
		}

		checksummed := common.HexToAddress(base).Hex()
		if checksummed == base {
			return nil
		}

		target := filepath.Join(filepath.Dir(path), checksummed+ext)
		if err := os.Rename(path, target); err != nil {
			report.Failed++
			logger.Warn("rename failed", zap.String("file", path), zap.Error(err))
			return nil
		}

		report.Fixed++
		logger.Info("renamed asset", zap.String("from", filepath.Base(path)), zap.String("to", checksummed+ext))
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk assets: %w", err)
	}

	return report, nil
}
