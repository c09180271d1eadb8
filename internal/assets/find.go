package assets

import (
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
)

// iconExtPriority fixes the lookup order when multiple formats exist.
var iconExtPriority = []string{".png", ".jpg", ".jpeg"}

// FindIcon returns the path of the locally stored icon for an address,
// matching the checksummed file name exactly, PNG first.
func FindIcon(dir string, addr common.Address) (string, bool) {
	base := addr.Hex()
	for _, ext := range iconExtPriority {
		path := filepath.Join(dir, base+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
