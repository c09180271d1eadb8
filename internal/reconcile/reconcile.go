package reconcile

import (
	"fmt"
	"strings"

	"metalist/internal/model"
	"metalist/internal/remote"
)

const (
	defaultLogoURI   = "https://res.cloudinary.com/metadata/image/upload/vaults/default.png"
	defaultVaultURL  = "https://hub.berachain.com/vaults"
	fallbackProtocol = "UNKNOWN"
	fallbackCategory = "defi/yield"
)

// protocolHints maps a case-insensitive substring of the staking token's
// name or symbol to the protocol label and category used for placeholders.
var protocolHints = []struct {
	needle   string
	protocol string
	category string
}{
	{"kodiak", "Kodiak", "defi/dex"},
	{"bex", "BEX", "defi/dex"},
	{"honey", "Honey", "defi/stablecoin"},
	{"bend", "Bend", "defi/lending"},
	{"berps", "Berps", "defi/perps"},
	{"burrbear", "BurrBear", "defi/dex"},
	{"infrared", "Infrared", "defi/staking"},
}

// Find returns local vault entries absent from the remote address set.
func Find(list *model.VaultList, remoteSet map[string]struct{}) []model.VaultRecord {
	var missing []model.VaultRecord
	for _, v := range list.Vaults {
		if _, ok := remoteSet[strings.ToLower(v.VaultAddress)]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}

// Remove drops local entries absent from the remote set, preserving the
// relative order of survivors. An empty remote set is refused: after a
// successful paginated crawl it almost always means a remote outage.
func Remove(list *model.VaultList, remoteSet map[string]struct{}) ([]model.VaultRecord, error) {
	if len(remoteSet) == 0 {
		return nil, fmt.Errorf("remote vault set is empty, refusing to rewrite the list")
	}

	kept := list.Vaults[:0:0]
	var removed []model.VaultRecord
	for _, v := range list.Vaults {
		if _, ok := remoteSet[strings.ToLower(v.VaultAddress)]; ok {
			kept = append(kept, v)
		} else {
			removed = append(removed, v)
		}
	}
	list.Vaults = kept
	return removed, nil
}

// Add appends placeholder records for remote vaults that lack all metadata
// and are not yet present locally. Existing entries are never reordered.
func Add(list *model.VaultList, rows []remote.VaultRow) []model.VaultRecord {
	var added []model.VaultRecord
	for _, row := range rows {
		if !metadataEmpty(row) {
			continue
		}
		if list.HasVault(row.VaultAddress) {
			continue
		}

		protocol, category := inferProtocol(row.StakingToken.Name, row.StakingToken.Symbol)
		name := row.StakingToken.Name
		if name == "" {
			name = row.StakingToken.Symbol
		}
		if name == "" {
			name = row.VaultAddress
		}

		record := model.VaultRecord{
			StakingTokenAddress: row.StakingToken.Address,
			VaultAddress:        row.VaultAddress,
			Name:                name,
			Protocol:            protocol,
			LogoURI:             defaultLogoURI,
			URL:                 defaultVaultURL,
			Categories:          []string{category},
			Description:         fmt.Sprintf("Reward vault for %s", name),
		}
		list.Vaults = append(list.Vaults, record)
		added = append(added, record)
	}
	return added
}

func metadataEmpty(row remote.VaultRow) bool {
	return row.Name == "" &&
		row.LogoURI == "" &&
		row.URL == "" &&
		row.ProtocolName == "" &&
		row.ProtocolIcon == "" &&
		row.Description == "" &&
		len(row.Categories) == 0 &&
		row.Action == ""
}

func inferProtocol(name, symbol string) (string, string) {
	haystack := strings.ToLower(name + " " + symbol)
	for _, hint := range protocolHints {
		if strings.Contains(haystack, hint.needle) {
			return hint.protocol, hint.category
		}
	}
	return fallbackProtocol, fallbackCategory
}
