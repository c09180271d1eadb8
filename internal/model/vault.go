package model

import "strings"

// VaultRecord describes one whitelisted vault entry.
type VaultRecord struct {
	StakingTokenAddress string   `json:"stakingTokenAddress"`
	VaultAddress        string   `json:"vaultAddress"`
	Name                string   `json:"name"`
	Action              string   `json:"action,omitempty"`
	Protocol            string   `json:"protocol"`
	Owner               string   `json:"owner,omitempty"`
	LogoURI             string   `json:"logoURI,omitempty"`
	URL                 string   `json:"url"`
	Categories          []string `json:"categories"`
	Description         string   `json:"description,omitempty"`
}

// Subcategory is one leaf of the category taxonomy.
type Subcategory struct {
	Slug string `json:"slug"`
}

// Category is a one-level classification entry referenced by vault categories.
type Category struct {
	Slug          string        `json:"slug"`
	Description   string        `json:"description,omitempty"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// Protocol is descriptive protocol metadata, not an on-chain identity.
type Protocol struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	LogoURI     string   `json:"logoURI"`
	Tags        []string `json:"tags,omitempty"`
}

// VaultList is the on-disk vault list document.
type VaultList struct {
	Schema      string            `json:"$schema"`
	Name        string            `json:"name"`
	Vaults      []VaultRecord     `json:"vaults"`
	Categories  []Category        `json:"categories,omitempty"`
	Protocols   []Protocol        `json:"protocols,omitempty"`
	BrandColors map[string]string `json:"brandColors,omitempty"`
}

// FindVault returns the vault with the given address, case-insensitively.
func (l *VaultList) FindVault(address string) (VaultRecord, bool) {
	key := strings.ToLower(address)
	for _, v := range l.Vaults {
		if strings.ToLower(v.VaultAddress) == key {
			return v, true
		}
	}
	return VaultRecord{}, false
}

// HasVault reports whether a vault with the given address exists.
func (l *VaultList) HasVault(address string) bool {
	_, ok := l.FindVault(address)
	return ok
}

// SetVaultLogo updates the logoURI of the vault with the given address.
func (l *VaultList) SetVaultLogo(address, logoURI string) bool {
	key := strings.ToLower(address)
	for i := range l.Vaults {
		if strings.ToLower(l.Vaults[i].VaultAddress) == key {
			l.Vaults[i].LogoURI = logoURI
			return true
		}
	}
	return false
}

// BrandColor looks up the registered brand color for an owner, case-insensitively.
func (l *VaultList) BrandColor(owner string) (string, bool) {
	if owner == "" {
		return "", false
	}
	key := strings.ToLower(owner)
	for name, color := range l.BrandColors {
		if strings.ToLower(name) == key {
			return color, true
		}
	}
	return "", false
}
