package model

// ValidatorRecord describes one validator entry, keyed by its BLS pubkey.
type ValidatorRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LogoURI     string `json:"logoURI,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
}

// ValidatorList is the on-disk validator list document.
type ValidatorList struct {
	Schema     string            `json:"$schema"`
	Name       string            `json:"name"`
	Validators []ValidatorRecord `json:"validators"`
}
