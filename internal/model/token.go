package model

import "strings"

// TokenRecord describes one ERC20 token entry in a token list.
type TokenRecord struct {
	ChainID    int            `json:"chainId"`
	Address    string         `json:"address"`
	Symbol     string         `json:"symbol"`
	Name       string         `json:"name"`
	Decimals   int            `json:"decimals"`
	LogoURI    string         `json:"logoURI,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// TokenList is the on-disk token list document.
type TokenList struct {
	Schema string        `json:"$schema"`
	Name   string        `json:"name"`
	Tokens []TokenRecord `json:"tokens"`
}

// FindToken returns the token with the given address, case-insensitively.
func (l *TokenList) FindToken(address string) (TokenRecord, bool) {
	key := strings.ToLower(address)
	for _, t := range l.Tokens {
		if strings.ToLower(t.Address) == key {
			return t, true
		}
	}
	return TokenRecord{}, false
}
