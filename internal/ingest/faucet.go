/*
   hs-airdrop - Handshake key-commitment tree builder

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, version 3.

   This program is distributed in the hope that it will be useful, but
   WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU Affero
   General Public License for more details.
*/

// Package ingest holds the three source-specific drivers (code-host,
// strong-set, social-news) plus the faucet reader they all dedup
// against, spec section 4.2. Every ingestor takes a *builder.Builder and
// calls only its exported methods -- none of them touch bucket, subtree
// or dedup-set internals directly.
package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/builder"
)

// FaucetEntry is one pre-existing reward claimant, spec section 6.
type FaucetEntry struct {
	Email    string `json:"email"`
	GitHub   string `json:"github,omitempty"`
	PGP      string `json:"pgp,omitempty"`
	Freenode string `json:"freenode,omitempty"`
	Address  string `json:"address"`
	Shares   int    `json:"shares"`
}

// LoadFaucet reads "<prefix>/faucet.json", a plain array of FaucetEntry.
func LoadFaucet(prefix string) ([]FaucetEntry, error) {
	path := filepath.Join(prefix, "faucet.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var entries []FaucetEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return entries, nil
}

// RegisterFaucetDedup seeds the builder's dedup set from every faucet
// entry's github handle (used by the code-host ingestor) and email
// (used by the strong-set ingestor). The social-news ingestor never
// dedups against the faucet set (spec section 4.2).
func RegisterFaucetDedup(b *builder.Builder, entries []FaucetEntry) {
	for _, e := range entries {
		if e.GitHub != "" {
			b.RegisterDedup("github", builder.NormalizeIdentity(e.GitHub))
		}
		if e.Email != "" {
			b.RegisterDedup("email", builder.NormalizeIdentity(e.Email))
		}
	}
}

// TotalShares sums the shares field across every faucet entry, used by
// the final reward computation (spec section 4.7).
func TotalShares(entries []FaucetEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Shares
	}
	return total
}
