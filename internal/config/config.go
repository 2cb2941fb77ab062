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

// Package config holds the bit-exact protocol constants and the optional
// on-disk overrides used to exercise them at a smaller scale in tests.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Constants is the full set of values the build is parameterized on. The
// zero value is never valid; use Default() and optionally Load() over it.
type Constants struct {
	// MaxAirdrop is the total number of dollarydoo units distributed.
	MaxAirdrop uint64
	// SubtreeLeaves is the fixed width of every per-user subtree.
	SubtreeLeaves int
	// SeedSize records the per-user seed length. Seeds are always
	// seed.Size bytes long; nothing in the build reads this field.
	SeedSize int
	// Buckets is the number of nonce-ciphertext buckets.
	Buckets int
}

// Default returns the production constants from spec section 6, bit-exact.
func Default() Constants {
	return Constants{
		MaxAirdrop:    924_800_000 * 1_000_000,
		SubtreeLeaves: 8,
		SeedSize:      30,
		Buckets:       256,
	}
}

// tomlOverride mirrors the subset of Constants an operator may override
// from an optional airdrop.toml dropped next to the input prefix. Any
// field left unset in the file keeps the production default.
type tomlOverride struct {
	MaxAirdrop    *uint64 `toml:"max_airdrop"`
	SubtreeLeaves *int    `toml:"subtree_leaves"`
	SeedSize      *int    `toml:"seed_size"`
	Buckets       *int    `toml:"buckets"`
}

// Load reads "<prefix>/airdrop.toml" if present and overrides any field it
// sets on top of c. A missing file is not an error -- production runs
// never carry one, and this method is only a foothold for test fixtures
// that want a narrower subtree width or bucket count.
func Load(prefix string, c Constants) (Constants, error) {
	path := filepath.Join(prefix, "airdrop.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, errors.Wrapf(err, "reading %s", path)
	}

	var o tomlOverride
	if _, err := toml.Decode(string(data), &o); err != nil {
		return c, errors.Wrapf(err, "parsing %s", path)
	}
	if o.MaxAirdrop != nil {
		c.MaxAirdrop = *o.MaxAirdrop
	}
	if o.SubtreeLeaves != nil {
		c.SubtreeLeaves = *o.SubtreeLeaves
	}
	if o.SeedSize != nil {
		c.SeedSize = *o.SeedSize
	}
	if o.Buckets != nil {
		c.Buckets = *o.Buckets
	}
	return c, nil
}
