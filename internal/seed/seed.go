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

// Package seed generates the per-user (or per-standalone-entry) seed
// shared across the nonce encryption step and the subtree padding step.
package seed

import (
	"crypto/sha256"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/randsrc"
)

// Size is the canonical seed length in bytes (spec SEED_SIZE).
const Size = 30

// Seed is the shared secret a user's keys all encrypt their nonce under,
// and the subtree padding derives its filler leaves from.
type Seed [Size]byte

// New draws 64 random bytes from src, hashes them with SHA-256, and
// truncates to Size bytes -- spec section 6, bit-exact.
func New(src randsrc.Source) (Seed, error) {
	raw, err := randsrc.Bytes(src, 64)
	if err != nil {
		return Seed{}, err
	}
	sum := sha256.Sum256(raw)
	var s Seed
	copy(s[:], sum[:Size])
	return s, nil
}
