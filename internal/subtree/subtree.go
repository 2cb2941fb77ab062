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

// Package subtree implements the fixed-width, padded-and-sorted per-user
// (or per-standalone-entry) subtree spec section 4.4 describes: up to
// SubtreeLeaves real hashes, padded with deterministic HKDF-SHA256 filler
// derived from the owner's seed, then sorted ascending by byte value.
package subtree

import (
	"crypto/sha256"
	"errors"
	"io"
	"sort"

	"golang.org/x/crypto/hkdf"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/merkle"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
)

// ErrFull is the SubtreeFull classifier outcome: the owner already has
// SubtreeLeaves real hashes and any further key is counted invalid,
// never appended.
var ErrFull = errors.New("subtree: full")

// Subtree accumulates real leaf hashes for one owner up to maxLeaves, then
// pads and sorts in place exactly once via Finalize.
type Subtree struct {
	maxLeaves int
	leaves    []merkle.Hash
	finalized bool
}

// New returns an empty subtree with room for maxLeaves real hashes.
func New(maxLeaves int) *Subtree {
	return &Subtree{maxLeaves: maxLeaves, leaves: make([]merkle.Hash, 0, maxLeaves)}
}

// Add appends a real leaf hash, returning ErrFull once maxLeaves real
// hashes have already been added -- internal/builder passes it on and the
// ingestors count that as an invalid key, per spec section 7's
// SubtreeFull outcome.
func (t *Subtree) Add(h merkle.Hash) error {
	if len(t.leaves) >= t.maxLeaves {
		return ErrFull
	}
	t.leaves = append(t.leaves, h)
	return nil
}

// RealCount returns the number of real (non-padding) leaves added so far.
func (t *Subtree) RealCount() int {
	return len(t.leaves)
}

// Empty reports whether this subtree received zero real leaves -- such a
// subtree contributes nothing to the final tree (spec section 4.2: "if
// hashes is empty, the user contributes nothing").
func (t *Subtree) Empty() bool {
	return len(t.leaves) == 0
}

// Finalize pads the subtree up to maxLeaves with deterministic
// HKDF-SHA256 filler derived from s, then sorts the whole leaf set
// ascending by byte-wise comparison. A second call returns an error. An
// Empty subtree finalizes to maxLeaves filler leaves; the builder drops
// empty subtrees instead of finalizing them.
func (t *Subtree) Finalize(s seed.Seed) error {
	if t.finalized {
		return errors.New("subtree: already finalized")
	}
	need := t.maxLeaves - len(t.leaves)
	if need > 0 {
		filler, err := fillerLeaves(s, need)
		if err != nil {
			return err
		}
		t.leaves = append(t.leaves, filler...)
	}
	sortHashes(t.leaves)
	t.finalized = true
	return nil
}

// fillerLeaves derives exactly n deterministic 32-byte filler leaves from
// seed s: prk = HKDF-Extract(SHA256, s), stream = HKDF-Expand(SHA256,
// prk, info=nil, length=n*32), sliced into n leaves -- spec section 4.4,
// bit-exact. HKDF itself is the out-of-scope low-level primitive, pulled
// from golang.org/x/crypto/hkdf; this function is the padding policy.
func fillerLeaves(s seed.Seed, n int) ([]merkle.Hash, error) {
	prk := hkdf.Extract(sha256.New, s[:], nil)
	stream := hkdf.Expand(sha256.New, prk, nil)

	out := make([]merkle.Hash, n)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(stream, out[i][:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// sortHashes sorts in place by explicit lexicographic unsigned byte
// comparison (spec section 9: never a numeric or locale-aware sort).
func sortHashes(h []merkle.Hash) {
	sort.Slice(h, func(i, j int) bool { return h[i].Less(h[j]) })
}

// Leaves returns the finalized, padded-and-sorted leaf sequence. Callers
// must call Finalize first.
func (t *Subtree) Leaves() []merkle.Hash {
	return t.leaves
}

// Root returns the BLAKE2b Merkle root over the finalized leaf sequence.
func (t *Subtree) Root() merkle.Hash {
	return merkle.Root(t.leaves)
}
