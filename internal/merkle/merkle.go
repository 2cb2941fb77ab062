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

// Package merkle implements the two fixed points of the commitment tree:
// the per-subtree root over its (always SubtreeLeaves-wide, post-padding)
// leaves, and the top-level root over the sorted sequence of subtree
// roots. Both use the same pairwise BLAKE2b-256 reduction; only the
// low-level hash call is delegated to golang.org/x/crypto/blake2b, the
// reduction itself is this package's job.
package merkle

import "golang.org/x/crypto/blake2b"

// Hash is a 32-byte BLAKE2b-256 digest, used uniformly for leaves, subtree
// roots and the top-level root.
type Hash [32]byte

// Less implements the byte-wise unsigned comparison spec section 9
// requires for all hash ordering in this tool -- never a numeric or
// locale-aware sort.
func (h Hash) Less(o Hash) bool {
	for i := range h {
		if h[i] != o[i] {
			return h[i] < o[i]
		}
	}
	return false
}

func combine(l, r Hash) Hash {
	buf := make([]byte, 0, 64)
	buf = append(buf, l[:]...)
	buf = append(buf, r[:]...)
	return blake2b.Sum256(buf)
}

// Root computes the Merkle root over leaves by pairwise BLAKE2b-256
// reduction, promoting an unpaired trailing element to the next level
// unchanged. An empty sequence roots to the hash of zero bytes, matching
// the convention used for empty-bucket checksums elsewhere in this tool.
func Root(leaves []Hash) Hash {
	if len(leaves) == 0 {
		return blake2b.Sum256(nil)
	}
	level := leaves
	for len(level) > 1 {
		next := make([]Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
			} else {
				next = append(next, combine(level[i], level[i+1]))
			}
		}
		level = next
	}
	return level[0]
}

// Depth implements the exact "while n>1: n=(n+1)>>1" formula spec section
// 8 names, rather than a closed-form log2 that could disagree on
// rounding at powers of two.
func Depth(n int) int {
	d := 0
	for n > 1 {
		n = (n + 1) >> 1
		d++
	}
	return d
}
