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

// Package treefile implements spec section 4.5's tree finalization step:
// sort committed subtrees by subroot, serialize the flat leaf file, and
// compute the top-level commitment root.
package treefile

import (
	"crypto/sha256"
	"encoding/binary"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/merkle"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/subtree"
)

// LeafWidth is the number of 32-byte leaves per serialized subtree.
const LeafWidth = 8

// Result is everything the summary writer needs after finalization.
type Result struct {
	Root     merkle.Hash
	Checksum [32]byte
	// Leaves is the top-level tree's leaf count -- one per committed
	// subtree (spec section 4.7: total_leaves = |subtrees|), the same
	// value written as tree.bin's u32 leaf_count header.
	Leaves int
}

// Finalize sorts trees ascending by subroot, writes path as
// `u32 leaf_count (LE)` followed by `leaf_count * LeafWidth * 32` raw
// bytes, and returns the top-level root plus the file's SHA-256 checksum.
func Finalize(trees []*subtree.Subtree, path string) (Result, error) {
	sorted := make([]*subtree.Subtree, len(trees))
	copy(sorted, trees)
	roots := make([]merkle.Hash, len(sorted))
	for i, t := range sorted {
		roots[i] = t.Root()
	}

	sort.Sort(bySubroot{sorted, roots})

	buf := make([]byte, 4+len(sorted)*LeafWidth*32)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(sorted)))
	offset := 4
	for _, t := range sorted {
		for _, leaf := range t.Leaves() {
			copy(buf[offset:offset+32], leaf[:])
			offset += 32
		}
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return Result{}, errors.Wrapf(err, "writing %s", path)
	}

	return Result{
		Root:     merkle.Root(roots),
		Checksum: sha256.Sum256(buf),
		Leaves:   len(sorted),
	}, nil
}

// bySubroot sorts a parallel (trees, roots) pair ascending by root bytes,
// spec section 4.5: "sort subtrees ascending by that root."
type bySubroot struct {
	trees []*subtree.Subtree
	roots []merkle.Hash
}

func (s bySubroot) Len() int { return len(s.trees) }
func (s bySubroot) Less(i, j int) bool {
	return s.roots[i].Less(s.roots[j])
}
func (s bySubroot) Swap(i, j int) {
	s.trees[i], s.trees[j] = s.trees[j], s.trees[i]
	s.roots[i], s.roots[j] = s.roots[j], s.roots[i]
}
