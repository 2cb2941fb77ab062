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

package treefile

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/randsrc"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/subtree"
)

func testSeed(t *testing.T, tag byte) seed.Seed {
	t.Helper()
	entropy := make([]byte, 32)
	for i := range entropy {
		entropy[i] = tag
	}
	s, err := seed.New(randsrc.Fixed(entropy))
	require.NoError(t, err)
	return s
}

func TestFinalizeEmptyProducesEmptyRoot(t *testing.T) {
	dir := t.TempDir()
	res, err := Finalize(nil, filepath.Join(dir, "tree.bin"))
	require.NoError(t, err)

	require.Equal(t, 0, res.Leaves)
	require.Equal(t, blake2b.Sum256(nil), [32]byte(res.Root))

	data, err := os.ReadFile(filepath.Join(dir, "tree.bin"))
	require.NoError(t, err)
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[:4]))
	require.Len(t, data, 4)
}

func TestFinalizeSortsBySubrootAndWritesLeaves(t *testing.T) {
	one := subtree.New(8)
	require.NoError(t, one.Add(hashOf(0xAA)))
	require.NoError(t, one.Finalize(testSeed(t, 1)))

	two := subtree.New(8)
	require.NoError(t, two.Add(hashOf(0xBB)))
	require.NoError(t, two.Finalize(testSeed(t, 2)))

	dir := t.TempDir()
	res, err := Finalize([]*subtree.Subtree{two, one}, filepath.Join(dir, "tree.bin"))
	require.NoError(t, err)
	require.Equal(t, 2, res.Leaves)

	data, err := os.ReadFile(filepath.Join(dir, "tree.bin"))
	require.NoError(t, err)
	require.Len(t, data, 4+16*32)
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[:4]))
}

func hashOf(b byte) [32]byte {
	var h [32]byte
	h[0] = b
	return h
}
