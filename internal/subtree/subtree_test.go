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

package subtree

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/merkle"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/randsrc"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
)

func testSeed(t *testing.T) seed.Seed {
	t.Helper()
	s, err := seed.New(randsrc.Fixed([]byte("deterministic-test-entropy-000!")))
	require.NoError(t, err)
	return s
}

func TestAddRejectsPastFull(t *testing.T) {
	st := New(8)
	for i := 0; i < 8; i++ {
		var h merkle.Hash
		h[0] = byte(i)
		require.NoError(t, st.Add(h))
	}
	var extra merkle.Hash
	require.ErrorIs(t, st.Add(extra), ErrFull)
}

func TestFinalizePadsToWidthAndSorts(t *testing.T) {
	st := New(8)
	var h merkle.Hash
	h[0] = 0xFF
	require.NoError(t, st.Add(h))
	require.Equal(t, 1, st.RealCount())

	require.NoError(t, st.Finalize(testSeed(t)))
	require.Len(t, st.Leaves(), 8)
	require.True(t, sort.SliceIsSorted(st.Leaves(), func(i, j int) bool {
		return st.Leaves()[i].Less(st.Leaves()[j])
	}))
}

func TestFinalizeIsDeterministicGivenSeed(t *testing.T) {
	s := testSeed(t)

	a := New(8)
	b := New(8)
	require.NoError(t, a.Finalize(s))
	require.NoError(t, b.Finalize(s))
	require.Equal(t, a.Leaves(), b.Leaves())
	require.Equal(t, a.Root(), b.Root())
}

func TestEmptySubtreeContributesNothing(t *testing.T) {
	st := New(8)
	require.True(t, st.Empty())
}

func TestFinalizeTwiceErrors(t *testing.T) {
	st := New(8)
	require.NoError(t, st.Finalize(testSeed(t)))
	require.Error(t, st.Finalize(testSeed(t)))
}
