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

package merkle

import (
	"testing"

	"golang.org/x/crypto/blake2b"
	. "gopkg.in/check.v1"
)

// Hook up gocheck to go test, mirroring the teacher's own test style.
func Test(t *testing.T) { TestingT(t) }

type MerkleSuite struct{}

var _ = Suite(&MerkleSuite{})

func (s *MerkleSuite) TestDepthBoundaries(c *C) {
	cases := map[int]int{0: 0, 1: 0, 2: 1, 3: 2, 8: 3, 9: 4}
	for n, want := range cases {
		c.Check(Depth(n), Equals, want, Commentf("depth(%d)", n))
	}
}

func (s *MerkleSuite) TestRootEmpty(c *C) {
	want := Hash(blake2b.Sum256(nil))
	c.Assert(Root(nil), Equals, want)
}

func (s *MerkleSuite) TestRootSingleLeafIsIdentity(c *C) {
	var leaf Hash
	leaf[0] = 0xAB
	c.Assert(Root([]Hash{leaf}), Equals, leaf)
}

func (s *MerkleSuite) TestRootEightLeavesDepthThree(c *C) {
	leaves := make([]Hash, 8)
	for i := range leaves {
		leaves[i][0] = byte(i)
	}
	root1 := Root(leaves)

	// 8 leaves reduce through three levels (8 -> 4 -> 2 -> 1) with no
	// promotions, since every level is even; the root must differ from
	// any single leaf (sanity that reduction actually occurred).
	c.Assert(Depth(len(leaves)), Equals, 3)
	c.Assert(root1, Not(Equals), leaves[0])

	// Determinism: identical input, identical output.
	root2 := Root(leaves)
	c.Assert(root1, Equals, root2)
}

func (s *MerkleSuite) TestHashLessIsLexicographic(c *C) {
	a := Hash{0x01, 0x00}
	b := Hash{0x01, 0x01}
	c.Assert(a.Less(b), Equals, true)
	c.Assert(b.Less(a), Equals, false)
	c.Assert(a.Less(a), Equals, false)
}
