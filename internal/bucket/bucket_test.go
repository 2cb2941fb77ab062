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

package bucket

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// emptySHA256Hex is the checksum scenario 1 in spec section 8 pins for
// every bucket when all four input sources are empty.
const emptySHA256Hex = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestWriteAllEmptyBucketsHashEmptyString(t *testing.T) {
	s := NewSet(256)
	dir := t.TempDir()

	checksums, err := s.WriteAll(dir)
	require.NoError(t, err)
	require.Len(t, checksums, 256)
	for i, sum := range checksums {
		require.Equal(t, emptySHA256Hex, hex.EncodeToString(sum[:]), "bucket %d", i)
	}

	data, err := os.ReadFile(filepath.Join(dir, "000.bin"))
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestWriteAllLengthPrefixesEachRecord(t *testing.T) {
	s := NewSet(2)
	s.Append(0, []byte("hi"))
	s.Append(0, []byte("there"))

	dir := t.TempDir()
	_, err := s.WriteAll(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "000.bin"))
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 'h', 'i', 5, 0, 't', 'h', 'e', 'r', 'e'}, data)
}

func TestChecksumMatchesFileContents(t *testing.T) {
	s := NewSet(1)
	s.Append(0, []byte("payload"))
	dir := t.TempDir()

	checksums, err := s.WriteAll(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "000.bin"))
	require.NoError(t, err)
	want := sha256.Sum256(data)
	require.Equal(t, want, checksums[0])
}
