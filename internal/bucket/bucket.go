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

// Package bucket implements the 256 append-only nonce-ciphertext buckets
// spec sections 4.3 and 4.6 describe: insertion-ordered length-prefixed
// ciphertexts, addressed by a key's bucket byte, serialized one file per
// bucket with a SHA-256 checksum recorded for each.
package bucket

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Set holds all buckets for one build, indexed 0..count-1.
type Set struct {
	buckets [][][]byte
}

// NewSet returns an empty Set with the given number of buckets.
func NewSet(count int) *Set {
	return &Set{buckets: make([][][]byte, count)}
}

// Append adds ciphertext to bucket i in insertion order. Ordering within
// a bucket is part of the protocol's external contract (spec section
// 4.3): it is never reordered after the fact.
func (s *Set) Append(i byte, ciphertext []byte) {
	s.buckets[i] = append(s.buckets[i], ciphertext)
}

// Len returns the number of ciphertexts currently in bucket i.
func (s *Set) Len(i byte) int {
	return len(s.buckets[i])
}

// serialize encodes bucket i as a sequence of u16-length-prefixed
// ciphertext records, spec section 4.6, bit-exact.
func (s *Set) serialize(i byte) ([]byte, error) {
	var out []byte
	for _, ct := range s.buckets[i] {
		if len(ct) > 0xFFFF {
			return nil, errors.Errorf("bucket %d: ciphertext too long (%d bytes)", i, len(ct))
		}
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(ct)))
		out = append(out, lenBuf[:]...)
		out = append(out, ct...)
	}
	return out, nil
}

// WriteAll serializes every bucket to "<dir>/NNN.bin" (3-digit zero
// padded, spec section 4.6) and returns the SHA-256 checksum of each
// file's contents, indexed the same way.
func (s *Set) WriteAll(dir string) (checksums [][32]byte, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	checksums = make([][32]byte, len(s.buckets))
	for i := range s.buckets {
		data, err := s.serialize(byte(i))
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, fmt.Sprintf("%03d.bin", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, errors.Wrapf(err, "writing %s", path)
		}
		checksums[i] = sha256.Sum256(data)
	}
	return checksums, nil
}
