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

// Package randsrc injects the randomness capability used throughout the
// build. Production wires it to crypto/rand; tests pin it to a fixed
// byte stream so the whole pipeline becomes deterministic end to end.
package randsrc

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
)

// Source produces cryptographically strong random bytes on demand.
type Source interface {
	Read(p []byte) (n int, err error)
}

// CSPRNG is the production Source, backed by the OS CSPRNG.
func CSPRNG() Source {
	return rand.Reader
}

// Fixed returns a deterministic Source that replays data cyclically.
// Tests use it to derive seeds with known, repeatable values.
func Fixed(data []byte) Source {
	if len(data) == 0 {
		panic("randsrc: Fixed requires at least one byte")
	}
	return &fixedSource{data: data}
}

type fixedSource struct {
	data []byte
	pos  int
}

func (f *fixedSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = f.data[f.pos]
		f.pos = (f.pos + 1) % len(f.data)
	}
	return len(p), nil
}

// Bytes draws n cryptographically strong bytes from src.
func Bytes(src Source, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, errors.Wrap(err, "reading random bytes")
	}
	return buf, nil
}
