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

// Package airdropkey is the algorithm-agnostic "airdrop key" capability
// spec section 4.1 describes as an external, interface-only collaborator:
// validate, bucket, generate/apply a nonce, encrypt a seed under it, and
// hash its canonical encoding. The ingestion pipeline in internal/ingest
// and internal/builder only ever talks to this interface, never to a PGP
// or SSH packet directly, so a new algorithm adapter can be dropped in
// without touching a single ingestor.
//
// The cryptographic embedding of a nonce into an airdrop key's private
// material (the actual Handshake redemption protocol) is explicitly out
// of this tool's scope -- the spec treats it as a primitive supplied by
// the adapter. The implementation below is a deliberately simplified
// stand-in: it produces a distinct, deterministic-given-its-inputs
// "post-nonce" hash for the second Merkle leaf, without claiming to
// reproduce the real redemption math bit for bit. See DESIGN.md.
package airdropkey

import (
	"errors"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/merkle"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/randsrc"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
)

// ErrUnsupportedAlgorithm is the typed sentinel spec section 9's
// REDESIGN FLAGS calls for in place of string-matching an exception
// message. Adapters return it from From* constructors for any key type
// the airdrop protocol excludes (e.g. Ed25519/ECDSA SSH keys, non-RSA
// PGP keys); callers classify it as an invalid (not fatal) key.
var ErrUnsupportedAlgorithm = errors.New("airdropkey: unsupported algorithm")

// Nonce is the 32-byte value generated fresh for each (key, seed) pair.
type Nonce [32]byte

// PostNonceKey is the post-apply_nonce snapshot returned by Generate.
// Only its hash is ever needed by callers (spec section 4.3).
type PostNonceKey interface {
	Hash() merkle.Hash
}

// Key is the uniform capability every algorithm adapter implements.
type Key interface {
	// Validate reports semantic validity of the key's parameters. A
	// false return is a classifier outcome (ValidationFailed), not an
	// error.
	Validate() bool

	// Bucket returns the nonce-bucket address in [0,255] this key
	// routes its ciphertext to.
	Bucket() byte

	// Hash returns the 32-byte digest of the key's canonical encoding.
	Hash() merkle.Hash

	// Generate draws fresh entropy from src and returns a nonce along
	// with a snapshot of this key's post-nonce-application state.
	Generate(src randsrc.Source) (Nonce, PostNonceKey, error)

	// ApplyNonce mutates the key to its post-nonce form. Called for
	// external-contract completeness; this tool never re-reads the
	// key's hash afterward (it already snapshotted the pre-nonce hash
	// and the PostNonceKey from Generate).
	ApplyNonce(n Nonce) error

	// Encrypt encrypts (nonce || seed) under the key's public material.
	// The seed MUST fit the key's encryption envelope; for the RSA-1024
	// floor this tool supports, 32+30=62 bytes comfortably clears the
	// PKCS#1v1.5 bound of modulus_bytes-11.
	Encrypt(n Nonce, s seed.Seed) ([]byte, error)
}
