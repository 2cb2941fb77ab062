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

package airdropkey

import (
	"bytes"
	"crypto/rsa"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/openpgp/packet"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/merkle"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/randsrc"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
)

// pgpKey adapts an OpenPGP RSA primary public key.
type pgpKey struct {
	pub   *packet.PublicKey
	rsa   *rsa.PublicKey
	nonce Nonce
	// src is the randomness source Generate was called with, reused for
	// Encrypt's PKCS#1v1.5 padding so a run seeded with randsrc.Fixed
	// produces byte-identical bucket ciphertexts (spec section 9).
	src randsrc.Source
}

// FromPGP validates that pub is an RSA primary key the airdrop protocol
// can encrypt to, returning ErrUnsupportedAlgorithm for anything else
// (non-RSA algorithms, or keys this package cannot extract a usable
// *rsa.PublicKey from).
func FromPGP(pub *packet.PublicKey) (Key, error) {
	rsaPub, ok := pub.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, ErrUnsupportedAlgorithm
	}
	switch pub.PubKeyAlgo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSAEncryptOnly, packet.PubKeyAlgoRSASignOnly:
	default:
		return nil, ErrUnsupportedAlgorithm
	}
	return &pgpKey{pub: pub, rsa: rsaPub}, nil
}

func (k *pgpKey) canonical() ([]byte, error) {
	var buf bytes.Buffer
	if err := k.pub.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (k *pgpKey) Validate() bool {
	if k.rsa.N == nil || k.rsa.E <= 1 {
		return false
	}
	// Semantic validity: an odd public exponent and a modulus of at
	// least 1024 bits, enough for the PKCS#1v1.5 envelope to hold the
	// 62-byte payload (spec section 4.1's RSA-1024 bound). There is no
	// upper limit on the modulus size.
	bits := k.rsa.N.BitLen()
	return bits >= 1024 && k.rsa.E%2 == 1
}

func (k *pgpKey) Bucket() byte {
	h := k.Hash()
	return h[0]
}

func (k *pgpKey) Hash() merkle.Hash {
	raw, err := k.canonical()
	if err != nil {
		// Serialize only fails on I/O errors from the destination
		// writer, and bytes.Buffer never returns one.
		panic(err)
	}
	return blake2b.Sum256(raw)
}

func (k *pgpKey) Generate(src randsrc.Source) (Nonce, PostNonceKey, error) {
	k.src = src

	var n Nonce
	raw, err := randsrc.Bytes(src, len(n))
	if err != nil {
		return Nonce{}, nil, err
	}
	copy(n[:], raw)

	canon, err := k.canonical()
	if err != nil {
		return Nonce{}, nil, err
	}
	post := postNonceHash(canon, n)
	return n, post, nil
}

func (k *pgpKey) ApplyNonce(n Nonce) error {
	k.nonce = n
	return nil
}

func (k *pgpKey) Encrypt(n Nonce, s seed.Seed) ([]byte, error) {
	plaintext := make([]byte, 0, len(n)+seed.Size)
	plaintext = append(plaintext, n[:]...)
	plaintext = append(plaintext, s[:]...)
	return rsa.EncryptPKCS1v15(k.src, k.rsa, plaintext)
}
