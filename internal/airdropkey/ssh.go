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
	"crypto/rsa"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ssh"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/merkle"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/randsrc"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
)

// sshKey adapts an authorized_keys-format SSH public key.
type sshKey struct {
	pub ssh.PublicKey
	rsa *rsa.PublicKey
	// src is the randomness source Generate was called with, reused for
	// Encrypt's PKCS#1v1.5 padding so a run seeded with randsrc.Fixed
	// produces byte-identical bucket ciphertexts (spec section 9).
	src randsrc.Source
}

// FromSSH parses a single "ssh-rsa AAAA... comment" line. Any key type
// other than RSA (ed25519, ecdsa, dsa) is ErrUnsupportedAlgorithm: the
// airdrop protocol only encrypts to RSA public keys (spec section 4.1).
func FromSSH(opensshLine string) (Key, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(opensshLine))
	if err != nil {
		return nil, err
	}
	cryptoPub, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, ErrUnsupportedAlgorithm
	}
	rsaPub, ok := cryptoPub.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return nil, ErrUnsupportedAlgorithm
	}
	return &sshKey{pub: pub, rsa: rsaPub}, nil
}

func (k *sshKey) Validate() bool {
	if k.rsa.N == nil || k.rsa.E <= 1 {
		return false
	}
	bits := k.rsa.N.BitLen()
	return bits >= 1024 && k.rsa.E%2 == 1
}

func (k *sshKey) Bucket() byte {
	h := k.Hash()
	return h[0]
}

func (k *sshKey) Hash() merkle.Hash {
	return blake2b.Sum256(k.pub.Marshal())
}

func (k *sshKey) Generate(src randsrc.Source) (Nonce, PostNonceKey, error) {
	k.src = src

	var n Nonce
	raw, err := randsrc.Bytes(src, len(n))
	if err != nil {
		return Nonce{}, nil, err
	}
	copy(n[:], raw)
	return n, postNonceHash(k.pub.Marshal(), n), nil
}

func (k *sshKey) ApplyNonce(n Nonce) error {
	return nil
}

func (k *sshKey) Encrypt(n Nonce, s seed.Seed) ([]byte, error) {
	plaintext := make([]byte, 0, len(n)+seed.Size)
	plaintext = append(plaintext, n[:]...)
	plaintext = append(plaintext, s[:]...)
	return rsa.EncryptPKCS1v15(k.src, k.rsa, plaintext)
}
