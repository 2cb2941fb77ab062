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
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/openpgp/packet"
	"golang.org/x/crypto/ssh"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/randsrc"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
)

func generateEd25519(t *testing.T) (ed25519.PublicKey, crypto.Signer, error) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	return pub, priv, err
}

func genRSA(t *testing.T, bits int) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	require.NoError(t, err)
	return priv
}

func TestFromPGPAcceptsRSA(t *testing.T) {
	priv := genRSA(t, 1024)
	pub := packet.NewRSAPublicKey(time.Now(), &priv.PublicKey)

	key, err := FromPGP(pub)
	require.NoError(t, err)
	require.True(t, key.Validate())
	require.Equal(t, key.Hash(), key.Hash(), "hash is stable across calls")
}

func TestFromPGPRejectsNonRSA(t *testing.T) {
	// A PublicKey whose embedded key isn't an *rsa.PublicKey (e.g. a
	// DSA key as produced by packet.NewDSAPublicKey) must classify as
	// unsupported, not panic or silently misbehave.
	dsaPub := &packet.PublicKey{PubKeyAlgo: packet.PubKeyAlgoDSA, PublicKey: struct{}{}}
	_, err := FromPGP(dsaPub)
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestFromSSHAcceptsRSA(t *testing.T) {
	priv := genRSA(t, 1024)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)
	line := string(ssh.MarshalAuthorizedKey(signer.PublicKey()))

	key, err := FromSSH(line)
	require.NoError(t, err)
	require.True(t, key.Validate())
}

func TestFromSSHRejectsEd25519(t *testing.T) {
	_, priv, err := generateEd25519(t)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromSigner(priv)
	require.NoError(t, err)
	line := string(ssh.MarshalAuthorizedKey(signer.PublicKey()))

	_, err = FromSSH(line)
	require.True(t, errors.Is(err, ErrUnsupportedAlgorithm))
}

func TestGenerateApplyEncryptRoundTrip(t *testing.T) {
	priv := genRSA(t, 1024)
	pub := packet.NewRSAPublicKey(time.Now(), &priv.PublicKey)
	key, err := FromPGP(pub)
	require.NoError(t, err)

	originalHash := key.Hash()

	nonce, postKey, err := key.Generate(randsrc.CSPRNG())
	require.NoError(t, err)
	require.NoError(t, key.ApplyNonce(nonce))
	require.NotEqual(t, originalHash, postKey.Hash(), "post-nonce hash must differ from the original")

	s, err := seed.New(randsrc.CSPRNG())
	require.NoError(t, err)

	ct, err := key.Encrypt(nonce, s)
	require.NoError(t, err)

	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, priv, ct)
	require.NoError(t, err)
	require.Len(t, plaintext, 32+seed.Size)
	require.Equal(t, nonce[:], plaintext[:32])
	require.Equal(t, s[:], plaintext[32:])
}
