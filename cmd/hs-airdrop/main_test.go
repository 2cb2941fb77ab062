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

package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/config"
)

func writeEmptyInputs(t *testing.T, prefix string) {
	t.Helper()
	files := map[string]string{
		"faucet.json":     "[]",
		"github-ssh.json": "[]",
		"github-pgp.json": "[]",
		"strongset.asc":   "",
		"hn-keys.json":    "[]",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(prefix, name), []byte(content), 0o644))
	}
}

func TestRunEmptyInputsProducesEmptyTree(t *testing.T) {
	prefix := t.TempDir()
	writeEmptyInputs(t, prefix)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	require.NoError(t, run(log, []string{"hs-airdrop", prefix}))

	data, err := os.ReadFile(filepath.Join(prefix, "etc", "tree.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"leaves": 0`)
	require.Contains(t, string(data), `"keys": 0`)

	for i := 0; i < 256; i++ {
		name := filepath.Join(prefix, "build", "nonces", fmt.Sprintf("%03d.bin", i))
		b, err := os.ReadFile(name)
		require.NoError(t, err)
		require.Empty(t, b)
	}

	tree, err := os.ReadFile(filepath.Join(prefix, "build", "tree.bin"))
	require.NoError(t, err)
	require.Len(t, tree, 4)
}

// buildStrongSetBlock returns an armored strong-set block wrapping a fresh
// RSA-1024 public key, with a Key-ID header that matches its own computed
// short id -- a single well-formed strong-set entry.
func buildStrongSetBlock(t *testing.T) []byte {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	pub := packet.NewRSAPublicKey(time.Now(), &priv.PublicKey)

	var body bytes.Buffer
	require.NoError(t, pub.Serialize(&body))

	var armored bytes.Buffer
	w, err := armor.Encode(&armored, "PGP PUBLIC KEY BLOCK", map[string]string{
		"Key-ID": pub.KeyIdShortString(),
	})
	require.NoError(t, err)
	_, err = w.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return armored.Bytes()
}

// TestRunSingleStrongSetKeyProducesOneLeaf is spec section 8 scenario 2: a
// single strong-set entry must commit exactly one subtree, so the
// top-level tree has one leaf and the reward is MaxAirdrop/1, not the
// inflated MaxAirdrop/8 a subtree-width mixup would produce.
func TestRunSingleStrongSetKeyProducesOneLeaf(t *testing.T) {
	prefix := t.TempDir()
	writeEmptyInputs(t, prefix)
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "strongset.asc"), buildStrongSetBlock(t), 0o644))

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	require.NoError(t, run(log, []string{"hs-airdrop", prefix}))

	data, err := os.ReadFile(filepath.Join(prefix, "etc", "tree.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"leaves": 1`)
	require.Contains(t, string(data), `"keys": 1`)

	wantReward := config.Default().MaxAirdrop
	require.Contains(t, string(data), fmt.Sprintf(`"reward": %d`, wantReward))

	tree, err := os.ReadFile(filepath.Join(prefix, "build", "tree.bin"))
	require.NoError(t, err)
	require.Len(t, tree, 4+8*32)
}
