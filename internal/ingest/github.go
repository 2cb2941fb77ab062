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

package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/airdropkey"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/builder"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/subtree"
)

// SourceGitHub names the code-host source in builder counters/progress.
const SourceGitHub = "github"

// LoadGitHub reads the parallel "github-ssh.json" and "github-pgp.json"
// arrays from prefix.
func LoadGitHub(prefix string) ([]SSHUser, []PGPUser, error) {
	var sshUsers []SSHUser
	if err := loadJSONArray(filepath.Join(prefix, "github-ssh.json"), &sshUsers); err != nil {
		return nil, nil, err
	}
	var pgpUsers []PGPUser
	if err := loadJSONArray(filepath.Join(prefix, "github-pgp.json"), &pgpUsers); err != nil {
		return nil, nil, err
	}
	return sshUsers, pgpUsers, nil
}

func loadJSONArray(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	return nil
}

// keyCandidate is one key under consideration for a code-host user, prior
// to adapter construction. invalid is set when the record was already
// rejected by a policy check (subkey, unverified email) without needing
// to touch the adapter at all.
type keyCandidate struct {
	numericID int
	decode    func() (airdropkey.Key, error)
	invalid   bool
}

// IngestGitHub implements spec section 4.2's code-host ingestor: for each
// parallel-indexed user, validate the ssh/pgp records agree on identity,
// skip faucet-deduped handles, merge both key lists sorted most-recent-
// id-first, and route every validating key into one shared per-user
// subtree until it fills.
func IngestGitHub(b *builder.Builder, sshUsers []SSHUser, pgpUsers []PGPUser) error {
	if len(sshUsers) != len(pgpUsers) {
		return errors.Errorf("github: parallel array length mismatch: %d ssh users vs %d pgp users", len(sshUsers), len(pgpUsers))
	}

	for i := range sshUsers {
		su, pu := sshUsers[i], pgpUsers[i]
		if su.ID != pu.ID || su.Name != pu.Name {
			return errors.Errorf("github: parallel array mismatch at index %d: ssh={id:%d name:%q} pgp={id:%d name:%q}",
				i, su.ID, su.Name, pu.ID, pu.Name)
		}

		if err := ingestGitHubUser(b, su, pu); err != nil {
			return err
		}
	}
	return nil
}

func ingestGitHubUser(b *builder.Builder, su SSHUser, pu PGPUser) error {
	handle := builder.NormalizeIdentity(su.Name)
	if b.IsDuplicate("github", handle) {
		b.RecordDuplicate(SourceGitHub)
		return nil
	}

	candidates := make([]keyCandidate, 0, len(su.Keys)+len(pu.Keys))
	for _, k := range su.Keys {
		k := k
		candidates = append(candidates, keyCandidate{
			numericID: k.KeyID,
			decode:    func() (airdropkey.Key, error) { return airdropkey.FromSSH(k.OpenSSH) },
		})
	}
	for _, k := range pu.Keys {
		if k.IsSubkey() {
			candidates = append(candidates, keyCandidate{numericID: k.ID, invalid: true})
			continue
		}
		if !k.IsVerified() {
			candidates = append(candidates, keyCandidate{numericID: k.ID, invalid: true})
			continue
		}
		k := k
		candidates = append(candidates, keyCandidate{
			numericID: k.ID,
			decode:    func() (airdropkey.Key, error) { return airdropKeyFromBase64PGP(k.Base64Key) },
		})
	}

	// Most-recent-first by numeric id (spec section 4.2).
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].numericID > candidates[j].numericID })

	st := b.NewSubtree()
	s, err := seed.New(b.Src)
	if err != nil {
		return errors.Wrap(err, "github: generating user seed")
	}

	anyValid := false
	for _, cand := range candidates {
		if cand.invalid {
			b.RecordInvalidKey(SourceGitHub, false)
			continue
		}
		key, err := cand.decode()
		if errors.Is(err, airdropkey.ErrUnsupportedAlgorithm) {
			b.RecordInvalidKey(SourceGitHub, false)
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "github: user %s key %d", su.Name, cand.numericID)
		}
		if !key.Validate() {
			b.RecordInvalidKey(SourceGitHub, false)
			continue
		}
		if err := b.RouteKey(key, st, s); err != nil {
			if errors.Is(err, subtree.ErrFull) {
				b.RecordInvalidKey(SourceGitHub, true)
				continue
			}
			return errors.Wrapf(err, "github: user %s key %d", su.Name, cand.numericID)
		}
		b.RecordValidKey(SourceGitHub)
		anyValid = true
	}

	if anyValid {
		b.RecordValidUser(SourceGitHub)
	} else {
		b.RecordInvalidUser(SourceGitHub)
	}

	return b.CommitSubtree(st, s)
}
