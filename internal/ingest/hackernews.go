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
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/openpgp/armor"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/airdropkey"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/builder"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/subtree"
)

// SourceHackerNews names the social-news source in builder counters.
const SourceHackerNews = "hackernews"

// LoadHackerNews reads "<prefix>/hn-keys.json".
func LoadHackerNews(prefix string) ([]HNUser, error) {
	path := filepath.Join(prefix, "hn-keys.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var users []HNUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return users, nil
}

// IngestHackerNews implements spec section 4.2's social-news ingestor:
// each user's primary key is checked against its declared full
// fingerprint (not the short id the strong-set ingestor uses) and, on
// success, routed into its own one-key subtree. There is no faucet dedup
// for this source.
func IngestHackerNews(b *builder.Builder, users []HNUser) error {
	for _, u := range users {
		if err := ingestHackerNewsUser(b, u); err != nil {
			return err
		}
	}
	return nil
}

func ingestHackerNewsUser(b *builder.Builder, u HNUser) error {
	block, err := armor.Decode(strings.NewReader(u.Primary.ArmoredBundle))
	if err != nil {
		return errors.Wrapf(err, "hackernews: user %s: decoding armored bundle", u.HNUser)
	}
	body, err := io.ReadAll(block.Body)
	if err != nil {
		return errors.Wrapf(err, "hackernews: user %s: reading bundle body", u.HNUser)
	}
	pub, err := decodeRawPGPPublicKey(body)
	if err != nil {
		return errors.Wrapf(err, "hackernews: user %s", u.HNUser)
	}

	computed := hex.EncodeToString(pub.Fingerprint[:])
	if !strings.EqualFold(computed, u.Primary.Fingerprint) {
		b.Log.WithFields(map[string]interface{}{
			"user":     u.HNUser,
			"declared": u.Primary.Fingerprint,
			"computed": computed,
		}).Warn("hackernews: fingerprint mismatch")
		b.RecordInvalidKey(SourceHackerNews, false)
		return nil
	}

	key, err := airdropkey.FromPGP(pub)
	if errors.Is(err, airdropkey.ErrUnsupportedAlgorithm) {
		b.RecordInvalidKey(SourceHackerNews, false)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "hackernews: user %s: adapting key", u.HNUser)
	}
	if !key.Validate() {
		b.RecordInvalidKey(SourceHackerNews, false)
		return nil
	}

	st := b.NewSubtree()
	s, err := seed.New(b.Src)
	if err != nil {
		return errors.Wrapf(err, "hackernews: user %s: generating seed", u.HNUser)
	}

	if err := b.RouteKey(key, st, s); err != nil {
		if errors.Is(err, subtree.ErrFull) {
			return errors.Wrapf(err, "hackernews: unexpected full subtree for user %s", u.HNUser)
		}
		return errors.Wrapf(err, "hackernews: user %s: routing key", u.HNUser)
	}
	b.RecordValidKey(SourceHackerNews)

	return b.CommitSubtree(st, s)
}
