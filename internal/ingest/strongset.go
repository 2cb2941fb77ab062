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
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/airdropkey"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/builder"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/seed"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/subtree"
)

// SourceStrongSet names the PGP strong-set source in builder counters.
const SourceStrongSet = "strongset"

// decodeCacheSize bounds the strong-set ingestor's packet-decode cache.
// The dump routinely repeats the same primary key across several
// certifying blocks; caching by body digest avoids re-parsing it.
const decodeCacheSize = 4096

// LoadStrongSet reads the raw bytes of "<prefix>/strongset.asc", a
// concatenation of PEM-armored blocks.
func LoadStrongSet(prefix string) ([]byte, error) {
	path := filepath.Join(prefix, "strongset.asc")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

// IngestStrongSet implements spec section 4.2's strong-set ingestor: walk
// a stream of armored blocks, each describing one candidate primary key,
// and route every one whose declared Key-ID matches its computed key id
// into its own one-key subtree.
func IngestStrongSet(b *builder.Builder, data []byte) error {
	cache, err := lru.New(decodeCacheSize)
	if err != nil {
		return errors.Wrap(err, "strongset: constructing decode cache")
	}

	r := bytes.NewReader(data)
	for {
		block, err := armor.Decode(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "strongset: decoding armored block")
		}

		body, err := io.ReadAll(block.Body)
		if err != nil {
			return errors.Wrap(err, "strongset: reading block body")
		}

		if err := ingestStrongSetBlock(b, block.Header, body, cache); err != nil {
			return err
		}
	}
}

func ingestStrongSetBlock(b *builder.Builder, header map[string]string, body []byte, cache *lru.Cache) error {
	declaredID, ok := header["Key-ID"]
	if !ok {
		return errors.New("strongset: block missing required Key-ID header")
	}

	pub, err := decodeStrongSetBody(body, cache)
	if err != nil {
		return errors.Wrap(err, "strongset: decoding block body")
	}

	email := header["Email"]
	if email != "" && b.IsDuplicate("email", builder.NormalizeIdentity(email)) {
		b.RecordDuplicate(SourceStrongSet)
		return nil
	}

	if !shortIDMatches(pub, declaredID) {
		b.Log.WithFields(map[string]interface{}{
			"declared": declaredID,
			"computed": pub.KeyIdShortString(),
		}).Warn("strongset: key id mismatch")
		b.RecordInvalidKey(SourceStrongSet, false)
		return nil
	}

	key, err := airdropkey.FromPGP(pub)
	if errors.Is(err, airdropkey.ErrUnsupportedAlgorithm) {
		b.RecordInvalidKey(SourceStrongSet, false)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "strongset: adapting key")
	}
	if !key.Validate() {
		b.RecordInvalidKey(SourceStrongSet, false)
		return nil
	}

	st := b.NewSubtree()
	s, err := seed.New(b.Src)
	if err != nil {
		return errors.Wrap(err, "strongset: generating entry seed")
	}

	if err := b.RouteKey(key, st, s); err != nil {
		if errors.Is(err, subtree.ErrFull) {
			// A single-key subtree can never be full on its first key.
			return errors.Wrap(err, "strongset: unexpected full subtree for single-key entry")
		}
		return errors.Wrap(err, "strongset: routing key")
	}
	b.RecordValidKey(SourceStrongSet)

	return b.CommitSubtree(st, s)
}

// decodeStrongSetBody decodes a raw PGP public-key packet body, using
// cache to skip re-parsing a body already seen under this run.
func decodeStrongSetBody(body []byte, cache *lru.Cache) (*packet.PublicKey, error) {
	digest := sha256.Sum256(body)
	key := hex.EncodeToString(digest[:])
	if v, ok := cache.Get(key); ok {
		return v.(*packet.PublicKey), nil
	}
	pub, err := decodeRawPGPPublicKey(body)
	if err != nil {
		return nil, err
	}
	cache.Add(key, pub)
	return pub, nil
}

// shortIDMatches compares a decoded primary key's computed short id (the
// low 32 bits of the fingerprint, 8 hex digits) against the declared
// Key-ID header, case-insensitively. Section 4.2 validates strong-set
// entries against the "computed short id", in contrast to the social-news
// source, which validates against a full fingerprint; KeyIdShortString
// is the matching accessor (KeyIdString returns the 64-bit long id).
func shortIDMatches(pub *packet.PublicKey, declared string) bool {
	return strings.EqualFold(pub.KeyIdShortString(), declared)
}
