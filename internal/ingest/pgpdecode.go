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
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/openpgp/packet"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/airdropkey"
)

// decodeRawPGPPublicKey decodes a raw (non-armored) PGP public-key packet
// stream and returns its first packet, which spec section 4.2's PGP
// subkey policy requires to be a PUBLIC_KEY packet (the primary key).
func decodeRawPGPPublicKey(raw []byte) (*packet.PublicKey, error) {
	reader := packet.NewReader(bytes.NewReader(raw))
	p, err := reader.Next()
	if err == io.EOF {
		return nil, errors.New("pgp: empty packet stream")
	}
	if err != nil {
		return nil, errors.Wrap(err, "pgp: reading first packet")
	}
	pub, ok := p.(*packet.PublicKey)
	if !ok {
		return nil, errors.Errorf("pgp: first packet is %T, not a public key", p)
	}
	return pub, nil
}

// airdropKeyFromBase64PGP decodes a base64-encoded raw PGP public-key
// packet (github-pgp.json's base64_key field) into an airdropkey.Key.
func airdropKeyFromBase64PGP(b64 string) (airdropkey.Key, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, errors.Wrap(err, "pgp: base64 decode")
	}
	pub, err := decodeRawPGPPublicKey(raw)
	if err != nil {
		return nil, err
	}
	return airdropkey.FromPGP(pub)
}
