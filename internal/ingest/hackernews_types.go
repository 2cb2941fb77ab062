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

	"github.com/pkg/errors"
)

// HNPrimaryKey is the 3rd element of a hn-keys.json entry:
// [fp:hex40, kid, ktype, ctime, mtime, armored_bundle].
type HNPrimaryKey struct {
	Fingerprint   string
	KID           json.RawMessage
	KeyType       json.RawMessage
	CTime         json.RawMessage
	MTime         json.RawMessage
	ArmoredBundle string
}

func (k *HNPrimaryKey) UnmarshalJSON(data []byte) error {
	var raw [6]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "hn primary key: expected 6-element tuple")
	}
	if err := json.Unmarshal(raw[0], &k.Fingerprint); err != nil {
		return errors.Wrap(err, "hn primary key: fingerprint")
	}
	k.KID, k.KeyType, k.CTime, k.MTime = raw[1], raw[2], raw[3], raw[4]
	if err := json.Unmarshal(raw[5], &k.ArmoredBundle); err != nil {
		return errors.Wrap(err, "hn primary key: armored_bundle")
	}
	return nil
}

// HNAddress is one [currency, address] pair trailing an hn-keys.json entry.
type HNAddress struct {
	Currency string
	Address  string
}

func (a *HNAddress) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "hn address: expected 2-element tuple")
	}
	if err := json.Unmarshal(raw[0], &a.Currency); err != nil {
		return errors.Wrap(err, "hn address: currency")
	}
	if err := json.Unmarshal(raw[1], &a.Address); err != nil {
		return errors.Wrap(err, "hn address: address")
	}
	return nil
}

// HNUser is one element of hn-keys.json:
// [hn_user, keybase_user, primary, addrs].
type HNUser struct {
	HNUser      string
	KeybaseUser string
	Primary     HNPrimaryKey
	Addresses   []HNAddress
}

func (u *HNUser) UnmarshalJSON(data []byte) error {
	var raw [4]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "hn user: expected 4-element tuple")
	}
	if err := json.Unmarshal(raw[0], &u.HNUser); err != nil {
		return errors.Wrap(err, "hn user: hn_user")
	}
	if err := json.Unmarshal(raw[1], &u.KeybaseUser); err != nil {
		return errors.Wrap(err, "hn user: keybase_user")
	}
	if err := json.Unmarshal(raw[2], &u.Primary); err != nil {
		return errors.Wrap(err, "hn user: primary")
	}
	if err := json.Unmarshal(raw[3], &u.Addresses); err != nil {
		return errors.Wrap(err, "hn user: addrs")
	}
	return nil
}
