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

// SSHUserKey is one element of github-ssh.json's per-user "keys" array:
// [key_id, openssh_string].
type SSHUserKey struct {
	KeyID   int
	OpenSSH string
}

// UnmarshalJSON enforces the fixed 2-element tuple shape spec section 6
// names, rather than navigating dynamic JSON at each call site
// (REDESIGN FLAGS: dynamic tuple destructuring becomes a typed record
// with a thin deserializer that enforces shape).
func (k *SSHUserKey) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "ssh key: expected 2-element tuple")
	}
	if err := json.Unmarshal(raw[0], &k.KeyID); err != nil {
		return errors.Wrap(err, "ssh key: key_id")
	}
	if err := json.Unmarshal(raw[1], &k.OpenSSH); err != nil {
		return errors.Wrap(err, "ssh key: openssh_string")
	}
	return nil
}

// SSHUser is one element of github-ssh.json: [id, name, keys].
type SSHUser struct {
	ID   int
	Name string
	Keys []SSHUserKey
}

func (u *SSHUser) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "ssh user: expected 3-element tuple")
	}
	if err := json.Unmarshal(raw[0], &u.ID); err != nil {
		return errors.Wrap(err, "ssh user: id")
	}
	if err := json.Unmarshal(raw[1], &u.Name); err != nil {
		return errors.Wrap(err, "ssh user: name")
	}
	if err := json.Unmarshal(raw[2], &u.Keys); err != nil {
		return errors.Wrap(err, "ssh user: keys")
	}
	return nil
}

// PGPEmail is one element of a PGP key's emails array: [email, verified].
type PGPEmail struct {
	Email    string
	Verified int
}

func (e *PGPEmail) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "pgp email: expected 2-element tuple")
	}
	if err := json.Unmarshal(raw[0], &e.Email); err != nil {
		return errors.Wrap(err, "pgp email: email")
	}
	if err := json.Unmarshal(raw[1], &e.Verified); err != nil {
		return errors.Wrap(err, "pgp email: verified")
	}
	return nil
}

// PGPUserKey is one element of github-pgp.json's per-user "keys" array:
// [id, parent_id, key_id, base64_key, emails, uses, ctime, etime, depth].
type PGPUserKey struct {
	ID        int
	ParentID  int
	KeyIDHex  string
	Base64Key string
	Emails    []PGPEmail
	Uses      json.RawMessage
	CTime     json.RawMessage
	ETime     json.RawMessage
	Depth     json.RawMessage
}

func (k *PGPUserKey) UnmarshalJSON(data []byte) error {
	var raw [9]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "pgp key: expected 9-element tuple")
	}
	if err := json.Unmarshal(raw[0], &k.ID); err != nil {
		return errors.Wrap(err, "pgp key: id")
	}
	if err := json.Unmarshal(raw[1], &k.ParentID); err != nil {
		return errors.Wrap(err, "pgp key: parent_id")
	}
	if err := json.Unmarshal(raw[2], &k.KeyIDHex); err != nil {
		return errors.Wrap(err, "pgp key: key_id")
	}
	if err := json.Unmarshal(raw[3], &k.Base64Key); err != nil {
		return errors.Wrap(err, "pgp key: base64_key")
	}
	if err := json.Unmarshal(raw[4], &k.Emails); err != nil {
		return errors.Wrap(err, "pgp key: emails")
	}
	k.Uses, k.CTime, k.ETime, k.Depth = raw[5], raw[6], raw[7], raw[8]
	return nil
}

// IsVerified reports whether at least one email on the key is flagged
// verified==1, spec section 4.2's code-host PGP email verification rule.
func (k *PGPUserKey) IsVerified() bool {
	for _, e := range k.Emails {
		if e.Verified == 1 {
			return true
		}
	}
	return false
}

// IsSubkey reports whether this key declares a non-primary parent, spec
// section 4.2's PGP subkey policy (only primary keys, parent_id == -1,
// are accepted).
func (k *PGPUserKey) IsSubkey() bool {
	return k.ParentID != -1
}

// PGPUser is one element of github-pgp.json: [id, name, keys].
type PGPUser struct {
	ID   int
	Name string
	Keys []PGPUserKey
}

func (u *PGPUser) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "pgp user: expected 3-element tuple")
	}
	if err := json.Unmarshal(raw[0], &u.ID); err != nil {
		return errors.Wrap(err, "pgp user: id")
	}
	if err := json.Unmarshal(raw[1], &u.Name); err != nil {
		return errors.Wrap(err, "pgp user: name")
	}
	if err := json.Unmarshal(raw[2], &u.Keys); err != nil {
		return errors.Wrap(err, "pgp user: keys")
	}
	return nil
}
