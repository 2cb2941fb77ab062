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

// Package build prepares the output directory tree each run starts from:
// spec section 5's "build directory is removed then re-created" scoped
// acquisition model.
package build

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Dirs holds the absolute paths a run writes to.
type Dirs struct {
	Build  string // <prefix>/build
	Nonces string // <prefix>/build/nonces
	Etc    string // <prefix>/etc
}

// PrepareOutputDirs removes and recreates build/ and build/nonces/ under
// prefix, and ensures etc/ exists. It never touches input files.
func PrepareOutputDirs(prefix string) (Dirs, error) {
	d := Dirs{
		Build:  filepath.Join(prefix, "build"),
		Nonces: filepath.Join(prefix, "build", "nonces"),
		Etc:    filepath.Join(prefix, "etc"),
	}

	if err := os.RemoveAll(d.Build); err != nil {
		return Dirs{}, errors.Wrapf(err, "removing %s", d.Build)
	}
	if err := os.MkdirAll(d.Nonces, 0o755); err != nil {
		return Dirs{}, errors.Wrapf(err, "creating %s", d.Nonces)
	}
	if err := os.MkdirAll(d.Etc, 0o755); err != nil {
		return Dirs{}, errors.Wrapf(err, "creating %s", d.Etc)
	}
	return d, nil
}
