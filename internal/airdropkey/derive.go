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
	"golang.org/x/crypto/blake2b"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/merkle"
)

// postNonceKeyHash is the simplified post-nonce-application key snapshot
// this package hands back from Generate; see the package doc comment for
// why this is a stand-in rather than the real redemption-protocol math.
type postNonceKeyHash merkle.Hash

func (p postNonceKeyHash) Hash() merkle.Hash { return merkle.Hash(p) }

var postNonceDomain = []byte("hs-airdrop/post-nonce-key/v1")

// postNonceHash derives the post-nonce key's hash from the original key's
// canonical encoding and the generated nonce, domain-separated so it can
// never collide with a plain Key.Hash() value.
func postNonceHash(canonical []byte, n Nonce) PostNonceKey {
	buf := make([]byte, 0, len(postNonceDomain)+len(canonical)+len(n))
	buf = append(buf, postNonceDomain...)
	buf = append(buf, canonical...)
	buf = append(buf, n[:]...)
	return postNonceKeyHash(blake2b.Sum256(buf))
}
