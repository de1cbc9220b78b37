/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cryptoutil holds helpers shared by the packages handling raw key material.
package cryptoutil

import (
	"math/big"

	"github.com/awnumar/memguard"
)

// Zero wipes every given buffer. It must be called on every code path (including error paths) once private keys,
// derived symmetric keys or decrypted payloads are no longer needed.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}

		memguard.WipeBytes(b)
	}
}

// ZeroInt wipes the whole backing array of x, spare capacity included, and sets x to 0.
func ZeroInt(x *big.Int) {
	if x == nil {
		return
	}

	w := x.Bits()
	clear(w[:cap(w)])
	x.SetInt64(0)
}

// IsZero reports whether b only holds zero bytes.
func IsZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}

	return true
}
