/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package storage

import "errors"

// ErrDataNotFound is returned when a wallet file does not exist.
var ErrDataNotFound = errors.New("data not found")

// Backend persists whole wallet files by name. Write replaces the previous contents of name as a unit: readers
// observe either the old or the new contents, never a mix of both.
type Backend interface {
	// Exists reports whether a file called name exists.
	Exists(name string) (bool, error)

	// Read returns the contents of name, or an error wrapping ErrDataNotFound.
	Read(name string) ([]byte, error)

	// Write replaces the contents of name with data.
	Write(name string, data []byte) error

	// Delete removes name. Deleting a missing file is not an error.
	Delete(name string) error
}
