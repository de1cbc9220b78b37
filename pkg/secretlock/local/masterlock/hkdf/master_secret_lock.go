/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package hkdf

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"io"

	aeadsubtle "github.com/google/tink/go/aead/subtle"
	"golang.org/x/crypto/hkdf"

	"github.com/hyperledger/aries-framework-go/spi/secretlock"
)

// package hkdf provides an hkdf implementation of secretlock. Unlike the pbkdf2 lock it expands a high entropy
// master key (read from a key file) rather than a user passphrase, so it runs no key stretching.

// MinMasterKeySize is the minimum size of the master key.
const MinMasterKeySize = 32

// info binds the expanded key to its use.
const info = "didwallet softkeystore"

type masterLockHKDF struct {
	aead *aeadsubtle.AESGCM
}

// NewMasterLock returns a lock encrypting with a key expanded from masterKey using HKDF with hash function `h`
// and `salt`. The salt is optional and can be set to nil.
func NewMasterLock(masterKey []byte, h func() hash.Hash, salt []byte) (secretlock.Service, error) {
	if len(masterKey) < MinMasterKeySize {
		return nil, fmt.Errorf("master key must be at least %d bytes", MinMasterKeySize)
	}

	if h == nil {
		return nil, fmt.Errorf("hash is nil")
	}

	if h().Size() < sha256.Size {
		return nil, fmt.Errorf("hash size not supported")
	}

	expander := hkdf.New(h, masterKey, salt, []byte(info))

	key := make([]byte, sha256.Size)

	if _, err := io.ReadFull(expander, key); err != nil {
		return nil, err
	}

	aead, err := aeadsubtle.NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	return &masterLockHKDF{aead: aead}, nil
}

// Encrypt a secret in req
//
//	(keyURI is used for remote locks, it is ignored by this implementation)
func (m *masterLockHKDF) Encrypt(keyURI string, req *secretlock.EncryptRequest) (*secretlock.EncryptResponse, error) {
	if req == nil {
		return nil, errors.New("invalid request")
	}

	ct, err := m.aead.Encrypt([]byte(req.Plaintext), []byte(req.AdditionalAuthenticatedData))
	if err != nil {
		return nil, err
	}

	return &secretlock.EncryptResponse{
		Ciphertext: base64.URLEncoding.EncodeToString(ct),
	}, nil
}

// Decrypt a secret in req
// (keyURI is used for remote locks, it is ignored by this implementation).
func (m *masterLockHKDF) Decrypt(keyURI string, req *secretlock.DecryptRequest) (*secretlock.DecryptResponse, error) {
	if req == nil {
		return nil, errors.New("invalid request")
	}

	ct, err := base64.URLEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		return nil, err
	}

	pt, err := m.aead.Decrypt(ct, []byte(req.AdditionalAuthenticatedData))
	if err != nil {
		return nil, err
	}

	return &secretlock.DecryptResponse{Plaintext: string(pt)}, nil
}
