/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pbkdf2

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"

	aeadsubtle "github.com/google/tink/go/aead/subtle"
	"golang.org/x/crypto/pbkdf2"

	"github.com/hyperledger/aries-framework-go/spi/secretlock"
)

// package pbkdf2 provides a pbkdf2 implementation of secretlock as a masterlock. It protects the key material the
// softkeystore persists. The underlying golang.org/x/crypto/pbkdf2 package implements IETF RFC 8018's PBKDF2
// specification found at: https://tools.ietf.org/html/rfc8018#section-5.2.

// DefaultIterations is used when NewMasterLock is called with a non positive iteration count.
const DefaultIterations = 4096

type masterLockPBKDF2 struct {
	aead *aeadsubtle.AESGCM
}

// NewMasterLock is responsible for encrypting/decrypting with a master key expanded from a passphrase using PBKDF2
// using `passphrase`, hash function `h`, `iterations` and `salt`. The salt is optional and can be set to nil.
func NewMasterLock(passphrase string, h func() hash.Hash, iterations int, salt []byte) (secretlock.Service, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is empty")
	}

	if h == nil {
		return nil, fmt.Errorf("hash is nil")
	}

	size := h().Size()
	if size > sha256.Size { // AEAD cipher requires at most sha256.Size
		return nil, fmt.Errorf("hash size not supported")
	}

	if iterations <= 0 {
		iterations = DefaultIterations
	}

	// the AEAD keeps masterKey for the lifetime of the lock.
	masterKey := pbkdf2.Key([]byte(passphrase), salt, iterations, sha256.Size, h)

	aead, err := aeadsubtle.NewAESGCM(masterKey)
	if err != nil {
		return nil, err
	}

	return &masterLockPBKDF2{aead: aead}, nil
}

// Encrypt a key in req
//
//	(keyURI is used for remote locks, it is ignored by this implementation)
func (m *masterLockPBKDF2) Encrypt(keyURI string, req *secretlock.EncryptRequest) (*secretlock.EncryptResponse, error) {
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

// Decrypt a key in req
// (keyURI is used for remote locks, it is ignored by this implementation).
func (m *masterLockPBKDF2) Decrypt(keyURI string, req *secretlock.DecryptRequest) (*secretlock.DecryptResponse, error) {
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
