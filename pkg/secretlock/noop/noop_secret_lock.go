/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package noop

import (
	"errors"

	"github.com/hyperledger/aries-framework-go/spi/secretlock"
)

// NoLock is a secret lock service that does no key wrapping. The softkeystore falls back to it when no
// keystore passphrase is configured, which is only suitable for tests and ephemeral daemons.
type NoLock struct{}

// Encrypt returns the plaintext of req as the ciphertext.
// (keyURI is used for remote locks, it is ignored by this implementation)
func (s *NoLock) Encrypt(keyURI string, req *secretlock.EncryptRequest) (*secretlock.EncryptResponse, error) {
	if req == nil {
		return nil, errors.New("invalid request")
	}

	return &secretlock.EncryptResponse{Ciphertext: req.Plaintext}, nil
}

// Decrypt returns the ciphertext of req as the plaintext.
// (keyURI is used for remote locks, it is ignored by this implementation)
func (s *NoLock) Decrypt(keyURI string, req *secretlock.DecryptRequest) (*secretlock.DecryptResponse, error) {
	if req == nil {
		return nil, errors.New("invalid request")
	}

	return &secretlock.DecryptResponse{Plaintext: req.Ciphertext}, nil
}
