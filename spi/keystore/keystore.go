/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keystore defines the hardware-backed keystore capability consumed by the wallet key manager and the
// secure item store. Implementations live outside of the wallet core (platform keystores, HSMs, or the
// in-process softkeystore used by the daemon and by tests).
package keystore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned (wrapped) when no key exists under the requested alias.
var ErrKeyNotFound = errors.New("keystore: key not found")

// ErrAliasExists is returned (wrapped) when a key is generated under an alias already in use.
var ErrAliasExists = errors.New("keystore: alias already exists")

// AuthOutcome is the result of a biometric authentication prompt.
type AuthOutcome int

const (
	// AuthSuccess means the user was authenticated.
	AuthSuccess AuthOutcome = iota
	// AuthFailure means the user failed authentication (wrong finger, face mismatch...).
	AuthFailure
	// AuthCancel means the user dismissed the prompt.
	AuthCancel
)

// String returns the outcome name.
func (o AuthOutcome) String() string {
	switch o {
	case AuthSuccess:
		return "success"
	case AuthFailure:
		return "failure"
	case AuthCancel:
		return "cancel"
	}

	return "unknown"
}

// BiometricGate prompts the user before a biometric-tier key is used. It may block on user interaction until ctx
// is done; the timeout policy belongs to the caller of the gate.
type BiometricGate interface {
	Authenticate(ctx context.Context, prompt string) (AuthOutcome, error)
}

// KeyOptions holds options for key generation.
type KeyOptions struct {
	// UserAuthenticationRequired gates every use of the key behind the BiometricGate.
	UserAuthenticationRequired bool
	// Prompt is shown by the BiometricGate.
	Prompt string
}

// KeyOpt configures key generation.
type KeyOpt func(opts *KeyOptions)

// WithUserAuthentication requires biometric authentication for every use of the generated key.
func WithUserAuthentication(prompt string) KeyOpt {
	return func(opts *KeyOptions) {
		opts.UserAuthenticationRequired = true
		opts.Prompt = prompt
	}
}

// NewKeyOptions applies opts over the zero options.
func NewKeyOptions(opts ...KeyOpt) *KeyOptions {
	o := &KeyOptions{}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Keystore is the hardware keystore adapter. Private key material created through it never leaves the keystore.
//
// Asymmetric keys are secp256r1. Sign expects a digest (no internal hashing) and returns an ASN.1 DER encoded
// ECDSA signature. Public keys are 33 byte SEC1 compressed points.
// Symmetric ciphertexts carry their own IV/tag framing and are only meaningful to the same keystore.
type Keystore interface {
	// GenerateAsymmetricKey creates a secp256r1 key pair under alias and returns its compressed public key.
	GenerateAsymmetricKey(alias string, opts ...KeyOpt) ([]byte, error)
	// GenerateSymmetricKey creates an AES-256 key under alias.
	GenerateSymmetricKey(alias string, opts ...KeyOpt) error
	// GetPublicKey returns the compressed public key of the asymmetric key stored under alias.
	GetPublicKey(alias string) ([]byte, error)
	// Sign signs digest with the private key under alias. It may block on biometric authentication.
	Sign(ctx context.Context, alias string, digest []byte) ([]byte, error)
	// EncryptSymmetric encrypts plaintext with the symmetric key under alias.
	EncryptSymmetric(alias string, plaintext []byte) ([]byte, error)
	// DecryptSymmetric decrypts ciphertext with the symmetric key under alias. It may block on biometric
	// authentication.
	DecryptSymmetric(ctx context.Context, alias string, ciphertext []byte) ([]byte, error)
	// HasKey reports whether a key exists under alias.
	HasKey(alias string) (bool, error)
	// Delete removes the key under alias. Deleting a missing alias is not an error.
	Delete(alias string) error
	// ListAliases returns all aliases starting with prefix, sorted.
	ListAliases(prefix string) ([]string, error)
}
