/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keystore

import (
	"context"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/keystore/softkeystore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

// Keystore mocks a hardware keystore. Calls are served by an in-memory softkeystore unless the matching Err field
// is set.
type Keystore struct {
	GenerateAsymmetricKeyErr error
	GenerateSymmetricKeyErr  error
	GetPublicKeyErr          error
	SignErr                  error
	SignValue                []byte
	EncryptErr               error
	DecryptErr               error
	HasKeyErr                error
	DeleteErr                error
	ListAliasesErr           error

	// DeleteErrFn, when set, is consulted per alias after DeleteErr.
	DeleteErrFn func(alias string) error

	// Gate is consulted before user-authenticated keys are used.
	Gate *Gate

	ks *softkeystore.Keystore
}

// NewKeystore returns a mock keystore whose gate reports success.
func NewKeystore() *Keystore {
	gate := &Gate{Outcome: keystore.AuthSuccess}

	ks, err := softkeystore.New(mem.NewProvider(), softkeystore.WithBiometricGate(gate))
	if err != nil {
		panic(err)
	}

	return &Keystore{Gate: gate, ks: ks}
}

// GenerateAsymmetricKey creates a key pair under alias.
func (k *Keystore) GenerateAsymmetricKey(alias string, opts ...keystore.KeyOpt) ([]byte, error) {
	if k.GenerateAsymmetricKeyErr != nil {
		return nil, k.GenerateAsymmetricKeyErr
	}

	return k.ks.GenerateAsymmetricKey(alias, opts...)
}

// GenerateSymmetricKey creates an AES key under alias.
func (k *Keystore) GenerateSymmetricKey(alias string, opts ...keystore.KeyOpt) error {
	if k.GenerateSymmetricKeyErr != nil {
		return k.GenerateSymmetricKeyErr
	}

	return k.ks.GenerateSymmetricKey(alias, opts...)
}

// GetPublicKey returns the public key under alias.
func (k *Keystore) GetPublicKey(alias string) ([]byte, error) {
	if k.GetPublicKeyErr != nil {
		return nil, k.GetPublicKeyErr
	}

	return k.ks.GetPublicKey(alias)
}

// Sign signs digest, or returns SignValue when set.
func (k *Keystore) Sign(ctx context.Context, alias string, digest []byte) ([]byte, error) {
	if k.SignErr != nil {
		return nil, k.SignErr
	}

	if k.SignValue != nil {
		return k.SignValue, nil
	}

	return k.ks.Sign(ctx, alias, digest)
}

// EncryptSymmetric encrypts plaintext.
func (k *Keystore) EncryptSymmetric(alias string, plaintext []byte) ([]byte, error) {
	if k.EncryptErr != nil {
		return nil, k.EncryptErr
	}

	return k.ks.EncryptSymmetric(alias, plaintext)
}

// DecryptSymmetric decrypts ciphertext.
func (k *Keystore) DecryptSymmetric(ctx context.Context, alias string, ciphertext []byte) ([]byte, error) {
	if k.DecryptErr != nil {
		return nil, k.DecryptErr
	}

	return k.ks.DecryptSymmetric(ctx, alias, ciphertext)
}

// HasKey reports whether alias exists.
func (k *Keystore) HasKey(alias string) (bool, error) {
	if k.HasKeyErr != nil {
		return false, k.HasKeyErr
	}

	return k.ks.HasKey(alias)
}

// Delete deletes alias.
func (k *Keystore) Delete(alias string) error {
	if k.DeleteErr != nil {
		return k.DeleteErr
	}

	if k.DeleteErrFn != nil {
		if err := k.DeleteErrFn(alias); err != nil {
			return err
		}
	}

	return k.ks.Delete(alias)
}

// ListAliases lists the aliases with prefix.
func (k *Keystore) ListAliases(prefix string) ([]string, error) {
	if k.ListAliasesErr != nil {
		return nil, k.ListAliasesErr
	}

	return k.ks.ListAliases(prefix)
}

// Gate mocks a biometric prompt.
type Gate struct {
	mu      sync.Mutex
	Outcome keystore.AuthOutcome
	Err     error
	calls   int
}

// Authenticate returns the configured outcome.
func (g *Gate) Authenticate(ctx context.Context, _ string) (keystore.AuthOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++

	if err := ctx.Err(); err != nil {
		return keystore.AuthCancel, err
	}

	return g.Outcome, g.Err
}

// Set changes the outcome of the next prompts.
func (g *Gate) Set(outcome keystore.AuthOutcome) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Outcome = outcome
}

// Calls returns the number of prompts shown.
func (g *Gate) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.calls
}
