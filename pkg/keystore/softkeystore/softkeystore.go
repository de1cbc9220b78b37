/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package softkeystore is an in-process implementation of the hardware keystore adapter. Key material is sealed
// with a secret lock and persisted in an Aries storage provider, so it survives restarts when the provider does.
//
// Keys generated with WithUserAuthentication are only usable after the configured BiometricGate reports success.
package softkeystore

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	aeadsubtle "github.com/google/tink/go/aead/subtle"
	"github.com/google/tink/go/subtle/random"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/secretlock"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/crypto/secp256r1"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/cryptoutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/secretlock/noop"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

// StoreName is the name of the store opened in the storage provider.
const StoreName = "softkeystore"

const (
	aliasTag      = "alias"
	symKeySize    = 32
	kindAsymmetic = "ec-p256"
	kindSymmetric = "aes-256-gcm"
)

var logger = log.New("didwallet/softkeystore")

// ErrAuthentication is returned (wrapped) when the biometric gate does not report success.
var ErrAuthentication = errors.New("softkeystore: user authentication failed")

type keyRecord struct {
	Kind      string `json:"kind"`
	Sealed    string `json:"sealed"`
	PublicKey []byte `json:"publicKey,omitempty"`
	UserAuth  bool   `json:"userAuth,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
}

// Keystore is a software keystore.
type Keystore struct {
	store storage.Store
	lock  secretlock.Service
	gate  keystore.BiometricGate
	mu    sync.RWMutex
}

// Option configures the keystore.
type Option func(ks *Keystore)

// WithSecretLock seals persisted key material with lock. The default is no sealing.
func WithSecretLock(lock secretlock.Service) Option {
	return func(ks *Keystore) {
		ks.lock = lock
	}
}

// WithBiometricGate sets the gate consulted before user-authenticated keys are used. Without a gate such keys
// can never be used.
func WithBiometricGate(gate keystore.BiometricGate) Option {
	return func(ks *Keystore) {
		ks.gate = gate
	}
}

// New opens the keystore in provider.
func New(provider storage.Provider, opts ...Option) (*Keystore, error) {
	store, err := provider.OpenStore(StoreName)
	if err != nil {
		return nil, fmt.Errorf("open keystore store: %w", err)
	}

	if err = provider.SetStoreConfig(StoreName, storage.StoreConfiguration{TagNames: []string{aliasTag}}); err != nil {
		return nil, fmt.Errorf("set keystore store config: %w", err)
	}

	ks := &Keystore{store: store, lock: &noop.NoLock{}}

	for _, opt := range opts {
		opt(ks)
	}

	return ks, nil
}

// GenerateAsymmetricKey creates a secp256r1 key pair under alias and returns its compressed public key.
func (k *Keystore) GenerateAsymmetricKey(alias string, opts ...keystore.KeyOpt) ([]byte, error) {
	d, pub, err := secp256r1.GenerateKey()
	if err != nil {
		return nil, err
	}

	defer cryptoutil.Zero(d)

	if err = k.create(alias, kindAsymmetic, d, pub, keystore.NewKeyOptions(opts...)); err != nil {
		return nil, err
	}

	return pub, nil
}

// GenerateSymmetricKey creates an AES-256 key under alias.
func (k *Keystore) GenerateSymmetricKey(alias string, opts ...keystore.KeyOpt) error {
	key := random.GetRandomBytes(symKeySize)
	defer cryptoutil.Zero(key)

	return k.create(alias, kindSymmetric, key, nil, keystore.NewKeyOptions(opts...))
}

// GetPublicKey returns the compressed public key under alias.
func (k *Keystore) GetPublicKey(alias string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	rec, err := k.get(alias)
	if err != nil {
		return nil, err
	}

	if rec.Kind != kindAsymmetic {
		return nil, fmt.Errorf("key %q is not an asymmetric key", alias)
	}

	return rec.PublicKey, nil
}

// Sign returns the DER encoded ECDSA signature of digest under the key stored at alias.
func (k *Keystore) Sign(ctx context.Context, alias string, digest []byte) ([]byte, error) {
	d, err := k.unseal(ctx, alias, kindAsymmetic)
	if err != nil {
		return nil, err
	}

	defer cryptoutil.Zero(d)

	priv, err := secp256r1.ToPrivateKey(d)
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", alias, err)
	}

	defer cryptoutil.ZeroInt(priv.D)

	return ecdsa.SignASN1(rand.Reader, priv, digest)
}

// EncryptSymmetric encrypts plaintext with AES-256-GCM under the key stored at alias.
func (k *Keystore) EncryptSymmetric(alias string, plaintext []byte) ([]byte, error) {
	key, err := k.unseal(context.Background(), alias, kindSymmetric)
	if err != nil {
		return nil, err
	}

	defer cryptoutil.Zero(key)

	aead, err := aeadsubtle.NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	return aead.Encrypt(plaintext, []byte(alias))
}

// DecryptSymmetric decrypts ciphertext produced by EncryptSymmetric with the same alias.
func (k *Keystore) DecryptSymmetric(ctx context.Context, alias string, ciphertext []byte) ([]byte, error) {
	key, err := k.unseal(ctx, alias, kindSymmetric)
	if err != nil {
		return nil, err
	}

	defer cryptoutil.Zero(key)

	aead, err := aeadsubtle.NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	return aead.Decrypt(ciphertext, []byte(alias))
}

// HasKey reports whether a key exists under alias.
func (k *Keystore) HasKey(alias string) (bool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	_, err := k.store.Get(alias)
	if errors.Is(err, storage.ErrDataNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Delete removes the key under alias.
func (k *Keystore) Delete(alias string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	err := k.store.Delete(alias)
	if err != nil && !errors.Is(err, storage.ErrDataNotFound) {
		return err
	}

	logger.Debugf("deleted key %s", alias)

	return nil
}

// ListAliases returns the sorted aliases starting with prefix.
func (k *Keystore) ListAliases(prefix string) ([]string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	iter, err := k.store.Query(aliasTag)
	if err != nil {
		return nil, err
	}

	defer storage.Close(iter, logger)

	var aliases []string

	more, err := iter.Next()
	for ; err == nil && more; more, err = iter.Next() {
		key, e := iter.Key()
		if e != nil {
			return nil, e
		}

		if strings.HasPrefix(key, prefix) {
			aliases = append(aliases, key)
		}
	}

	if err != nil {
		return nil, err
	}

	sort.Strings(aliases)

	return aliases, nil
}

func (k *Keystore) create(alias, kind string, secret, pub []byte, opts *keystore.KeyOptions) error {
	if alias == "" {
		return errors.New("alias is mandatory")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, err := k.store.Get(alias); err == nil {
		return fmt.Errorf("%w: %s", keystore.ErrAliasExists, alias)
	} else if !errors.Is(err, storage.ErrDataNotFound) {
		return err
	}

	sealed, err := k.lock.Encrypt("", &secretlock.EncryptRequest{
		Plaintext:                   base64.RawURLEncoding.EncodeToString(secret),
		AdditionalAuthenticatedData: alias,
	})
	if err != nil {
		return fmt.Errorf("seal key %q: %w", alias, err)
	}

	raw, err := json.Marshal(&keyRecord{
		Kind:      kind,
		Sealed:    sealed.Ciphertext,
		PublicKey: pub,
		UserAuth:  opts.UserAuthenticationRequired,
		Prompt:    opts.Prompt,
	})
	if err != nil {
		return err
	}

	if err = k.store.Put(alias, raw, storage.Tag{Name: aliasTag}); err != nil {
		return err
	}

	logger.Debugf("created %s key %s (user authentication: %t)", kind, alias, opts.UserAuthenticationRequired)

	return nil
}

func (k *Keystore) get(alias string) (*keyRecord, error) {
	raw, err := k.store.Get(alias)
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, fmt.Errorf("%w: %s", keystore.ErrKeyNotFound, alias)
	}

	if err != nil {
		return nil, err
	}

	rec := &keyRecord{}
	if err = json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode key %q: %w", alias, err)
	}

	return rec, nil
}

func (k *Keystore) unseal(ctx context.Context, alias, kind string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.RLock()
	rec, err := k.get(alias)
	k.mu.RUnlock()

	if err != nil {
		return nil, err
	}

	if rec.Kind != kind {
		return nil, fmt.Errorf("key %q is not a %s key", alias, kind)
	}

	if rec.UserAuth {
		if err = k.authenticate(ctx, alias, rec.Prompt); err != nil {
			return nil, err
		}
	}

	res, err := k.lock.Decrypt("", &secretlock.DecryptRequest{
		Ciphertext:                  rec.Sealed,
		AdditionalAuthenticatedData: alias,
	})
	if err != nil {
		return nil, fmt.Errorf("unseal key %q: %w", alias, err)
	}

	return base64.RawURLEncoding.DecodeString(res.Plaintext)
}

func (k *Keystore) authenticate(ctx context.Context, alias, prompt string) error {
	if k.gate == nil {
		return fmt.Errorf("%w: no biometric gate for key %s", ErrAuthentication, alias)
	}

	outcome, err := k.gate.Authenticate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	if outcome != keystore.AuthSuccess {
		logger.Infof("user authentication for key %s: %s", alias, outcome)

		return fmt.Errorf("%w: %s", ErrAuthentication, outcome)
	}

	return nil
}
