/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keymanager manages the signing keys of a wallet namespace.
//
// Key records are kept in the secure item store file "<namespace>.key". Keys live in one of four tiers:
//   - WALLET_NONE: the private key is stored in the wallet file as is.
//   - WALLET_PIN: the private key is stored in the wallet file, wrapped under a key derived from a PIN.
//   - KEYSTORE_NONE: the private key never leaves the keystore.
//   - KEYSTORE_BIOMETRY: as KEYSTORE_NONE, and every use is gated by biometric authentication.
//
// Signatures are 65 byte compact secp256r1 signatures whatever the tier.
package keymanager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/codec"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/crypto/secp256r1"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/cryptoutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/secretlock/pinwrap"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/securestore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

const (
	// StoreExt is the extension of the key wallet file.
	StoreExt = "key"
	// DefaultKeyAliasPrefix prefixes the keystore aliases of keystore-resident keys.
	DefaultKeyAliasPrefix = "didwallet.key/"
)

var logger = log.New("didwallet/keymanager")

type options struct {
	session          *SessionState
	encrypted        bool
	keyAliasPrefix   string
	storeAliasPrefix string
}

// Opt configures a Manager.
type Opt func(opts *options)

// WithSession requires session to be unlocked before wallet-resident keys are used for signing.
func WithSession(session *SessionState) Opt {
	return func(opts *options) {
		opts.session = session
	}
}

// WithStoreEncryption encrypts the private parts of key records in the wallet file.
func WithStoreEncryption() Opt {
	return func(opts *options) {
		opts.encrypted = true
	}
}

// WithKeyAliasPrefix sets the prefix of the keystore aliases of keystore-resident keys.
func WithKeyAliasPrefix(prefix string) Opt {
	return func(opts *options) {
		opts.keyAliasPrefix = prefix
	}
}

// WithStoreAliasPrefix sets the prefix of the keystore aliases owned by the key wallet file.
func WithStoreAliasPrefix(prefix string) Opt {
	return func(opts *options) {
		opts.storeAliasPrefix = prefix
	}
}

// Manager is the key lifecycle manager of one wallet namespace. Mutating calls must be serialized by the
// caller.
type Manager struct {
	namespace   string
	store       *securestore.Store[KeyInfo, keyItem]
	keystore    keystore.Keystore
	session     *SessionState
	aliasPrefix string
}

// New returns the key manager of namespace.
func New(backend storage.Backend, ks keystore.Keystore, namespace string, opts ...Opt) (*Manager, error) {
	if strings.Contains(namespace, "/") {
		return nil, walleterr.Invalid("namespace", "namespace must not contain '/'")
	}

	o := &options{keyAliasPrefix: DefaultKeyAliasPrefix, storeAliasPrefix: securestore.DefaultAliasPrefix}

	for _, opt := range opts {
		opt(o)
	}

	storeOpts := []securestore.Opt{securestore.WithAliasPrefix(o.storeAliasPrefix)}
	if o.encrypted {
		storeOpts = append(storeOpts, securestore.WithEncryption())
	}

	store, err := securestore.New[KeyInfo, keyItem](backend, ks, namespace, StoreExt, storeOpts...)
	if err != nil {
		return nil, err
	}

	return &Manager{
		namespace:   namespace,
		store:       store,
		keystore:    ks,
		session:     o.session,
		aliasPrefix: o.keyAliasPrefix + namespace + "/",
	}, nil
}

// Namespace returns the wallet namespace of the manager.
func (m *Manager) Namespace() string {
	return m.namespace
}

// Session returns the session state of the manager, or nil.
func (m *Manager) Session() *SessionState {
	return m.session
}

// GenerateKey generates and stores a key. It fails with DuplicateKeyId when the id is taken.
func (m *Manager) GenerateKey(req *GenerateKeyRequest) (*KeyInfo, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	saved, err := m.IsKeySaved(req.ID)
	if err != nil {
		return nil, err
	}

	if saved {
		return nil, walleterr.ErrDuplicateKeyID.With("id", nil)
	}

	var (
		info *KeyInfo
		item *keyItem
	)

	if req.AccessMethod.IsKeystore() {
		info, item, err = m.generateKeystoreKey(req)
	} else {
		info, item, err = generateWalletKey(req)
	}

	if err != nil {
		return nil, err
	}

	if err = m.store.AddItem(*info, *item, false); err != nil {
		m.rollbackAlias(item.Alias)

		if walleterr.IsKind(err, walleterr.DuplicatedParameter) {
			return nil, walleterr.ErrDuplicateKeyID.With("id", err)
		}

		return nil, err
	}

	logger.Debugf("generated key %s (%s) in %s", info.ID, info.AccessMethod, m.namespace)

	return info, nil
}

func generateWalletKey(req *GenerateKeyRequest) (*KeyInfo, *keyItem, error) {
	d, pub, err := secp256r1.GenerateKey()
	if err != nil {
		return nil, nil, err
	}

	defer cryptoutil.Zero(d)

	item := &keyItem{}

	if req.AccessMethod == WalletPIN {
		ct, salt, e := pinwrap.Wrap(req.PIN, d)
		if e != nil {
			return nil, nil, e
		}

		item.PrivateKey = codec.EncodeDefault(ct)
		item.Salt = codec.EncodeDefault(salt)
	} else {
		item.PrivateKey = codec.EncodeDefault(d)
	}

	return newKeyInfo(req, pub), item, nil
}

func (m *Manager) generateKeystoreKey(req *GenerateKeyRequest) (*KeyInfo, *keyItem, error) {
	alias := m.alias(req.ID)

	// a key left behind by an interrupted generation or deletion is not reachable through the wallet.
	has, err := m.keystore.HasKey(alias)
	if err != nil {
		return nil, nil, walleterr.Keystore(alias, err)
	}

	if has {
		logger.Warnf("deleting orphaned keystore key %s", alias)

		if err = m.keystore.Delete(alias); err != nil {
			return nil, nil, walleterr.Keystore(alias, err)
		}
	}

	var opts []keystore.KeyOpt
	if req.AccessMethod == KeystoreBiometry {
		opts = append(opts, keystore.WithUserAuthentication(req.Prompt))
	}

	pub, err := m.keystore.GenerateAsymmetricKey(alias, opts...)
	if err != nil {
		return nil, nil, walleterr.Keystore(alias, err)
	}

	if _, err = secp256r1.ParsePublicKey(pub); err != nil {
		m.rollbackAlias(alias)

		return nil, nil, walleterr.Keystore(alias, err)
	}

	return newKeyInfo(req, pub), &keyItem{Alias: alias}, nil
}

func newKeyInfo(req *GenerateKeyRequest, pub []byte) *KeyInfo {
	return &KeyInfo{
		ID:           req.ID,
		Algorithm:    req.Algorithm,
		AuthType:     req.AccessMethod.AuthType(),
		AccessMethod: req.AccessMethod,
		PublicKey:    codec.EncodeDefault(pub),
	}
}

func (m *Manager) rollbackAlias(alias string) {
	if alias == "" {
		return
	}

	if err := m.keystore.Delete(alias); err != nil {
		logger.Errorf("failed to delete keystore key %s: %s", alias, err)
	}
}

// Sign signs digest with the key id and returns a compact signature. secret is the PIN of WALLET_PIN keys and is
// ignored otherwise. KEYSTORE_BIOMETRY keys may block on user authentication until ctx is done.
func (m *Manager) Sign(ctx context.Context, id string, secret, digest []byte) ([]byte, error) {
	if id == "" {
		return nil, walleterr.Invalid("id", "id is mandatory")
	}

	if len(digest) == 0 {
		return nil, walleterr.Invalid("digest", "digest is mandatory")
	}

	info, item, err := m.getKey(id)
	if err != nil {
		return nil, err
	}

	if info.Algorithm != SECP256R1 {
		return nil, walleterr.ErrUnsupportedAlgorithm.With("algorithm", fmt.Errorf("%q", info.Algorithm))
	}

	if info.AccessMethod.IsKeystore() {
		return m.signWithKeystore(ctx, info, item, digest)
	}

	if m.session != nil && !m.session.touch() {
		return nil, walleterr.ErrWalletLocked.With("id", nil)
	}

	d, err := unwrapPrivateKey(info, item, secret)
	if err != nil {
		return nil, err
	}

	defer cryptoutil.Zero(d)

	return secp256r1.Sign(d, digest)
}

func (m *Manager) signWithKeystore(ctx context.Context, info *KeyInfo, item *keyItem, digest []byte) ([]byte, error) {
	pub, err := info.PublicKeyBytes()
	if err != nil {
		return nil, err
	}

	der, err := m.keystore.Sign(ctx, item.Alias, digest)
	if err != nil {
		return nil, walleterr.Keystore(item.Alias, err)
	}

	sig, err := secp256r1.CompactFromDER(der, digest, pub)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.CryptoError, walleterr.CodeSign, "signature", err)
	}

	return sig, nil
}

// unwrapPrivateKey returns the private key of a wallet key. The caller zeroes it.
func unwrapPrivateKey(info *KeyInfo, item *keyItem, secret []byte) ([]byte, error) {
	raw, err := codec.Decode("privateKey", item.PrivateKey)
	if err != nil {
		return nil, err
	}

	switch info.AccessMethod {
	case WalletNone:
		return raw, nil
	case WalletPIN:
	default:
		cryptoutil.Zero(raw)

		return nil, walleterr.Invalid("accessMethod", fmt.Sprintf("%s is not a wallet access method", info.AccessMethod))
	}

	defer cryptoutil.Zero(raw)

	if len(secret) == 0 {
		return nil, walleterr.Invalid("pin", "pin is mandatory")
	}

	salt, err := codec.Decode("salt", item.Salt)
	if err != nil {
		return nil, err
	}

	pub, err := info.PublicKeyBytes()
	if err != nil {
		return nil, err
	}

	d, err := pinwrap.Unwrap(secret, salt, raw)
	if err != nil {
		return nil, walleterr.ErrKeyMismatch.With("pin", err)
	}

	if err = secp256r1.CheckKeyPairMatch(d, pub); err != nil {
		cryptoutil.Zero(d)

		return nil, err
	}

	return d, nil
}

// Verify checks a compact signature of digest against a compressed public key.
func (m *Manager) Verify(alg Algorithm, publicKey, digest, signature []byte) (bool, error) {
	return Verify(alg, publicKey, digest, signature)
}

// Verify checks a compact signature of digest against a compressed public key.
func Verify(alg Algorithm, publicKey, digest, signature []byte) (bool, error) {
	if alg != SECP256R1 {
		return false, walleterr.ErrUnsupportedAlgorithm.With("algorithm", fmt.Errorf("%q", alg))
	}

	if len(publicKey) != secp256r1.CompressedPublicKeySize {
		return false, walleterr.Invalid("publicKey",
			fmt.Sprintf("public key must be %d bytes", secp256r1.CompressedPublicKeySize))
	}

	if len(digest) == 0 {
		return false, walleterr.Invalid("digest", "digest is mandatory")
	}

	if len(signature) != secp256r1.CompactSignatureSize {
		return false, walleterr.Invalid("signature",
			fmt.Sprintf("signature must be %d bytes", secp256r1.CompactSignatureSize))
	}

	return secp256r1.Verify(publicKey, digest, signature)
}

// ChangePIN re-wraps the private key of a WALLET_PIN key under newPIN with a fresh salt.
func (m *Manager) ChangePIN(id string, oldPIN, newPIN []byte) error {
	if id == "" {
		return walleterr.Invalid("id", "id is mandatory")
	}

	if len(oldPIN) == 0 {
		return walleterr.Invalid("oldPin", "pin is mandatory")
	}

	if len(newPIN) == 0 {
		return walleterr.Invalid("newPin", "pin is mandatory")
	}

	info, item, err := m.getKey(id)
	if err != nil {
		return err
	}

	if info.AuthType != AuthPIN || info.AccessMethod != WalletPIN {
		return walleterr.ErrNotPinKey.With("id", nil)
	}

	if string(oldPIN) == string(newPIN) {
		return walleterr.ErrNewPinEqualsOldPin.With("newPin", nil)
	}

	d, err := unwrapPrivateKey(info, item, oldPIN)
	if err != nil {
		return err
	}

	defer cryptoutil.Zero(d)

	ct, salt, err := pinwrap.Wrap(newPIN, d)
	if err != nil {
		return err
	}

	updated := keyItem{PrivateKey: codec.EncodeDefault(ct), Salt: codec.EncodeDefault(salt)}

	if err = m.store.UpdateItem(*info, updated); err != nil {
		return err
	}

	logger.Infof("changed pin of key %s in %s", id, m.namespace)

	return nil
}

// Unlock unlocks the session after checking passcode against the WALLET_PIN key lockKeyID.
func (m *Manager) Unlock(lockKeyID string, passcode []byte) (string, error) {
	if m.session == nil {
		return "", walleterr.Invalid("session", "manager has no session")
	}

	info, item, err := m.getKey(lockKeyID)
	if err != nil {
		return "", err
	}

	if info.AccessMethod != WalletPIN {
		return "", walleterr.ErrNotPinKey.With("id", nil)
	}

	d, err := unwrapPrivateKey(info, item, passcode)
	if err != nil {
		return "", err
	}

	cryptoutil.Zero(d)

	return m.session.unlock()
}

// Lock locks the session. It reports whether the session was unlocked.
func (m *Manager) Lock() bool {
	if m.session == nil {
		return false
	}

	return m.session.Lock()
}

// GetKeyInfos returns the keys with the given ids, in the order of ids.
func (m *Manager) GetKeyInfos(ids []string) ([]KeyInfo, error) {
	infos, err := m.store.GetMetas(ids)
	if err != nil {
		return nil, keyLookupError(err)
	}

	return infos, nil
}

// GetKeyInfosByAuthType returns the keys whose auth type is part of mask. A zero mask returns every key.
//
// Every auth type of a non-zero mask must be covered: it fails with NoKeyForType when no key matches and with
// InsufficientResult when only part of the mask is covered.
func (m *Manager) GetKeyInfosByAuthType(mask AuthType) ([]KeyInfo, error) {
	if mask < 0 || mask&^AuthAll != 0 {
		return nil, walleterr.Invalid("authType", fmt.Sprintf("auth type mask %d out of range", int(mask)))
	}

	all, err := m.store.GetAllMetas()
	if err != nil && !errors.Is(err, walleterr.ErrNoItemsSaved) {
		return nil, err
	}

	if mask == 0 {
		return all, nil
	}

	remainder := mask

	var res []KeyInfo

	for _, info := range all {
		if info.AuthType&mask == 0 {
			continue
		}

		res = append(res, info)
		remainder &^= info.AuthType
	}

	if remainder == mask {
		return nil, walleterr.ErrNoKeyForType.With("authType", nil)
	}

	if remainder != 0 {
		return nil, walleterr.ErrInsufficientResult.With("authType", fmt.Errorf("no key for auth type mask %d",
			int(remainder)))
	}

	return res, nil
}

// DeleteKeys deletes the keys with the given ids, together with their keystore keys.
func (m *Manager) DeleteKeys(ids []string) error {
	infos, items, err := m.store.GetEntries(ids)
	if err != nil {
		return keyLookupError(err)
	}

	if err = m.store.RemoveItems(ids); err != nil {
		return err
	}

	var aliases []string

	for i := range infos {
		if infos[i].AccessMethod.IsKeystore() {
			aliases = append(aliases, items[i].Alias)
		}
	}

	if err = m.deleteAliases(aliases); err != nil {
		return err
	}

	logger.Debugf("deleted keys %v from %s", ids, m.namespace)

	return nil
}

// deleteAliases deletes every alias, carrying on past failures. The returned error names the first alias that
// could not be deleted and joins every failure.
func (m *Manager) deleteAliases(aliases []string) error {
	var (
		first string
		errs  []error
	)

	for _, alias := range aliases {
		if err := m.keystore.Delete(alias); err != nil {
			logger.Errorf("delete keystore key %s: %s", alias, err)

			if len(errs) == 0 {
				first = alias
			}

			errs = append(errs, fmt.Errorf("%s: %w", alias, err))
		}
	}

	if len(errs) > 0 {
		return walleterr.Keystore(first, errors.Join(errs...))
	}

	return nil
}

// DeleteAllKeys deletes the key wallet file and every keystore key of the namespace. It works on a tampered
// wallet file.
func (m *Manager) DeleteAllKeys() error {
	if err := m.store.RemoveAllItems(); err != nil {
		return err
	}

	aliases, err := m.keystore.ListAliases(m.aliasPrefix)
	if err != nil {
		return walleterr.Keystore(m.aliasPrefix, err)
	}

	if err = m.deleteAliases(aliases); err != nil {
		return err
	}

	logger.Infof("deleted all keys of %s", m.namespace)

	return nil
}

// IsKeySaved reports whether a key called id exists.
func (m *Manager) IsKeySaved(id string) (bool, error) {
	if id == "" {
		return false, walleterr.Invalid("id", "id is mandatory")
	}

	_, err := m.store.GetMetas([]string{id})

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, walleterr.ErrItemNotFound), errors.Is(err, walleterr.ErrNoItemsSaved):
		return false, nil
	default:
		return false, err
	}
}

// IsAnyKeySaved reports whether the namespace holds at least one key.
func (m *Manager) IsAnyKeySaved() (bool, error) {
	infos, err := m.store.GetAllMetas()
	if errors.Is(err, walleterr.ErrNoItemsSaved) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return len(infos) > 0, nil
}

func (m *Manager) getKey(id string) (*KeyInfo, *keyItem, error) {
	if id == "" {
		return nil, nil, walleterr.Invalid("id", "id is mandatory")
	}

	infos, items, err := m.store.GetEntries([]string{id})
	if err != nil {
		return nil, nil, keyLookupError(err)
	}

	return &infos[0], &items[0], nil
}

func (m *Manager) alias(id string) string {
	return m.aliasPrefix + id
}

func keyLookupError(err error) error {
	if errors.Is(err, walleterr.ErrItemNotFound) || errors.Is(err, walleterr.ErrNoItemsSaved) {
		return walleterr.ErrKeyNotFound.With("id", err)
	}

	return err
}
