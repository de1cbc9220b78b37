/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package securestore persists typed (meta, item) records in a single signed, optionally encrypted wallet file.
//
// The file is rewritten as a whole on every mutation. Its data field is signed with a store-owned keystore key,
// and the signature is verified before anything from the file is returned, so any modification of the stored
// records (reordering, duplication, deletion or a single flipped byte) is reported as TamperDetected.
// Metadata is stored in plaintext; item payloads are individually encrypted with a store-owned keystore key
// when the store is encrypted.
//
// A Store does not coordinate with other processes. Callers must not share a wallet file between Store values.
package securestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/codec"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/crypto/secp256r1"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/cryptoutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

// DefaultAliasPrefix prefixes the keystore aliases of the store-owned keys.
const DefaultAliasPrefix = "didwallet.store."

const (
	sigAliasSuffix = ".sig"
	encAliasSuffix = ".enc"
)

var logger = log.New("didwallet/securestore")

// Meta is the plaintext metadata of a record. GetID must be unique within a store.
type Meta interface {
	GetID() string
}

// walletFile is the persisted form. Fields are declared in lexicographic order of their JSON names.
type walletFile struct {
	Data        string `json:"data"`
	IsEncrypted bool   `json:"isEncrypted"`
	Signature   string `json:"signature"`
}

// storableItem is one record of the data array. Fields are declared in lexicographic order of their JSON names.
type storableItem struct {
	Item string          `json:"item"`
	Meta json.RawMessage `json:"meta"`
}

type options struct {
	encrypted   bool
	aliasPrefix string
}

// Opt configures a Store.
type Opt func(opts *options)

// WithEncryption encrypts item payloads.
func WithEncryption() Opt {
	return func(opts *options) {
		opts.encrypted = true
	}
}

// WithAliasPrefix sets the prefix of the keystore aliases owned by the store.
func WithAliasPrefix(prefix string) Opt {
	return func(opts *options) {
		opts.aliasPrefix = prefix
	}
}

// Store is the secure item store of one wallet file.
type Store[M Meta, T any] struct {
	backend   storage.Backend
	keystore  keystore.Keystore
	name      string
	sigAlias  string
	encAlias  string
	encrypted bool
	mu        sync.RWMutex
}

// New returns the store of the wallet file "<namespace>.<ext>".
func New[M Meta, T any](backend storage.Backend, ks keystore.Keystore, namespace, ext string,
	opts ...Opt) (*Store[M, T], error) {
	if backend == nil {
		return nil, walleterr.Invalid("backend", "backend is mandatory")
	}

	if ks == nil {
		return nil, walleterr.Invalid("keystore", "keystore is mandatory")
	}

	if namespace == "" {
		return nil, walleterr.Invalid("namespace", "namespace is mandatory")
	}

	if ext == "" {
		return nil, walleterr.Invalid("ext", "extension is mandatory")
	}

	o := &options{aliasPrefix: DefaultAliasPrefix}

	for _, opt := range opts {
		opt(o)
	}

	name := namespace + "." + ext

	return &Store[M, T]{
		backend:   backend,
		keystore:  ks,
		name:      name,
		sigAlias:  o.aliasPrefix + name + sigAliasSuffix,
		encAlias:  o.aliasPrefix + name + encAliasSuffix,
		encrypted: o.encrypted,
	}, nil
}

// Name returns the name of the wallet file.
func (s *Store[M, T]) Name() string {
	return s.name
}

// IsSaved reports whether the wallet file exists. The file is not read.
func (s *Store[M, T]) IsSaved() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.backend.Exists(s.name)
}

// AddItem appends (or prepends when asFirst is set) a record. It fails with DuplicatedParameter when a record
// with the same id exists.
func (s *Store[M, T]) AddItem(meta M, item T, asFirst bool) error {
	rec, err := s.encode(meta, item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, _, err := s.loadOptional()
	if err != nil {
		return err
	}

	for _, r := range records {
		if r.id == rec.id {
			return walleterr.New(walleterr.DuplicatedParameter, walleterr.CodeDuplicatedParameter, "meta.id")
		}
	}

	if asFirst {
		records = append([]*record{rec}, records...)
	} else {
		records = append(records, rec)
	}

	if err = s.save(records); err != nil {
		return err
	}

	logger.Debugf("added item %s to %s", rec.id, s.name)

	return nil
}

// UpdateItem replaces the record with the id of meta, keeping its position. It fails with NoItemToUpdate when
// no such record exists.
func (s *Store[M, T]) UpdateItem(meta M, item T) error {
	rec, err := s.encode(meta, item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, _, err := s.loadOptional()
	if err != nil {
		return err
	}

	idx := indexOf(records, rec.id)
	if idx < 0 {
		return walleterr.ErrNoItemToUpdate.With("meta.id", nil)
	}

	records[idx] = rec

	if err = s.save(records); err != nil {
		return err
	}

	logger.Debugf("updated item %s in %s", rec.id, s.name)

	return nil
}

// RemoveItems removes the records with the given ids. It fails with NoItemsToRemove, without removing anything,
// when any id is unknown.
func (s *Store[M, T]) RemoveItems(ids []string) error {
	if err := validateIDs(ids); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	remove := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if indexOf(records, id) < 0 {
			return walleterr.ErrNoItemsToRemove.With("ids", fmt.Errorf("unknown id %s", id))
		}

		remove[id] = struct{}{}
	}

	kept := records[:0]

	for _, r := range records {
		if _, ok := remove[r.id]; !ok {
			kept = append(kept, r)
		}
	}

	if err = s.save(kept); err != nil {
		return err
	}

	logger.Debugf("removed %d items from %s", len(ids), s.name)

	return nil
}

// RemoveAllItems deletes the wallet file together with the keystore keys owned by the store.
func (s *Store[M, T]) RemoveAllItems() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(s.name); err != nil {
		return err
	}

	for _, alias := range []string{s.sigAlias, s.encAlias} {
		if err := s.keystore.Delete(alias); err != nil {
			return walleterr.Keystore(alias, err)
		}
	}

	logger.Debugf("removed wallet file %s", s.name)

	return nil
}

// GetItems returns the payloads of the records with the given ids, in the order of ids.
func (s *Store[M, T]) GetItems(ids []string) ([]T, error) {
	records, err := s.selectRecords(ids)
	if err != nil {
		return nil, err
	}

	return s.decodeItems(records)
}

// GetAllItems returns the payloads of all records in file order.
func (s *Store[M, T]) GetAllItems() ([]T, error) {
	records, err := s.read()
	if err != nil {
		return nil, err
	}

	return s.decodeItems(records)
}

// GetMetas returns the metadata of the records with the given ids, in the order of ids. Payloads are not
// decrypted.
func (s *Store[M, T]) GetMetas(ids []string) ([]M, error) {
	records, err := s.selectRecords(ids)
	if err != nil {
		return nil, err
	}

	return decodeMetas[M](records)
}

// GetAllMetas returns the metadata of all records in file order. Payloads are not decrypted.
func (s *Store[M, T]) GetAllMetas() ([]M, error) {
	records, err := s.read()
	if err != nil {
		return nil, err
	}

	return decodeMetas[M](records)
}

// GetEntries returns the metadata and the payloads of the records with the given ids, in the order of ids.
func (s *Store[M, T]) GetEntries(ids []string) ([]M, []T, error) {
	records, err := s.selectRecords(ids)
	if err != nil {
		return nil, nil, err
	}

	metas, err := decodeMetas[M](records)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.decodeItems(records)
	if err != nil {
		return nil, nil, err
	}

	return metas, items, nil
}

type record struct {
	id   string
	meta json.RawMessage
	item string
}

func (s *Store[M, T]) selectRecords(ids []string) ([]*record, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	records, err := s.read()
	if err != nil {
		return nil, err
	}

	selected := make([]*record, 0, len(ids))

	for _, id := range ids {
		idx := indexOf(records, id)
		if idx < 0 {
			return nil, walleterr.ErrItemNotFound.With("ids", fmt.Errorf("unknown id %s", id))
		}

		selected = append(selected, records[idx])
	}

	return selected, nil
}

func (s *Store[M, T]) read() ([]*record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load()
}

// load reads and verifies the wallet file. It fails with NoItemsSaved when there is none.
func (s *Store[M, T]) load() ([]*record, error) {
	records, found, err := s.loadOptional()
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, walleterr.ErrNoItemsSaved.With(s.name, nil)
	}

	return records, nil
}

func (s *Store[M, T]) loadOptional() ([]*record, bool, error) {
	raw, err := s.backend.Read(s.name)
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	// the store only writes well-formed files: one that does not parse has been altered.
	file := &walletFile{}
	if err = json.Unmarshal(raw, file); err != nil {
		logger.Errorf("wallet file %s is not well-formed: %s", s.name, err)

		return nil, false, walleterr.ErrMalformedWalletSignature.With(s.name, err)
	}

	if err = s.verify(file); err != nil {
		logger.Errorf("wallet file %s failed signature verification: %s", s.name, err)

		return nil, false, err
	}

	if file.IsEncrypted != s.encrypted {
		return nil, false, walleterr.Decode("isEncrypted",
			fmt.Errorf("wallet file encryption is %t, store encryption is %t", file.IsEncrypted, s.encrypted))
	}

	var items []storableItem
	if err = json.Unmarshal([]byte(file.Data), &items); err != nil {
		return nil, false, walleterr.ErrMalformedWalletSignature.With("data", err)
	}

	records := make([]*record, 0, len(items))

	for i := range items {
		id, e := metaID[M](items[i].Meta)
		if e != nil {
			return nil, false, e
		}

		records = append(records, &record{id: id, meta: items[i].Meta, item: items[i].Item})
	}

	return records, true, nil
}

func (s *Store[M, T]) verify(file *walletFile) error {
	sig, err := codec.Decode("signature", file.Signature)
	if err != nil {
		return walleterr.ErrMalformedWalletSignature.With("signature", err)
	}

	pub, err := s.keystore.GetPublicKey(s.sigAlias)
	if err != nil {
		return walleterr.Keystore(s.sigAlias, err)
	}

	digest, err := codec.SHA256Digest([]byte(file.Data))
	if err != nil {
		return walleterr.ErrMalformedWalletSignature.With("data", err)
	}

	ok, err := secp256r1.Verify(pub, digest, sig)
	if err != nil {
		return walleterr.ErrMalformedWalletSignature.With("signature", err)
	}

	if !ok {
		return walleterr.ErrMalformedWalletSignature.With("signature", errors.New("signature does not match data"))
	}

	return nil
}

func (s *Store[M, T]) save(records []*record) error {
	items := make([]storableItem, len(records))

	for i, r := range records {
		items[i] = storableItem{Item: r.item, Meta: r.meta}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return walleterr.Decode("data", err)
	}

	sig, err := s.sign(data)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(&walletFile{
		Data:        string(data),
		IsEncrypted: s.encrypted,
		Signature:   codec.EncodeDefault(sig),
	})
	if err != nil {
		return walleterr.Decode(s.name, err)
	}

	return s.backend.Write(s.name, raw)
}

func (s *Store[M, T]) sign(data []byte) ([]byte, error) {
	pub, err := s.ensureSigningKey()
	if err != nil {
		return nil, err
	}

	digest, err := codec.SHA256Digest(data)
	if err != nil {
		return nil, err
	}

	// the store key is never created with user authentication.
	der, err := s.keystore.Sign(context.Background(), s.sigAlias, digest)
	if err != nil {
		return nil, walleterr.Keystore(s.sigAlias, err)
	}

	return secp256r1.CompactFromDER(der, digest, pub)
}

func (s *Store[M, T]) ensureSigningKey() ([]byte, error) {
	has, err := s.keystore.HasKey(s.sigAlias)
	if err != nil {
		return nil, walleterr.Keystore(s.sigAlias, err)
	}

	if has {
		pub, e := s.keystore.GetPublicKey(s.sigAlias)
		if e != nil {
			return nil, walleterr.Keystore(s.sigAlias, e)
		}

		return pub, nil
	}

	pub, err := s.keystore.GenerateAsymmetricKey(s.sigAlias)
	if err != nil {
		return nil, walleterr.Keystore(s.sigAlias, err)
	}

	logger.Debugf("created signing key %s", s.sigAlias)

	return pub, nil
}

func (s *Store[M, T]) ensureEncryptionKey() error {
	has, err := s.keystore.HasKey(s.encAlias)
	if err != nil {
		return walleterr.Keystore(s.encAlias, err)
	}

	if has {
		return nil
	}

	if err = s.keystore.GenerateSymmetricKey(s.encAlias); err != nil {
		return walleterr.Keystore(s.encAlias, err)
	}

	logger.Debugf("created encryption key %s", s.encAlias)

	return nil
}

func (s *Store[M, T]) encode(meta M, item T) (*record, error) {
	id := meta.GetID()
	if id == "" {
		return nil, walleterr.Invalid("meta.id", "id is mandatory")
	}

	metaJSON, err := canonicalJSON(meta)
	if err != nil {
		return nil, walleterr.Decode("meta", err)
	}

	payload, err := canonicalJSON(item)
	if err != nil {
		return nil, walleterr.Decode("item", err)
	}

	if isEmptyJSON(payload) {
		return nil, walleterr.Invalid("item", "item serializes to an empty value")
	}

	if s.encrypted {
		if err = s.ensureEncryptionKey(); err != nil {
			return nil, err
		}

		payload, err = s.keystore.EncryptSymmetric(s.encAlias, payload)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.CryptoError, walleterr.CodeEncrypt, "item", err)
		}
	}

	return &record{id: id, meta: metaJSON, item: codec.EncodeDefault(payload)}, nil
}

func (s *Store[M, T]) decodeItems(records []*record) ([]T, error) {
	items := make([]T, 0, len(records))

	for _, r := range records {
		payload, err := codec.Decode("item", r.item)
		if err != nil {
			return nil, err
		}

		if s.encrypted {
			payload, err = s.keystore.DecryptSymmetric(context.Background(), s.encAlias, payload)
			if err != nil {
				return nil, walleterr.Wrap(walleterr.CryptoError, walleterr.CodeDecrypt, "item", err)
			}
		}

		var item T

		err = json.Unmarshal(payload, &item)
		cryptoutil.Zero(payload)

		if err != nil {
			return nil, walleterr.Decode("item", err)
		}

		items = append(items, item)
	}

	return items, nil
}

func decodeMetas[M Meta](records []*record) ([]M, error) {
	metas := make([]M, 0, len(records))

	for _, r := range records {
		var meta M
		if err := json.Unmarshal(r.meta, &meta); err != nil {
			return nil, walleterr.Decode("meta", err)
		}

		metas = append(metas, meta)
	}

	return metas, nil
}

// canonicalJSON marshals v with object keys in lexicographic order at every level.
func canonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic interface{}
	if err = dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}

func isEmptyJSON(b []byte) bool {
	switch string(b) {
	case "", "null", `""`, "{}", "[]":
		return true
	}

	return false
}

func metaID[M Meta](raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", walleterr.Decode("meta", errors.New("stored item has no metadata"))
	}

	var meta M
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", walleterr.Decode("meta", err)
	}

	id := meta.GetID()
	if id == "" {
		return "", walleterr.Decode("meta.id", errors.New("stored item has no id"))
	}

	return id, nil
}

func indexOf(records []*record, id string) int {
	for i, r := range records {
		if r.id == id {
			return i
		}
	}

	return -1
}

func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return walleterr.Invalid("ids", "ids are mandatory")
	}

	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if id == "" {
			return walleterr.Invalid("ids", "id is empty")
		}

		if _, ok := seen[id]; ok {
			return walleterr.New(walleterr.DuplicatedParameter, walleterr.CodeDuplicatedParameter, "ids")
		}

		seen[id] = struct{}{}
	}

	return nil
}
