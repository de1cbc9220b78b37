/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/securestore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

// StoreExt is the extension of the DID wallet file.
const StoreExt = "did"

const didPrefix = "did:"

var logger = log.New("didwallet/store/did")

// Record is the metadata of a stored DID document.
type Record struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Controller string `json:"controller,omitempty"`
}

// GetID returns the DID.
func (r Record) GetID() string {
	return r.ID
}

// Store stores DID documents in the "<namespace>.did" wallet file. Documents are kept as opaque JSON.
type Store struct {
	store *securestore.Store[Record, json.RawMessage]
}

// New returns the DID store of namespace.
func New(backend storage.Backend, ks keystore.Keystore, namespace string, opts ...securestore.Opt) (*Store, error) {
	store, err := securestore.New[Record, json.RawMessage](backend, ks, namespace, StoreExt, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open did store: %w", err)
	}

	return &Store{store: store}, nil
}

type docHeader struct {
	ID         string          `json:"id"`
	Controller json.RawMessage `json:"controller,omitempty"`
}

// SaveDID saves a DID document under name. Names are unique within the store.
func (s *Store) SaveDID(name string, doc []byte) error {
	if name == "" {
		return walleterr.Invalid("name", "did name is mandatory")
	}

	rec, err := parseDoc(doc)
	if err != nil {
		return err
	}

	rec.Name = name

	id, err := s.GetDIDByName(name)
	if err != nil && !errors.Is(err, walleterr.ErrItemNotFound) {
		return fmt.Errorf("get did using name : %w", err)
	}

	if id != "" {
		return walleterr.New(walleterr.DuplicatedParameter, walleterr.CodeDuplicatedParameter, "name")
	}

	if err = s.store.AddItem(*rec, json.RawMessage(doc), false); err != nil {
		return err
	}

	logger.Debugf("saved did %s as %s", rec.ID, name)

	return nil
}

// UpdateDID replaces a stored DID document, keeping its name.
func (s *Store) UpdateDID(doc []byte) error {
	rec, err := parseDoc(doc)
	if err != nil {
		return err
	}

	recs, err := s.store.GetMetas([]string{rec.ID})
	if err != nil && !errors.Is(err, walleterr.ErrItemNotFound) && !errors.Is(err, walleterr.ErrNoItemsSaved) {
		return err
	}

	if len(recs) == 1 {
		rec.Name = recs[0].Name
	}

	return s.store.UpdateItem(*rec, json.RawMessage(doc))
}

// GetDID returns the DID document of id.
func (s *Store) GetDID(id string) ([]byte, error) {
	docs, err := s.store.GetItems([]string{id})
	if err != nil {
		return nil, fmt.Errorf("failed to get did doc: %w", err)
	}

	return docs[0], nil
}

// GetDIDByName returns the DID saved under name.
func (s *Store) GetDIDByName(name string) (string, error) {
	recs, err := s.GetDIDRecords()
	if err != nil {
		return "", err
	}

	for _, r := range recs {
		if r.Name == name {
			return r.ID, nil
		}
	}

	return "", walleterr.ErrItemNotFound.With("name", fmt.Errorf("no did named %s", name))
}

// GetDIDRecords returns the metadata of all stored DID documents.
func (s *Store) GetDIDRecords() ([]Record, error) {
	recs, err := s.store.GetAllMetas()
	if errors.Is(err, walleterr.ErrNoItemsSaved) {
		return nil, nil
	}

	return recs, err
}

// DeleteDIDs deletes the DID documents of ids.
func (s *Store) DeleteDIDs(ids ...string) error {
	return s.store.RemoveItems(ids)
}

// DeleteAll deletes the DID wallet file.
func (s *Store) DeleteAll() error {
	return s.store.RemoveAllItems()
}

func parseDoc(doc []byte) (*Record, error) {
	if len(doc) == 0 {
		return nil, walleterr.Invalid("doc", "did document is mandatory")
	}

	h := &docHeader{}
	if err := json.Unmarshal(doc, h); err != nil {
		return nil, walleterr.Decode("doc", err)
	}

	if !strings.HasPrefix(h.ID, didPrefix) {
		return nil, walleterr.Invalid("doc.id", fmt.Sprintf("%q is not a did", h.ID))
	}

	rec := &Record{ID: h.ID}

	// controller is either a DID or a list of DIDs; only the first one is indexed.
	var controller string
	if json.Unmarshal(h.Controller, &controller) == nil {
		rec.Controller = controller
	} else {
		var controllers []string
		if json.Unmarshal(h.Controller, &controllers) == nil && len(controllers) > 0 {
			rec.Controller = controllers[0]
		}
	}

	return rec, nil
}
