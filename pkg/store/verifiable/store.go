/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/securestore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

// StoreExt is the extension of the credential wallet file.
const StoreExt = "vc"

var logger = log.New("didwallet/store/verifiable")

// Store stores verifiable credentials in the "<namespace>.vc" wallet file. Credentials are kept as opaque JSON.
type Store struct {
	store *securestore.Store[Record, json.RawMessage]
}

// New returns a new vc store.
func New(backend storage.Backend, ks keystore.Keystore, namespace string, opts ...securestore.Opt) (*Store, error) {
	store, err := securestore.New[Record, json.RawMessage](backend, ks, namespace, StoreExt, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open vc store: %w", err)
	}

	return &Store{store: store}, nil
}

// SaveVC saves a verifiable credential under name. Newer credentials are listed first.
func (s *Store) SaveVC(name string, vc []byte) error {
	rec, err := parseCredential(vc)
	if err != nil {
		return err
	}

	rec.Name = name

	if err = s.store.AddItem(*rec, json.RawMessage(vc), true); err != nil {
		return fmt.Errorf("failed to put vc: %w", err)
	}

	logger.Debugf("saved vc %s", rec.ID)

	return nil
}

// GetVC returns the verifiable credential of vcID.
func (s *Store) GetVC(vcID string) ([]byte, error) {
	vcs, err := s.store.GetItems([]string{vcID})
	if err != nil {
		return nil, fmt.Errorf("failed to get vc: %w", err)
	}

	return vcs[0], nil
}

// GetCredentialRecords returns the metadata of all stored credentials.
func (s *Store) GetCredentialRecords() ([]Record, error) {
	recs, err := s.store.GetAllMetas()
	if errors.Is(err, walleterr.ErrNoItemsSaved) {
		return nil, nil
	}

	return recs, err
}

// GetCredentialRecordsByType returns the metadata of the credentials of type t.
func (s *Store) GetCredentialRecordsByType(t string) ([]Record, error) {
	recs, err := s.GetCredentialRecords()
	if err != nil {
		return nil, err
	}

	var out []Record

	for _, r := range recs {
		if r.HasType(t) {
			out = append(out, r)
		}
	}

	return out, nil
}

// RemoveVCs removes the credentials of ids.
func (s *Store) RemoveVCs(ids ...string) error {
	return s.store.RemoveItems(ids)
}

// RemoveAll deletes the credential wallet file.
func (s *Store) RemoveAll() error {
	return s.store.RemoveAllItems()
}

type credentialHeader struct {
	ID      string          `json:"id"`
	Context json.RawMessage `json:"@context"`
	Type    json.RawMessage `json:"type"`
	Issuer  json.RawMessage `json:"issuer"`
	Subject json.RawMessage `json:"credentialSubject"`
}

func parseCredential(vc []byte) (*Record, error) {
	if len(vc) == 0 {
		return nil, walleterr.Invalid("vc", "credential is mandatory")
	}

	h := &credentialHeader{}
	if err := json.Unmarshal(vc, h); err != nil {
		return nil, walleterr.Decode("vc", err)
	}

	if h.ID == "" {
		return nil, walleterr.Invalid("vc.id", "credential id is mandatory")
	}

	rec := &Record{
		ID:      h.ID,
		Context: stringOrList(h.Context),
		Type:    stringOrList(h.Type),
		Issuer:  idOf(h.Issuer),
	}

	if !rec.HasType("VerifiableCredential") {
		return nil, walleterr.Invalid("vc.type", "not a VerifiableCredential")
	}

	// credentialSubject is an object or a list of objects; the first subject is indexed.
	var subjects []json.RawMessage
	if json.Unmarshal(h.Subject, &subjects) == nil && len(subjects) > 0 {
		rec.SubjectID = idOf(subjects[0])
	} else {
		rec.SubjectID = idOf(h.Subject)
	}

	return rec, nil
}

func stringOrList(raw json.RawMessage) []string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return []string{s}
	}

	var l []string
	if json.Unmarshal(raw, &l) == nil {
		return l
	}

	return nil
}

// idOf returns raw when it is a string, or its "id" field when it is an object.
func idOf(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	obj := struct {
		ID string `json:"id"`
	}{}

	if json.Unmarshal(raw, &obj) == nil {
		return obj.ID
	}

	return ""
}
