/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package spistore keeps wallet files as values of an Aries storage store, so that any Aries storage provider
// (in-memory, LevelDB...) can back the wallet.
package spistore

import (
	"errors"
	"fmt"

	spi "github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
)

// DefaultStoreName is the store opened in the provider when no name is given.
const DefaultStoreName = "walletfiles"

// Store adapts an Aries storage store to the wallet file backend.
type Store struct {
	store spi.Store
}

// New opens storeName (DefaultStoreName when empty) in provider.
func New(provider spi.Provider, storeName string) (*Store, error) {
	if storeName == "" {
		storeName = DefaultStoreName
	}

	store, err := provider.OpenStore(storeName)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file store: %w", err)
	}

	return &Store{store: store}, nil
}

// Exists reports whether name exists.
func (s *Store) Exists(name string) (bool, error) {
	_, err := s.store.Get(name)
	if errors.Is(err, spi.ErrDataNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to get wallet file %s: %w", name, err)
	}

	return true, nil
}

// Read returns the contents of name.
func (s *Store) Read(name string) ([]byte, error) {
	data, err := s.store.Get(name)
	if errors.Is(err, spi.ErrDataNotFound) {
		return nil, fmt.Errorf("wallet file %s: %w", name, storage.ErrDataNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get wallet file %s: %w", name, err)
	}

	return data, nil
}

// Write replaces the contents of name.
func (s *Store) Write(name string, data []byte) error {
	if err := s.store.Put(name, data); err != nil {
		return fmt.Errorf("failed to put wallet file %s: %w", name, err)
	}

	return nil
}

// Delete removes name.
func (s *Store) Delete(name string) error {
	err := s.store.Delete(name)
	if err != nil && !errors.Is(err, spi.ErrDataNotFound) {
		return fmt.Errorf("failed to delete wallet file %s: %w", name, err)
	}

	return nil
}
