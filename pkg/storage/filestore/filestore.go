/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package filestore keeps every wallet file as a regular file in one directory.
package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
	pkgerrors "github.com/pkg/errors"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
)

const (
	dirMode  = 0o700
	fileMode = 0o600
)

var logger = log.New("didwallet/filestore")

// Store is a directory of wallet files.
type Store struct {
	dir string
}

// New returns a store rooted at dir, creating the directory when missing.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("directory is mandatory")
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, pkgerrors.Wrapf(err, "create wallet directory %s", dir)
	}

	return &Store{dir: dir}, nil
}

// Exists reports whether the wallet file name exists.
func (s *Store) Exists(name string) (bool, error) {
	path, err := s.path(name)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, pkgerrors.Wrapf(err, "stat wallet file %s", name)
	}

	return true, nil
}

// Read returns the contents of the wallet file name.
func (s *Store) Read(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if errors.Is(err, os.ErrNotExist) {
		return nil, pkgerrors.Wrapf(storage.ErrDataNotFound, "wallet file %s", name)
	}

	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read wallet file %s", name)
	}

	return data, nil
}

// Write replaces the wallet file name. Data goes to a temporary file in the same directory first, which is then
// renamed over name.
func (s *Store) Write(name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return pkgerrors.Wrapf(err, "create temporary file for %s", name)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			if e := os.Remove(tmpName); e != nil && !errors.Is(e, os.ErrNotExist) {
				logger.Warnf("failed to remove temporary file %s: %s", tmpName, e)
			}
		}
	}()

	if err = tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close() //nolint:errcheck

		return pkgerrors.Wrapf(err, "chmod temporary file for %s", name)
	}

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck

		return pkgerrors.Wrapf(err, "write temporary file for %s", name)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck

		return pkgerrors.Wrapf(err, "sync temporary file for %s", name)
	}

	if err = tmp.Close(); err != nil {
		return pkgerrors.Wrapf(err, "close temporary file for %s", name)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return pkgerrors.Wrapf(err, "replace wallet file %s", name)
	}

	logger.Debugf("wrote wallet file %s (%d bytes)", name, len(data))

	return nil
}

// Delete removes the wallet file name.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pkgerrors.Wrapf(err, "delete wallet file %s", name)
	}

	return nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", pkgerrors.Errorf("invalid wallet file name %q", name)
	}

	return filepath.Join(s.dir, name), nil
}
