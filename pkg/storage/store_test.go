/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/storage/leveldb"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage/filestore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage/spistore"
)

type backend struct {
	storage.Backend
	Name string
}

func setUpBackends(t *testing.T) []backend {
	t.Helper()

	files, err := filestore.New(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)

	memStore, err := spistore.New(mem.NewProvider(), "")
	require.NoError(t, err)

	levelStore, err := spistore.New(leveldb.NewProvider(t.TempDir()), "")
	require.NoError(t, err)

	return []backend{
		{Backend: files, Name: "filestore"},
		{Backend: memStore, Name: "spistore mem"},
		{Backend: levelStore, Name: "spistore leveldb"},
	}
}

func TestBackends(t *testing.T) {
	for _, b := range setUpBackends(t) {
		b := b

		t.Run(b.Name, func(t *testing.T) {
			name := "wallet." + uuid.New().String()

			exists, err := b.Exists(name)
			require.NoError(t, err)
			require.False(t, exists)

			_, err = b.Read(name)
			require.ErrorIs(t, err, storage.ErrDataNotFound)

			require.NoError(t, b.Write(name, []byte(`{"data":"1"}`)))

			exists, err = b.Exists(name)
			require.NoError(t, err)
			require.True(t, exists)

			data, err := b.Read(name)
			require.NoError(t, err)
			require.Equal(t, `{"data":"1"}`, string(data))

			// whole file replace
			require.NoError(t, b.Write(name, []byte(`{}`)))

			data, err = b.Read(name)
			require.NoError(t, err)
			require.Equal(t, `{}`, string(data))

			require.NoError(t, b.Delete(name))
			require.NoError(t, b.Delete(name))

			exists, err = b.Exists(name)
			require.NoError(t, err)
			require.False(t, exists)
		})
	}
}

func TestBackendsKeepFilesApart(t *testing.T) {
	for _, b := range setUpBackends(t) {
		b := b

		t.Run(b.Name, func(t *testing.T) {
			require.NoError(t, b.Write("wallet.key", []byte("keys")))
			require.NoError(t, b.Write("wallet.did", []byte("dids")))

			require.NoError(t, b.Delete("wallet.key"))

			data, err := b.Read("wallet.did")
			require.NoError(t, err)
			require.Equal(t, "dids", string(data))
		})
	}
}
