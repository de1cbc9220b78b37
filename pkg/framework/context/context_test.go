/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package context

import (
	"errors"
	"testing"
	"time"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/kms/keymanager"
	mockkeystore "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/mock/keystore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage/spistore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/did"
)

func TestNewProvider(t *testing.T) {
	backend, err := spistore.New(mem.NewProvider(), "")
	require.NoError(t, err)

	ks := mockkeystore.NewKeystore()

	t.Run("test new with default", func(t *testing.T) {
		_, err := New()
		require.Error(t, err)
		require.Contains(t, err.Error(), "wallet backend and keystore are mandatory")
	})

	t.Run("test new with backend and keystore", func(t *testing.T) {
		prov, err := New(WithWalletBackend(backend), WithKeystore(ks))
		require.NoError(t, err)
		require.Equal(t, DefaultNamespace, prov.Namespace())
		require.Equal(t, backend, prov.WalletBackend())
		require.Equal(t, ks, prov.Keystore())
		require.NotNil(t, prov.KeyManager())
		require.NotNil(t, prov.DIDStore())
		require.NotNil(t, prov.CredentialStore())
		require.Nil(t, prov.KeyManager().Session())
	})

	t.Run("test new with session and encryption", func(t *testing.T) {
		session := keymanager.NewSessionState(time.Minute)

		prov, err := New(WithWalletBackend(backend), WithKeystore(ks), WithNamespace("alice"),
			WithSessionState(session), WithStoreEncryption())
		require.NoError(t, err)
		require.Equal(t, "alice", prov.KeyManager().Namespace())
		require.Equal(t, session, prov.KeyManager().Session())

		_, err = prov.KeyManager().GenerateKey(keymanager.NewWalletKeyRequest("k1", nil))
		require.NoError(t, err)

		raw, err := backend.Read("alice.key")
		require.NoError(t, err)
		require.Contains(t, string(raw), `"isEncrypted":true`)
	})

	t.Run("test new with injected services", func(t *testing.T) {
		m, err := keymanager.New(backend, ks, "bob")
		require.NoError(t, err)

		dids, err := did.New(backend, ks, "bob")
		require.NoError(t, err)

		prov, err := New(WithKeyManager(m), WithDIDStore(dids), WithWalletBackend(backend), WithKeystore(ks))
		require.NoError(t, err)
		require.Equal(t, m, prov.KeyManager())
		require.Equal(t, dids, prov.DIDStore())
	})

	t.Run("test error return from options", func(t *testing.T) {
		_, err := New(func(opts *Provider) error {
			return errors.New("error creating the framework option")
		})
		require.Error(t, err)

		_, err = New(WithNamespace(""))
		require.Error(t, err)
	})
}
