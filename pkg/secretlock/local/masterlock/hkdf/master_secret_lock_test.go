/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package hkdf

import (
	"crypto/sha256"
	"crypto/sha512"
	"testing"

	"github.com/google/tink/go/subtle/random"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/spi/secretlock"
)

func TestMasterLock(t *testing.T) {
	masterKey := random.GetRandomBytes(MinMasterKeySize)
	salt := random.GetRandomBytes(sha256.Size)
	secret := "a keystore secret of any length, longer than a hash"

	mkLock, err := NewMasterLock(masterKey, sha256.New, salt)
	require.NoError(t, err)

	sealed, err := mkLock.Encrypt("", &secretlock.EncryptRequest{Plaintext: secret, AdditionalAuthenticatedData: "k1"})
	require.NoError(t, err)
	require.NotEmpty(t, sealed.Ciphertext)

	opened, err := mkLock.Decrypt("", &secretlock.DecryptRequest{Ciphertext: sealed.Ciphertext,
		AdditionalAuthenticatedData: "k1"})
	require.NoError(t, err)
	require.Equal(t, secret, opened.Plaintext)

	t.Run("other alias", func(t *testing.T) {
		_, err := mkLock.Decrypt("", &secretlock.DecryptRequest{Ciphertext: sealed.Ciphertext,
			AdditionalAuthenticatedData: "k2"})
		require.Error(t, err)
	})

	t.Run("same key and salt", func(t *testing.T) {
		mkLock2, err := NewMasterLock(masterKey, sha256.New, salt)
		require.NoError(t, err)

		opened, err := mkLock2.Decrypt("", &secretlock.DecryptRequest{Ciphertext: sealed.Ciphertext,
			AdditionalAuthenticatedData: "k1"})
		require.NoError(t, err)
		require.Equal(t, secret, opened.Plaintext)
	})

	t.Run("other salt or key", func(t *testing.T) {
		for _, l := range []func() (secretlock.Service, error){
			func() (secretlock.Service, error) { return NewMasterLock(masterKey, sha256.New, nil) },
			func() (secretlock.Service, error) {
				return NewMasterLock(random.GetRandomBytes(MinMasterKeySize), sha256.New, salt)
			},
		} {
			mkLock2, err := l()
			require.NoError(t, err)

			opened, err := mkLock2.Decrypt("", &secretlock.DecryptRequest{Ciphertext: sealed.Ciphertext,
				AdditionalAuthenticatedData: "k1"})
			require.Error(t, err)
			require.Empty(t, opened)
		}
	})

	t.Run("invalid requests", func(t *testing.T) {
		_, err := mkLock.Encrypt("", nil)
		require.Error(t, err)

		_, err = mkLock.Decrypt("", nil)
		require.Error(t, err)

		_, err = mkLock.Decrypt("", &secretlock.DecryptRequest{Ciphertext: "bad{}base64URLstring[]"})
		require.Error(t, err)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		_, err := NewMasterLock(masterKey[:16], sha256.New, salt)
		require.Error(t, err)

		_, err = NewMasterLock(masterKey, nil, salt)
		require.Error(t, err)

		_, err = NewMasterLock(masterKey, sha512.New, salt)
		require.NoError(t, err)
	})
}
