/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package softkeystore

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/crypto/secp256r1"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/secretlock/local/masterlock/pbkdf2"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

type gate struct {
	outcome keystore.AuthOutcome
	err     error
	calls   int
}

func (g *gate) Authenticate(ctx context.Context, _ string) (keystore.AuthOutcome, error) {
	g.calls++

	if err := ctx.Err(); err != nil {
		return keystore.AuthCancel, err
	}

	return g.outcome, g.err
}

func newKeystore(t *testing.T, opts ...Option) *Keystore {
	t.Helper()

	ks, err := New(mem.NewProvider(), opts...)
	require.NoError(t, err)

	return ks
}

func TestAsymmetricKeys(t *testing.T) {
	digest := sha256.Sum256([]byte("payload"))

	t.Run("generate and sign", func(t *testing.T) {
		ks := newKeystore(t)

		pub, err := ks.GenerateAsymmetricKey("did.key1")
		require.NoError(t, err)
		require.Len(t, pub, secp256r1.CompressedPublicKeySize)

		got, err := ks.GetPublicKey("did.key1")
		require.NoError(t, err)
		require.Equal(t, pub, got)

		der, err := ks.Sign(context.Background(), "did.key1", digest[:])
		require.NoError(t, err)

		sig, err := secp256r1.CompactFromDER(der, digest[:], pub)
		require.NoError(t, err)

		ok, err := secp256r1.Verify(pub, digest[:], sig)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("duplicate alias", func(t *testing.T) {
		ks := newKeystore(t)

		_, err := ks.GenerateAsymmetricKey("a")
		require.NoError(t, err)

		_, err = ks.GenerateAsymmetricKey("a")
		require.ErrorIs(t, err, keystore.ErrAliasExists)

		err = ks.GenerateSymmetricKey("a")
		require.ErrorIs(t, err, keystore.ErrAliasExists)
	})

	t.Run("unknown alias", func(t *testing.T) {
		ks := newKeystore(t)

		_, err := ks.GetPublicKey("missing")
		require.ErrorIs(t, err, keystore.ErrKeyNotFound)

		_, err = ks.Sign(context.Background(), "missing", digest[:])
		require.ErrorIs(t, err, keystore.ErrKeyNotFound)
	})

	t.Run("wrong key kind", func(t *testing.T) {
		ks := newKeystore(t)

		require.NoError(t, ks.GenerateSymmetricKey("sym"))

		_, err := ks.GetPublicKey("sym")
		require.Error(t, err)

		_, err = ks.Sign(context.Background(), "sym", digest[:])
		require.Error(t, err)
	})

	t.Run("empty alias", func(t *testing.T) {
		ks := newKeystore(t)

		_, err := ks.GenerateAsymmetricKey("")
		require.Error(t, err)
	})
}

func TestUserAuthentication(t *testing.T) {
	digest := sha256.Sum256([]byte("payload"))

	t.Run("success", func(t *testing.T) {
		g := &gate{outcome: keystore.AuthSuccess}
		ks := newKeystore(t, WithBiometricGate(g))

		_, err := ks.GenerateAsymmetricKey("bio", keystore.WithUserAuthentication("sign"))
		require.NoError(t, err)

		_, err = ks.Sign(context.Background(), "bio", digest[:])
		require.NoError(t, err)
		require.Equal(t, 1, g.calls)
	})

	t.Run("failure and cancel", func(t *testing.T) {
		for _, outcome := range []keystore.AuthOutcome{keystore.AuthFailure, keystore.AuthCancel} {
			g := &gate{outcome: outcome}
			ks := newKeystore(t, WithBiometricGate(g))

			require.NoError(t, ks.GenerateSymmetricKey("bio", keystore.WithUserAuthentication("decrypt")))

			ct, err := ks.EncryptSymmetric("bio", []byte("secret"))
			require.NoError(t, err)

			_, err = ks.DecryptSymmetric(context.Background(), "bio", ct)
			require.ErrorIs(t, err, ErrAuthentication)
			require.Contains(t, err.Error(), outcome.String())
		}
	})

	t.Run("gate error", func(t *testing.T) {
		ks := newKeystore(t, WithBiometricGate(&gate{err: errors.New("sensor offline")}))

		_, err := ks.GenerateAsymmetricKey("bio", keystore.WithUserAuthentication("sign"))
		require.NoError(t, err)

		_, err = ks.Sign(context.Background(), "bio", digest[:])
		require.ErrorIs(t, err, ErrAuthentication)
		require.Contains(t, err.Error(), "sensor offline")
	})

	t.Run("no gate", func(t *testing.T) {
		ks := newKeystore(t)

		_, err := ks.GenerateAsymmetricKey("bio", keystore.WithUserAuthentication("sign"))
		require.NoError(t, err)

		_, err = ks.Sign(context.Background(), "bio", digest[:])
		require.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("cancelled context", func(t *testing.T) {
		g := &gate{outcome: keystore.AuthSuccess}
		ks := newKeystore(t, WithBiometricGate(g))

		_, err := ks.GenerateAsymmetricKey("bio", keystore.WithUserAuthentication("sign"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = ks.Sign(ctx, "bio", digest[:])
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, g.calls)
	})
}

func TestSymmetricKeys(t *testing.T) {
	lock, err := pbkdf2.NewMasterLock("passphrase", sha512.New512_256, 0, nil)
	require.NoError(t, err)

	ks := newKeystore(t, WithSecretLock(lock))

	require.NoError(t, ks.GenerateSymmetricKey("enc"))
	require.NoError(t, ks.GenerateSymmetricKey("other"))

	ct, err := ks.EncryptSymmetric("enc", []byte("secret"))
	require.NoError(t, err)

	pt, err := ks.DecryptSymmetric(context.Background(), "enc", ct)
	require.NoError(t, err)
	require.Equal(t, []byte("secret"), pt)

	_, err = ks.DecryptSymmetric(context.Background(), "other", ct)
	require.Error(t, err)

	_, err = ks.EncryptSymmetric("missing", []byte("secret"))
	require.ErrorIs(t, err, keystore.ErrKeyNotFound)
}

func TestKeysSurviveRepeatedUse(t *testing.T) {
	lock, err := pbkdf2.NewMasterLock("passphrase", sha512.New512_256, 0, nil)
	require.NoError(t, err)

	ks := newKeystore(t, WithSecretLock(lock))

	pub, err := ks.GenerateAsymmetricKey("did.key1")
	require.NoError(t, err)
	require.NoError(t, ks.GenerateSymmetricKey("enc"))

	digest := sha256.Sum256([]byte("payload"))

	var sigs [][]byte

	for i := 0; i < 3; i++ {
		ct, err := ks.EncryptSymmetric("enc", []byte("secret"))
		require.NoError(t, err)

		pt, err := ks.DecryptSymmetric(context.Background(), "enc", ct)
		require.NoError(t, err)
		require.Equal(t, []byte("secret"), pt)

		der, err := ks.Sign(context.Background(), "did.key1", digest[:])
		require.NoError(t, err)

		sig, err := secp256r1.CompactFromDER(der, digest[:], pub)
		require.NoError(t, err)

		ok, err := secp256r1.Verify(pub, digest[:], sig)
		require.NoError(t, err)
		require.True(t, ok)

		sigs = append(sigs, sig)
	}

	require.NotEqual(t, sigs[0], sigs[1])
}

func TestPersistence(t *testing.T) {
	provider := mem.NewProvider()

	lock, err := pbkdf2.NewMasterLock("passphrase", sha256.New, 0, nil)
	require.NoError(t, err)

	ks, err := New(provider, WithSecretLock(lock))
	require.NoError(t, err)

	pub, err := ks.GenerateAsymmetricKey("k")
	require.NoError(t, err)

	reopened, err := New(provider, WithSecretLock(lock))
	require.NoError(t, err)

	got, err := reopened.GetPublicKey("k")
	require.NoError(t, err)
	require.Equal(t, pub, got)

	wrongLock, err := pbkdf2.NewMasterLock("other", sha256.New, 0, nil)
	require.NoError(t, err)

	wrong, err := New(provider, WithSecretLock(wrongLock))
	require.NoError(t, err)

	_, err = wrong.Sign(context.Background(), "k", make([]byte, 32))
	require.Error(t, err)
}

func TestListAndDelete(t *testing.T) {
	ks := newKeystore(t)

	for _, alias := range []string{"w.b", "w.a", "x.c"} {
		_, err := ks.GenerateAsymmetricKey(alias)
		require.NoError(t, err)
	}

	aliases, err := ks.ListAliases("w.")
	require.NoError(t, err)
	require.Equal(t, []string{"w.a", "w.b"}, aliases)

	all, err := ks.ListAliases("")
	require.NoError(t, err)
	require.Len(t, all, 3)

	has, err := ks.HasKey("w.a")
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, ks.Delete("w.a"))
	require.NoError(t, ks.Delete("w.a"))

	has, err = ks.HasKey("w.a")
	require.NoError(t, err)
	require.False(t, has)
}
