/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keymanager

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/crypto/secp256r1"
	mockks "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/gomocks/spi/keystore"
	mockkeystore "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/mock/keystore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage/spistore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

const namespace = "wallet"

func digestOf(msg string) []byte {
	d := sha256.Sum256([]byte(msg))

	return d[:]
}

type fixture struct {
	backend  *spistore.Store
	keystore *mockkeystore.Keystore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend, err := spistore.New(mem.NewProvider(), "")
	require.NoError(t, err)

	return &fixture{backend: backend, keystore: mockkeystore.NewKeystore()}
}

func (f *fixture) manager(t *testing.T, opts ...Opt) *Manager {
	t.Helper()

	m, err := New(f.backend, f.keystore, namespace, opts...)
	require.NoError(t, err)

	return m
}

func publicKey(t *testing.T, info *KeyInfo) []byte {
	t.Helper()

	pub, err := info.PublicKeyBytes()
	require.NoError(t, err)
	require.Len(t, pub, secp256r1.CompressedPublicKeySize)

	return pub
}

func TestNew(t *testing.T) {
	f := newFixture(t)

	_, err := New(f.backend, f.keystore, "a/b")
	require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

	_, err = New(f.backend, f.keystore, "")
	require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

	m := f.manager(t)
	require.Equal(t, namespace, m.Namespace())
	require.Nil(t, m.Session())
}

func TestPINKeyScenario(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)
	ctx := context.Background()
	digest := digestOf("hello")

	info, err := m.GenerateKey(NewWalletKeyRequest("pin-key", []byte("111111")))
	require.NoError(t, err)
	require.Equal(t, AuthPIN, info.AuthType)
	require.Equal(t, WalletPIN, info.AccessMethod)

	pub := publicKey(t, info)

	sig, err := m.Sign(ctx, "pin-key", []byte("111111"), digest)
	require.NoError(t, err)
	require.Len(t, sig, secp256r1.CompactSignatureSize)

	ok, err := m.Verify(SECP256R1, pub, digest, sig)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.ChangePIN("pin-key", []byte("111111"), []byte("222222")))

	_, err = m.Sign(ctx, "pin-key", []byte("111111"), digest)
	require.True(t, walleterr.IsKind(err, walleterr.CryptoError))
	require.ErrorIs(t, err, walleterr.ErrKeyMismatch)

	sig, err = m.Sign(ctx, "pin-key", []byte("222222"), digest)
	require.NoError(t, err)

	ok, err = Verify(SECP256R1, pub, digest, sig)
	require.NoError(t, err)
	require.True(t, ok)

	infos, err := m.GetKeyInfos([]string{"pin-key"})
	require.NoError(t, err)
	require.Equal(t, info.PublicKey, infos[0].PublicKey)
}

func TestGenerateKey(t *testing.T) {
	t.Run("wallet key without pin", func(t *testing.T) {
		m := newFixture(t).manager(t)

		info, err := m.GenerateKey(NewWalletKeyRequest("free", nil))
		require.NoError(t, err)
		require.Equal(t, AuthFree, info.AuthType)
		require.Equal(t, WalletNone, info.AccessMethod)

		sig, err := m.Sign(context.Background(), "free", nil, digestOf("msg"))
		require.NoError(t, err)

		ok, err := m.Verify(SECP256R1, publicKey(t, info), digestOf("msg"), sig)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = m.Verify(SECP256R1, publicKey(t, info), digestOf("other"), sig)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("keystore keys", func(t *testing.T) {
		f := newFixture(t)
		m := f.manager(t)

		for _, biometry := range []bool{false, true} {
			id := "ks"
			if biometry {
				id = "bio"
			}

			info, err := m.GenerateKey(NewKeystoreKeyRequest(id, biometry, "sign in"))
			require.NoError(t, err)

			if biometry {
				require.Equal(t, AuthBio, info.AuthType)
				require.Equal(t, KeystoreBiometry, info.AccessMethod)
			} else {
				require.Equal(t, AuthFree, info.AuthType)
				require.Equal(t, KeystoreNone, info.AccessMethod)
			}

			sig, err := m.Sign(context.Background(), id, nil, digestOf("msg"))
			require.NoError(t, err)

			ok, err := m.Verify(SECP256R1, publicKey(t, info), digestOf("msg"), sig)
			require.NoError(t, err)
			require.True(t, ok)

			has, err := f.keystore.HasKey(DefaultKeyAliasPrefix + namespace + "/" + id)
			require.NoError(t, err)
			require.True(t, has)
		}

		require.Equal(t, 1, f.keystore.Gate.Calls())
	})

	t.Run("no private key is stored for keystore keys", func(t *testing.T) {
		f := newFixture(t)
		m := f.manager(t)

		_, err := m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
		require.NoError(t, err)

		_, items, err := m.store.GetEntries([]string{"ks"})
		require.NoError(t, err)
		require.Empty(t, items[0].PrivateKey)
		require.Empty(t, items[0].Salt)
		require.Equal(t, DefaultKeyAliasPrefix+namespace+"/ks", items[0].Alias)
	})

	t.Run("duplicate id", func(t *testing.T) {
		m := newFixture(t).manager(t)

		_, err := m.GenerateKey(NewWalletKeyRequest("k", nil))
		require.NoError(t, err)

		_, err = m.GenerateKey(NewKeystoreKeyRequest("k", false, ""))
		require.ErrorIs(t, err, walleterr.ErrDuplicateKeyID)
		require.True(t, walleterr.IsKind(err, walleterr.DuplicatedParameter))
	})

	t.Run("invalid requests", func(t *testing.T) {
		m := newFixture(t).manager(t)

		_, err := m.GenerateKey(nil)
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

		_, err = m.GenerateKey(NewWalletKeyRequest("", nil))
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

		for _, alg := range []Algorithm{SECP256K1, RSA, ""} {
			_, err = m.GenerateKey(&GenerateKeyRequest{ID: "k", Algorithm: alg, AccessMethod: WalletNone})
			require.ErrorIs(t, err, walleterr.ErrUnsupportedAlgorithm)
		}

		_, err = m.GenerateKey(&GenerateKeyRequest{ID: "k", Algorithm: SECP256R1, AccessMethod: WalletPIN})
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

		_, err = m.GenerateKey(&GenerateKeyRequest{ID: "k", Algorithm: SECP256R1, AccessMethod: KeystoreNone,
			PIN: []byte("1")})
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

		_, err = m.GenerateKey(&GenerateKeyRequest{ID: "k", Algorithm: SECP256R1, AccessMethod: "CLOUD"})
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

		saved, err := m.IsAnyKeySaved()
		require.NoError(t, err)
		require.False(t, saved)
	})

	t.Run("orphaned keystore key is replaced", func(t *testing.T) {
		f := newFixture(t)
		m := f.manager(t)

		orphan, err := f.keystore.GenerateAsymmetricKey(DefaultKeyAliasPrefix + namespace + "/ks")
		require.NoError(t, err)

		info, err := m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
		require.NoError(t, err)
		require.NotEqual(t, orphan, publicKey(t, info))
	})

	t.Run("keystore alias is rolled back when the record cannot be stored", func(t *testing.T) {
		f := newFixture(t)
		m := f.manager(t)

		_, err := m.GenerateKey(NewWalletKeyRequest("first", nil))
		require.NoError(t, err)

		f.keystore.SignErr = errors.New("sign error")

		_, err = m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
		require.True(t, walleterr.IsKind(err, walleterr.KeystoreError))

		f.keystore.SignErr = nil

		aliases, err := f.keystore.ListAliases(DefaultKeyAliasPrefix)
		require.NoError(t, err)
		require.Empty(t, aliases)
	})
}

func TestKeystoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend, err := spistore.New(mem.NewProvider(), "")
	require.NoError(t, err)

	ks := mockks.NewMockKeystore(ctrl)

	m, err := New(backend, ks, namespace)
	require.NoError(t, err)

	alias := DefaultKeyAliasPrefix + namespace + "/ks"

	t.Run("has key", func(t *testing.T) {
		ks.EXPECT().HasKey(alias).Return(false, errors.New("keystore offline"))

		_, err = m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
		require.True(t, walleterr.IsKind(err, walleterr.KeystoreError))
		require.ErrorContains(t, err, "keystore offline")
	})

	t.Run("generate", func(t *testing.T) {
		ks.EXPECT().HasKey(alias).Return(false, nil)
		ks.EXPECT().GenerateAsymmetricKey(alias, gomock.Any()).Return(nil, errors.New("no space"))

		_, err = m.GenerateKey(NewKeystoreKeyRequest("ks", true, "prompt"))
		require.True(t, walleterr.IsKind(err, walleterr.KeystoreError))
	})

	t.Run("invalid public key", func(t *testing.T) {
		ks.EXPECT().HasKey(alias).Return(false, nil)
		ks.EXPECT().GenerateAsymmetricKey(alias).Return([]byte{1, 2, 3}, nil)
		ks.EXPECT().Delete(alias).Return(nil)

		_, err = m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
		require.True(t, walleterr.IsKind(err, walleterr.KeystoreError))
	})

	t.Run("delete all keys", func(t *testing.T) {
		ks.EXPECT().Delete(gomock.Any()).Return(nil).Times(2)
		ks.EXPECT().ListAliases(DefaultKeyAliasPrefix+namespace+"/").Return(nil, errors.New("list error"))

		err = m.DeleteAllKeys()
		require.True(t, walleterr.IsKind(err, walleterr.KeystoreError))
	})
}

func TestSign(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)
	ctx := context.Background()

	_, err := m.GenerateKey(NewWalletKeyRequest("pin", []byte("1234")))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewKeystoreKeyRequest("bio", true, "sign"))
	require.NoError(t, err)

	t.Run("invalid parameters", func(t *testing.T) {
		_, err = m.Sign(ctx, "", nil, digestOf("m"))
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

		_, err = m.Sign(ctx, "pin", []byte("1234"), nil)
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

		_, err = m.Sign(ctx, "pin", nil, digestOf("m"))
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err = m.Sign(ctx, "missing", nil, digestOf("m"))
		require.ErrorIs(t, err, walleterr.ErrKeyNotFound)
	})

	t.Run("biometric cancel", func(t *testing.T) {
		f.keystore.Gate.Set(keystore.AuthCancel)
		defer f.keystore.Gate.Set(keystore.AuthSuccess)

		_, err = m.Sign(ctx, "bio", nil, digestOf("m"))
		require.True(t, walleterr.IsKind(err, walleterr.KeystoreError))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err = m.Sign(cctx, "bio", nil, digestOf("m"))
		require.True(t, walleterr.IsKind(err, walleterr.KeystoreError))
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("keystore returns a signature of another key", func(t *testing.T) {
		d, _, e := secp256r1.GenerateKey()
		require.NoError(t, e)

		r, s, _, e := secp256r1.DecodeCompact(mustSign(t, d, digestOf("m")))
		require.NoError(t, e)

		der, e := secp256r1.EncodeDER(r, s)
		require.NoError(t, e)

		f.keystore.SignValue = der
		defer func() { f.keystore.SignValue = nil }()

		_, err = m.Sign(ctx, "bio", nil, digestOf("m"))
		require.True(t, walleterr.IsKind(err, walleterr.CryptoError))
	})

	t.Run("unsupported algorithm in stored record", func(t *testing.T) {
		infos, items, e := m.store.GetEntries([]string{"pin"})
		require.NoError(t, e)

		info := infos[0]
		info.ID = "k1"
		info.Algorithm = SECP256K1
		require.NoError(t, m.store.AddItem(info, items[0], false))

		_, err = m.Sign(ctx, "k1", []byte("1234"), digestOf("m"))
		require.ErrorIs(t, err, walleterr.ErrUnsupportedAlgorithm)
	})
}

func mustSign(t *testing.T, d, digest []byte) []byte {
	t.Helper()

	sig, err := secp256r1.Sign(d, digest)
	require.NoError(t, err)

	return sig
}

func TestVerify(t *testing.T) {
	d, pub, err := secp256r1.GenerateKey()
	require.NoError(t, err)

	digest := digestOf("m")
	sig := mustSign(t, d, digest)

	ok, err := Verify(SECP256R1, pub, digest, sig)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = Verify(SECP256K1, pub, digest, sig)
	require.ErrorIs(t, err, walleterr.ErrUnsupportedAlgorithm)

	_, err = Verify(SECP256R1, pub[:32], digest, sig)
	require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

	_, err = Verify(SECP256R1, pub, nil, sig)
	require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

	_, err = Verify(SECP256R1, pub, digest, sig[:64])
	require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))
}

func TestChangePIN(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)

	_, err := m.GenerateKey(NewWalletKeyRequest("pin", []byte("1111")))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewWalletKeyRequest("free", nil))
	require.NoError(t, err)

	t.Run("invalid parameters", func(t *testing.T) {
		require.True(t, walleterr.IsKind(m.ChangePIN("", []byte("1"), []byte("2")), walleterr.InvalidParameter))
		require.True(t, walleterr.IsKind(m.ChangePIN("pin", nil, []byte("2")), walleterr.InvalidParameter))
		require.True(t, walleterr.IsKind(m.ChangePIN("pin", []byte("1"), nil), walleterr.InvalidParameter))
	})

	t.Run("not a pin key", func(t *testing.T) {
		require.ErrorIs(t, m.ChangePIN("free", []byte("1"), []byte("2")), walleterr.ErrNotPinKey)
	})

	t.Run("same pin", func(t *testing.T) {
		require.ErrorIs(t, m.ChangePIN("pin", []byte("1111"), []byte("1111")), walleterr.ErrNewPinEqualsOldPin)
	})

	t.Run("wrong old pin", func(t *testing.T) {
		err = m.ChangePIN("pin", []byte("9999"), []byte("2222"))
		require.True(t, walleterr.IsKind(err, walleterr.CryptoError))

		_, err = m.Sign(context.Background(), "pin", []byte("1111"), digestOf("m"))
		require.NoError(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		require.ErrorIs(t, m.ChangePIN("missing", []byte("1"), []byte("2")), walleterr.ErrKeyNotFound)
	})

	t.Run("fresh salt and position kept", func(t *testing.T) {
		_, before, e := m.store.GetEntries([]string{"pin"})
		require.NoError(t, e)

		require.NoError(t, m.ChangePIN("pin", []byte("1111"), []byte("2222")))

		_, after, e := m.store.GetEntries([]string{"pin"})
		require.NoError(t, e)
		require.NotEqual(t, before[0].Salt, after[0].Salt)
		require.NotEqual(t, before[0].PrivateKey, after[0].PrivateKey)

		infos, e := m.GetKeyInfosByAuthType(0)
		require.NoError(t, e)
		require.Equal(t, "pin", infos[0].ID)
	})
}

func TestGetKeyInfos(t *testing.T) {
	m := newFixture(t).manager(t)

	_, err := m.GetKeyInfos([]string{"a"})
	require.ErrorIs(t, err, walleterr.ErrKeyNotFound)

	_, err = m.GenerateKey(NewWalletKeyRequest("a", nil))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewWalletKeyRequest("b", []byte("1")))
	require.NoError(t, err)

	infos, err := m.GetKeyInfos([]string{"b", "a"})
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "b", infos[0].ID)
	require.Equal(t, "a", infos[1].ID)

	_, err = m.GetKeyInfos(nil)
	require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

	_, err = m.GetKeyInfos([]string{"a", "a"})
	require.True(t, walleterr.IsKind(err, walleterr.DuplicatedParameter))

	_, err = m.GetKeyInfos([]string{"a", "c"})
	require.ErrorIs(t, err, walleterr.ErrKeyNotFound)
}

func TestGetKeyInfosByAuthType(t *testing.T) {
	t.Run("empty wallet", func(t *testing.T) {
		m := newFixture(t).manager(t)

		infos, err := m.GetKeyInfosByAuthType(0)
		require.NoError(t, err)
		require.Empty(t, infos)

		_, err = m.GetKeyInfosByAuthType(AuthFree)
		require.ErrorIs(t, err, walleterr.ErrNoKeyForType)
	})

	t.Run("only a free key", func(t *testing.T) {
		m := newFixture(t).manager(t)

		_, err := m.GenerateKey(NewWalletKeyRequest("free", nil))
		require.NoError(t, err)

		_, err = m.GetKeyInfosByAuthType(AuthPIN | AuthBio)
		require.ErrorIs(t, err, walleterr.ErrNoKeyForType)
		require.True(t, walleterr.IsKind(err, walleterr.NotFound))

		infos, err := m.GetKeyInfosByAuthType(AuthFree)
		require.NoError(t, err)
		require.Len(t, infos, 1)
	})

	t.Run("partial cover", func(t *testing.T) {
		m := newFixture(t).manager(t)

		_, err := m.GenerateKey(NewWalletKeyRequest("free", nil))
		require.NoError(t, err)

		_, err = m.GenerateKey(NewWalletKeyRequest("pin", []byte("1")))
		require.NoError(t, err)

		_, err = m.GetKeyInfosByAuthType(AuthPIN | AuthBio)
		require.ErrorIs(t, err, walleterr.ErrInsufficientResult)

		_, err = m.GenerateKey(NewKeystoreKeyRequest("bio", true, ""))
		require.NoError(t, err)

		infos, err := m.GetKeyInfosByAuthType(AuthPIN | AuthBio)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		require.Equal(t, "pin", infos[0].ID)
		require.Equal(t, "bio", infos[1].ID)

		infos, err = m.GetKeyInfosByAuthType(0)
		require.NoError(t, err)
		require.Len(t, infos, 3)

		infos, err = m.GetKeyInfosByAuthType(AuthAll)
		require.NoError(t, err)
		require.Len(t, infos, 3)
	})

	t.Run("out of range", func(t *testing.T) {
		m := newFixture(t).manager(t)

		_, err := m.GetKeyInfosByAuthType(8)
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))

		_, err = m.GetKeyInfosByAuthType(-1)
		require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))
	})
}

func TestDeleteKeys(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)

	_, err := m.GenerateKey(NewWalletKeyRequest("free", nil))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewKeystoreKeyRequest("bio", true, ""))
	require.NoError(t, err)

	require.ErrorIs(t, m.DeleteKeys([]string{"free", "missing"}), walleterr.ErrKeyNotFound)
	require.True(t, walleterr.IsKind(m.DeleteKeys(nil), walleterr.InvalidParameter))

	require.NoError(t, m.DeleteKeys([]string{"bio", "ks"}))

	for _, id := range []string{"bio", "ks"} {
		saved, e := m.IsKeySaved(id)
		require.NoError(t, e)
		require.False(t, saved)
	}

	aliases, err := f.keystore.ListAliases(DefaultKeyAliasPrefix)
	require.NoError(t, err)
	require.Empty(t, aliases)

	saved, err := m.IsKeySaved("free")
	require.NoError(t, err)
	require.True(t, saved)

	_, err = m.IsKeySaved("")
	require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))
}

func TestDeleteKeysKeepsGoingAfterKeystoreFailure(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)

	for _, id := range []string{"k1", "k2", "k3"} {
		_, err := m.GenerateKey(NewKeystoreKeyRequest(id, false, ""))
		require.NoError(t, err)
	}

	aliases, err := f.keystore.ListAliases(DefaultKeyAliasPrefix)
	require.NoError(t, err)
	require.Len(t, aliases, 3)

	failErr := errors.New("delete error")
	failing := ""

	f.keystore.DeleteErrFn = func(alias string) error {
		if failing == "" {
			failing = alias
		}

		if alias == failing {
			return failErr
		}

		return nil
	}

	err = m.DeleteKeys([]string{"k1", "k2", "k3"})
	require.True(t, walleterr.IsKind(err, walleterr.KeystoreError))
	require.ErrorIs(t, err, failErr)
	require.Contains(t, err.Error(), failing)

	f.keystore.DeleteErrFn = nil

	left, err := f.keystore.ListAliases(DefaultKeyAliasPrefix)
	require.NoError(t, err)
	require.Equal(t, []string{failing}, left)

	saved, err := m.IsAnyKeySaved()
	require.NoError(t, err)
	require.False(t, saved)
}

func TestDeleteAllKeysScenario(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)

	_, err := m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewWalletKeyRequest("free", nil))
	require.NoError(t, err)

	saved, err := m.IsAnyKeySaved()
	require.NoError(t, err)
	require.True(t, saved)

	require.NoError(t, m.DeleteAllKeys())

	saved, err = m.IsAnyKeySaved()
	require.NoError(t, err)
	require.False(t, saved)

	aliases, err := f.keystore.ListAliases("")
	require.NoError(t, err)
	require.Empty(t, aliases)
}

func TestDeleteAllKeysOnTamperedFile(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)

	_, err := m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
	require.NoError(t, err)

	raw, err := f.backend.Read(namespace + "." + StoreExt)
	require.NoError(t, err)

	var file map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &file))

	data, ok := file["data"].(string)
	require.True(t, ok)
	file["data"] = strings.Replace(data, `"id":"ks"`, `"id":"kz"`, 1)

	raw, err = json.Marshal(file)
	require.NoError(t, err)
	require.NoError(t, f.backend.Write(namespace+"."+StoreExt, raw))

	_, err = m.IsAnyKeySaved()
	require.True(t, walleterr.IsKind(err, walleterr.TamperDetected))

	_, err = m.GetKeyInfosByAuthType(0)
	require.True(t, walleterr.IsKind(err, walleterr.TamperDetected))

	require.NoError(t, m.DeleteAllKeys())

	saved, err := m.IsAnyKeySaved()
	require.NoError(t, err)
	require.False(t, saved)

	aliases, err := f.keystore.ListAliases("")
	require.NoError(t, err)
	require.Empty(t, aliases)
}

func TestEncryptedKeyStore(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t, WithStoreEncryption(), WithKeyAliasPrefix("k:"), WithStoreAliasPrefix("s:"))

	_, err := m.GenerateKey(NewWalletKeyRequest("free", nil))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
	require.NoError(t, err)

	_, err = m.Sign(context.Background(), "free", nil, digestOf("m"))
	require.NoError(t, err)

	aliases, err := f.keystore.ListAliases("")
	require.NoError(t, err)
	require.Equal(t, []string{"k:wallet/ks", "s:wallet.key.enc", "s:wallet.key.sig"}, aliases)
}

func TestSession(t *testing.T) {
	f := newFixture(t)
	session := NewSessionState(0)
	m := f.manager(t, WithSession(session))
	ctx := context.Background()

	_, err := m.GenerateKey(NewWalletKeyRequest("lock", []byte("0000")))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewWalletKeyRequest("free", nil))
	require.NoError(t, err)

	_, err = m.GenerateKey(NewKeystoreKeyRequest("ks", false, ""))
	require.NoError(t, err)

	_, err = m.Sign(ctx, "free", nil, digestOf("m"))
	require.ErrorIs(t, err, walleterr.ErrWalletLocked)
	require.True(t, walleterr.IsKind(err, walleterr.WalletLocked))

	_, err = m.Sign(ctx, "ks", nil, digestOf("m"))
	require.NoError(t, err)

	_, err = m.Unlock("lock", []byte("1111"))
	require.True(t, walleterr.IsKind(err, walleterr.CryptoError))
	require.False(t, session.IsUnlocked())

	_, err = m.Unlock("free", []byte("0000"))
	require.ErrorIs(t, err, walleterr.ErrNotPinKey)

	token, err := m.Unlock("lock", []byte("0000"))
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, token, session.Token())

	_, err = m.Unlock("lock", []byte("0000"))
	require.ErrorIs(t, err, ErrAlreadyUnlocked)

	_, err = m.Sign(ctx, "free", nil, digestOf("m"))
	require.NoError(t, err)

	require.True(t, m.Lock())
	require.False(t, m.Lock())
	require.Empty(t, session.Token())

	_, err = m.Sign(ctx, "free", nil, digestOf("m"))
	require.ErrorIs(t, err, walleterr.ErrWalletLocked)

	_, err = newFixture(t).manager(t).Unlock("lock", []byte("0000"))
	require.True(t, walleterr.IsKind(err, walleterr.InvalidParameter))
	require.False(t, newFixture(t).manager(t).Lock())
}

func TestSessionIdleTimeout(t *testing.T) {
	session := NewSessionState(20 * time.Millisecond)

	token, err := session.unlock()
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, session.IsUnlocked())

	require.Eventually(t, func() bool {
		return !session.IsUnlocked()
	}, time.Second, 5*time.Millisecond)

	require.False(t, session.touch())

	_, err = session.unlock()
	require.NoError(t, err)
}

func TestKeyInfo(t *testing.T) {
	m := newFixture(t).manager(t)

	info, err := m.GenerateKey(NewWalletKeyRequest("k", nil))
	require.NoError(t, err)
	require.Equal(t, "k", info.GetID())

	jwk, err := info.JWK()
	require.NoError(t, err)
	require.Equal(t, "k", jwk.KeyID)
	require.Equal(t, "ES256", jwk.Algorithm)
	require.True(t, jwk.IsPublic())
	require.True(t, jwk.Valid())

	raw, err := jwk.MarshalJSON()
	require.NoError(t, err)
	require.Contains(t, string(raw), `"crv":"P-256"`)

	bad := *info
	bad.Algorithm = RSA
	_, err = bad.JWK()
	require.ErrorIs(t, err, walleterr.ErrUnsupportedAlgorithm)

	bad = *info
	bad.PublicKey = "zzzz"
	_, err = bad.JWK()
	require.Error(t, err)

	require.Equal(t, "FREE", AuthFree.String())
	require.Equal(t, "PIN", AuthPIN.String())
	require.Equal(t, "BIO", AuthBio.String())
	require.Equal(t, "AuthType(3)", (AuthFree | AuthPIN).String())
	require.True(t, WalletPIN.IsWallet())
	require.False(t, WalletPIN.IsKeystore())
	require.True(t, KeystoreBiometry.IsKeystore())
}
