/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pinwrap wraps wallet private keys under a PIN: PBKDF2-HMAC-SHA256 (2048 iterations, 32 byte salt) expands
// the PIN into an AES-256 key and a CBC IV, which encrypt the key with PKCS#5 padding.
//
// Only the ciphertext and the salt are persisted; the derived material is wiped after every operation.
package pinwrap

import (
	"crypto/sha256"

	"github.com/google/tink/go/subtle/random"
	"golang.org/x/crypto/pbkdf2"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/crypto/cipherspec"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/cryptoutil"
)

const (
	// Iterations is the PBKDF2 iteration count.
	Iterations = 2048
	// SaltSize is the size of the random salt generated for every wrap.
	SaltSize = 32
)

// Spec is the cipher spec of the wrapping.
var Spec = cipherspec.AES256CBCPKCS5 //nolint:gochecknoglobals

// Wrap encrypts privateKey under pin with a freshly generated salt.
func Wrap(pin, privateKey []byte) ([]byte, []byte, error) {
	if len(pin) == 0 {
		return nil, nil, walleterr.Invalid("pin", "pin is mandatory")
	}

	if len(privateKey) == 0 {
		return nil, nil, walleterr.Invalid("privateKey", "private key is mandatory")
	}

	salt := random.GetRandomBytes(SaltSize)

	key, iv := derive(pin, salt)
	defer cryptoutil.Zero(key, iv)

	ct, err := cipherspec.Encrypt(Spec, key, iv, privateKey)
	if err != nil {
		return nil, nil, err
	}

	return ct, salt, nil
}

// Unwrap decrypts ciphertext under pin and salt. A wrong pin most often fails the padding check
// (CryptoError); otherwise it yields bytes that the caller must reject by checking the key pair.
func Unwrap(pin, salt, ciphertext []byte) ([]byte, error) {
	if len(pin) == 0 {
		return nil, walleterr.Invalid("pin", "pin is mandatory")
	}

	if len(salt) == 0 {
		return nil, walleterr.Invalid("salt", "salt is mandatory")
	}

	key, iv := derive(pin, salt)
	defer cryptoutil.Zero(key, iv)

	return cipherspec.Decrypt(Spec, key, iv, ciphertext)
}

func derive(pin, salt []byte) ([]byte, []byte) {
	keyLen := Spec.KeyBytes()
	material := pbkdf2.Key(pin, salt, Iterations, keyLen+Spec.IVBytes(), sha256.New)

	return material[:keyLen], material[keyLen:]
}
