/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cipherspec describes and runs the symmetric operations used by the wallet: PIN key wrapping
// (AES-256-CBC/PKCS5) and keystore-side item encryption (AES-256-GCM).
package cipherspec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	aeadsubtle "github.com/google/tink/go/aead/subtle"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
)

// Algorithm is a symmetric algorithm.
type Algorithm string

// Mode is a block cipher mode.
type Mode string

// Padding is a block padding scheme.
type Padding string

// Supported values.
const (
	AES Algorithm = "AES"

	CBC Mode = "CBC"
	GCM Mode = "GCM"

	PKCS5     Padding = "PKCS5Padding"
	NoPadding Padding = "NoPadding"
)

// CipherSpec is the algorithm/mode/key size/padding tuple of one symmetric operation.
type CipherSpec struct {
	Algorithm Algorithm `json:"algorithm"`
	Mode      Mode      `json:"mode"`
	// KeySize is in bits.
	KeySize int     `json:"keySize"`
	Padding Padding `json:"padding"`
}

// Predefined cipher specs.
var (
	AES256CBCPKCS5     = CipherSpec{Algorithm: AES, Mode: CBC, KeySize: 256, Padding: PKCS5}
	AES256GCMNoPadding = CipherSpec{Algorithm: AES, Mode: GCM, KeySize: 256, Padding: NoPadding}
)

// String returns the transformation name, e.g. "AES/CBC/PKCS5Padding".
func (c CipherSpec) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Algorithm, c.Mode, c.Padding)
}

// KeyBytes returns the key size in bytes.
func (c CipherSpec) KeyBytes() int {
	return c.KeySize / 8 //nolint:gomnd
}

// IVBytes returns the IV size the spec expects from callers. GCM generates its own nonce.
func (c CipherSpec) IVBytes() int {
	if c.Mode == CBC {
		return aes.BlockSize
	}

	return 0
}

// Encrypt encrypts plaintext with key (and iv for CBC) according to spec.
func Encrypt(spec CipherSpec, key, iv, plaintext []byte) ([]byte, error) {
	if err := spec.check(key, iv); err != nil {
		return nil, err
	}

	switch spec.Mode {
	case CBC:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, walleterr.Crypto(walleterr.CodeEncrypt, err)
		}

		padded := pkcs5Pad(plaintext, aes.BlockSize)
		out := make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

		return out, nil
	case GCM:
		a, err := aeadsubtle.NewAESGCM(key)
		if err != nil {
			return nil, walleterr.Crypto(walleterr.CodeEncrypt, err)
		}

		out, err := a.Encrypt(plaintext, nil)
		if err != nil {
			return nil, walleterr.Crypto(walleterr.CodeEncrypt, err)
		}

		return out, nil
	}

	return nil, unsupported(spec)
}

// Decrypt decrypts ciphertext with key (and iv for CBC) according to spec.
func Decrypt(spec CipherSpec, key, iv, ciphertext []byte) ([]byte, error) {
	if err := spec.check(key, iv); err != nil {
		return nil, err
	}

	switch spec.Mode {
	case CBC:
		if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
			return nil, walleterr.Crypto(walleterr.CodeDecrypt,
				errors.New("ciphertext is not a multiple of the block size"))
		}

		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, walleterr.Crypto(walleterr.CodeDecrypt, err)
		}

		out := make([]byte, len(ciphertext))
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)

		pt, err := pkcs5Unpad(out, aes.BlockSize)
		if err != nil {
			return nil, walleterr.Crypto(walleterr.CodeDecrypt, err)
		}

		return pt, nil
	case GCM:
		a, err := aeadsubtle.NewAESGCM(key)
		if err != nil {
			return nil, walleterr.Crypto(walleterr.CodeDecrypt, err)
		}

		pt, err := a.Decrypt(ciphertext, nil)
		if err != nil {
			return nil, walleterr.Crypto(walleterr.CodeDecrypt, err)
		}

		return pt, nil
	}

	return nil, unsupported(spec)
}

func (c CipherSpec) check(key, iv []byte) error {
	if c.Algorithm != AES {
		return unsupported(c)
	}

	if len(key) != c.KeyBytes() {
		return walleterr.Invalid("key", fmt.Sprintf("%s expects a %d byte key, got %d", c, c.KeyBytes(), len(key)))
	}

	if c.Mode == CBC && len(iv) != aes.BlockSize {
		return walleterr.Invalid("iv", fmt.Sprintf("%s expects a %d byte iv, got %d", c, aes.BlockSize, len(iv)))
	}

	return nil
}

func unsupported(c CipherSpec) error {
	return walleterr.Invalid("cipherSpec", fmt.Sprintf("unsupported cipher spec %s", c))
}

func pkcs5Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize

	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs5Unpad(b []byte, blockSize int) ([]byte, error) {
	errPadding := errors.New("invalid padding")

	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errPadding
	}

	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, errPadding
	}

	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, errPadding
		}
	}

	return b[:len(b)-n], nil
}
