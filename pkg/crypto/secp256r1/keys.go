/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package secp256r1 is the wallet's EC signature engine: secp256r1 key generation, ECDSA signing over
// caller-supplied digests, and the 65 byte compact signature format [header][r][s] with an embedded recovery id.
//
// Signatures use a random nonce, so signing the same digest twice gives different bytes. Only the low-S form is
// ever produced.
package secp256r1

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/cryptoutil"
)

const (
	// ScalarSize is the size of a private key scalar.
	ScalarSize = 32
	// CompressedPublicKeySize is the size of a SEC1 compressed public key.
	CompressedPublicKeySize = 33

	maxKeyGenAttempts = 128
)

// Curve returns the secp256r1 curve.
func Curve() elliptic.Curve {
	return elliptic.P256()
}

// GenerateKey generates a private key scalar and its compressed public key using crypto/rand.
func GenerateKey() ([]byte, []byte, error) {
	return GenerateKeyFrom(rand.Reader)
}

// GenerateKeyFrom generates a private key scalar and its compressed public key reading entropy from r.
//
// The scalar is drawn uniformly in [1, n-1]. Draws whose leading byte is zero are rejected as well, so that the
// scalar always occupies the full 32 bytes without a sign guard byte.
func GenerateKeyFrom(r io.Reader) ([]byte, []byte, error) {
	n := Curve().Params().N

	for i := 0; i < maxKeyGenAttempts; i++ {
		d := make([]byte, ScalarSize)

		if _, err := io.ReadFull(r, d); err != nil {
			return nil, nil, walleterr.Crypto(walleterr.CodeKeyGen, fmt.Errorf("read entropy: %w", err))
		}

		k := new(big.Int).SetBytes(d)
		if d[0] == 0 || k.Sign() == 0 || k.Cmp(n) >= 0 {
			cryptoutil.Zero(d)

			continue
		}

		pub := PublicKey(d)

		return d, pub, nil
	}

	return nil, nil, walleterr.Crypto(walleterr.CodeKeyGen, errors.New("entropy source exhausted"))
}

// PublicKey computes the compressed public key d·G. d must be a valid scalar.
func PublicKey(d []byte) []byte {
	x, y := Curve().ScalarBaseMult(d)

	return elliptic.MarshalCompressed(Curve(), x, y)
}

// ParsePublicKey decodes a compressed public key.
func ParsePublicKey(pub []byte) (*ecdsa.PublicKey, error) {
	if len(pub) != CompressedPublicKeySize {
		return nil, walleterr.Invalid("publicKey",
			fmt.Sprintf("compressed public key must be %d bytes, got %d", CompressedPublicKeySize, len(pub)))
	}

	x, y := elliptic.UnmarshalCompressed(Curve(), pub)
	if x == nil {
		return nil, walleterr.Decode("publicKey", errors.New("not a point on secp256r1"))
	}

	return &ecdsa.PublicKey{Curve: Curve(), X: x, Y: y}, nil
}

// CompressPublicKey returns the compressed encoding of pub.
func CompressPublicKey(pub *ecdsa.PublicKey) []byte {
	return elliptic.MarshalCompressed(Curve(), pub.X, pub.Y)
}

// CheckKeyPairMatch recomputes d·G and compares it with the compressed public key pub.
func CheckKeyPairMatch(d, pub []byte) error {
	if err := validateScalar(d); err != nil {
		return walleterr.ErrKeyMismatch.With("privateKey", err)
	}

	if !bytes.Equal(PublicKey(d), pub) {
		return walleterr.ErrKeyMismatch.With("publicKey", errors.New("private key does not match public key"))
	}

	return nil
}

// ToPrivateKey returns the ecdsa form of the scalar d.
func ToPrivateKey(d []byte) (*ecdsa.PrivateKey, error) {
	if err := validateScalar(d); err != nil {
		return nil, err
	}

	priv := &ecdsa.PrivateKey{D: new(big.Int).SetBytes(d)}
	priv.PublicKey.Curve = Curve()
	priv.PublicKey.X, priv.PublicKey.Y = Curve().ScalarBaseMult(d)

	return priv, nil
}

func validateScalar(d []byte) error {
	if len(d) != ScalarSize {
		return fmt.Errorf("private key must be %d bytes, got %d", ScalarSize, len(d))
	}

	k := new(big.Int).SetBytes(d)
	defer cryptoutil.ZeroInt(k)

	if k.Sign() == 0 || k.Cmp(Curve().Params().N) >= 0 {
		return errors.New("private key out of range")
	}

	return nil
}
