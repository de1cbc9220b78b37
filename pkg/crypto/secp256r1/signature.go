/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package secp256r1

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/cryptoutil"
)

const (
	// CompactSignatureSize is the size of a compact signature: header byte, r and s.
	CompactSignatureSize = 1 + 2*ScalarSize

	// compactHeaderBase is added to the recovery id; the extra 4 flags a compressed public key.
	compactHeaderBase = 27 + 4
)

// Sign signs digest with the private key scalar d and returns a low-S compact signature.
// No hashing is done: digest is signed as is.
func Sign(d, digest []byte) ([]byte, error) {
	if len(digest) == 0 {
		return nil, walleterr.Wrap(walleterr.CryptoError, walleterr.CodeSign, "digest", errors.New("digest is empty"))
	}

	priv, err := ToPrivateKey(d)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.CryptoError, walleterr.CodeSign, "privateKey", err)
	}

	defer cryptoutil.ZeroInt(priv.D)

	der, err := ecdsa.SignASN1(rand.Reader, priv, digest)
	if err != nil {
		return nil, walleterr.Crypto(walleterr.CodeSign, err)
	}

	return CompactFromDER(der, digest, CompressPublicKey(&priv.PublicKey))
}

// CompactFromDER converts a DER encoded ECDSA signature over digest into the compact format. The recovery id is
// computed against pub, the known public key of the signer.
func CompactFromDER(der, digest, pub []byte) ([]byte, error) {
	r, s, err := ParseDER(der)
	if err != nil {
		return nil, err
	}

	s = normalizeS(s)

	recID, err := recoveryID(r, s, digest, pub)
	if err != nil {
		return nil, err
	}

	return EncodeCompact(r, s, recID)
}

// Verify verifies the compact signature sig over digest against the compressed public key pub.
//
// Structurally invalid input (public key, signature length or encoding) is reported as an error. A well-formed
// signature that does not verify returns false and no error.
func Verify(pub, digest, sig []byte) (bool, error) {
	if len(digest) == 0 {
		return false, walleterr.Invalid("digest", "digest is empty")
	}

	pk, err := ParsePublicKey(pub)
	if err != nil {
		return false, err
	}

	r, s, _, err := DecodeCompact(sig)
	if err != nil {
		return false, err
	}

	der, err := EncodeDER(r, s)
	if err != nil {
		return false, err
	}

	return ecdsa.VerifyASN1(pk, digest, der), nil
}

// EncodeCompact returns [recID + 31][r(32)][s(32)].
func EncodeCompact(r, s *big.Int, recID byte) ([]byte, error) {
	if recID > 1 {
		return nil, walleterr.Invalid("recoveryId", fmt.Sprintf("recovery id must be 0 or 1, got %d", recID))
	}

	if err := validateSigScalar("r", r); err != nil {
		return nil, err
	}

	if err := validateSigScalar("s", s); err != nil {
		return nil, err
	}

	sig := make([]byte, CompactSignatureSize)
	sig[0] = recID + compactHeaderBase
	r.FillBytes(sig[1 : 1+ScalarSize])
	s.FillBytes(sig[1+ScalarSize:])

	return sig, nil
}

// DecodeCompact splits a compact signature into r, s and its recovery id.
func DecodeCompact(sig []byte) (*big.Int, *big.Int, byte, error) {
	if len(sig) != CompactSignatureSize {
		return nil, nil, 0, walleterr.Invalid("signature",
			fmt.Sprintf("compact signature must be %d bytes, got %d", CompactSignatureSize, len(sig)))
	}

	header := sig[0]
	if header < compactHeaderBase-4 || header > compactHeaderBase+3 {
		return nil, nil, 0, walleterr.Decode("signature", fmt.Errorf("invalid compact signature header %d", header))
	}

	recID := (header - (compactHeaderBase - 4)) & 0x03

	r := new(big.Int).SetBytes(sig[1 : 1+ScalarSize])
	s := new(big.Int).SetBytes(sig[1+ScalarSize:])

	if err := validateSigScalar("r", r); err != nil {
		return nil, nil, 0, err
	}

	if err := validateSigScalar("s", s); err != nil {
		return nil, nil, 0, err
	}

	return r, s, recID, nil
}

// ParseDER parses an ASN.1 DER ECDSA signature.
func ParseDER(der []byte) (*big.Int, *big.Int, error) {
	var (
		inner cryptobyte.String
		r     = new(big.Int)
		s     = new(big.Int)
	)

	input := cryptobyte.String(der)

	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) || !inner.Empty() {
		return nil, nil, walleterr.Decode("signature", errors.New("malformed DER signature"))
	}

	if err := validateSigScalar("r", r); err != nil {
		return nil, nil, err
	}

	if err := validateSigScalar("s", s); err != nil {
		return nil, nil, err
	}

	return r, s, nil
}

// EncodeDER returns the ASN.1 DER encoding of (r, s).
func EncodeDER(r, s *big.Int) ([]byte, error) {
	var b cryptobyte.Builder

	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})

	der, err := b.Bytes()
	if err != nil {
		return nil, walleterr.Crypto(walleterr.CodeSign, fmt.Errorf("encode DER signature: %w", err))
	}

	return der, nil
}

// IsLowS reports whether s <= n/2.
func IsLowS(s *big.Int) bool {
	return s.Cmp(halfOrder()) <= 0
}

func normalizeS(s *big.Int) *big.Int {
	if IsLowS(s) {
		return s
	}

	return new(big.Int).Sub(Curve().Params().N, s)
}

func halfOrder() *big.Int {
	return new(big.Int).Rsh(Curve().Params().N, 1)
}

func validateSigScalar(name string, v *big.Int) error {
	if v.Sign() <= 0 || v.Cmp(Curve().Params().N) >= 0 {
		return walleterr.Decode("signature", fmt.Errorf("%s out of range", name))
	}

	return nil
}

// recoveryID finds the recovery id of (r, s) by recovering both candidate public keys and matching them against
// pub, the signer's own public key. It is not a way to learn an unknown public key.
func recoveryID(r, s *big.Int, digest, pub []byte) (byte, error) {
	for id := byte(0); id < 2; id++ {
		q, err := recoverPublicKey(r, s, digest, id)
		if err != nil {
			continue
		}

		if bytes.Equal(q, pub) {
			return id, nil
		}
	}

	return 0, walleterr.Crypto(walleterr.CodeSign, errors.New("could not construct a recoverable signature"))
}

// recoverPublicKey computes Q' = r⁻¹·(s·R − e·G) for the candidate point R selected by id.
func recoverPublicKey(r, s *big.Int, digest []byte, id byte) ([]byte, error) {
	curve := Curve()
	n := curve.Params().N

	// R.x = r; the parity of R.y is the recovery id.
	enc := make([]byte, CompressedPublicKeySize)
	enc[0] = 0x02 | (id & 0x01)
	r.FillBytes(enc[1:])

	rx, ry, err := decompress(enc)
	if err != nil {
		return nil, err
	}

	// n·R must be the point at infinity.
	if ix, iy := curve.ScalarMult(rx, ry, n.Bytes()); ix.Sign() != 0 || iy.Sign() != 0 {
		return nil, errors.New("candidate point has wrong order")
	}

	e := hashToInt(digest)
	rInv := new(big.Int).ModInverse(r, n)

	u1 := new(big.Int).Neg(e)
	u1.Mul(u1, rInv)
	u1.Mod(u1, n)

	u2 := new(big.Int).Mul(s, rInv)
	u2.Mod(u2, n)

	qx, qy := sumOfTwoMultiplies(u1, rx, ry, u2)
	if qx.Sign() == 0 && qy.Sign() == 0 {
		return nil, errors.New("recovered point at infinity")
	}

	return CompressPublicKey(&ecdsa.PublicKey{Curve: curve, X: qx, Y: qy}), nil
}

// sumOfTwoMultiplies returns u1·G + u2·(x, y).
func sumOfTwoMultiplies(u1, x, y, u2 *big.Int) (*big.Int, *big.Int) {
	curve := Curve()

	x1, y1 := curve.ScalarBaseMult(scalarBytes(u1))
	x2, y2 := curve.ScalarMult(x, y, scalarBytes(u2))

	return curve.Add(x1, y1, x2, y2)
}

func decompress(enc []byte) (*big.Int, *big.Int, error) {
	x, y := elliptic.UnmarshalCompressed(Curve(), enc)
	if x == nil {
		return nil, nil, errors.New("not a point on secp256r1")
	}

	return x, y, nil
}

// hashToInt converts a digest to an integer, keeping the leftmost bits of the curve order size.
func hashToInt(digest []byte) *big.Int {
	orderBits := Curve().Params().N.BitLen()
	orderBytes := (orderBits + 7) / 8

	if len(digest) > orderBytes {
		digest = digest[:orderBytes]
	}

	ret := new(big.Int).SetBytes(digest)

	if excess := len(digest)*8 - orderBits; excess > 0 {
		ret.Rsh(ret, uint(excess))
	}

	return ret
}

func scalarBytes(v *big.Int) []byte {
	b := make([]byte, ScalarSize)

	return v.FillBytes(b)
}
