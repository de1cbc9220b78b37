/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package codec moves wallet material between bytes and transport strings, and hashes payloads.
package codec

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/multiformats/go-multibase"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
)

// Encoding is a multibase encoding.
type Encoding = multibase.Encoding

// Supported transport encodings.
const (
	Base58BTC = multibase.Base58BTC
	Base64URL = multibase.Base64url
	Base64    = multibase.Base64
	Base16    = multibase.Base16
)

// DefaultEncoding is used for every transport string written by the wallet.
const DefaultEncoding = Base58BTC

// Encode returns b as a multibase string of encoding enc.
func Encode(enc Encoding, b []byte) (string, error) {
	s, err := multibase.Encode(enc, b)
	if err != nil {
		return "", walleterr.Invalid("encoding", fmt.Sprintf("unsupported multibase encoding %q: %s", enc, err))
	}

	return s, nil
}

// EncodeDefault returns b as a base58btc multibase string.
func EncodeDefault(b []byte) string {
	s, err := multibase.Encode(DefaultEncoding, b)
	if err != nil {
		// base58btc is always registered.
		panic(err)
	}

	return s
}

// Decode decodes the multibase string s. param names the value being decoded in returned errors.
func Decode(param, s string) ([]byte, error) {
	if s == "" {
		return nil, walleterr.Invalid(param, "value is empty")
	}

	_, b, err := multibase.Decode(s)
	if err != nil {
		return nil, walleterr.Decode(param, err)
	}

	return b, nil
}

// Base58Encode returns the raw (prefix-less) base58 encoding of b.
func Base58Encode(b []byte) string {
	return base58.Encode(b)
}

// Base58Decode decodes a raw base58 string.
func Base58Decode(param, s string) ([]byte, error) {
	if s == "" {
		return nil, walleterr.Invalid(param, "value is empty")
	}

	b := base58.Decode(s)
	if len(b) == 0 {
		return nil, walleterr.Decode(param, errors.New("invalid base58 string"))
	}

	return b, nil
}
