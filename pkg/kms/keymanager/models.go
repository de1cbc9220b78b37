/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keymanager

import (
	"fmt"

	"github.com/go-jose/go-jose/v3"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/codec"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/crypto/secp256r1"
)

// Algorithm is the signature algorithm of a key.
type Algorithm string

// Key algorithms. Only SECP256R1 can be generated and used; the others are reserved.
const (
	SECP256R1 Algorithm = "SECP256R1"
	SECP256K1 Algorithm = "SECP256K1"
	RSA       Algorithm = "RSA"
)

// AuthType is what must be supplied to use a key. Values are single bits so that requirements can be combined
// into a mask.
type AuthType int

// Auth types.
const (
	AuthFree AuthType = 1 << iota
	AuthPIN
	AuthBio

	// AuthAll is the combination of every auth type.
	AuthAll = AuthFree | AuthPIN | AuthBio
)

// String returns the name of a single auth type.
func (a AuthType) String() string {
	switch a {
	case AuthFree:
		return "FREE"
	case AuthPIN:
		return "PIN"
	case AuthBio:
		return "BIO"
	}

	return fmt.Sprintf("AuthType(%d)", int(a))
}

// AccessMethod is where the private key material lives and how it is protected.
type AccessMethod string

// Access methods.
const (
	// WalletNone keeps the private key in the wallet file without secret.
	WalletNone AccessMethod = "WALLET_NONE"
	// WalletPIN keeps the private key in the wallet file, wrapped under a PIN.
	WalletPIN AccessMethod = "WALLET_PIN"
	// KeystoreNone keeps the private key in the keystore.
	KeystoreNone AccessMethod = "KEYSTORE_NONE"
	// KeystoreBiometry keeps the private key in the keystore behind biometric authentication.
	KeystoreBiometry AccessMethod = "KEYSTORE_BIOMETRY"
)

//nolint:gochecknoglobals
var (
	walletMethods   = []AccessMethod{WalletNone, WalletPIN}
	keystoreMethods = []AccessMethod{KeystoreNone, KeystoreBiometry}
)

// IsKeystore reports whether the private key lives in the keystore.
func (m AccessMethod) IsKeystore() bool {
	return slices.Contains(keystoreMethods, m)
}

// IsWallet reports whether the private key lives in the wallet file.
func (m AccessMethod) IsWallet() bool {
	return slices.Contains(walletMethods, m)
}

// AuthType returns the auth type implied by the access method.
func (m AccessMethod) AuthType() AuthType {
	switch m {
	case WalletPIN:
		return AuthPIN
	case KeystoreBiometry:
		return AuthBio
	case WalletNone, KeystoreNone:
	}

	return AuthFree
}

// KeyInfo describes a stored key. It never carries private key material.
type KeyInfo struct {
	ID           string       `json:"id"`
	Algorithm    Algorithm    `json:"algorithm"`
	AuthType     AuthType     `json:"authType"`
	AccessMethod AccessMethod `json:"accessMethod"`
	// PublicKey is the multibase encoded compressed public key.
	PublicKey string `json:"publicKey"`
}

// GetID returns the key id.
func (k KeyInfo) GetID() string {
	return k.ID
}

// PublicKeyBytes returns the compressed public key.
func (k KeyInfo) PublicKeyBytes() ([]byte, error) {
	return codec.Decode("publicKey", k.PublicKey)
}

// JWK returns the public key as a JSON Web Key whose kid is the key id.
func (k KeyInfo) JWK() (*jose.JSONWebKey, error) {
	if k.Algorithm != SECP256R1 {
		return nil, walleterr.ErrUnsupportedAlgorithm.With("algorithm", fmt.Errorf("%s", k.Algorithm))
	}

	pub, err := k.PublicKeyBytes()
	if err != nil {
		return nil, err
	}

	key, err := secp256r1.ParsePublicKey(pub)
	if err != nil {
		return nil, err
	}

	return &jose.JSONWebKey{
		Key:       key,
		KeyID:     k.ID,
		Algorithm: string(jose.ES256),
		Use:       "sig",
	}, nil
}

// keyItem is the private part of a key record. Wallet keys carry the encoded (and, with a PIN, wrapped)
// private key; keystore keys only name their keystore alias.
type keyItem struct {
	Alias      string `json:"alias,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
	Salt       string `json:"salt,omitempty"`
}

// GenerateKeyRequest describes a key to generate.
type GenerateKeyRequest struct {
	ID        string
	Algorithm Algorithm
	// AccessMethod selects the tier. WalletPIN requires PIN.
	AccessMethod AccessMethod
	// PIN wraps the private key of WalletPIN keys. It is not retained.
	PIN []byte
	// Prompt is shown by the biometric gate for KeystoreBiometry keys.
	Prompt string
}

// NewWalletKeyRequest requests a secp256r1 key kept in the wallet file, wrapped under pin unless pin is empty.
func NewWalletKeyRequest(id string, pin []byte) *GenerateKeyRequest {
	method := WalletNone
	if len(pin) > 0 {
		method = WalletPIN
	}

	return &GenerateKeyRequest{ID: id, Algorithm: SECP256R1, AccessMethod: method, PIN: pin}
}

// NewKeystoreKeyRequest requests a secp256r1 key kept in the keystore, behind biometric authentication when
// biometry is set.
func NewKeystoreKeyRequest(id string, biometry bool, prompt string) *GenerateKeyRequest {
	method := KeystoreNone
	if biometry {
		method = KeystoreBiometry
	}

	return &GenerateKeyRequest{ID: id, Algorithm: SECP256R1, AccessMethod: method, Prompt: prompt}
}

func (r *GenerateKeyRequest) validate() error {
	if r == nil {
		return walleterr.Invalid("request", "request is mandatory")
	}

	if r.ID == "" {
		return walleterr.Invalid("id", "id is mandatory")
	}

	if r.Algorithm != SECP256R1 {
		return walleterr.ErrUnsupportedAlgorithm.With("algorithm", fmt.Errorf("%q", r.Algorithm))
	}

	switch r.AccessMethod {
	case WalletPIN:
		if len(r.PIN) == 0 {
			return walleterr.Invalid("pin", "pin is mandatory for "+string(WalletPIN))
		}
	case WalletNone, KeystoreNone, KeystoreBiometry:
		if len(r.PIN) > 0 {
			return walleterr.Invalid("pin", "pin is only used by "+string(WalletPIN))
		}
	default:
		return walleterr.Invalid("accessMethod", fmt.Sprintf("unknown access method %q", r.AccessMethod))
	}

	return nil
}
