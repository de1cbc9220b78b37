/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keymgr

import (
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/kms/keymanager"
)

// Binary values (digests, signatures, public keys) are multibase strings.

// GenerateKeyRequest is the request of GenerateKey.
type GenerateKeyRequest struct {
	ID string `json:"id"`
	// Algorithm defaults to SECP256R1.
	Algorithm    string `json:"algorithm,omitempty"`
	AccessMethod string `json:"accessMethod"`
	PIN          string `json:"pin,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
}

// KeyInfoResponse is the response of GenerateKey.
type KeyInfoResponse struct {
	KeyInfo *keymanager.KeyInfo `json:"keyInfo"`
}

// SignRequest is the request of Sign. When Digest is empty the SHA-256 of Data is signed.
type SignRequest struct {
	ID     string `json:"id"`
	Secret string `json:"secret,omitempty"`
	Digest string `json:"digest,omitempty"`
	Data   string `json:"data,omitempty"`
}

// SignResponse is the response of Sign.
type SignResponse struct {
	Signature string `json:"signature"`
}

// VerifyRequest is the request of Verify. When Digest is empty the SHA-256 of Data is verified.
type VerifyRequest struct {
	Algorithm string `json:"algorithm,omitempty"`
	PublicKey string `json:"publicKey"`
	Digest    string `json:"digest,omitempty"`
	Data      string `json:"data,omitempty"`
	Signature string `json:"signature"`
}

// VerifyResponse is the response of Verify.
type VerifyResponse struct {
	Verified bool `json:"verified"`
}

// ChangePINRequest is the request of ChangePIN.
type ChangePINRequest struct {
	ID     string `json:"id"`
	OldPIN string `json:"oldPin"`
	NewPIN string `json:"newPin"`
}

// GetKeyInfosRequest is the request of GetKeyInfos. Keys are selected by IDs when set, else by the AuthType
// mask.
type GetKeyInfosRequest struct {
	IDs      []string `json:"ids,omitempty"`
	AuthType int      `json:"authType,omitempty"`
}

// GetKeyInfosResponse is the response of GetKeyInfos.
type GetKeyInfosResponse struct {
	KeyInfos []keymanager.KeyInfo `json:"keyInfos"`
}

// DeleteKeysRequest is the request of DeleteKeys.
type DeleteKeysRequest struct {
	IDs []string `json:"ids"`
}

// IsKeySavedRequest is the request of IsKeySaved.
type IsKeySavedRequest struct {
	ID string `json:"id"`
}

// IsSavedResponse is the response of IsKeySaved and IsAnyKeySaved.
type IsSavedResponse struct {
	Saved bool `json:"saved"`
}

// UnlockRequest is the request of Unlock.
type UnlockRequest struct {
	KeyID    string `json:"keyId"`
	Passcode string `json:"passcode"`
}

// UnlockResponse is the response of Unlock.
type UnlockResponse struct {
	Token string `json:"token"`
}

// LockResponse is the response of Lock.
type LockResponse struct {
	Closed bool `json:"closed"`
}
