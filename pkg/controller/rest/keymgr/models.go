/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keymgr

import (
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command/keymgr"
)

// generateKeyReq model
//
// swagger:parameters generateKey
type generateKeyReq struct { // nolint: unused,deadcode
	// in: body
	keymgr.GenerateKeyRequest
}

// keyInfoRes model
//
// This is used for returning a generated key.
//
// swagger:response keyInfoRes
type keyInfoRes struct { // nolint: unused,deadcode
	// in: body
	keymgr.KeyInfoResponse
}

// getKeyInfosParams model
//
// swagger:parameters getKeyInfos
type getKeyInfosParams struct { // nolint: unused,deadcode
	// Auth type bitmask: FREE=1, PIN=2, BIO=4. 0 returns every key.
	//
	// in: query
	AuthType int `json:"authType"`
}

// getKeyInfosRes model
//
// swagger:response getKeyInfosRes
type getKeyInfosRes struct { // nolint: unused,deadcode
	// in: body
	keymgr.GetKeyInfosResponse
}

// signReq model
//
// swagger:parameters sign
type signReq struct { // nolint: unused,deadcode
	// in: body
	keymgr.SignRequest
}

// signRes model
//
// swagger:response signRes
type signRes struct { // nolint: unused,deadcode
	// in: body
	keymgr.SignResponse
}

// verifyReq model
//
// swagger:parameters verify
type verifyReq struct { // nolint: unused,deadcode
	// in: body
	keymgr.VerifyRequest
}

// verifyRes model
//
// swagger:response verifyRes
type verifyRes struct { // nolint: unused,deadcode
	// in: body
	keymgr.VerifyResponse
}

// isKeySavedParams model
//
// swagger:parameters isKeySaved
type isKeySavedParams struct { // nolint: unused,deadcode
	// Key id.
	//
	// in: path
	// required: true
	ID string `json:"id"`
}

// isSavedRes model
//
// swagger:response isSavedRes
type isSavedRes struct { // nolint: unused,deadcode
	// in: body
	keymgr.IsSavedResponse
}

// unlockRes model
//
// swagger:response unlockRes
type unlockRes struct { // nolint: unused,deadcode
	// in: body
	keymgr.UnlockResponse
}

// lockRes model
//
// swagger:response lockRes
type lockRes struct { // nolint: unused,deadcode
	// in: body
	keymgr.LockResponse
}
