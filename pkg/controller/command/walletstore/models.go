/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walletstore

import (
	"encoding/json"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/did"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/verifiable"
)

// SaveDIDRequest is the request of SaveDID.
type SaveDIDRequest struct {
	Name string          `json:"name"`
	DID  json.RawMessage `json:"did"`
}

// UpdateDIDRequest is the request of UpdateDID.
type UpdateDIDRequest struct {
	DID json.RawMessage `json:"did"`
}

// IDRequest selects one record by id.
type IDRequest struct {
	ID string `json:"id"`
}

// IDsRequest selects records by ids.
type IDsRequest struct {
	IDs []string `json:"ids"`
}

// DocumentResponse is the response of GetDID.
type DocumentResponse struct {
	DID json.RawMessage `json:"did"`
}

// DIDRecordsResponse is the response of GetDIDRecords.
type DIDRecordsResponse struct {
	Result []did.Record `json:"result"`
}

// SaveCredentialRequest is the request of SaveCredential.
type SaveCredentialRequest struct {
	Name                 string          `json:"name,omitempty"`
	VerifiableCredential json.RawMessage `json:"verifiableCredential"`
}

// CredentialResponse is the response of GetCredential.
type CredentialResponse struct {
	VerifiableCredential json.RawMessage `json:"verifiableCredential"`
}

// CredentialRecordsRequest is the request of GetCredentialRecords. An empty type returns every credential.
type CredentialRecordsRequest struct {
	Type string `json:"type,omitempty"`
}

// CredentialRecordsResponse is the response of GetCredentialRecords.
type CredentialRecordsResponse struct {
	Result []verifiable.Record `json:"result"`
}
