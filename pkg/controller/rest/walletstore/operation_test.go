/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walletstore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	cmdstore "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command/walletstore"
	mockkeystore "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/mock/keystore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage/spistore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/did"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/verifiable"
)

const (
	sampleDID = `{"id":"did:example:123"}`
	sampleVC  = `{"id":"http://example.edu/credentials/1872","type":"VerifiableCredential",` +
		`"credentialSubject":{"id":"did:example:123"}}`
)

func newRouter(t *testing.T) *mux.Router {
	t.Helper()

	backend, err := spistore.New(mem.NewProvider(), "")
	require.NoError(t, err)

	ks := mockkeystore.NewKeystore()

	dids, err := did.New(backend, ks, "wallet")
	require.NoError(t, err)

	vcs, err := verifiable.New(backend, ks, "wallet")
	require.NoError(t, err)

	op := New(dids, vcs)
	require.Len(t, op.GetRESTHandlers(), 9)

	router := mux.NewRouter()

	for _, h := range op.GetRESTHandlers() {
		router.HandleFunc(h.Path(), h.Handle()).Methods(h.Method())
	}

	return router
}

func send(t *testing.T, router *mux.Router, method, path string, body interface{}) (*bytes.Buffer, int) {
	t.Helper()

	var reqBody io.Reader = http.NoBody

	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)

		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr.Body, rr.Code
}

func pathID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func TestDIDOperations(t *testing.T) {
	router := newRouter(t)

	buf, code := send(t, router, http.MethodPost, SaveDIDPath,
		&cmdstore.SaveDIDRequest{Name: "mine", DID: json.RawMessage(sampleDID)})
	require.Equal(t, http.StatusOK, code, buf.String())

	buf, code = send(t, router, http.MethodGet, DIDsOperationID+"/"+pathID("did:example:123"), nil)
	require.Equal(t, http.StatusOK, code, buf.String())

	var doc cmdstore.DocumentResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.JSONEq(t, sampleDID, string(doc.DID))

	_, code = send(t, router, http.MethodPut, UpdateDIDPath,
		&cmdstore.UpdateDIDRequest{DID: json.RawMessage(`{"id":"did:example:123","controller":"did:example:c"}`)})
	require.Equal(t, http.StatusOK, code)

	buf, code = send(t, router, http.MethodGet, GetDIDRecordsPath, nil)
	require.Equal(t, http.StatusOK, code)

	var recs cmdstore.DIDRecordsResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &recs))
	require.Equal(t, "did:example:c", recs.Result[0].Controller)

	_, code = send(t, router, http.MethodPost, DeleteDIDsPath, &cmdstore.IDsRequest{IDs: []string{"did:example:123"}})
	require.Equal(t, http.StatusOK, code)

	_, code = send(t, router, http.MethodGet, DIDsOperationID+"/"+pathID("did:example:123"), nil)
	require.Equal(t, http.StatusInternalServerError, code)

	buf, code = send(t, router, http.MethodGet, DIDsOperationID+"/!!!", nil)
	require.Equal(t, http.StatusBadRequest, code, buf.String())
}

func TestCredentialOperations(t *testing.T) {
	router := newRouter(t)

	_, code := send(t, router, http.MethodPost, SaveCredentialPath,
		&cmdstore.SaveCredentialRequest{VerifiableCredential: json.RawMessage(sampleVC)})
	require.Equal(t, http.StatusOK, code)

	buf, code := send(t, router, http.MethodGet,
		CredentialsOperationID+"/"+pathID("http://example.edu/credentials/1872"), nil)
	require.Equal(t, http.StatusOK, code, buf.String())

	var vc cmdstore.CredentialResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &vc))
	require.JSONEq(t, sampleVC, string(vc.VerifiableCredential))

	buf, code = send(t, router, http.MethodGet, GetCredentialsPath+"?type=VerifiableCredential", nil)
	require.Equal(t, http.StatusOK, code)

	var recs cmdstore.CredentialRecordsResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &recs))
	require.Len(t, recs.Result, 1)
	require.Equal(t, "did:example:123", recs.Result[0].SubjectID)

	_, code = send(t, router, http.MethodPost, RemoveCredentialsPath,
		&cmdstore.IDsRequest{IDs: []string{"http://example.edu/credentials/1872"}})
	require.Equal(t, http.StatusOK, code)

	buf, code = send(t, router, http.MethodPost, SaveCredentialPath,
		&cmdstore.SaveCredentialRequest{VerifiableCredential: json.RawMessage(`{"id":"x","type":"Other"}`)})
	require.Equal(t, http.StatusBadRequest, code, buf.String())
}
