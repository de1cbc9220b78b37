/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walletstore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command"
	cmdstore "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command/walletstore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/rest"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/did"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/verifiable"
)

// constants for wallet store operations. Path ids are base64url encoded without padding.
const (
	DIDsOperationID         = "/dids"
	SaveDIDPath             = DIDsOperationID
	UpdateDIDPath           = DIDsOperationID
	GetDIDRecordsPath       = DIDsOperationID
	GetDIDPath              = DIDsOperationID + "/{id}"
	DeleteDIDsPath          = DIDsOperationID + "/delete"
	CredentialsOperationID  = "/credentials"
	SaveCredentialPath      = CredentialsOperationID
	GetCredentialsPath      = CredentialsOperationID
	GetCredentialPath       = CredentialsOperationID + "/{id}"
	RemoveCredentialsPath   = CredentialsOperationID + "/delete"
	credentialTypeParameter = "type"
)

// Operation contains the DID and credential store operations provided by controller REST API.
type Operation struct {
	handlers []rest.Handler
	command  *cmdstore.Command
}

// New returns new wallet store operations rest client instance.
func New(dids *did.Store, vcs *verifiable.Store) *Operation {
	o := &Operation{command: cmdstore.New(dids, vcs)}
	o.registerHandler()

	return o
}

// GetRESTHandlers get all controller API handler available for this service.
func (o *Operation) GetRESTHandlers() []rest.Handler {
	return o.handlers
}

func (o *Operation) registerHandler() {
	o.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(SaveDIDPath, http.MethodPost, o.SaveDID),
		cmdutil.NewHTTPHandler(UpdateDIDPath, http.MethodPut, o.UpdateDID),
		cmdutil.NewHTTPHandler(GetDIDRecordsPath, http.MethodGet, o.GetDIDRecords),
		cmdutil.NewHTTPHandler(GetDIDPath, http.MethodGet, o.GetDID),
		cmdutil.NewHTTPHandler(DeleteDIDsPath, http.MethodPost, o.DeleteDIDs),
		cmdutil.NewHTTPHandler(SaveCredentialPath, http.MethodPost, o.SaveCredential),
		cmdutil.NewHTTPHandler(GetCredentialsPath, http.MethodGet, o.GetCredentialRecords),
		cmdutil.NewHTTPHandler(GetCredentialPath, http.MethodGet, o.GetCredential),
		cmdutil.NewHTTPHandler(RemoveCredentialsPath, http.MethodPost, o.RemoveCredentials),
	}
}

// SaveDID swagger:route POST /dids walletstore saveDID
//
// Saves a DID document under a name.
//
// Responses:
//    default: genericError
func (o *Operation) SaveDID(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.SaveDID, rw, req.Body)
}

// UpdateDID swagger:route PUT /dids walletstore updateDID
//
// Replaces a stored DID document.
//
// Responses:
//    default: genericError
func (o *Operation) UpdateDID(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.UpdateDID, rw, req.Body)
}

// GetDIDRecords swagger:route GET /dids walletstore getDIDRecords
//
// Lists the stored DID documents.
//
// Responses:
//    default: genericError
func (o *Operation) GetDIDRecords(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.GetDIDRecords, rw, req.Body)
}

// GetDID swagger:route GET /dids/{id} walletstore getDID
//
// Returns a stored DID document.
//
// Responses:
//    default: genericError
func (o *Operation) GetDID(rw http.ResponseWriter, req *http.Request) {
	o.executeByID(o.command.GetDID, rw, req)
}

// DeleteDIDs swagger:route POST /dids/delete walletstore deleteDIDs
//
// Deletes DID documents by id.
//
// Responses:
//    default: genericError
func (o *Operation) DeleteDIDs(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.DeleteDIDs, rw, req.Body)
}

// SaveCredential swagger:route POST /credentials walletstore saveCredential
//
// Saves a verifiable credential.
//
// Responses:
//    default: genericError
func (o *Operation) SaveCredential(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.SaveCredential, rw, req.Body)
}

// GetCredentialRecords swagger:route GET /credentials walletstore getCredentialRecords
//
// Lists the stored credentials, optionally filtered by the type query parameter.
//
// Responses:
//    default: genericError
func (o *Operation) GetCredentialRecords(rw http.ResponseWriter, req *http.Request) {
	o.executeWith(o.command.GetCredentialRecords, rw,
		cmdstore.CredentialRecordsRequest{Type: req.URL.Query().Get(credentialTypeParameter)})
}

// GetCredential swagger:route GET /credentials/{id} walletstore getCredential
//
// Returns a stored verifiable credential.
//
// Responses:
//    default: genericError
func (o *Operation) GetCredential(rw http.ResponseWriter, req *http.Request) {
	o.executeByID(o.command.GetCredential, rw, req)
}

// RemoveCredentials swagger:route POST /credentials/delete walletstore removeCredentials
//
// Removes verifiable credentials by id.
//
// Responses:
//    default: genericError
func (o *Operation) RemoveCredentials(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.RemoveCredentials, rw, req.Body)
}

func (o *Operation) executeByID(exec command.Exec, rw http.ResponseWriter, req *http.Request) {
	id, err := base64.RawURLEncoding.DecodeString(mux.Vars(req)["id"])
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, cmdstore.InvalidRequestErrorCode,
			fmt.Errorf("invalid id: %w", err))

		return
	}

	o.executeWith(exec, rw, cmdstore.IDRequest{ID: string(id)})
}

func (o *Operation) executeWith(exec command.Exec, rw http.ResponseWriter, request interface{}) {
	reqBytes, err := json.Marshal(request)
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusInternalServerError, command.UnknownStatus, err)

		return
	}

	rest.Execute(exec, rw, bytes.NewBuffer(reqBytes))
}
