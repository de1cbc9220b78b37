/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keymgr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command"
	cmdkeymgr "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command/keymgr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/rest"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/kms/keymanager"
)

// constants for key manager operations.
const (
	KeysOperationID   = "/keys"
	GenerateKeyPath   = KeysOperationID
	GetKeyInfosPath   = KeysOperationID
	QueryKeyInfosPath = KeysOperationID + "/query"
	SignPath          = KeysOperationID + "/sign"
	VerifyPath        = KeysOperationID + "/verify"
	ChangePINPath     = KeysOperationID + "/pin"
	DeleteKeysPath    = KeysOperationID + "/delete"
	DeleteAllKeysPath = KeysOperationID
	IsAnyKeySavedPath = KeysOperationID + "/saved"
	IsKeySavedPath    = KeysOperationID + "/{id}/saved"
	UnlockPath        = KeysOperationID + "/unlock"
	LockPath          = KeysOperationID + "/lock"

	authTypeQueryParam = "authType"
)

type keyManagerCommand interface {
	GenerateKey(rw io.Writer, req io.Reader) command.Error
	Sign(rw io.Writer, req io.Reader) command.Error
	Verify(rw io.Writer, req io.Reader) command.Error
	ChangePIN(rw io.Writer, req io.Reader) command.Error
	GetKeyInfos(rw io.Writer, req io.Reader) command.Error
	DeleteKeys(rw io.Writer, req io.Reader) command.Error
	DeleteAllKeys(rw io.Writer, req io.Reader) command.Error
	IsKeySaved(rw io.Writer, req io.Reader) command.Error
	IsAnyKeySaved(rw io.Writer, req io.Reader) command.Error
	Unlock(rw io.Writer, req io.Reader) command.Error
	Lock(rw io.Writer, req io.Reader) command.Error
}

// Operation contains the key manager operations provided by controller REST API.
type Operation struct {
	handlers []rest.Handler
	command  keyManagerCommand
}

// New returns new key manager operations rest client instance.
func New(manager *keymanager.Manager, opts ...cmdkeymgr.Option) *Operation {
	o := &Operation{command: cmdkeymgr.New(manager, opts...)}
	o.registerHandler()

	return o
}

// GetRESTHandlers get all controller API handler available for this service.
func (o *Operation) GetRESTHandlers() []rest.Handler {
	return o.handlers
}

// registerHandler register handlers to be exposed from this protocol service as REST API endpoints.
func (o *Operation) registerHandler() {
	o.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(GenerateKeyPath, http.MethodPost, o.GenerateKey),
		cmdutil.NewHTTPHandler(GetKeyInfosPath, http.MethodGet, o.GetKeyInfos),
		cmdutil.NewHTTPHandler(QueryKeyInfosPath, http.MethodPost, o.QueryKeyInfos),
		cmdutil.NewHTTPHandler(SignPath, http.MethodPost, o.Sign),
		cmdutil.NewHTTPHandler(VerifyPath, http.MethodPost, o.Verify),
		cmdutil.NewHTTPHandler(ChangePINPath, http.MethodPost, o.ChangePIN),
		cmdutil.NewHTTPHandler(DeleteKeysPath, http.MethodPost, o.DeleteKeys),
		cmdutil.NewHTTPHandler(DeleteAllKeysPath, http.MethodDelete, o.DeleteAllKeys),
		cmdutil.NewHTTPHandler(IsAnyKeySavedPath, http.MethodGet, o.IsAnyKeySaved),
		cmdutil.NewHTTPHandler(IsKeySavedPath, http.MethodGet, o.IsKeySaved),
		cmdutil.NewHTTPHandler(UnlockPath, http.MethodPost, o.Unlock),
		cmdutil.NewHTTPHandler(LockPath, http.MethodPost, o.Lock),
	}
}

// GenerateKey swagger:route POST /keys keymgr generateKey
//
// Generates a key.
//
// Responses:
//    default: genericError
//        200: keyInfoRes
func (o *Operation) GenerateKey(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.GenerateKey, rw, req.Body)
}

// GetKeyInfos swagger:route GET /keys keymgr getKeyInfos
//
// Lists keys, optionally filtered by the authType bitmask query parameter.
//
// Responses:
//    default: genericError
//        200: getKeyInfosRes
func (o *Operation) GetKeyInfos(rw http.ResponseWriter, req *http.Request) {
	request := cmdkeymgr.GetKeyInfosRequest{}

	if v := req.URL.Query().Get(authTypeQueryParam); v != "" {
		mask, err := strconv.Atoi(v)
		if err != nil {
			rest.SendHTTPStatusError(rw, http.StatusBadRequest, cmdkeymgr.InvalidRequestErrorCode,
				fmt.Errorf("invalid %s: %w", authTypeQueryParam, err))

			return
		}

		request.AuthType = mask
	}

	o.executeWith(o.command.GetKeyInfos, rw, request)
}

// QueryKeyInfos swagger:route POST /keys/query keymgr queryKeyInfos
//
// Returns keys by ids or by authType bitmask.
//
// Responses:
//    default: genericError
//        200: getKeyInfosRes
func (o *Operation) QueryKeyInfos(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.GetKeyInfos, rw, req.Body)
}

// Sign swagger:route POST /keys/sign keymgr sign
//
// Signs a digest.
//
// Responses:
//    default: genericError
//        200: signRes
func (o *Operation) Sign(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Sign, rw, req.Body)
}

// Verify swagger:route POST /keys/verify keymgr verify
//
// Verifies a compact signature.
//
// Responses:
//    default: genericError
//        200: verifyRes
func (o *Operation) Verify(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Verify, rw, req.Body)
}

// ChangePIN swagger:route POST /keys/pin keymgr changePin
//
// Changes the PIN of a WALLET_PIN key.
//
// Responses:
//    default: genericError
func (o *Operation) ChangePIN(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.ChangePIN, rw, req.Body)
}

// DeleteKeys swagger:route POST /keys/delete keymgr deleteKeys
//
// Deletes keys by id.
//
// Responses:
//    default: genericError
func (o *Operation) DeleteKeys(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.DeleteKeys, rw, req.Body)
}

// DeleteAllKeys swagger:route DELETE /keys keymgr deleteAllKeys
//
// Deletes every key of the wallet.
//
// Responses:
//    default: genericError
func (o *Operation) DeleteAllKeys(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.DeleteAllKeys, rw, req.Body)
}

// IsAnyKeySaved swagger:route GET /keys/saved keymgr isAnyKeySaved
//
// Tells whether the wallet holds any key.
//
// Responses:
//    default: genericError
//        200: isSavedRes
func (o *Operation) IsAnyKeySaved(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.IsAnyKeySaved, rw, req.Body)
}

// IsKeySaved swagger:route GET /keys/{id}/saved keymgr isKeySaved
//
// Tells whether a key exists.
//
// Responses:
//    default: genericError
//        200: isSavedRes
func (o *Operation) IsKeySaved(rw http.ResponseWriter, req *http.Request) {
	o.executeWith(o.command.IsKeySaved, rw, cmdkeymgr.IsKeySavedRequest{ID: mux.Vars(req)["id"]})
}

// Unlock swagger:route POST /keys/unlock keymgr unlock
//
// Unlocks the wallet session.
//
// Responses:
//    default: genericError
//        200: unlockRes
func (o *Operation) Unlock(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Unlock, rw, req.Body)
}

// Lock swagger:route POST /keys/lock keymgr lock
//
// Locks the wallet session.
//
// Responses:
//    default: genericError
//        200: lockRes
func (o *Operation) Lock(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Lock, rw, req.Body)
}

func (o *Operation) executeWith(exec command.Exec, rw http.ResponseWriter, request interface{}) {
	reqBytes, err := json.Marshal(request)
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusInternalServerError, command.UnknownStatus, err)

		return
	}

	rest.Execute(exec, rw, bytes.NewBuffer(reqBytes))
}
