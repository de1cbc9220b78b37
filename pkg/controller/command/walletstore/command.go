/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walletstore

import (
	"errors"
	"io"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/logutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/did"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/verifiable"
)

var logger = log.New("didwallet/command/walletstore")

// InvalidRequestErrorCode is the code of malformed requests.
const InvalidRequestErrorCode = command.Code(command.WalletStore) + command.Code(walleterr.InvalidParameter)

// constants for wallet store commands.
const (
	// command name.
	CommandName = "walletstore"

	// command methods.
	SaveDIDCommandMethod              = "SaveDID"
	UpdateDIDCommandMethod            = "UpdateDID"
	GetDIDCommandMethod               = "GetDID"
	GetDIDRecordsCommandMethod        = "GetDIDRecords"
	DeleteDIDsCommandMethod           = "DeleteDIDs"
	SaveCredentialCommandMethod       = "SaveCredential"
	GetCredentialCommandMethod        = "GetCredential"
	GetCredentialRecordsCommandMethod = "GetCredentialRecords"
	RemoveCredentialsCommandMethod    = "RemoveCredentials"
)

// Command exposes the DID and credential wallet stores.
type Command struct {
	dids *did.Store
	vcs  *verifiable.Store
	log  *logutil.CommandLogger
}

// New returns new wallet store command instance.
func New(dids *did.Store, vcs *verifiable.Store) *Command {
	return &Command{dids: dids, vcs: vcs, log: logutil.NewCommandLogger(logger, CommandName)}
}

// GetHandlers returns list of all commands supported by this controller command.
func (o *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, SaveDIDCommandMethod, o.SaveDID),
		cmdutil.NewCommandHandler(CommandName, UpdateDIDCommandMethod, o.UpdateDID),
		cmdutil.NewCommandHandler(CommandName, GetDIDCommandMethod, o.GetDID),
		cmdutil.NewCommandHandler(CommandName, GetDIDRecordsCommandMethod, o.GetDIDRecords),
		cmdutil.NewCommandHandler(CommandName, DeleteDIDsCommandMethod, o.DeleteDIDs),
		cmdutil.NewCommandHandler(CommandName, SaveCredentialCommandMethod, o.SaveCredential),
		cmdutil.NewCommandHandler(CommandName, GetCredentialCommandMethod, o.GetCredential),
		cmdutil.NewCommandHandler(CommandName, GetCredentialRecordsCommandMethod, o.GetCredentialRecords),
		cmdutil.NewCommandHandler(CommandName, RemoveCredentialsCommandMethod, o.RemoveCredentials),
	}
}

// SaveDID saves a DID document under a name.
func (o *Command) SaveDID(rw io.Writer, req io.Reader) command.Error {
	var request SaveDIDRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(SaveDIDCommandMethod, err)
	}

	if err := o.dids.SaveDID(request.Name, request.DID); err != nil {
		return o.failed(SaveDIDCommandMethod, err, logutil.KeyValue("name", request.Name))
	}

	return o.respond(rw, SaveDIDCommandMethod, nil, logutil.KeyValue("name", request.Name))
}

// UpdateDID replaces a stored DID document.
func (o *Command) UpdateDID(rw io.Writer, req io.Reader) command.Error {
	var request UpdateDIDRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(UpdateDIDCommandMethod, err)
	}

	if err := o.dids.UpdateDID(request.DID); err != nil {
		return o.failed(UpdateDIDCommandMethod, err)
	}

	return o.respond(rw, UpdateDIDCommandMethod, nil)
}

// GetDID returns a stored DID document.
func (o *Command) GetDID(rw io.Writer, req io.Reader) command.Error {
	var request IDRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(GetDIDCommandMethod, err)
	}

	doc, err := o.dids.GetDID(request.ID)
	if err != nil {
		return o.failed(GetDIDCommandMethod, err, logutil.KeyValue("id", request.ID))
	}

	return o.respond(rw, GetDIDCommandMethod, &DocumentResponse{DID: doc}, logutil.KeyValue("id", request.ID))
}

// GetDIDRecords lists the stored DID documents.
func (o *Command) GetDIDRecords(rw io.Writer, _ io.Reader) command.Error {
	recs, err := o.dids.GetDIDRecords()
	if err != nil {
		return o.failed(GetDIDRecordsCommandMethod, err)
	}

	if recs == nil {
		recs = []did.Record{}
	}

	return o.respond(rw, GetDIDRecordsCommandMethod, &DIDRecordsResponse{Result: recs})
}

// DeleteDIDs deletes DID documents by id.
func (o *Command) DeleteDIDs(rw io.Writer, req io.Reader) command.Error {
	var request IDsRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(DeleteDIDsCommandMethod, err)
	}

	if err := o.dids.DeleteDIDs(request.IDs...); err != nil {
		return o.failed(DeleteDIDsCommandMethod, err)
	}

	return o.respond(rw, DeleteDIDsCommandMethod, nil)
}

// SaveCredential saves a verifiable credential.
func (o *Command) SaveCredential(rw io.Writer, req io.Reader) command.Error {
	var request SaveCredentialRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(SaveCredentialCommandMethod, err)
	}

	if err := o.vcs.SaveVC(request.Name, request.VerifiableCredential); err != nil {
		return o.failed(SaveCredentialCommandMethod, err, logutil.KeyValue("name", request.Name))
	}

	return o.respond(rw, SaveCredentialCommandMethod, nil, logutil.KeyValue("name", request.Name))
}

// GetCredential returns a stored verifiable credential.
func (o *Command) GetCredential(rw io.Writer, req io.Reader) command.Error {
	var request IDRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(GetCredentialCommandMethod, err)
	}

	vc, err := o.vcs.GetVC(request.ID)
	if err != nil {
		return o.failed(GetCredentialCommandMethod, err, logutil.KeyValue("id", request.ID))
	}

	return o.respond(rw, GetCredentialCommandMethod, &CredentialResponse{VerifiableCredential: vc},
		logutil.KeyValue("id", request.ID))
}

// GetCredentialRecords lists the stored credentials, optionally of one type.
func (o *Command) GetCredentialRecords(rw io.Writer, req io.Reader) command.Error {
	var request CredentialRecordsRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(GetCredentialRecordsCommandMethod, err)
	}

	var (
		recs []verifiable.Record
		err  error
	)

	if request.Type != "" {
		recs, err = o.vcs.GetCredentialRecordsByType(request.Type)
	} else {
		recs, err = o.vcs.GetCredentialRecords()
	}

	if err != nil {
		return o.failed(GetCredentialRecordsCommandMethod, err)
	}

	if recs == nil {
		recs = []verifiable.Record{}
	}

	return o.respond(rw, GetCredentialRecordsCommandMethod, &CredentialRecordsResponse{Result: recs})
}

// RemoveCredentials removes verifiable credentials by id.
func (o *Command) RemoveCredentials(rw io.Writer, req io.Reader) command.Error {
	var request IDsRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(RemoveCredentialsCommandMethod, err)
	}

	if err := o.vcs.RemoveVCs(request.IDs...); err != nil {
		return o.failed(RemoveCredentialsCommandMethod, err)
	}

	return o.respond(rw, RemoveCredentialsCommandMethod, nil)
}

func (o *Command) respond(rw io.Writer, method string, v interface{}, data ...string) command.Error {
	command.WriteNillableResponse(rw, v, logger)
	o.log.Debug(method, "success", data...)

	return nil
}

func (o *Command) invalid(method string, err error) command.Error {
	o.log.Info(method, err.Error())

	return command.NewValidationError(InvalidRequestErrorCode, err)
}

func (o *Command) failed(method string, err error, data ...string) command.Error {
	var werr *walleterr.Error
	if errors.As(err, &werr) && werr.Kind == walleterr.TamperDetected {
		logger.Warnf("wallet file signature check failed on %s: the wallet must be provisioned again", method)
	}

	o.log.Error(method, err.Error(), data...)

	return command.NewWalletError(command.WalletStore, err)
}
