/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keymgr

import (
	"context"
	"io"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/codec"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/internal/logutil"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/kms/keymanager"
)

var logger = log.New("didwallet/command/keymgr")

// InvalidRequestErrorCode is the code of malformed requests. Other codes are the KeyManager group offset by the
// wallet error kind, see command.WalletErrorCode.
const InvalidRequestErrorCode = command.Code(command.KeyManager) + command.Code(walleterr.InvalidParameter)

// constants for key manager commands.
const (
	// command name.
	CommandName = "keymgr"

	// command methods.
	GenerateKeyCommandMethod   = "GenerateKey"
	SignCommandMethod          = "Sign"
	VerifyCommandMethod        = "Verify"
	ChangePINCommandMethod     = "ChangePIN"
	GetKeyInfosCommandMethod   = "GetKeyInfos"
	DeleteKeysCommandMethod    = "DeleteKeys"
	DeleteAllKeysCommandMethod = "DeleteAllKeys"
	IsKeySavedCommandMethod    = "IsKeySaved"
	IsAnyKeySavedCommandMethod = "IsAnyKeySaved"
	UnlockCommandMethod        = "Unlock"
	LockCommandMethod          = "Lock"
)

//nolint:gochecknoglobals
var commandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "didwallet_keymgr_commands_total",
		Help: "Total number of key manager commands by method and result",
	},
	[]string{"method", "result"},
)

// Option configures the command.
type Option func(c *Command)

// WithSignTimeout bounds the time a Sign call may wait for user authentication.
func WithSignTimeout(d time.Duration) Option {
	return func(c *Command) {
		c.signTimeout = d
	}
}

// Command contains the key manager operations exposed by the controller.
type Command struct {
	manager     *keymanager.Manager
	log         *logutil.CommandLogger
	signTimeout time.Duration
}

// New returns new key manager command instance.
func New(manager *keymanager.Manager, opts ...Option) *Command {
	c := &Command{
		manager: manager,
		log:     logutil.NewCommandLogger(logger, CommandName),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetHandlers returns list of all commands supported by this controller command.
func (o *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, GenerateKeyCommandMethod, o.GenerateKey),
		cmdutil.NewCommandHandler(CommandName, SignCommandMethod, o.Sign),
		cmdutil.NewCommandHandler(CommandName, VerifyCommandMethod, o.Verify),
		cmdutil.NewCommandHandler(CommandName, ChangePINCommandMethod, o.ChangePIN),
		cmdutil.NewCommandHandler(CommandName, GetKeyInfosCommandMethod, o.GetKeyInfos),
		cmdutil.NewCommandHandler(CommandName, DeleteKeysCommandMethod, o.DeleteKeys),
		cmdutil.NewCommandHandler(CommandName, DeleteAllKeysCommandMethod, o.DeleteAllKeys),
		cmdutil.NewCommandHandler(CommandName, IsKeySavedCommandMethod, o.IsKeySaved),
		cmdutil.NewCommandHandler(CommandName, IsAnyKeySavedCommandMethod, o.IsAnyKeySaved),
		cmdutil.NewCommandHandler(CommandName, UnlockCommandMethod, o.Unlock),
		cmdutil.NewCommandHandler(CommandName, LockCommandMethod, o.Lock),
	}
}

// GenerateKey generates a key in the tier named by the access method.
func (o *Command) GenerateKey(rw io.Writer, req io.Reader) command.Error {
	var request GenerateKeyRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(GenerateKeyCommandMethod, err)
	}

	alg := keymanager.Algorithm(request.Algorithm)
	if alg == "" {
		alg = keymanager.SECP256R1
	}

	info, err := o.manager.GenerateKey(&keymanager.GenerateKeyRequest{
		ID:           request.ID,
		Algorithm:    alg,
		AccessMethod: keymanager.AccessMethod(request.AccessMethod),
		PIN:          []byte(request.PIN),
		Prompt:       request.Prompt,
	})
	if err != nil {
		return o.failed(GenerateKeyCommandMethod, err, logutil.KeyValue("id", request.ID))
	}

	return o.respond(rw, GenerateKeyCommandMethod, &KeyInfoResponse{KeyInfo: info}, logutil.KeyValue("id", info.ID))
}

// Sign signs a digest with a stored key and returns the compact signature.
func (o *Command) Sign(rw io.Writer, req io.Reader) command.Error {
	var request SignRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(SignCommandMethod, err)
	}

	digest, err := digestOf(request.Digest, request.Data)
	if err != nil {
		return o.failed(SignCommandMethod, err, logutil.KeyValue("id", request.ID))
	}

	ctx := context.Background()

	if o.signTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, o.signTimeout)
		defer cancel()
	}

	sig, err := o.manager.Sign(ctx, request.ID, []byte(request.Secret), digest)
	if err != nil {
		return o.failed(SignCommandMethod, err, logutil.KeyValue("id", request.ID))
	}

	return o.respond(rw, SignCommandMethod, &SignResponse{Signature: codec.EncodeDefault(sig)},
		logutil.KeyValue("id", request.ID))
}

// Verify checks a compact signature against a public key.
func (o *Command) Verify(rw io.Writer, req io.Reader) command.Error {
	var request VerifyRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(VerifyCommandMethod, err)
	}

	alg := keymanager.Algorithm(request.Algorithm)
	if alg == "" {
		alg = keymanager.SECP256R1
	}

	pub, err := codec.Decode("publicKey", request.PublicKey)
	if err != nil {
		return o.failed(VerifyCommandMethod, err)
	}

	sig, err := codec.Decode("signature", request.Signature)
	if err != nil {
		return o.failed(VerifyCommandMethod, err)
	}

	digest, err := digestOf(request.Digest, request.Data)
	if err != nil {
		return o.failed(VerifyCommandMethod, err)
	}

	ok, err := o.manager.Verify(alg, pub, digest, sig)
	if err != nil {
		return o.failed(VerifyCommandMethod, err)
	}

	return o.respond(rw, VerifyCommandMethod, &VerifyResponse{Verified: ok})
}

// ChangePIN re-wraps a WALLET_PIN key under a new PIN.
func (o *Command) ChangePIN(rw io.Writer, req io.Reader) command.Error {
	var request ChangePINRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(ChangePINCommandMethod, err)
	}

	err := o.manager.ChangePIN(request.ID, []byte(request.OldPIN), []byte(request.NewPIN))
	if err != nil {
		return o.failed(ChangePINCommandMethod, err, logutil.KeyValue("id", request.ID))
	}

	return o.respond(rw, ChangePINCommandMethod, nil, logutil.KeyValue("id", request.ID))
}

// GetKeyInfos returns stored keys selected by ids or by an auth type mask.
func (o *Command) GetKeyInfos(rw io.Writer, req io.Reader) command.Error {
	var request GetKeyInfosRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(GetKeyInfosCommandMethod, err)
	}

	var (
		infos []keymanager.KeyInfo
		err   error
	)

	if len(request.IDs) > 0 {
		infos, err = o.manager.GetKeyInfos(request.IDs)
	} else {
		infos, err = o.manager.GetKeyInfosByAuthType(keymanager.AuthType(request.AuthType))
	}

	if err != nil {
		return o.failed(GetKeyInfosCommandMethod, err)
	}

	if infos == nil {
		infos = []keymanager.KeyInfo{}
	}

	return o.respond(rw, GetKeyInfosCommandMethod, &GetKeyInfosResponse{KeyInfos: infos})
}

// DeleteKeys deletes keys by id.
func (o *Command) DeleteKeys(rw io.Writer, req io.Reader) command.Error {
	var request DeleteKeysRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(DeleteKeysCommandMethod, err)
	}

	if err := o.manager.DeleteKeys(request.IDs); err != nil {
		return o.failed(DeleteKeysCommandMethod, err)
	}

	return o.respond(rw, DeleteKeysCommandMethod, nil)
}

// DeleteAllKeys deletes every key of the namespace.
func (o *Command) DeleteAllKeys(rw io.Writer, _ io.Reader) command.Error {
	if err := o.manager.DeleteAllKeys(); err != nil {
		return o.failed(DeleteAllKeysCommandMethod, err)
	}

	return o.respond(rw, DeleteAllKeysCommandMethod, nil)
}

// IsKeySaved reports whether a key exists.
func (o *Command) IsKeySaved(rw io.Writer, req io.Reader) command.Error {
	var request IsKeySavedRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(IsKeySavedCommandMethod, err)
	}

	saved, err := o.manager.IsKeySaved(request.ID)
	if err != nil {
		return o.failed(IsKeySavedCommandMethod, err, logutil.KeyValue("id", request.ID))
	}

	return o.respond(rw, IsKeySavedCommandMethod, &IsSavedResponse{Saved: saved})
}

// IsAnyKeySaved reports whether the namespace holds any key.
func (o *Command) IsAnyKeySaved(rw io.Writer, _ io.Reader) command.Error {
	saved, err := o.manager.IsAnyKeySaved()
	if err != nil {
		return o.failed(IsAnyKeySavedCommandMethod, err)
	}

	return o.respond(rw, IsAnyKeySavedCommandMethod, &IsSavedResponse{Saved: saved})
}

// Unlock opens the wallet session with the passcode of a WALLET_PIN key.
func (o *Command) Unlock(rw io.Writer, req io.Reader) command.Error {
	var request UnlockRequest

	if err := command.DecodeRequest(req, &request); err != nil {
		return o.invalid(UnlockCommandMethod, err)
	}

	token, err := o.manager.Unlock(request.KeyID, []byte(request.Passcode))
	if err != nil {
		return o.failed(UnlockCommandMethod, err, logutil.KeyValue("keyId", request.KeyID))
	}

	return o.respond(rw, UnlockCommandMethod, &UnlockResponse{Token: token})
}

// Lock closes the wallet session.
func (o *Command) Lock(rw io.Writer, _ io.Reader) command.Error {
	return o.respond(rw, LockCommandMethod, &LockResponse{Closed: o.manager.Lock()})
}

func (o *Command) respond(rw io.Writer, method string, v interface{}, data ...string) command.Error {
	command.WriteNillableResponse(rw, v, logger)

	commandsTotal.WithLabelValues(method, "success").Inc()
	o.log.Debug(method, "success", data...)

	return nil
}

func (o *Command) invalid(method string, err error) command.Error {
	commandsTotal.WithLabelValues(method, "invalid").Inc()
	o.log.Info(method, err.Error())

	return command.NewValidationError(InvalidRequestErrorCode, err)
}

func (o *Command) failed(method string, err error, data ...string) command.Error {
	cmdErr := command.NewWalletError(command.KeyManager, err)

	if cmdErr.Type() == command.ValidationError {
		commandsTotal.WithLabelValues(method, "invalid").Inc()
		o.log.Info(method, err.Error(), data...)
	} else {
		commandsTotal.WithLabelValues(method, "error").Inc()
		o.log.Error(method, err.Error(), data...)
	}

	return cmdErr
}

func digestOf(digest, data string) ([]byte, error) {
	if digest != "" {
		return codec.Decode("digest", digest)
	}

	if data == "" {
		return nil, walleterr.Invalid("digest", "digest or data is mandatory")
	}

	return codec.SHA256Digest([]byte(data))
}
