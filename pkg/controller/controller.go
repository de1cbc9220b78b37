/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"time"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command"
	keymgrcmd "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command/keymgr"
	walletstorecmd "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/command/walletstore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/rest"
	keymgrrest "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/rest/keymgr"
	walletstorerest "github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller/rest/walletstore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/framework/context"
)

type allOpts struct {
	signTimeout time.Duration
}

// Opt represents a controller option.
type Opt func(opts *allOpts)

// WithSignTimeout bounds the time a sign request may wait for user authentication.
func WithSignTimeout(d time.Duration) Opt {
	return func(opts *allOpts) {
		opts.signTimeout = d
	}
}

// GetRESTHandlers returns all REST handlers provided by controller.
func GetRESTHandlers(ctx *context.Provider, opts ...Opt) ([]rest.Handler, error) {
	restAPIOpts := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(restAPIOpts)
	}

	// key manager REST operation
	keymgrOp := keymgrrest.New(ctx.KeyManager(), keymgrcmd.WithSignTimeout(restAPIOpts.signTimeout))

	// DID and credential store REST operation
	storeOp := walletstorerest.New(ctx.DIDStore(), ctx.CredentialStore())

	// creat handlers from all operations
	var allHandlers []rest.Handler
	allHandlers = append(allHandlers, keymgrOp.GetRESTHandlers()...)
	allHandlers = append(allHandlers, storeOp.GetRESTHandlers()...)

	return allHandlers, nil
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(ctx *context.Provider, opts ...Opt) ([]command.Handler, error) {
	cmdOpts := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(cmdOpts)
	}

	keymgrCmd := keymgrcmd.New(ctx.KeyManager(), keymgrcmd.WithSignTimeout(cmdOpts.signTimeout))
	storeCmd := walletstorecmd.New(ctx.DIDStore(), ctx.CredentialStore())

	var allHandlers []command.Handler
	allHandlers = append(allHandlers, keymgrCmd.GetHandlers()...)
	allHandlers = append(allHandlers, storeCmd.GetHandlers()...)

	return allHandlers, nil
}
