/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package command

import (
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
)

// Type is command error type.
type Type int32

const (
	// ValidationError is error type for command validation errors.
	ValidationError Type = iota

	// ExecuteError is error type for command execution failure.
	ExecuteError Type = iota
)

// Code is the error code of command errors.
type Code int32

const (
	// UnknownStatus default error code for unknown errors.
	UnknownStatus Code = iota
)

// Group is the error groups.
// Note: recommended to use [0-9]*000 pattern for any new entries
// Example: 2000, 3000, 4000 ...... 25000.
type Group int32

const (
	// Common error group for general command errors.
	Common Group = 1000

	// KeyManager error group for wallet key manager command errors.
	KeyManager Group = 2000

	// WalletStore error group for DID and credential store command errors.
	WalletStore Group = 3000
)

// Error is the  interface for representing an command error condition, with the nil value representing no error.
type Error interface {
	error
	// Code returns error code for this command error.
	Code() Code
	// Type returns error type for this command error.
	Type() Type
}

// NewValidationError returns new command validation error.
func NewValidationError(code Code, err error) Error {
	return &commandError{err, code, ValidationError}
}

// NewExecuteError returns new command execute error.
func NewExecuteError(code Code, err error) Error {
	return &commandError{err, code, ExecuteError}
}

// WalletErrorCode returns the code of a wallet core error within group g: the group base offset by the error
// kind. Errors that did not come from the wallet core get the Unknown kind offset.
func WalletErrorCode(g Group, err error) Code {
	return Code(g) + Code(walleterr.KindOf(err))
}

// NewWalletError returns the command error of a wallet core error. Bad input (invalid parameters and
// undecodable values) is a validation error, everything else an execute error.
func NewWalletError(g Group, err error) Error {
	code := WalletErrorCode(g, err)

	switch walleterr.KindOf(err) {
	case walleterr.InvalidParameter, walleterr.DecodeError:
		return NewValidationError(code, err)
	default:
		return NewExecuteError(code, err)
	}
}

// commandError implements basic command Error.
type commandError struct {
	error
	code    Code
	errType Type
}

func (c *commandError) Code() Code {
	return c.code
}

func (c *commandError) Type() Type {
	return c.errType
}

func (c *commandError) Unwrap() error {
	return c.error
}
