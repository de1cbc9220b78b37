/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package walleterr holds the typed errors returned by the wallet key manager, the EC signature engine and the
// secure item store.
//
// Every error carries a Kind (the broad failure class, used by callers to pick a recovery path), a Code (the
// precise condition) and, where applicable, the name of the offending parameter.
package walleterr

import (
	"errors"
	"fmt"
)

// Kind is the failure class of a wallet error.
type Kind int

const (
	// Unknown is the kind of errors that were not produced by the wallet core.
	Unknown Kind = iota
	// InvalidParameter is bad or missing input. The caller can recover by fixing the input.
	InvalidParameter
	// DuplicatedParameter is an id collision.
	DuplicatedParameter
	// NotFound is a missing key, item or wallet file.
	NotFound
	// DecodeError is a transport or JSON decoding failure.
	DecodeError
	// CryptoError is a sign/verify/encrypt/decrypt primitive failure, including key pair mismatches.
	CryptoError
	// TamperDetected is a wallet file signature verification failure. It must not be retried: the wallet file
	// has to be deleted and provisioned again.
	TamperDetected
	// KeystoreError is an opaque keystore failure, including biometric cancel/failure.
	KeystoreError
	// WalletLocked is returned when a signing operation is attempted while the wallet session is locked.
	WalletLocked
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case InvalidParameter:
		return "InvalidParameter"
	case DuplicatedParameter:
		return "DuplicatedParameter"
	case NotFound:
		return "NotFound"
	case DecodeError:
		return "DecodeError"
	case CryptoError:
		return "CryptoError"
	case TamperDetected:
		return "TamperDetected"
	case KeystoreError:
		return "KeystoreError"
	case WalletLocked:
		return "WalletLocked"
	case Unknown:
	}

	return "Unknown"
}

// Code is the precise condition of a wallet error.
type Code string

// Error codes.
const (
	CodeInvalidParameter         Code = "InvalidParameter"
	CodeDuplicatedParameter      Code = "DuplicatedParameter"
	CodeDuplicateKeyID           Code = "DuplicateKeyId"
	CodeKeyNotFound              Code = "KeyNotFound"
	CodeUnsupportedAlgorithm     Code = "UnsupportedAlgorithm"
	CodeNewPinEqualsOldPin       Code = "NewPinEqualsOldPin"
	CodeNotPinKey                Code = "NotPinKey"
	CodeNoKeyForType             Code = "NoKeyForType"
	CodeInsufficientResult       Code = "InsufficientResult"
	CodeItemNotFound             Code = "ItemNotFound"
	CodeNoItemToUpdate           Code = "NoItemToUpdate"
	CodeNoItemsToRemove          Code = "NoItemsToRemove"
	CodeNoItemsSaved             Code = "NoItemsSaved"
	CodeMalformedWalletSignature Code = "MalformedWalletSignature"
	CodeDecode                   Code = "Decode"
	CodeKeyGen                   Code = "KeyGen"
	CodeSign                     Code = "Sign"
	CodeVerify                   Code = "Verify"
	CodeKeyMismatch              Code = "KeyMismatch"
	CodeEncrypt                  Code = "Encrypt"
	CodeDecrypt                  Code = "Decrypt"
	CodeKeystore                 Code = "Keystore"
	CodeWalletLocked             Code = "WalletLocked"
)

// Sentinel errors, usable with errors.Is. Matching is done on Code.
var (
	ErrDuplicateKeyID           = &Error{Kind: DuplicatedParameter, Code: CodeDuplicateKeyID}
	ErrKeyNotFound              = &Error{Kind: NotFound, Code: CodeKeyNotFound}
	ErrUnsupportedAlgorithm     = &Error{Kind: InvalidParameter, Code: CodeUnsupportedAlgorithm}
	ErrNewPinEqualsOldPin       = &Error{Kind: InvalidParameter, Code: CodeNewPinEqualsOldPin}
	ErrNotPinKey                = &Error{Kind: InvalidParameter, Code: CodeNotPinKey}
	ErrNoKeyForType             = &Error{Kind: NotFound, Code: CodeNoKeyForType}
	ErrInsufficientResult       = &Error{Kind: NotFound, Code: CodeInsufficientResult}
	ErrItemNotFound             = &Error{Kind: NotFound, Code: CodeItemNotFound}
	ErrNoItemToUpdate           = &Error{Kind: NotFound, Code: CodeNoItemToUpdate}
	ErrNoItemsToRemove          = &Error{Kind: NotFound, Code: CodeNoItemsToRemove}
	ErrNoItemsSaved             = &Error{Kind: NotFound, Code: CodeNoItemsSaved}
	ErrMalformedWalletSignature = &Error{Kind: TamperDetected, Code: CodeMalformedWalletSignature}
	ErrKeyMismatch              = &Error{Kind: CryptoError, Code: CodeKeyMismatch}
	ErrWalletLocked             = &Error{Kind: WalletLocked, Code: CodeWalletLocked}
)

// Error is a wallet error.
type Error struct {
	Kind  Kind
	Code  Code
	Param string
	Err   error
}

// Error returns the error message.
func (e *Error) Error() string {
	msg := string(e.Code)

	if e.Param != "" {
		msg = fmt.Sprintf("%s [param=%s]", msg, e.Param)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}

	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a wallet error target with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// New returns an error of kind k and code c for parameter param.
func New(k Kind, c Code, param string) *Error {
	return &Error{Kind: k, Code: c, Param: param}
}

// Wrap returns an error of kind k and code c for parameter param caused by err.
func Wrap(k Kind, c Code, param string, err error) *Error {
	return &Error{Kind: k, Code: c, Param: param, Err: err}
}

// Invalid returns an InvalidParameter error for param.
func Invalid(param, reason string) *Error {
	return &Error{Kind: InvalidParameter, Code: CodeInvalidParameter, Param: param, Err: errors.New(reason)}
}

// Decode returns a DecodeError for param caused by err.
func Decode(param string, err error) *Error {
	return &Error{Kind: DecodeError, Code: CodeDecode, Param: param, Err: err}
}

// Crypto returns a CryptoError with code c caused by err.
func Crypto(c Code, err error) *Error {
	return &Error{Kind: CryptoError, Code: c, Err: err}
}

// Keystore returns a KeystoreError for alias caused by err.
func Keystore(alias string, err error) *Error {
	return &Error{Kind: KeystoreError, Code: CodeKeystore, Param: alias, Err: err}
}

// With returns a copy of the sentinel e for parameter param, optionally caused by err.
func (e *Error) With(param string, err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Param: param, Err: err}
}

// KindOf returns the Kind of the first wallet error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Unknown
}

// CodeOf returns the Code of the first wallet error in err's chain, or an empty code.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ""
}

// IsKind reports whether err is a wallet error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
