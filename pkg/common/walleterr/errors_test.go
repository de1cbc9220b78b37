/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walleterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("sentinel matching by code", func(t *testing.T) {
		err := fmt.Errorf("sign: %w", ErrKeyNotFound.With("id", nil))

		require.ErrorIs(t, err, ErrKeyNotFound)
		require.NotErrorIs(t, err, ErrDuplicateKeyID)
		require.Equal(t, NotFound, KindOf(err))
		require.Equal(t, CodeKeyNotFound, CodeOf(err))
		require.EqualError(t, err, "sign: KeyNotFound [param=id]")
	})

	t.Run("cause is kept", func(t *testing.T) {
		cause := errors.New("bad padding")
		err := Crypto(CodeDecrypt, cause)

		require.ErrorIs(t, err, cause)
		require.True(t, IsKind(err, CryptoError))
		require.EqualError(t, err, "Decrypt: bad padding")
	})

	t.Run("foreign errors", func(t *testing.T) {
		err := errors.New("boom")

		require.Equal(t, Unknown, KindOf(err))
		require.Empty(t, CodeOf(err))
		require.Equal(t, "Unknown", KindOf(err).String())
	})

	t.Run("invalid parameter", func(t *testing.T) {
		err := Invalid("digest", "digest is mandatory")

		require.Equal(t, InvalidParameter, err.Kind)
		require.EqualError(t, err, "InvalidParameter [param=digest]: digest is mandatory")
		require.Equal(t, "InvalidParameter", err.Kind.String())
	})
}
