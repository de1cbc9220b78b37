/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package codec

import (
	"fmt"

	"github.com/google/tink/go/subtle"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
)

// DigestAlgorithm is a hash algorithm name as understood by tink.
type DigestAlgorithm string

// Supported digest algorithms.
const (
	SHA256 DigestAlgorithm = "SHA256"
	SHA384 DigestAlgorithm = "SHA384"
	SHA512 DigestAlgorithm = "SHA512"
)

// Digest hashes data with alg.
func Digest(alg DigestAlgorithm, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, walleterr.Invalid("data", "data to digest is empty")
	}

	switch alg {
	case SHA256, SHA384, SHA512:
	default:
		return nil, walleterr.Invalid("algorithm", fmt.Sprintf("unsupported digest algorithm %q", alg))
	}

	return subtle.ComputeHash(subtle.GetHashFunc(string(alg)), data)
}

// SHA256Digest hashes data with SHA-256.
func SHA256Digest(data []byte) ([]byte, error) {
	return Digest(SHA256, data)
}
