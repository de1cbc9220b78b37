/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package local

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// MasterKeyFromPath reads the base64 (URL or standard alphabet) master key stored in the file at `path`.
func MasterKeyFromPath(path string) ([]byte, error) {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "read master key file %s", path)
	}

	return decodeMasterKey(raw)
}

// MasterKeyFromEnv reads the base64 master key found in the env variable with key: `envPrefix` + `keyURI`.
func MasterKeyFromEnv(envPrefix, keyURI string) ([]byte, error) {
	v, ok := os.LookupEnv(envPrefix + keyURI)
	if !ok {
		return nil, fmt.Errorf("env variable %s%s not set", envPrefix, keyURI)
	}

	return decodeMasterKey([]byte(v))
}

func decodeMasterKey(raw []byte) ([]byte, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "" {
		return nil, errors.New("master key is empty")
	}

	for _, enc := range []*base64.Encoding{
		base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding, base64.RawStdEncoding,
	} {
		if key, err := enc.DecodeString(s); err == nil {
			return key, nil
		}
	}

	return nil, errors.New("master key is not base64 encoded")
}
