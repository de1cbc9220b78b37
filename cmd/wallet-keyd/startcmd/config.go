/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// walletParameters holds the daemon settings. Keys are the flag names, so a config file uses the same
// vocabulary as the command line.
type walletParameters struct {
	Host               string        `mapstructure:"api-host"`
	Token              string        `mapstructure:"api-token"`
	DBType             string        `mapstructure:"database-type"`
	DBPath             string        `mapstructure:"database-path"`
	DBTimeout          uint64        `mapstructure:"database-timeout"`
	Namespace          string        `mapstructure:"namespace"`
	KeystorePassphrase string        `mapstructure:"keystore-passphrase"`
	MasterKeyFile      string        `mapstructure:"keystore-master-key-file"`
	EncryptStore       bool          `mapstructure:"encrypt-store"`
	SessionIdleTimeout time.Duration `mapstructure:"session-idle-timeout"`
	SignTimeout        time.Duration `mapstructure:"sign-timeout"`
	LogLevel           string        `mapstructure:"log-level"`
	CORSOrigins        []string      `mapstructure:"cors-origin"`
	TLSCertFile        string        `mapstructure:"tls-cert-file"`
	TLSKeyFile         string        `mapstructure:"tls-key-file"`
}

type flagEnv struct {
	flag, env string
	list      bool
}

// nolint:gochecknoglobals
var settableVars = []flagEnv{
	{flag: hostFlagName, env: hostEnvKey},
	{flag: tokenFlagName, env: tokenEnvKey},
	{flag: databaseTypeFlagName, env: databaseTypeEnvKey},
	{flag: databasePathFlagName, env: databasePathEnvKey},
	{flag: databaseTimeoutFlagName, env: databaseTimeoutEnvKey},
	{flag: namespaceFlagName, env: namespaceEnvKey},
	{flag: passphraseFlagName, env: passphraseEnvKey},
	{flag: masterKeyFileFlagName, env: masterKeyFileEnvKey},
	{flag: encryptStoreFlagName, env: encryptStoreEnvKey},
	{flag: sessionIdleFlagName, env: sessionIdleEnvKey},
	{flag: signTimeoutFlagName, env: signTimeoutEnvKey},
	{flag: logLevelFlagName, env: logLevelEnvKey},
	{flag: corsOriginFlagName, env: corsOriginEnvKey, list: true},
	{flag: tlsCertFileFlagName, env: tlsCertFileEnvKey},
	{flag: tlsKeyFileFlagName, env: tlsKeyFileEnvKey},
}

// getParameters merges defaults, the config file, environment variables and flags, later sources winning.
func getParameters(cmd *cobra.Command) (*walletParameters, error) {
	configFile, err := getUserSetVar(cmd, configFileFlagName, configFileEnvKey, true)
	if err != nil {
		return nil, err
	}

	values := map[string]interface{}{
		databaseTypeFlagName:    databaseTypeMemOption,
		databaseTimeoutFlagName: databaseTimeoutDefault,
	}

	if configFile != "" {
		fileValues, e := readConfigFile(configFile)
		if e != nil {
			return nil, e
		}

		for k, v := range fileValues {
			values[k] = v
		}
	}

	for _, v := range settableVars {
		if v.list {
			vals, e := getUserSetVars(cmd, v.flag, v.env, true)
			if e != nil {
				return nil, e
			}

			if len(vals) > 0 {
				values[v.flag] = vals
			}

			continue
		}

		val, e := getUserSetVar(cmd, v.flag, v.env, true)
		if e != nil {
			return nil, e
		}

		if val != "" {
			values[v.flag] = val
		}
	}

	return decodeParameters(values)
}

func readConfigFile(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	values := map[string]interface{}{}

	if err = yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return values, nil
}

func decodeParameters(values map[string]interface{}) (*walletParameters, error) {
	params := &walletParameters{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           params,
	})
	if err != nil {
		return nil, err
	}

	if err = decoder.Decode(values); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	return params, nil
}
