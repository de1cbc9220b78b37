/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storage/leveldb"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/secretlock"
	spistorage "github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/controller"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/framework/context"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/keystore/softkeystore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/kms/keymanager"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/secretlock/local"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/secretlock/local/masterlock/hkdf"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/secretlock/local/masterlock/pbkdf2"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/secretlock/noop"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage/filestore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage/spistore"
)

const (
	envPrefix = "WALLETD_"

	// api host flag.
	hostFlagName      = "api-host"
	hostEnvKey        = envPrefix + "API_HOST"
	hostFlagShorthand = "a"
	hostFlagUsage     = "Host Name:Port." +
		" Alternatively, this can be set with the following environment variable: " + hostEnvKey

	// api token flag.
	tokenFlagName      = "api-token"
	tokenEnvKey        = envPrefix + "API_TOKEN" // nolint:gosec
	tokenFlagShorthand = "t"
	tokenFlagUsage     = "Check for bearer token in the authorization header (optional)." +
		" Alternatively, this can be set with the following environment variable: " + tokenEnvKey

	databaseTypeFlagName      = "database-type"
	databaseTypeEnvKey        = envPrefix + "DATABASE_TYPE"
	databaseTypeFlagShorthand = "q"
	databaseTypeFlagUsage     = "The type of database holding wallet files and keys." +
		" Supported options: mem, leveldb, file. Defaults to mem." +
		" Alternatively, this can be set with the following environment variable: " + databaseTypeEnvKey

	databasePathFlagName      = "database-path"
	databasePathEnvKey        = envPrefix + "DATABASE_PATH"
	databasePathFlagShorthand = "p"
	databasePathFlagUsage     = "Directory of the database. Not needed if using mem." +
		" Alternatively, this can be set with the following environment variable: " + databasePathEnvKey

	databaseTimeoutFlagName  = "database-timeout"
	databaseTimeoutEnvKey    = envPrefix + "DATABASE_TIMEOUT"
	databaseTimeoutDefault   = "30"
	databaseTimeoutFlagUsage = "Total time in seconds to wait until the db is available before giving up." +
		" Default: " + databaseTimeoutDefault + " seconds." +
		" Alternatively, this can be set with the following environment variable: " + databaseTimeoutEnvKey

	namespaceFlagName      = "namespace"
	namespaceEnvKey        = envPrefix + "NAMESPACE"
	namespaceFlagShorthand = "n"
	namespaceFlagUsage     = "Wallet namespace. Defaults to " + context.DefaultNamespace + "." +
		" Alternatively, this can be set with the following environment variable: " + namespaceEnvKey

	passphraseFlagName  = "keystore-passphrase"
	passphraseEnvKey    = envPrefix + "KEYSTORE_PASSPHRASE" // nolint:gosec
	passphraseFlagUsage = "Passphrase sealing the key material of the keystore (PBKDF2 lock)." +
		" Alternatively, this can be set with the following environment variable: " + passphraseEnvKey

	masterKeyFileFlagName  = "keystore-master-key-file"
	masterKeyFileEnvKey    = envPrefix + "KEYSTORE_MASTER_KEY_FILE"
	masterKeyFileFlagUsage = "File holding a base64 master key sealing the key material of the keystore (HKDF lock)." +
		" Alternatively, this can be set with the following environment variable: " + masterKeyFileEnvKey

	encryptStoreFlagName  = "encrypt-store"
	encryptStoreEnvKey    = envPrefix + "ENCRYPT_STORE"
	encryptStoreFlagUsage = "Encrypt the wallet files. Possible values [true] [false]. Defaults to false." +
		" Alternatively, this can be set with the following environment variable: " + encryptStoreEnvKey

	sessionIdleFlagName  = "session-idle-timeout"
	sessionIdleEnvKey    = envPrefix + "SESSION_IDLE_TIMEOUT"
	sessionIdleFlagUsage = "Idle time (e.g. 5m) after which an unlocked wallet locks again." +
		" When not set, wallet keys can be used without unlocking the wallet." +
		" Alternatively, this can be set with the following environment variable: " + sessionIdleEnvKey

	signTimeoutFlagName  = "sign-timeout"
	signTimeoutEnvKey    = envPrefix + "SIGN_TIMEOUT"
	signTimeoutFlagUsage = "Maximum time (e.g. 30s) a sign request waits for user authentication." +
		" Alternatively, this can be set with the following environment variable: " + signTimeoutEnvKey

	// log level.
	logLevelFlagName  = "log-level"
	logLevelEnvKey    = envPrefix + "LOG_LEVEL"
	logLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	configFileFlagName      = "config-file"
	configFileEnvKey        = envPrefix + "CONFIG_FILE"
	configFileFlagShorthand = "f"
	configFileFlagUsage     = "YAML file with any of the start flags as keys. Flags and environment variables" +
		" take precedence over its values." +
		" Alternatively, this can be set with the following environment variable: " + configFileEnvKey

	corsOriginFlagName  = "cors-origin"
	corsOriginEnvKey    = envPrefix + "CORS_ORIGIN"
	corsOriginFlagUsage = "Allowed CORS origin. This flag can be repeated. Defaults to any origin." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " +
		corsOriginEnvKey

	tlsCertFileFlagName      = "tls-cert-file"
	tlsCertFileEnvKey        = envPrefix + "TLS_CERT_FILE"
	tlsCertFileFlagShorthand = "c"
	tlsCertFileFlagUsage     = "tls certificate file." +
		" Alternatively, this can be set with the following environment variable: " + tlsCertFileEnvKey

	tlsKeyFileFlagName      = "tls-key-file"
	tlsKeyFileEnvKey        = envPrefix + "TLS_KEY_FILE"
	tlsKeyFileFlagShorthand = "k"
	tlsKeyFileFlagUsage     = "tls key file." +
		" Alternatively, this can be set with the following environment variable: " + tlsKeyFileEnvKey

	databaseTypeMemOption     = "mem"
	databaseTypeLevelDBOption = "leveldb"
	databaseTypeFileOption    = "file"

	metricsPath = "/metrics"

	keystoreDir   = "keystore"
	walletFileDir = "files"
)

var (
	errMissingHost = errors.New("host not provided")
	errBothLocks   = errors.New("keystore passphrase and master key file are mutually exclusive")
	logger         = log.New("didwallet/wallet-keyd")
)

type storageParts struct {
	backend  storage.Backend
	provider spistorage.Provider
}

// nolint:gochecknoglobals
var supportedStorage = map[string]func(path string) (*storageParts, error){
	databaseTypeMemOption: func(_ string) (*storageParts, error) {
		provider := mem.NewProvider()

		backend, err := spistore.New(provider, "")
		if err != nil {
			return nil, err
		}

		return &storageParts{backend: backend, provider: provider}, nil
	},
	databaseTypeLevelDBOption: func(path string) (*storageParts, error) {
		provider := leveldb.NewProvider(path)

		backend, err := spistore.New(provider, "")
		if err != nil {
			return nil, err
		}

		return &storageParts{backend: backend, provider: provider}, nil
	},
	databaseTypeFileOption: func(path string) (*storageParts, error) {
		backend, err := filestore.New(filepath.Join(path, walletFileDir))
		if err != nil {
			return nil, err
		}

		return &storageParts{backend: backend, provider: leveldb.NewProvider(filepath.Join(path, keystoreDir))}, nil
	},
}

type server interface {
	ListenAndServe(host string, router http.Handler, certFile, keyFile string) error
}

// HTTPServer represents an actual server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router) //nolint:gosec
}

// Cmd returns the Cobra start command.
func Cmd(server server) (*cobra.Command, error) {
	startCmd := createStartCMD(server)

	createFlags(startCmd)

	return startCmd, nil
}

func createStartCMD(server server) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the wallet key daemon",
		Long:  `Start the DID wallet key manager and secure stores REST API`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parameters, err := getParameters(cmd)
			if err != nil {
				return err
			}

			err = setLogLevel(parameters.LogLevel)
			if err != nil {
				return err
			}

			return startWallet(server, parameters)
		},
	}
}

func createFlags(startCmd *cobra.Command) {
	startCmd.Flags().StringP(hostFlagName, hostFlagShorthand, "", hostFlagUsage)
	startCmd.Flags().StringP(tokenFlagName, tokenFlagShorthand, "", tokenFlagUsage)
	startCmd.Flags().StringP(databaseTypeFlagName, databaseTypeFlagShorthand, "", databaseTypeFlagUsage)
	startCmd.Flags().StringP(databasePathFlagName, databasePathFlagShorthand, "", databasePathFlagUsage)
	startCmd.Flags().StringP(databaseTimeoutFlagName, "", "", databaseTimeoutFlagUsage)
	startCmd.Flags().StringP(namespaceFlagName, namespaceFlagShorthand, "", namespaceFlagUsage)
	startCmd.Flags().StringP(passphraseFlagName, "", "", passphraseFlagUsage)
	startCmd.Flags().StringP(masterKeyFileFlagName, "", "", masterKeyFileFlagUsage)
	startCmd.Flags().StringP(encryptStoreFlagName, "", "", encryptStoreFlagUsage)
	startCmd.Flags().StringP(sessionIdleFlagName, "", "", sessionIdleFlagUsage)
	startCmd.Flags().StringP(signTimeoutFlagName, "", "", signTimeoutFlagUsage)
	startCmd.Flags().StringP(logLevelFlagName, "", "", logLevelFlagUsage)
	startCmd.Flags().StringP(configFileFlagName, configFileFlagShorthand, "", configFileFlagUsage)
	startCmd.Flags().StringSliceP(corsOriginFlagName, "", []string{}, corsOriginFlagUsage)
	startCmd.Flags().StringP(tlsCertFileFlagName, tlsCertFileFlagShorthand, "", tlsCertFileFlagUsage)
	startCmd.Flags().StringP(tlsKeyFileFlagName, tlsKeyFileFlagShorthand, "", tlsKeyFileFlagUsage)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func getUserSetVars(cmd *cobra.Command, flagName, envKey string, isOptional bool) ([]string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetStringSlice(flagName)
		if err != nil {
			return nil, fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	var values []string

	if isSet {
		values = strings.Split(value, ",")
	}

	if isOptional || isSet {
		return values, nil
	}

	return nil, fmt.Errorf(" %s not set. "+
		"It must be set via either command line or environment variable", flagName)
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}

func validateAuthorizationBearerToken(w http.ResponseWriter, r *http.Request, token string) bool {
	actHdr := r.Header.Get("Authorization")
	expHdr := "Bearer " + token

	if subtle.ConstantTimeCompare([]byte(actHdr), []byte(expHdr)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorised.\n")) // nolint:gosec,errcheck

		return false
	}

	return true
}

func authorizationMiddleware(token string) mux.MiddlewareFunc {
	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validateAuthorizationBearerToken(w, r, token) {
				next.ServeHTTP(w, r)
			}
		})
	}

	return middleware
}

func startWallet(srv server, parameters *walletParameters) error {
	if parameters.Host == "" {
		return errMissingHost
	}

	router, err := createRouter(parameters)
	if err != nil {
		return fmt.Errorf("failed to start wallet-keyd on port [%s]: %w", parameters.Host, err)
	}

	logger.Infof("Starting wallet-keyd on host [%s]", parameters.Host)

	handler := cors.New(
		cors.Options{
			AllowedOrigins: parameters.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodHead},
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		},
	).Handler(router)

	err = srv.ListenAndServe(parameters.Host, handler, parameters.TLSCertFile, parameters.TLSKeyFile)
	if err != nil {
		return fmt.Errorf("failed to start wallet-keyd on port [%s], cause:  %w", parameters.Host, err)
	}

	return nil
}

func createRouter(parameters *walletParameters) (*mux.Router, error) {
	ctx, err := createWalletContext(parameters)
	if err != nil {
		return nil, err
	}

	handlers, err := controller.GetRESTHandlers(ctx, controller.WithSignTimeout(parameters.SignTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to get rest service api: %w", err)
	}

	router := mux.NewRouter()

	if parameters.Token != "" {
		router.Use(authorizationMiddleware(parameters.Token))
	}

	for _, handler := range handlers {
		router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	router.Handle(metricsPath, promhttp.Handler()).Methods(http.MethodGet)

	return router, nil
}

func createWalletContext(parameters *walletParameters) (*context.Provider, error) {
	parts, err := createStorage(parameters)
	if err != nil {
		return nil, err
	}

	lock, err := createSecretLock(parameters)
	if err != nil {
		return nil, err
	}

	ks, err := softkeystore.New(parts.provider, softkeystore.WithSecretLock(lock))
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore: %w", err)
	}

	opts := []context.ProviderOption{
		context.WithWalletBackend(parts.backend),
		context.WithKeystore(ks),
	}

	if parameters.Namespace != "" {
		opts = append(opts, context.WithNamespace(parameters.Namespace))
	}

	if parameters.EncryptStore {
		opts = append(opts, context.WithStoreEncryption())
	}

	if parameters.SessionIdleTimeout > 0 {
		opts = append(opts, context.WithSessionState(keymanager.NewSessionState(parameters.SessionIdleTimeout)))
	}

	return context.New(opts...)
}

func createStorage(parameters *walletParameters) (*storageParts, error) {
	open, supported := supportedStorage[parameters.DBType]
	if !supported {
		return nil, fmt.Errorf("database type not set to a valid type." +
			" run start --help to see the available options")
	}

	if parameters.DBType != databaseTypeMemOption && parameters.DBPath == "" {
		return nil, fmt.Errorf("database path is required for database type %s", parameters.DBType)
	}

	var parts *storageParts

	err := backoff.RetryNotify(
		func() error {
			var openErr error
			parts, openErr = open(parameters.DBPath)

			return openErr
		},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), parameters.DBTimeout),
		func(retryErr error, t time.Duration) {
			logger.Warnf(
				"failed to open storage, will sleep for %s before trying again : %s\n",
				t, retryErr)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage at %s : %w", parameters.DBPath, err)
	}

	return parts, nil
}

func createSecretLock(parameters *walletParameters) (secretlock.Service, error) {
	switch {
	case parameters.KeystorePassphrase != "" && parameters.MasterKeyFile != "":
		return nil, errBothLocks
	case parameters.MasterKeyFile != "":
		masterKey, err := local.MasterKeyFromPath(parameters.MasterKeyFile)
		if err != nil {
			return nil, err
		}

		return hkdf.NewMasterLock(masterKey, sha256.New, nil)
	case parameters.KeystorePassphrase != "":
		return pbkdf2.NewMasterLock(parameters.KeystorePassphrase, sha256.New, pbkdf2.DefaultIterations,
			[]byte(softkeystore.StoreName))
	default:
		logger.Warnf("no keystore passphrase or master key file set, key material is stored unsealed")

		return &noop.NoLock{}, nil
	}
}
