/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package context creates the wallet Provider context: the wallet file backend, the keystore and the services
// built on them, with simple accessor methods to those same services.
package context

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/common/walleterr"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/kms/keymanager"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/securestore"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/storage"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/did"
	"github.com/hyperledger/aries-framework-go/component/didwallet/pkg/store/verifiable"
	"github.com/hyperledger/aries-framework-go/component/didwallet/spi/keystore"
)

// DefaultNamespace is the wallet namespace used when none is configured.
const DefaultNamespace = "wallet"

// Provider supplies the wallet configuration to client objects.
type Provider struct {
	backend         storage.Backend
	keystore        keystore.Keystore
	namespace       string
	session         *keymanager.SessionState
	encryptStores   bool
	keyManager      *keymanager.Manager
	didStore        *did.Store
	credentialStore *verifiable.Store
}

// New instantiates a new context provider. Services not given as options are built on the wallet backend and
// the keystore, which are then mandatory.
func New(opts ...ProviderOption) (*Provider, error) {
	ctxProvider := Provider{namespace: DefaultNamespace}

	for _, opt := range opts {
		err := opt(&ctxProvider)
		if err != nil {
			return nil, fmt.Errorf("option failed: %w", err)
		}
	}

	if err := ctxProvider.initServices(); err != nil {
		return nil, err
	}

	return &ctxProvider, nil
}

func (p *Provider) initServices() error {
	needsBase := p.keyManager == nil || p.didStore == nil || p.credentialStore == nil
	if needsBase && (p.backend == nil || p.keystore == nil) {
		return walleterr.Invalid("provider", "wallet backend and keystore are mandatory")
	}

	var storeOpts []securestore.Opt
	if p.encryptStores {
		storeOpts = append(storeOpts, securestore.WithEncryption())
	}

	var err error

	if p.keyManager == nil {
		kmOpts := []keymanager.Opt{}
		if p.session != nil {
			kmOpts = append(kmOpts, keymanager.WithSession(p.session))
		}

		if p.encryptStores {
			kmOpts = append(kmOpts, keymanager.WithStoreEncryption())
		}

		p.keyManager, err = keymanager.New(p.backend, p.keystore, p.namespace, kmOpts...)
		if err != nil {
			return fmt.Errorf("create key manager: %w", err)
		}
	}

	if p.didStore == nil {
		p.didStore, err = did.New(p.backend, p.keystore, p.namespace, storeOpts...)
		if err != nil {
			return fmt.Errorf("create did store: %w", err)
		}
	}

	if p.credentialStore == nil {
		p.credentialStore, err = verifiable.New(p.backend, p.keystore, p.namespace, storeOpts...)
		if err != nil {
			return fmt.Errorf("create vc store: %w", err)
		}
	}

	return nil
}

// Namespace returns the wallet namespace.
func (p *Provider) Namespace() string {
	return p.namespace
}

// WalletBackend returns the wallet file backend.
func (p *Provider) WalletBackend() storage.Backend {
	return p.backend
}

// Keystore returns the keystore.
func (p *Provider) Keystore() keystore.Keystore {
	return p.keystore
}

// KeyManager returns the key lifecycle manager.
func (p *Provider) KeyManager() *keymanager.Manager {
	return p.keyManager
}

// DIDStore returns the DID document store.
func (p *Provider) DIDStore() *did.Store {
	return p.didStore
}

// CredentialStore returns the verifiable credential store.
func (p *Provider) CredentialStore() *verifiable.Store {
	return p.credentialStore
}

// ProviderOption configures the framework.
type ProviderOption func(opts *Provider) error

// WithWalletBackend injects the wallet file backend into the context.
func WithWalletBackend(b storage.Backend) ProviderOption {
	return func(opts *Provider) error {
		opts.backend = b
		return nil
	}
}

// WithKeystore injects the keystore into the context.
func WithKeystore(ks keystore.Keystore) ProviderOption {
	return func(opts *Provider) error {
		opts.keystore = ks
		return nil
	}
}

// WithNamespace sets the wallet namespace.
func WithNamespace(namespace string) ProviderOption {
	return func(opts *Provider) error {
		if namespace == "" {
			return walleterr.Invalid("namespace", "namespace is mandatory")
		}

		opts.namespace = namespace

		return nil
	}
}

// WithSessionState gates wallet key signatures behind session.
func WithSessionState(session *keymanager.SessionState) ProviderOption {
	return func(opts *Provider) error {
		opts.session = session
		return nil
	}
}

// WithStoreEncryption encrypts the data of every wallet file.
func WithStoreEncryption() ProviderOption {
	return func(opts *Provider) error {
		opts.encryptStores = true
		return nil
	}
}

// WithKeyManager injects a key manager into the context.
func WithKeyManager(m *keymanager.Manager) ProviderOption {
	return func(opts *Provider) error {
		opts.keyManager = m
		return nil
	}
}

// WithDIDStore injects a DID store into the context.
func WithDIDStore(s *did.Store) ProviderOption {
	return func(opts *Provider) error {
		opts.didStore = s
		return nil
	}
}

// WithCredentialStore injects a verifiable credential store into the context.
func WithCredentialStore(s *verifiable.Store) ProviderOption {
	return func(opts *Provider) error {
		opts.credentialStore = s
		return nil
	}
}
