// Package credentials stores partner API keys for the CLI, one per environment.
package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name entries are filed under in the OS keyring.
const KeyringService = "setto-cli"

const logCategory = "credentials"

var (
	ErrNotFound           = errors.New("no stored API key for this environment")
	ErrPassphraseRequired = errors.New("credentials passphrase cannot be empty")
	ErrWrongPassphrase    = errors.New("decryption failed (incorrect passphrase?)")
)

// Store saves one API key per environment name.
type Store interface {
	Get(environment string) (string, error)
	Set(environment, apiKey string) error
	Delete(environment string) error
}

type logger interface {
	Debug(message string, category string)
	Warn(message string, category string)
}

// KeyringStore keeps API keys in the OS keyring.
type KeyringStore struct {
	service string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: KeyringService}
}

func (ks *KeyringStore) Get(environment string) (string, error) {
	secret, err := keyring.Get(ks.service, environment)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return secret, err
}

func (ks *KeyringStore) Set(environment, apiKey string) error {
	return keyring.Set(ks.service, environment, apiKey)
}

func (ks *KeyringStore) Delete(environment string) error {
	err := keyring.Delete(ks.service, environment)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// fallbackStore uses primary and switches to secondary for good once primary
// fails with anything other than ErrNotFound.
type fallbackStore struct {
	primary   Store
	secondary Store
	logger    logger
	degraded  bool
}

// NewFallbackStore returns a store that prefers primary. Lookups that miss in
// primary are also tried in secondary.
func NewFallbackStore(primary, secondary Store, logger logger) Store {
	return &fallbackStore{primary: primary, secondary: secondary, logger: logger}
}

func (s *fallbackStore) degrade(op string, err error) {
	if !s.degraded {
		s.logger.Warn(fmt.Sprintf("Keyring %s failed, using encrypted file: %v", op, err), logCategory)
	}
	s.degraded = true
}

func (s *fallbackStore) Get(environment string) (string, error) {
	if !s.degraded {
		secret, err := s.primary.Get(environment)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.degrade("read", err)
		}
	}
	return s.secondary.Get(environment)
}

func (s *fallbackStore) Set(environment, apiKey string) error {
	if !s.degraded {
		err := s.primary.Set(environment, apiKey)
		if err == nil {
			s.logger.Debug("API key stored in keyring", logCategory)
			return nil
		}
		s.degrade("write", err)
	}
	return s.secondary.Set(environment, apiKey)
}

// Delete removes the key from both stores. It reports ErrNotFound only when
// neither had one.
func (s *fallbackStore) Delete(environment string) error {
	found := false
	if !s.degraded {
		err := s.primary.Delete(environment)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, ErrNotFound):
			s.degrade("delete", err)
		}
	}

	err := s.secondary.Delete(environment)
	switch {
	case err == nil:
		found = true
	case !errors.Is(err, ErrNotFound):
		return err
	}

	if !found {
		return ErrNotFound
	}
	return nil
}
