// Package keyring keeps the session token and the token signing key in the OS
// keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
)

var (
	// ErrNotFound is returned when nothing is stored under the requested entry.
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be used.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secrets reads and writes named secrets for the app.
type Secrets interface {
	Get(user string) (string, error)
	Set(user, secret string) error
	Delete(user string) error
}

// OS is the Secrets implementation over the system keyring.
type OS struct{}

func (OS) Get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func (OS) Set(user, secret string) error {
	if secret == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", user, err)
	}
	return nil
}

func (OS) Delete(user string) error {
	err := keyring.Delete(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", user, err)
	}
	return nil
}

func GetSessionToken(s Secrets) (string, error) { return s.Get(constants.KeyringSessionUser) }

func SetSessionToken(s Secrets, token string) error {
	return s.Set(constants.KeyringSessionUser, token)
}

// DeleteSessionToken removes the token; a missing token is not an error.
func DeleteSessionToken(s Secrets) error {
	if err := s.Delete(constants.KeyringSessionUser); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func GetSigningKey(s Secrets) (string, error) { return s.Get(constants.KeyringSigningKeyUser) }

func SetSigningKey(s Secrets, key string) error {
	return s.Set(constants.KeyringSigningKeyUser, key)
}

// IsAvailable makes a best-effort read to see whether the keyring responds.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
