// Package keyring stores neurozen secrets in the OS keyring: the PostgreSQL
// connection string and the API key used for summary generation.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/neurozen/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested key
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names a value neurozen keeps in the keyring.
type Secret string

const (
	ConnectionString Secret = constants.DefaultKeyringUser
	AIKey            Secret = constants.AIKeyringUser
)

func (s Secret) describe() string {
	switch s {
	case ConnectionString:
		return "connection string"
	case AIKey:
		return "AI API key"
	}
	return string(s)
}

// Get returns the stored secret, or ErrNotFound.
func Get(s Secret) (string, error) {
	v, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

// Set stores a non-empty secret.
func Set(s Secret, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", s.describe())
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s.describe(), err)
	}
	return nil
}

// Delete removes a secret, returning ErrNotFound if none was stored.
func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, string(s)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s.describe(), err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return Get(ConnectionString)
}

// SetConnectionString stores the database connection string.
func SetConnectionString(connStr string) error {
	return Set(ConnectionString, connStr)
}

// DeleteConnectionString removes the database connection string.
func DeleteConnectionString() error {
	return Delete(ConnectionString)
}

// ResolveAIKey prefers an explicitly configured key and falls back to the
// keyring. A missing key yields an empty string and no error.
func ResolveAIKey(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	key, err := Get(AIKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return key, err
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
