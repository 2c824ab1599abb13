package secrets

import (
	"context"
	"errors"
)

// Well-known secret keys.
const (
	KeyJWTSecret       = "jwt_secret"
	KeyTurnstileSecret = "turnstile_secret_key"
	KeySMTPPassword    = "smtp_password"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrNoVaultToken   = errors.New("no vault token provided")
	ErrNoVaultAddress = errors.New("no vault address provided")
)

// Manager provides access to secrets from Vault or the environment.
type Manager interface {
	// GetSecret retrieves a secret by key.
	GetSecret(ctx context.Context, key string) (string, error)

	// GetSecretWithDefault retrieves a secret, returning defaultValue when
	// the key is absent everywhere.
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

// Static is a fixed in-memory manager, used in tests and as a stand-in when
// no backend is configured.
type Static map[string]string

func (s Static) GetSecret(ctx context.Context, key string) (string, error) {
	if v, ok := s[key]; ok {
		return v, nil
	}
	return "", ErrSecretNotFound
}

func (s Static) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return defaultValue
}
