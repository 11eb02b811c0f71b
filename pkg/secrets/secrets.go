// Package secrets provides SecretResolver implementations: environment
// variables for simple deployments, a static map for tests, and Redis for
// shared secret stores.
package secrets

import (
	"errors"
	"fmt"
)

// ErrSecretNotFound is returned (wrapped) for names no resolver knows.
var ErrSecretNotFound = errors.New("secret not found")

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}
