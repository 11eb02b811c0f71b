package execution

import (
	"errors"
	"fmt"
)

// SecretValidationError reports a resolved secret whose shape does not
// satisfy the schema the handler declared. It is scoped to the one
// invocation that requested the secret.
type SecretValidationError struct {
	Name   string
	Detail string
}

func (e *SecretValidationError) Error() string {
	return fmt.Sprintf("secret %q failed validation: %s", e.Name, e.Detail)
}

// IsSecretValidationError reports whether err is (or wraps) a
// SecretValidationError.
func IsSecretValidationError(err error) bool {
	var target *SecretValidationError

	return errors.As(err, &target)
}
