package registry

import (
	"errors"
	"fmt"
)

// BundleLoadError is fatal to a dispatch call: without a loaded trigger
// set there is nothing to match against.
type BundleLoadError struct {
	Entrypoint string
	Err        error
}

func (e *BundleLoadError) Error() string {
	return fmt.Sprintf("failed to load bundle entrypoint %q: %v", e.Entrypoint, e.Err)
}

func (e *BundleLoadError) Unwrap() error {
	return e.Err
}

// IsBundleLoadError reports whether err is (or wraps) a BundleLoadError.
func IsBundleLoadError(err error) bool {
	var target *BundleLoadError

	return errors.As(err, &target)
}
