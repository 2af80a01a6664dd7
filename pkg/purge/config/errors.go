package config

import (
	"errors"
	"fmt"
)

// ErrMissingKey is wrapped when a required key is absent.
var ErrMissingKey = errors.New("missing required key")

// ErrInvalidValue is wrapped when a key holds a malformed value.
var ErrInvalidValue = errors.New("invalid value")

// ConfigError reports a configuration problem. It is fatal: no scan starts
// with an invalid configuration.
type ConfigError struct {
	// Key is the offending configuration key, empty for file-level errors.
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration key %q: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func missing(key string) error {
	return &ConfigError{Key: key, Err: ErrMissingKey}
}

func invalid(key, format string, args ...interface{}) error {
	return &ConfigError{Key: key, Err: fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))}
}
