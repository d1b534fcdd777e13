package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotFound is returned when a helper index file has not been built.
	ErrIndexNotFound = errors.New("helper index not found")
	// ErrEntryNotFound is returned when an entry file does not exist.
	ErrEntryNotFound = errors.New("entry not found")
)

// ConfigError reports an invalid mapping or target schema. It is always fatal.
type ConfigError struct {
	Model   string // Model the error was found on
	Key     string // Missing or invalid key
	Message string // Human-readable error message
}

func (e *ConfigError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Model, e.Message)
	}
	return "configuration error: " + e.Message
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
