package failsafe

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates an invalid checkpoint registration or config.
	ErrConfiguration = errors.New("failsafe: configuration error")
	// ErrSave indicates a failed finalization save.
	ErrSave = errors.New("failsafe: save failed")
)

// ConfigurationError reports an invalid load/save contract or configuration,
// detected before any instance is built.
type ConfigurationError struct {
	Type   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Type == "" {
		return fmt.Sprintf("failsafe: configuration: %s", e.Reason)
	}
	return fmt.Sprintf("failsafe: configuration of %q: %s", e.Type, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func configErrorf(typeName, format string, args ...any) error {
	return &ConfigurationError{Type: typeName, Reason: fmt.Sprintf(format, args...)}
}

// SaveError reports a save that failed. RemoveErr holds the failure of the
// best-effort removal that follows, if any.
type SaveError struct {
	Type      string
	ID        int
	Path      string
	Err       error
	RemoveErr error
}

func (e *SaveError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("failsafe: save %s_%d to %q: %v", e.Type, e.ID, e.Path, e.Err)
	if e.RemoveErr != nil {
		msg += fmt.Sprintf(" (remove: %v)", e.RemoveErr)
	}
	return msg
}

func (e *SaveError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := []error{ErrSave}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
