package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrMissingCredential = errors.New("credential not configured")
	ErrInvalidCredential = errors.New("credential rejected by provider")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// CredentialError reports a provider credential that is either absent from
// the configuration or was refused upstream. It matches ErrMissingCredential
// or ErrInvalidCredential through errors.Is.
type CredentialError struct {
	Provider string
	Message  string // upstream message, only set for rejected credentials
	kind     error
}

func (e *CredentialError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.kind)
}

func (e *CredentialError) Is(target error) bool { return target == e.kind }

// MissingCredential is returned before any network call when a feature's
// token or secret has not been configured.
func MissingCredential(provider string) error {
	return &CredentialError{Provider: provider, kind: ErrMissingCredential}
}

// InvalidCredential carries the provider's own rejection message.
func InvalidCredential(provider, message string) error {
	return &CredentialError{Provider: provider, Message: message, kind: ErrInvalidCredential}
}
