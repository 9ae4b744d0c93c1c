package service

import (
	"errors"
	"fmt"
	"strings"

	"launchpad/internal/domain"
)

var (
	// ErrNoTestCredentials means the creator has not connected a sandbox
	// provider account, so there is nothing to promote from.
	ErrNoTestCredentials = errors.New("test environment is not connected to a provider account")
)

// ValidationError reports the critical checks that blocked a promotion.
// Returned before any deployment record exists, so retrying after the
// product is fixed is always safe.
type ValidationError struct {
	Checks []domain.ValidationCheck
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Checks))
	for _, check := range e.Checks {
		messages = append(messages, check.Message)
	}
	return "Validation failed: " + strings.Join(messages, "; ")
}

// ExternalServiceError wraps a failed provider call made after the
// deployment record was created. Earlier sub-steps may have already
// materialized resources on the provider side.
type ExternalServiceError struct {
	Stage string
	Err   error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("provider call failed during %s: %v", e.Stage, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed local write made after the provider calls
// succeeded. The external resources exist but are not linked locally; the
// deployment record and provider metadata are the reconciliation trail.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist production identifiers after provider calls succeeded: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
