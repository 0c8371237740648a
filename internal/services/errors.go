package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnparseableAnswer means the provider answered with no usable integer
var ErrUnparseableAnswer = errors.New("provider answer is not a positive integer")

// ValidationError is returned when a required request field is missing
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// ProviderError is a non-success answer from the estimation provider.
// Transient errors (429, 5xx, timeouts) degrade to the local estimator;
// the rest are surfaced to the caller with the provider's status and body.
type ProviderError struct {
	Status    int
	Body      string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("provider request failed: %v", e.Err)
	}
	return fmt.Sprintf("provider returned status %d", e.Status)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// newStatusError classifies a provider HTTP status
func newStatusError(status int, body string) *ProviderError {
	return &ProviderError{
		Status:    status,
		Body:      body,
		Transient: status == http.StatusTooManyRequests || status >= 500,
	}
}

// IsSoftFallback reports whether err should silently degrade to the local
// estimator instead of failing the request
func IsSoftFallback(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnparseableAnswer) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}

// IsValidation reports whether err is a missing-field error
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
