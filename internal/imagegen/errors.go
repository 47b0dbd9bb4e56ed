package imagegen

import (
	"errors"
	"fmt"
	"strings"
)

// FailureClass buckets a provider failure by how the caller should react.
type FailureClass string

const (
	// FailureRetryable means another model may succeed where this one failed.
	FailureRetryable FailureClass = "retryable"
	// FailureQuota means the account is out of credits. No model will succeed,
	// so fallback must stop immediately.
	FailureQuota FailureClass = "quota"
	// FailureFatal covers everything else (bad request, auth, unknown 5xx).
	FailureFatal FailureClass = "fatal"
)

// ErrQuotaExhausted is the sentinel for account-level credit exhaustion.
var ErrQuotaExhausted = errors.New("image provider quota exhausted")

// ProviderError is a non-2xx response from the image provider, classified.
type ProviderError struct {
	Status int
	Body   string
	Class  FailureClass
	Model  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("image provider error (model=%s, status=%d, class=%s): %s",
		e.Model, e.Status, e.Class, truncate(e.Body, 200))
}

// Is makes quota-classified provider errors match ErrQuotaExhausted, so
// callers can use errors.Is without inspecting Class directly.
func (e *ProviderError) Is(target error) bool {
	return target == ErrQuotaExhausted && e.Class == FailureQuota
}

// AllModelsUnavailableError is returned when the preferred model and every
// fallback failed retryably.
type AllModelsUnavailableError struct {
	TriedModels []string
	LastErr     error
}

func (e *AllModelsUnavailableError) Error() string {
	return fmt.Sprintf("all image models unavailable (tried: %s): %v",
		strings.Join(e.TriedModels, ", "), e.LastErr)
}

func (e *AllModelsUnavailableError) Unwrap() error { return e.LastErr }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
