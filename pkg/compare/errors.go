package compare

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"quickprice/pkg/gemini"
)

// ErrEmptyQuery rejects blank product names before any network call.
// The UI validates input too; this is the defensive backstop.
var ErrEmptyQuery = errors.New("product name must not be empty")

// ErrConfigMissing indicates no provider credential is configured.
// Raised before any network call is attempted.
type ErrConfigMissing struct {
	Err error
}

func (e ErrConfigMissing) Error() string {
	return "config_missing: " + e.Err.Error()
}

func (e ErrConfigMissing) Unwrap() error {
	return e.Err
}

// ErrConfigInvalid indicates the provider rejected the credential.
type ErrConfigInvalid struct {
	Err error
}

func (e ErrConfigInvalid) Error() string {
	return "config_invalid: " + e.Err.Error()
}

func (e ErrConfigInvalid) Unwrap() error {
	return e.Err
}

// ErrTransient indicates a network, rate-limit, or provider-side
// failure with no further detail. Retryable from the caller's side.
type ErrTransient struct {
	Err error
}

func (e ErrTransient) Error() string {
	return "transient_failure: " + e.Err.Error()
}

func (e ErrTransient) Unwrap() error {
	return e.Err
}

// ErrMalformedResponse indicates the provider reply could not be parsed
// as the expected schema even after normalization.
type ErrMalformedResponse struct {
	Err error
}

func (e ErrMalformedResponse) Error() string {
	return "malformed_response: " + e.Err.Error()
}

func (e ErrMalformedResponse) Unwrap() error {
	return e.Err
}

// KindLabel reports the taxonomy code for an error, for metrics labels
// and the problem-details code extension.
func KindLabel(err error) string {
	if err == nil {
		return "none"
	}
	var missing ErrConfigMissing
	if errors.As(err, &missing) {
		return "CONFIG_MISSING"
	}
	var invalid ErrConfigInvalid
	if errors.As(err, &invalid) {
		return "CONFIG_INVALID"
	}
	var malformed ErrMalformedResponse
	if errors.As(err, &malformed) {
		return "MALFORMED_RESPONSE"
	}
	var transient ErrTransient
	if errors.As(err, &transient) {
		return "TRANSIENT_FAILURE"
	}
	return "other"
}

// classifyProviderError maps a raw transport failure onto the taxonomy.
// Every provider failure surfaces as exactly one taxonomy kind, never
// as an unclassified error.
func classifyProviderError(err error) error {
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return ErrConfigInvalid{Err: err}
		}
		if strings.Contains(apiErr.Message, "API key not valid") || apiErr.Status == "UNAUTHENTICATED" {
			return ErrConfigInvalid{Err: err}
		}
		// 429, 5xx, and anything else the provider refuses: retryable.
		return ErrTransient{Err: err}
	}
	if errors.Is(err, gemini.ErrNoCandidates) {
		return ErrMalformedResponse{Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTransient{Err: err}
	}
	return ErrTransient{Err: err}
}
