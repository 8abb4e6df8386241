package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrUnsupportedDriver  = fmt.Errorf("unsupported database driver")

	// Reference errors
	ErrMalformedReference = fmt.Errorf("malformed reference")
	ErrReferenceNotFound  = fmt.Errorf("referenced entity not found")

	// Catalog consistency errors
	ErrNotFound            = fmt.Errorf("not found")
	ErrDuplicateEntity     = fmt.Errorf("duplicate entity")
	ErrReferentialConflict = fmt.Errorf("referential conflict")
	ErrArtistMismatch      = fmt.Errorf("artist mismatch")
	ErrNothingToUpdate     = fmt.Errorf("nothing to update")

	// Authentication errors
	ErrAuthInvalid        = fmt.Errorf("invalid session token")
	ErrAuthExpired        = fmt.Errorf("session token expired")
	ErrUnauthorized       = fmt.Errorf("insufficient privilege")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrIdentityProvider   = fmt.Errorf("identity provider unavailable")
	ErrRateLimited        = fmt.Errorf("too many requests")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	ErrInternalFailure = fmt.Errorf("internal failure")
)

// errorKinds pairs each classified sentinel with its outward name and HTTP status.
// Order matters: the first match wins.
var errorKinds = []struct {
	err    error
	kind   string
	status int
}{
	{ErrMalformedReference, "malformed_reference", http.StatusBadRequest},
	{ErrReferenceNotFound, "reference_not_found", http.StatusNotFound},
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrDuplicateEntity, "duplicate_entity", http.StatusConflict},
	{ErrReferentialConflict, "referential_conflict", http.StatusConflict},
	{ErrArtistMismatch, "artist_mismatch", http.StatusBadRequest},
	{ErrNothingToUpdate, "nothing_to_update", http.StatusBadRequest},
	{ErrInvalidInput, "invalid_input", http.StatusUnprocessableEntity},
	{ErrInvalidArgument, "invalid_input", http.StatusUnprocessableEntity},
	{ErrMissingArgument, "invalid_input", http.StatusUnprocessableEntity},
	{ErrAuthExpired, "auth_expired", http.StatusUnauthorized},
	{ErrAuthInvalid, "auth_invalid", http.StatusUnauthorized},
	{ErrInvalidCredentials, "auth_invalid", http.StatusUnauthorized},
	{ErrUnauthorized, "unauthorized", http.StatusForbidden},
	{ErrIdentityProvider, "identity_provider", http.StatusBadGateway},
	{ErrRateLimited, "rate_limited", http.StatusTooManyRequests},
}

// ErrorKind returns the stable outward name of err and its HTTP status.
//
// Unclassified errors are reported as internal_failure with status 500.
func ErrorKind(err error) (string, int) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind, k.status
		}
	}
	return "internal_failure", http.StatusInternalServerError
}

// StatusOf maps err onto an HTTP status code.
func StatusOf(err error) int {
	_, status := ErrorKind(err)
	return status
}

// IsClientError reports whether err was caused by the request rather than the system.
func IsClientError(err error) bool {
	status := StatusOf(err)
	return status >= 400 && status < 500
}
