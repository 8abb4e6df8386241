package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorKind(t *testing.T) {
	tc := []struct {
		name   string
		err    error
		kind   string
		status int
	}{
		{"malformed", fmt.Errorf("artist %q: %w", "x", ErrMalformedReference), "malformed_reference", http.StatusBadRequest},
		{"reference not found", fmt.Errorf("album: %w", ErrReferenceNotFound), "reference_not_found", http.StatusNotFound},
		{"duplicate", fmt.Errorf("album: %w", ErrDuplicateEntity), "duplicate_entity", http.StatusConflict},
		{"conflict", ErrReferentialConflict, "referential_conflict", http.StatusConflict},
		{"mismatch", ErrArtistMismatch, "artist_mismatch", http.StatusBadRequest},
		{"invalid input", fmt.Errorf("title: %w", ErrInvalidInput), "invalid_input", http.StatusUnprocessableEntity},
		{"expired", ErrAuthExpired, "auth_expired", http.StatusUnauthorized},
		{"auth invalid", ErrAuthInvalid, "auth_invalid", http.StatusUnauthorized},
		{"unauthorized", ErrUnauthorized, "unauthorized", http.StatusForbidden},
		{"unclassified", errors.New("disk on fire"), "internal_failure", http.StatusInternalServerError},
		{"internal", ErrInternalFailure, "internal_failure", http.StatusInternalServerError},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			kind, status := ErrorKind(tt.err)
			if kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, kind)
			}
			if status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, status)
			}
		})
	}

	t.Run("IsClientError", func(t *testing.T) {
		if !IsClientError(ErrDuplicateEntity) {
			t.Error("duplicate should be a client error")
		}
		if IsClientError(errors.New("boom")) {
			t.Error("unclassified error should not be a client error")
		}
	})
}
