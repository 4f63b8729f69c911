package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrCrossTenant, http.StatusForbidden},
		{ErrInsufficientRole, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidTransition, http.StatusUnprocessableEntity},
		{ErrUnknownSubject, http.StatusUnprocessableEntity},
		{ErrDuplicateEmail, http.StatusUnprocessableEntity},
		{Validation("label is required"), http.StatusUnprocessableEntity},
		{ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestMessageHidesInternalDetail(t *testing.T) {
	if got := Message(errors.New("dial tcp 10.0.0.5:5432: timeout")); got != "internal error" {
		t.Fatalf("internal detail leaked: %q", got)
	}
	if got := Message(ErrNotFound); got != "not found" {
		t.Fatalf("got %q", got)
	}
}

func TestValidationWraps(t *testing.T) {
	err := Validation("password must be at least %d characters", 8)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("validation error must wrap ErrValidation")
	}
	want := "password must be at least 8 characters: invalid input"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
