package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error code wins", NotFound("character not found"), http.StatusNotFound},
		{"conflict", Conflict("favorite already exists"), http.StatusConflict},
		{"wrapped sentinel", fmt.Errorf("load user: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"invalid input sentinel", ErrInvalidInput, http.StatusBadRequest},
		{"bad request sentinel", ErrBadRequest, http.StatusBadRequest},
		{"forbidden", Forbidden("admin access required"), http.StatusForbidden},
		{"rate limited", RateLimited("too many attempts"), http.StatusTooManyRequests},
		{"unavailable", Unavailable("search is not configured"), http.StatusServiceUnavailable},
		{"unknown error", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapErrorToStatus(tt.err); got != tt.want {
				t.Errorf("MapErrorToStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppError_MessageAndUnwrap(t *testing.T) {
	err := NotFound("episode not found")

	if err.Error() != "episode not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "episode not found")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound) to be true")
	}

	bare := New(http.StatusConflict, "", ErrConflict)
	if bare.Error() != ErrConflict.Error() {
		t.Errorf("Error() without message = %q, want %q", bare.Error(), ErrConflict.Error())
	}
}
