package services_test

import (
	"errors"
	"strings"
	"testing"

	"cama/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("disk full")
	err := services.Wrap(services.ErrStorageUnavailable, "store", "save checkpoint", "", base)
	if !errors.Is(err, services.ErrStorageUnavailable) {
		t.Fatalf("expected storage marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
	if !strings.Contains(err.Error(), "store: save checkpoint") {
		t.Fatalf("expected detail in message, got %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := services.NewValidationError([]string{"name is required", "depth_from_entrance must be >= 0"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "name is required") || !strings.Contains(got, ";") {
		t.Fatalf("expected joined violations, got %q", got)
	}
}

func TestRecoverable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", services.NewValidationError([]string{"x"}), true},
		{"not found", services.Wrap(services.ErrNotFound, "registry", "update", "", nil), true},
		{"sink", services.Wrap(services.ErrSinkWrite, "flusher", "flush", "", nil), true},
		{"storage", services.Wrap(services.ErrStorageUnavailable, "store", "open", "", nil), false},
	}
	for _, tc := range cases {
		if got := services.Recoverable(tc.err); got != tc.want {
			t.Errorf("%s: Recoverable = %v, want %v", tc.name, got, tc.want)
		}
	}
}
