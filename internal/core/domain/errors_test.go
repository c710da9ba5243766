package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", NewValidationError("email", "email must be a valid email"), KindValidation},
		{"wrapped validation", fmt.Errorf("submit: %w", NewValidationError("name", "name is required")), KindValidation},
		{"unauthorized", ErrUnauthorized, KindUnauthorized},
		{"invalid credentials", ErrInvalidCredentials, KindUnauthorized},
		{"forbidden", ErrForbidden, KindForbidden},
		{"admin not configured", ErrAdminNotConfigured, KindUnavailable},
		{"submission in progress", ErrSubmissionInProgress, KindConflict},
		{"storage", &StorageError{Op: "insert", Collection: "leads", Err: context.DeadlineExceeded}, KindStorage},
		{"unknown", errors.New("boom"), KindInternal},
	}

	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("%s: expected kind %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestStorageError_UnwrapsCause(t *testing.T) {
	err := &StorageError{Op: "find", Collection: "leads", Err: context.DeadlineExceeded}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected StorageError to unwrap to its cause")
	}
}

func TestValidationError_JoinsMessages(t *testing.T) {
	err := &ValidationError{Violations: []FieldViolation{
		{Field: "name", Message: "name is required"},
		{Field: "email", Message: "email is required"},
	}}
	if got := err.Error(); got != "name is required; email is required" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"", "admin"} {
		role, err := ParseRole(raw)
		if err != nil || role != RoleAdmin {
			t.Errorf("ParseRole(%q) = %q, %v; want admin", raw, role, err)
		}
	}

	if _, err := ParseRole("superuser"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown role, got %v", err)
	}
}
