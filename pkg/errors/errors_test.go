package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			err:      ErrBusy,
			expected: "WRITE_IN_FLIGHT: A previous submission is still in progress",
		},
		{
			name:     "with wrapped error",
			err:      ErrLoad.WithError(errors.New("connection refused")),
			expected: "LOAD_FAILED: Failed to load portfolio (connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	appErr := ErrWrite.WithError(innerErr)

	if appErr.Unwrap() != innerErr {
		t.Errorf("AppError.Unwrap() did not return the wrapped error")
	}
	if !errors.Is(appErr, innerErr) {
		t.Errorf("errors.Is should find the wrapped error")
	}
	if ErrWrite.Unwrap() != nil {
		t.Errorf("AppError.Unwrap() should return nil when no error is wrapped")
	}
}

func TestAppError_Is(t *testing.T) {
	derived := ErrValidation.WithDetails([]string{"symbol"}).WithMessage("symbol is required")

	if !errors.Is(derived, ErrValidation) {
		t.Error("derived error should match its sentinel")
	}
	if errors.Is(derived, ErrWrite) {
		t.Error("derived error should not match a different code")
	}

	wrapped := fmt.Errorf("submit: %w", derived)
	if !errors.Is(wrapped, ErrValidation) {
		t.Error("wrapped error should match its sentinel")
	}
}

func TestAppError_CopiesDoNotMutateSentinel(t *testing.T) {
	_ = ErrValidation.WithDetails("x").WithMessage("changed").WithError(errors.New("e"))

	if ErrValidation.Details != nil || ErrValidation.Message != "Invalid input" || ErrValidation.Err != nil {
		t.Errorf("sentinel was modified: %+v", ErrValidation)
	}
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrBusy)
	appErr, ok := As(err)
	if !ok {
		t.Fatal("As should find the AppError")
	}
	if appErr.Code != "WRITE_IN_FLIGHT" {
		t.Errorf("Code = %q", appErr.Code)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("As should not match a plain error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrLoad, "LOAD_FAILED", http.StatusBadGateway},
		{ErrValidation, "VALIDATION_ERROR", http.StatusBadRequest},
		{ErrWrite, "WRITE_FAILED", http.StatusBadGateway},
		{ErrBusy, "WRITE_IN_FLIGHT", http.StatusConflict},
		{ErrWritesDisabled, "WRITES_DISABLED", http.StatusForbidden},
		{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("HTTPStatus = %v, want %v", tt.err.HTTPStatus, tt.status)
			}
		})
	}
}
