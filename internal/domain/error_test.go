package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "message only",
			err: &Error{
				Code:    EINVALID,
				Message: "invalid input",
			},
			expected: "invalid input",
		},
		{
			name: "with operation",
			err: &Error{
				Code:    EINVALID,
				Op:      "item.create",
				Message: "invalid input",
			},
			expected: "item.create: invalid input",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EINTERNAL,
				Op:      "item.create",
				Message: "failed to save",
				Err:     errors.New("database connection failed"),
			},
			expected: "item.create: failed to save: database connection failed",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EINTERNAL,
				Message: "failed to save",
				Err:     errors.New("database connection failed"),
			},
			expected: "failed to save: database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{
		Code:    EINTERNAL,
		Message: "wrapped",
		Err:     underlying,
	}

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Error.Unwrap() = %v, want %v", unwrapped, underlying)
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find underlying error")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"domain error", Conflict("user.signup", "duplicate"), ECONFLICT},
		{"wrapped domain error", fmt.Errorf("outer: %w", NotFound("item.get", "item", "x")), ENOTFOUND},
		{"plain error", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.expected {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(Forbidden("stock.set", "only the item owner can set stock")); got != "only the item owner can set stock" {
		t.Errorf("ErrorMessage() = %q", got)
	}

	// Internal errors must not leak details to users.
	internal := Internal(errors.New("pq: connection refused"), "order.create", "failed to create order")
	if got := ErrorMessage(internal); got != "An internal error occurred. Please try again later." {
		t.Errorf("ErrorMessage() leaked internal detail: %q", got)
	}

	if got := ErrorMessage(errors.New("raw")); got != "An internal error occurred. Please try again later." {
		t.Errorf("ErrorMessage() leaked unknown error: %q", got)
	}
}

func TestIsCode(t *testing.T) {
	err := Unauthorized("session.resolve", "invalid credentials")
	if !IsCode(err, EUNAUTHORIZED) {
		t.Error("IsCode should match EUNAUTHORIZED")
	}
	if IsCode(err, EFORBIDDEN) {
		t.Error("IsCode should not match EFORBIDDEN")
	}
}

func TestStockConflictError(t *testing.T) {
	err := &StockConflictError{Lines: []CartLine{{Quantity: 3}, {Quantity: 1}}}
	if got := err.Error(); got != "insufficient stock for 2 cart line(s)" {
		t.Errorf("StockConflictError.Error() = %q", got)
	}

	var sce *StockConflictError
	if !errors.As(error(err), &sce) {
		t.Error("errors.As should match StockConflictError")
	}
}
