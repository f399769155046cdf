package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/sheetview/internal/codec"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"validation error", &codec.ValidationError{Field: "file", Value: "a.txt"}, "VAL001"},
		{"wrapped validation error", fmt.Errorf("upload: %w", &codec.ValidationError{}), "VAL001"},
		{"invalid cell", fmt.Errorf("%w: row -1", ErrInvalidCell), "VAL002"},
		{"too large", codec.ErrTooLarge, "FILE001"},
		{"decode error", &codec.DecodeError{Format: codec.XLSX, Err: errors.New("zip: not a valid zip file")}, "FILE002"},
		{"unsupported export", &codec.EncodeError{Format: "pdf", Err: codec.ErrUnsupportedFormat}, "EXP001"},
		{"export failure", &codec.EncodeError{Format: codec.XLS, Err: errors.New("too many rows")}, "EXP002"},
		{"busy", ErrTooManyUploads, "UPL002"},
		{"superseded", ErrSuperseded, "UPL006"},
		{"cancelled", context.Canceled, "UPL004"},
		{"deadline", fmt.Errorf("read: %w", context.DeadlineExceeded), "UPL005"},
		{"csv text pattern", errors.New("invalid csv: bare quote"), "FILE002"},
		{"no file pattern", errors.New("no file provided"), "FILE004"},
		{"store down pattern", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "STO001"},
		{"rate limit pattern", errors.New("rate limit exceeded"), "RATE001"},
		{"case insensitive", errors.New("FILE TOO LARGE"), "FILE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_ValidationMessage(t *testing.T) {
	got := MapError(&codec.ValidationError{Field: "mime", Value: "image/png"})
	if got.Message != "Please upload only XLS, XLSX, or CSV files." {
		t.Errorf("MapError() message = %q", got.Message)
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyUploads)

	expected := "Too many uploads in progress (Code: UPL002). Please wait a moment and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", codec.ErrTooLarge, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &codec.DecodeError{Format: codec.CSV, Err: errors.New("bare quote")}
		userErr := NewUserError(techErr)

		if userErr.Error() != "Could not read this file" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if userErr.User.Code != "FILE002" {
			t.Errorf("Code = %q, want FILE002", userErr.User.Code)
		}

		var de *codec.DecodeError
		if !errors.As(userErr, &de) {
			t.Error("Unwrap() should return original error")
		}
	})
}
