package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference. When users encounter errors, they can quote
// the code to support staff for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Unsupported file: Please upload only XLS, XLSX, or CSV files.
//	         Action: Choose a .xls, .xlsx or .csv file
//	         Matches: *codec.ValidationError
//
//	VAL002 - Invalid cell: That cell address is outside the sheet
//	         Action: Use an address like B3 within the sheet
//	         Matches: ErrInvalidCell, "invalid cell address"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Split the file into smaller files
//	          Matches: codec.ErrTooLarge, "file too large"
//
//	FILE002 - Unreadable file: Could not read this file
//	          Action: Check that the file is not damaged and matches its extension
//	          Matches: *codec.DecodeError, "invalid csv"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a spreadsheet to upload
//	          Matches: "no file provided"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Unsupported export: That export format is not available
//	         Action: Export as xlsx, xls, csv or json
//	         Matches: *codec.EncodeError wrapping codec.ErrUnsupportedFormat
//
//	EXP002 - Export failed: The spreadsheet could not be exported
//	         Action: Try another format or remove very long cell values
//	         Matches: *codec.EncodeError
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Matches: ErrTooManyUploads
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Matches: context.Canceled
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try uploading a smaller file or check your connection
//	         Matches: context.DeadlineExceeded
//
//	UPL006 - Superseded: A newer file was selected
//	         Action: The newest selection is shown
//	         Matches: ErrSuperseded
//
// # Store Errors (STO001-STO099)
//
//	STO001 - Store unavailable: Unable to reach session storage
//	         Action: Please try again in a few moments
//	         Matches: "connection refused", "connection reset"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Matches: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Typed and sentinel errors are checked first with errors.As and errors.Is,
// in table order. Errors that only arrive as text (for example from a proxy
// or the database driver) are matched case-insensitively with
// strings.Contains; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetview/internal/codec"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgUnsupportedFile = UserMessage{
		Message: codec.UnsupportedFileTypeMessage,
		Action:  "Choose a .xls, .xlsx or .csv file",
		Code:    "VAL001",
	}
	msgInvalidCell = UserMessage{
		Message: "That cell address is outside the sheet",
		Action:  "Use an address like B3 within the sheet",
		Code:    "VAL002",
	}
	msgTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}
	msgUnreadable = UserMessage{
		Message: "Could not read this file",
		Action:  "Check that the file is not damaged and matches its extension",
		Code:    "FILE002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a spreadsheet to upload",
		Code:    "FILE004",
	}
	msgUnsupportedExport = UserMessage{
		Message: "That export format is not available",
		Action:  "Export as xlsx, xls, csv or json",
		Code:    "EXP001",
	}
	msgExportFailed = UserMessage{
		Message: "The spreadsheet could not be exported",
		Action:  "Try another format or remove very long cell values",
		Code:    "EXP002",
	}
	msgBusy = UserMessage{
		Message: "Too many uploads in progress",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgSuperseded = UserMessage{
		Message: "A newer file was selected",
		Action:  "The newest selection is shown",
		Code:    "UPL006",
	}
	msgStoreDown = UserMessage{
		Message: "Unable to reach session storage",
		Action:  "Please try again in a few moments",
		Code:    "STO001",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// errorMatchers are tried in order before the text patterns.
// EncodeError wrapping ErrUnsupportedFormat must precede plain EncodeError.
var errorMatchers = []struct {
	match func(error) bool
	msg   UserMessage
}{
	{isAs[*codec.ValidationError], msgUnsupportedFile},
	{isErr(ErrInvalidCell), msgInvalidCell},
	{isErr(codec.ErrTooLarge), msgTooLarge},
	{isErr(ErrSuperseded), msgSuperseded},
	{isErr(ErrTooManyUploads), msgBusy},
	{isUnsupportedExport, msgUnsupportedExport},
	{isAs[*codec.EncodeError], msgExportFailed},
	{isAs[*codec.DecodeError], msgUnreadable},
	{isErr(context.DeadlineExceeded), msgTimeout},
	{isErr(context.Canceled), msgCancelled},
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"file too large", msgTooLarge},
	{"invalid cell address", msgInvalidCell},
	{"invalid csv", msgUnreadable},
	{"no file provided", msgNoFile},
	{"too many concurrent uploads", msgBusy},
	{"context deadline exceeded", msgTimeout},
	{"context canceled", msgCancelled},
	{"connection refused", msgStoreDown},
	{"connection reset", msgStoreDown},
	{"rate limit", msgRateLimited},
}

// defaultMessage is returned when no matcher or pattern applies.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

func isErr(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func isAs[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func isUnsupportedExport(err error) bool {
	var ee *codec.EncodeError
	return errors.As(err, &ee) && errors.Is(ee.Err, codec.ErrUnsupportedFormat)
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage if err is nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, m := range errorMatchers {
		if m.match(err) {
			return m.msg
		}
	}

	errLower := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errLower, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "Too many uploads in progress (Code: UPL002). Please wait a moment and try again"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
