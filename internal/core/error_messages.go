// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users can quote the code to support staff for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Patterns: "file too large", "request body too large"
//	FILE002 - Invalid CSV: File could not be parsed as CSV
//	          Patterns: "parse csv"
//	FILE003 - Invalid workbook: File could not be opened as an Excel workbook
//	          Patterns: "parse xlsx"
//	FILE004 - No file: No file was selected
//	          Patterns: "no file provided"
//	FILE005 - Empty file: The uploaded file is empty
//	          Patterns: "file is empty"
//	FILE006 - Unsupported format: File is neither CSV nor Excel
//	          Patterns: "unsupported file format"
//	FILE007 - No header: The first row must hold column names
//	          Patterns: "no header row"
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Unknown field: Mapping names a field outside the product schema
//	         Patterns: "unknown target field"
//	MAP002 - Invalid mapping: Mapping payload could not be read
//	         Patterns: "invalid mapping"
//	MAP003 - Unknown platform: No profile with that name
//	         Patterns: "unknown platform"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired: Conversion session not found
//	         Patterns: "session not found"
//	SES002 - Not converted: Download requested before conversion
//	         Patterns: "not been converted"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy: Too many conversions in progress
//	         Patterns: "too many concurrent conversions"
//	UPL002 - Request cancelled
//	         Patterns: "context canceled"
//	UPL003 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Reference Data Errors (REF001-REF099)
//
//	REF001 - Reference data unavailable: Category tables could not be loaded
//	         Patterns: "load reference"
//	REF002 - Database unreachable
//	         Patterns: "connection refused"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// Sentinel errors are matched with errors.Is first. Remaining errors are
// matched case-insensitively on message fragments; the first rule wins.
// For ERR000, check application logs for the original technical error.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// codeDefault is the fallback code when no rule matches.
const codeDefault = "ERR000"

// messages is the catalog of user-facing text, keyed by code.
var messages = map[string]UserMessage{
	"FILE001": {"File exceeds the maximum upload size", "Split the export into smaller files", "FILE001"},
	"FILE002": {"File is not a valid CSV", "Ensure the file is comma-separated with a header row", "FILE002"},
	"FILE003": {"File could not be opened as an Excel workbook", "Re-save the file as .xlsx or export it as CSV", "FILE003"},
	"FILE004": {"No file was selected", "Please select a CSV or Excel file to upload", "FILE004"},
	"FILE005": {"The uploaded file is empty", "Please upload a file with a header row and product rows", "FILE005"},
	"FILE006": {"Unsupported file format", "Upload a .csv, .xlsx or .xls file", "FILE006"},
	"FILE007": {"The file has no header row", "Make sure the first row holds the column names", "FILE007"},

	"MAP001": {"The mapping names a field that is not part of the product schema", "Check the field names against the schema", "MAP001"},
	"MAP002": {"The column mapping could not be read", "Send the mapping as a JSON object of field to column", "MAP002"},
	"MAP003": {"Unknown platform", "Choose one of the supported platforms", "MAP003"},

	"SES001": {"Conversion session not found", "The session may have expired. Please upload the file again", "SES001"},
	"SES002": {"The file has not been converted yet", "Run the conversion before downloading", "SES002"},

	"UPL001": {"System is busy processing other conversions", "Please wait a moment and try again", "UPL001"},
	"UPL002": {"Request was cancelled", "Please try again", "UPL002"},
	"UPL003": {"Request timed out", "Try a smaller file or check your connection", "UPL003"},

	"REF001": {"Category reference data could not be loaded", "Check the reference data source configuration", "REF001"},
	"REF002": {"Unable to connect to the reference database", "Please try again in a few moments", "REF002"},

	"RATE001": {"Too many requests", "Please wait a moment before trying again", "RATE001"},

	codeDefault: {"An unexpected error occurred", "Please try again or contact support", codeDefault},
}

// rule ties a code to the sentinels and message fragments that select it.
type rule struct {
	code      string
	sentinels []error
	fragments []string
}

// rules are tried in order. Sentinels are checked with errors.Is across every
// rule before any fragment is compared.
var rules = []rule{
	{code: "FILE001", fragments: []string{"file too large", "request body too large"}},
	{code: "FILE002", fragments: []string{"parse csv"}},
	{code: "FILE003", fragments: []string{"parse xlsx"}},
	{code: "FILE004", fragments: []string{"no file provided"}},
	{code: "FILE005", sentinels: []error{ErrEmptyFile}, fragments: []string{"file is empty"}},
	{code: "FILE006", sentinels: []error{ErrUnsupportedFormat}, fragments: []string{"unsupported file format"}},
	{code: "FILE007", sentinels: []error{ErrNoHeader}, fragments: []string{"no header row"}},

	{code: "MAP001", sentinels: []error{ErrUnknownField}, fragments: []string{"unknown target field"}},
	{code: "MAP002", fragments: []string{"invalid mapping"}},
	{code: "MAP003", sentinels: []error{ErrUnknownPlatform}, fragments: []string{"unknown platform"}},

	{code: "SES001", sentinels: []error{ErrSessionNotFound}, fragments: []string{"session not found"}},
	{code: "SES002", sentinels: []error{ErrNotConverted}, fragments: []string{"not been converted"}},

	{code: "UPL001", sentinels: []error{ErrTooManyConversions}, fragments: []string{"too many concurrent conversions"}},
	{code: "UPL002", sentinels: []error{context.Canceled}, fragments: []string{"context canceled"}},
	{code: "UPL003", sentinels: []error{context.DeadlineExceeded}, fragments: []string{"context deadline exceeded"}},

	// Must precede REF002: a failed load usually wraps a refused dial.
	{code: "REF001", fragments: []string{"load reference"}},
	{code: "REF002", fragments: []string{"connection refused"}},

	{code: "RATE001", fragments: []string{"rate limit"}},
}

// codeFor picks the code for err, or codeDefault.
func codeFor(err error) string {
	for _, r := range rules {
		for _, s := range r.sentinels {
			if errors.Is(err, s) {
				return r.code
			}
		}
	}

	text := strings.ToLower(err.Error())
	for _, r := range rules {
		for _, f := range r.fragments {
			if strings.Contains(text, f) {
				return r.code
			}
		}
	}
	return codeDefault
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("analyze: %w", ErrEmptyFile))
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	return messages[codeFor(err)]
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return codeFor(err) != codeDefault
}

// UserError pairs a technical error with its user-friendly message.
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

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
