package core

import (
	"errors"

	"github.com/JonMunkholm/catalogconv/internal/tabular"
)

// Sentinel errors returned by the conversion pipeline. Callers match them
// with errors.Is; MapError turns them into user-facing messages.
var (
	// File errors are produced by the tabular readers.
	ErrUnsupportedFormat = tabular.ErrUnsupportedFormat
	ErrEmptyFile         = tabular.ErrEmptyFile
	ErrNoHeader          = tabular.ErrNoHeader

	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("conversion session not found")

	// ErrNotConverted is returned when a download is requested before convert.
	ErrNotConverted = errors.New("session has not been converted yet")

	// ErrUnknownField is returned when a mapping override names a field
	// outside the target schema.
	ErrUnknownField = errors.New("unknown target field")

	// ErrUnknownPlatform is returned for a platform key with no profile.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrTooManyConversions is returned when all conversion slots are
	// occupied and the wait timeout expires.
	ErrTooManyConversions = errors.New("too many concurrent conversions, please try again later")
)
