// Package tabular reads and writes the spreadsheet formats accepted and
// produced by the converter: CSV and Excel workbooks.
//
// Reading normalizes the header the way spreadsheet users expect: blank
// headers become "Unnamed: N" (N is the zero-based column position) and
// repeated headers get a ".1", ".2" suffix. Cells are kept as raw strings.
package tabular

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for extensions other than csv, xlsx and xls.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when the input has no content at all.
	ErrEmptyFile = errors.New("file is empty")

	// ErrNoHeader is returned when no non-blank header row is found.
	ErrNoHeader = errors.New("file has no header row")
)

// DetectFormat returns the format implied by the file name's extension.
// Legacy .xls files are handed to the workbook reader, which rejects them
// if they are not OOXML.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xls", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ParseFormat validates a user-supplied format name ("csv", "xlsx", "excel").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel", "xls":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Extension returns the file extension, with dot, for f.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type used when serving f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// OutputName builds the download name for a converted file:
// prefix + "_" + input stem + extension.
func OutputName(prefix, input string, f Format) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		stem = "export"
	}
	return prefix + "_" + stem + f.Extension()
}
