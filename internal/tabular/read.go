package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is a parsed input file: a normalized header plus data rows.
// Rows may be shorter than the header; missing cells are empty.
type Sheet struct {
	Columns []string
	Rows    [][]string

	// Name is the workbook sheet that was read; empty for CSV.
	Name string

	// Bytes is the number of input bytes consumed.
	Bytes int64
}

// Read parses r in the given format.
func Read(r io.Reader, f Format) (*Sheet, error) {
	switch f {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// ReadCSV parses a comma-separated file whose first record is the header.
// A UTF-8 BOM is skipped and invalid UTF-8 is replaced.
func ReadCSV(r io.Reader) (*Sheet, error) {
	counter := WrapForStreaming(r)

	cr := csv.NewReader(counter)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if counter.BytesRead == 0 {
		return nil, ErrEmptyFile
	}

	sheet, err := newSheet(records)
	if err != nil {
		return nil, err
	}
	sheet.Bytes = counter.BytesRead
	return sheet, nil
}

// ReadXLSX parses the first sheet of an Excel workbook.
func ReadXLSX(r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("parse xlsx: %w", ErrNoHeader)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: sheet %q: %w", sheets[0], err)
	}

	sheet, err := newSheet(rows)
	if err != nil {
		return nil, err
	}
	sheet.Name = sheets[0]
	sheet.Bytes = int64(len(data))
	return sheet, nil
}

// newSheet splits records into header and data rows, skipping leading and
// interior rows whose cells are all blank.
func newSheet(records [][]string) (*Sheet, error) {
	var header []string
	var rows [][]string
	for _, rec := range records {
		if blankRow(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, rec)
	}
	if header == nil {
		if len(records) == 0 {
			return nil, ErrEmptyFile
		}
		return nil, ErrNoHeader
	}
	return &Sheet{Columns: NormalizeHeader(header), Rows: rows}, nil
}

func blankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader trims header cells, names blank ones "Unnamed: N" and
// suffixes repeats with ".1", ".2" in order of appearance.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))

	for i, h := range header {
		name := cleanHeader(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		out[i] = name
		taken[name] = true
	}

	for i, name := range out {
		count := seen[name]
		if count == 0 {
			seen[name] = 1
			continue
		}
		var candidate string
		for {
			candidate = name + "." + strconv.Itoa(count)
			count++
			if !taken[candidate] {
				break
			}
		}
		seen[name] = count
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

// cleanHeader removes surrounding whitespace and an Excel text-formula
// wrapper (="...") from a header cell.
func cleanHeader(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	}
	return s
}
