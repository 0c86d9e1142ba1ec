package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/catalogconv/internal/core"
	"github.com/JonMunkholm/catalogconv/internal/tabular"
)

// Column positions in the headerless reference files.
const (
	colID = iota
	colName
	colDescription
	colActive
	colCreatedAt
	colUpdatedAt
	colParent
)

// LoadDir reads categories.csv, sub_categories.csv and sub_sub_categories.csv
// from dir. Missing files leave the corresponding level empty.
func LoadDir(dir string) (*core.ReferenceData, error) {
	ref := &core.ReferenceData{}
	if dir == "" {
		return ref, nil
	}

	for _, t := range tables {
		path := filepath.Join(dir, t.file)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("reference file not found", "file", path, "level", t.level.String())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", t.file, err)
		}

		rows, err := ReadRows(f, t.parentCol != "")
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.file, err)
		}
		assign(ref, t.level, rows)
	}
	return ref, nil
}

// ReadRows parses one headerless reference table. withParent selects whether
// the seventh column (parent ID) is read. Rows with a non-integer ID are
// skipped.
func ReadRows(r io.Reader, withParent bool) ([]core.CategoryRow, error) {
	cr := csv.NewReader(tabular.NewBOMSkippingReader(r))
	cr.FieldsPerRecord = -1

	var rows []core.CategoryRow
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, ok := parseRecord(rec, withParent)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		slog.Warn("skipped reference rows without a numeric id", "count", skipped)
	}
	return rows, nil
}

func parseRecord(rec []string, withParent bool) (core.CategoryRow, bool) {
	field := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}

	id, err := parseID(field(colID))
	if err != nil {
		return core.CategoryRow{}, false
	}

	row := core.CategoryRow{
		ID:          id,
		Name:        field(colName),
		Description: field(colDescription),
		Active:      parseBool(field(colActive)),
		CreatedAt:   parseTime(field(colCreatedAt)),
		UpdatedAt:   parseTime(field(colUpdatedAt)),
	}
	if withParent {
		if parent, err := parseID(field(colParent)); err == nil {
			row.ParentID = parent
		}
	}
	return row, true
}
