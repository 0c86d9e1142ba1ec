// Package refdata loads the three-level category taxonomy used to resolve
// nested category strings to IDs.
//
// Reference data can come from headerless CSV files in a directory, a
// PostgreSQL database or a SQLite file. In every case a missing table is
// not an error: the level is left empty and the resolver never matches it.
package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/catalogconv/internal/core"
)

// Source selects where reference data is loaded from.
type Source string

const (
	SourceCSV      Source = "csv"
	SourcePostgres Source = "postgres"
	SourceSQLite   Source = "sqlite"
	SourceNone     Source = "none"
)

// Options configures Load.
type Options struct {
	Source      Source
	Dir         string // SourceCSV
	DatabaseURL string // SourcePostgres
	MaxConns    int    // SourcePostgres
	SQLitePath  string // SourceSQLite
}

// table describes one reference table. parentCol is empty for the top level.
type table struct {
	level     core.CategoryLevel
	name      string
	file      string
	parentCol string
}

var tables = []table{
	{level: core.LevelCategory, name: "categories", file: "categories.csv"},
	{level: core.LevelSubCategory, name: "sub_categories", file: "sub_categories.csv", parentCol: "category_id"},
	{level: core.LevelSubSubCategory, name: "sub_sub_categories", file: "sub_sub_categories.csv", parentCol: "sub_category_id"},
}

// Load reads reference data from the configured source.
func Load(ctx context.Context, opts Options) (*core.ReferenceData, error) {
	var (
		ref *core.ReferenceData
		err error
	)

	switch opts.Source {
	case SourceCSV, "":
		ref, err = LoadDir(opts.Dir)
	case SourcePostgres:
		pool, perr := OpenPool(ctx, opts.DatabaseURL, opts.MaxConns)
		if perr != nil {
			return nil, fmt.Errorf("load reference data: %w", perr)
		}
		defer pool.Close()
		ref, err = LoadPostgres(ctx, pool)
	case SourceSQLite:
		db, serr := OpenSQLite(opts.SQLitePath)
		if serr != nil {
			return nil, fmt.Errorf("load reference data: %w", serr)
		}
		defer db.Close()
		ref, err = LoadSQLite(ctx, db)
	case SourceNone:
		ref = &core.ReferenceData{}
	default:
		return nil, fmt.Errorf("load reference data: unknown source %q", opts.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	c, s, ss := ref.Counts()
	slog.Info("reference data loaded",
		"source", string(opts.Source),
		"categories", c,
		"sub_categories", s,
		"sub_sub_categories", ss,
	)
	return ref, nil
}

// assign stores rows for a level.
func assign(ref *core.ReferenceData, level core.CategoryLevel, rows []core.CategoryRow) {
	switch level {
	case core.LevelCategory:
		ref.Categories = rows
	case core.LevelSubCategory:
		ref.SubCategories = rows
	case core.LevelSubSubCategory:
		ref.SubSubCategories = rows
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts the timestamp layouts written by common database
// exports. Unparseable values yield the zero time.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseBool accepts 1/0, true/false, t/f, yes/no.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}

// parseID parses an integer ID, tolerating a trailing ".0" from spreadsheet
// exports.
func parseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	return strconv.Atoi(s)
}
