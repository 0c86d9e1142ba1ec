package refdata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/catalogconv/internal/core"
)

// OpenSQLite opens a SQLite database file read-only.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// LoadSQLite reads the three reference tables. A table that does not exist
// leaves its level empty.
func LoadSQLite(ctx context.Context, db *sql.DB) (*core.ReferenceData, error) {
	ref := &core.ReferenceData{}
	for _, t := range tables {
		rows, err := querySQLite(ctx, db, t)
		if err != nil && strings.Contains(err.Error(), "no such table") {
			slog.Warn("reference table not found", "table", t.name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", t.name, err)
		}
		assign(ref, t.level, rows)
	}
	return ref, nil
}

func querySQLite(ctx context.Context, db *sql.DB, t table) ([]core.CategoryRow, error) {
	parent := "NULL"
	if t.parentCol != "" {
		parent = t.parentCol
	}
	q := fmt.Sprintf(
		`SELECT id, name, description, active, created_at, updated_at, %s FROM %s ORDER BY id`,
		parent, t.name,
	)

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.CategoryRow
	for rows.Next() {
		var (
			id          int64
			name        sql.NullString
			description sql.NullString
			active      sql.NullString
			createdAt   sql.NullString
			updatedAt   sql.NullString
			parentID    sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &description, &active, &createdAt, &updatedAt, &parentID); err != nil {
			return nil, err
		}
		out = append(out, core.CategoryRow{
			ID:          int(id),
			Name:        name.String,
			Description: description.String,
			Active:      parseBool(active.String),
			CreatedAt:   parseTime(createdAt.String),
			UpdatedAt:   parseTime(updatedAt.String),
			ParentID:    int(parentID.Int64),
		})
	}
	return out, rows.Err()
}
