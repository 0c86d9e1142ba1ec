package refdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/catalogconv/internal/core"
)

// pgUndefinedTable is the SQLSTATE for a missing relation.
const pgUndefinedTable = "42P01"

// Querier is the subset of pgxpool.Pool and pgx.Conn used for loading.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OpenPool connects to PostgreSQL and verifies the connection.
func OpenPool(ctx context.Context, url string, maxConns int) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, errors.New("database url is empty")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// LoadPostgres reads the three reference tables. A table that does not
// exist leaves its level empty.
func LoadPostgres(ctx context.Context, q Querier) (*core.ReferenceData, error) {
	ref := &core.ReferenceData{}
	for _, t := range tables {
		rows, err := queryPostgres(ctx, q, t)
		if isUndefinedTable(err) {
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

func queryPostgres(ctx context.Context, q Querier, t table) ([]core.CategoryRow, error) {
	parent := "NULL::bigint"
	if t.parentCol != "" {
		parent = pgx.Identifier{t.parentCol}.Sanitize()
	}
	sql := fmt.Sprintf(
		`SELECT id, name, description, active, created_at::timestamptz, updated_at::timestamptz, %s FROM %s ORDER BY id`,
		parent, pgx.Identifier{t.name}.Sanitize(),
	)

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.CategoryRow
	for rows.Next() {
		var (
			id          int64
			name        pgtype.Text
			description pgtype.Text
			active      pgtype.Bool
			createdAt   pgtype.Timestamptz
			updatedAt   pgtype.Timestamptz
			parentID    pgtype.Int8
		)
		if err := rows.Scan(&id, &name, &description, &active, &createdAt, &updatedAt, &parentID); err != nil {
			return nil, err
		}
		out = append(out, core.CategoryRow{
			ID:          int(id),
			Name:        name.String,
			Description: description.String,
			Active:      active.Valid && active.Bool,
			CreatedAt:   createdAt.Time,
			UpdatedAt:   updatedAt.Time,
			ParentID:    int(parentID.Int64),
		})
	}
	return out, rows.Err()
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
