// Package store persists query results to a SQLite database, one SQL table
// per saved result plus a saved_tables index.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"astrocat/internal/components/assert"
	"astrocat/internal/components/chrono"
	"astrocat/internal/tabular"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

const indexTable = "saved_tables"

// Saved describes a table written with WriteTable.
type Saved struct {
	Name     string
	Source   string
	RowCount int
	SavedAt  time.Time
}

type Store struct {
	db    *sql.DB
	clock chrono.API
}

// Open opens (creating if needed) the database at path, ":memory:" is allowed.
// A nil clock means the system clock.
func Open(ctx context.Context, path string, clock chrono.API) (Store, error) {
	assert.NotEmptyStr(path)
	if clock == nil {
		clock = chrono.StandardImpl{}
	}

	db, err := openDB(path)
	if err != nil {
		return Store{}, fmt.Errorf("open db: %w", err)
	}

	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return Store{db: db, clock: clock}, nil
}

func openDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time, and every connection to ":memory:" is a
	// different database
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) DB() *sql.DB {
	return s.db
}

func (s Store) Close() error {
	return s.db.Close()
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func sqlType(kind tabular.Kind) string {
	switch kind {
	case tabular.Float:
		return "real"
	case tabular.Int, tabular.QuantumNumber:
		return "integer"
	default:
		return "text"
	}
}

// WriteTable replaces the table called name with the contents of table,
// null cells are stored as NULL.
func (s Store) WriteTable(ctx context.Context, name, source string, table tabular.Table) error {
	assert.NotEmptyStr(name)
	if strings.EqualFold(name, indexTable) {
		return fmt.Errorf("'%s' is reserved", name)
	}
	if len(table.Columns) == 0 {
		return fmt.Errorf("table '%s' has no columns", name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "drop table if exists "+quote(name))
	if err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	columns := make([]string, len(table.Columns))
	placeholders := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = quote(c.Name) + " " + sqlType(c.Kind)
		placeholders[i] = "?"
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf("create table %s (%s)", quote(name), strings.Join(columns, ", ")))
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"insert into %s values (%s)",
		quote(name), strings.Join(placeholders, ", "),
	))
	if err != nil {
		return err
	}
	defer insert.Close()

	args := make([]any, len(table.Columns))
	for i, row := range table.Rows {
		for j := range args {
			args[j] = nil
			if j < len(row) && !row[j].Null {
				args[j] = row[j].Any()
			}
		}
		_, err = insert.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	_, err = tx.ExecContext(
		ctx,
		`insert into saved_tables(name, source, row_count, saved_at) values (?, ?, ?, ?)
		on conflict (name) do update set source = excluded.source, row_count = excluded.row_count, saved_at = excluded.saved_at`,
		name, source, len(table.Rows), s.clock.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("index table: %w", err)
	}
	return tx.Commit()
}

// List returns every saved table, newest first.
func (s Store) List(ctx context.Context) ([]Saved, error) {
	rows, err := s.db.QueryContext(ctx, "select name, source, row_count, saved_at from saved_tables order by saved_at desc, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Saved
	for rows.Next() {
		var (
			saved   Saved
			savedAt int64
		)
		err = rows.Scan(&saved.Name, &saved.Source, &saved.RowCount, &savedAt)
		if err != nil {
			return nil, err
		}
		saved.SavedAt = time.Unix(savedAt, 0).UTC()
		out = append(out, saved)
	}
	return out, rows.Err()
}
