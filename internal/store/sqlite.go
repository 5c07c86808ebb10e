package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps each catalog table as a SQLite table of TEXT columns.
// It serves as an offline mirror of the shared spreadsheet.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: path is required: %w", ErrUnavailable)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w: %w", path, ErrUnavailable, err)
	}
	// database/sql pools connections; one keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: ping %s: %w: %w", path, ErrUnavailable, err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ID() string { return "sqlite:" + s.path }

func (s *SQLiteStore) Capabilities() Capabilities { return Capabilities{Append: true} }

// Fetch returns the column names followed by every row in insertion order
func (s *SQLiteStore) Fetch(ctx context.Context, table string) ([][]string, error) {
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", table, ErrUnavailable, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%s: columns: %w", table, err)
	}

	out := [][]string{cols}
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", table, err)
		}

		row := make([]string, len(cols))
		for i, c := range cells {
			row[i] = c.String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", table, err)
	}

	return out, nil
}

// Append inserts values positionally; arity mismatches are reported by SQLite
func (s *SQLiteStore) Append(ctx context.Context, table string, values []string) error {
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", table, ErrUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	if len(values) == 0 {
		return fmt.Errorf("%s: no values to append", table)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}

	if _, err := s.db.ExecContext(ctx, "INSERT INTO "+quoteIdent(table)+" VALUES ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("%s: insert: %w", table, err)
	}
	return nil
}

// ReplaceTable drops and recreates table with the header's columns and rows.
// Used to refresh the mirror from the primary store.
func (s *SQLiteStore) ReplaceTable(ctx context.Context, table string, rows [][]string) (err error) {
	if len(rows) == 0 {
		return fmt.Errorf("%s: cannot mirror a table without a header row", table)
	}
	header := rows[0]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("%s: drop: %w", table, err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		cols[i] = quoteIdent(name) + " TEXT NOT NULL DEFAULT ''"
	}
	if _, err = tx.ExecContext(ctx, "CREATE TABLE "+quoteIdent(table)+" ("+strings.Join(cols, ", ")+")"); err != nil {
		return fmt.Errorf("%s: create: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(header)), ",")
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+quoteIdent(table)+" VALUES ("+placeholders+")")
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows[1:] {
		args := make([]any, len(header))
		for i := range header {
			if i < len(row) {
				args[i] = row[i]
			} else {
				args[i] = ""
			}
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("%s: insert: %w", table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) tableExists(ctx context.Context, table string) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Mirror copies tables from src into dst, stopping at the first failure
func Mirror(ctx context.Context, src Store, dst *SQLiteStore, tables []string) error {
	for _, table := range tables {
		rows, err := src.Fetch(ctx, table)
		if err != nil {
			return fmt.Errorf("mirror %s: %w", table, err)
		}
		if err := dst.ReplaceTable(ctx, table, rows); err != nil {
			return fmt.Errorf("mirror %s: %w", table, err)
		}
	}
	return nil
}
