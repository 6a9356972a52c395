package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite stores the ledger in a local SQLite database.
type SQLite struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string, logger *log.Logger) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db, logger: discardIfNil(logger)}, nil
}

// Name implements Backend.
func (s *SQLite) Name() string { return "sqlite" }

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ReadAll implements Backend.
func (s *SQLite) ReadAll(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT period, amount FROM savings ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying savings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]decimal.Decimal)
	for rows.Next() {
		var period string
		var raw any
		if err := rows.Scan(&period, &raw); err != nil {
			return nil, fmt.Errorf("scanning savings: %w", err)
		}
		result[period] = decodeCell(s.logger, s.Name(), period, raw)
	}
	return result, rows.Err()
}

// WriteAll replaces every row inside one transaction.
func (s *SQLite) WriteAll(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM savings"); err != nil {
		return fmt.Errorf("clearing savings: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO savings (period, position, amount, updated_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range entries {
		amount := e.Amount.Round(2).InexactFloat64()
		if _, err := stmt.ExecContext(ctx, e.Period, i, amount, now); err != nil {
			return fmt.Errorf("inserting %q: %w", e.Period, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of stored rows.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM savings").Scan(&count)
	return count, err
}
