// Package store persists the savings ledger to one of several backends:
// a Google Sheets document, a local JSON file, SQLite, Redis or memory.
//
// Every backend exchanges the same shape with the ledger: a period label
// mapped to a non-negative amount in the home currency, rounded to kopecks.
package store

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedRow marks a stored value that could not be read as an amount.
	ErrMalformedRow = errors.New("store: malformed row")
	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("store: unknown backend")
	// ErrNotConfigured is returned by Open when a backend lacks required settings.
	ErrNotConfigured = errors.New("store: backend not configured")
)

// Entry is one period's persisted amount. Slices of entries keep period order.
type Entry struct {
	Period string
	Amount decimal.Decimal
}

// Backend reads and writes the whole ledger at once.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	// ReadAll returns every stored period. An absent store reads as empty.
	ReadAll(ctx context.Context) (map[string]decimal.Decimal, error)
	// WriteAll replaces the stored ledger with entries.
	WriteAll(ctx context.Context, entries []Entry) error
	Close() error
}

func discardIfNil(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}

// decodeCell parses a raw stored value, logging and defaulting to zero when
// it is malformed.
func decodeCell(logger *log.Logger, backend, period string, raw any) decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil {
		logger.Warn("malformed backend row", "backend", backend, "period", period, "value", raw, "err", err)
		return decimal.Zero
	}
	return d
}

type shared struct {
	Backend
}

func (shared) Close() error { return nil }

// Shared wraps b so that Close is a no-op. Sessions that share one backend
// use it and the owner closes b itself.
func Shared(b Backend) Backend {
	return shared{Backend: b}
}
