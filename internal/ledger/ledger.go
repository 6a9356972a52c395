// Package ledger holds the running tally of contributions per period and
// writes every change through to a store.Backend.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/currency"
	"github.com/theirongolddev/nakop/internal/store"
)

var (
	// ErrUnknownPeriod is returned when a period is not part of the ledger.
	ErrUnknownPeriod = errors.New("ledger: unknown period")
	// ErrPersistenceRead is returned by Load when the backend could not be read.
	ErrPersistenceRead = errors.New("ledger: persistence read failed")
	// ErrPersistenceWrite is returned when a change could not be written through.
	// The in-memory change is kept.
	ErrPersistenceWrite = errors.New("ledger: persistence write failed")
)

// Ledger maps each period to the amount saved in it. The key set is fixed
// at Load and never changes.
type Ledger struct {
	mu      sync.RWMutex
	periods []string
	values  map[string]decimal.Decimal
	backend store.Backend
	logger  *log.Logger
	// readErr is the last failed backend read, nil once a read succeeds.
	readErr error
	// unsaved is set while the values hold a change the backend rejected.
	unsaved bool
}

// Load reads the backend and returns a ledger with exactly the given
// periods. Stored periods not in the list are dropped and missing ones are
// zero. On a read failure the ledger is all zeros and the returned error
// wraps ErrPersistenceRead; the ledger is usable either way.
func Load(ctx context.Context, backend store.Backend, periods []string, logger *log.Logger) (*Ledger, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	l := &Ledger{
		periods: append([]string(nil), periods...),
		values:  make(map[string]decimal.Decimal, len(periods)),
		backend: backend,
		logger:  logger,
	}
	for _, p := range periods {
		l.values[p] = decimal.Zero
	}

	if err := l.reloadLocked(ctx); err != nil {
		return l, err
	}
	return l, nil
}

// reloadLocked replaces the values with what the backend holds now. On
// failure the values are left alone and the error wraps ErrPersistenceRead.
func (l *Ledger) reloadLocked(ctx context.Context) error {
	stored, err := l.backend.ReadAll(ctx)
	if err != nil {
		l.logger.Warn("persistence read failed", "backend", l.backend.Name(), "err", err)
		l.readErr = fmt.Errorf("%w: %s: %v", ErrPersistenceRead, l.backend.Name(), err)
		return l.readErr
	}
	l.readErr = nil

	dropped := 0
	for _, p := range l.periods {
		l.values[p] = decimal.Zero
	}
	for p, v := range stored {
		if _, ok := l.values[p]; !ok {
			dropped++
			continue
		}
		l.values[p] = v
	}
	if dropped > 0 {
		l.logger.Debug("ignored stored periods outside the schedule", "backend", l.backend.Name(), "count", dropped)
	}
	return nil
}

// Refresh rereads the backend unless a change is still unsaved. On failure
// the current values stay and ReadFailed reports true.
func (l *Ledger) Refresh(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unsaved {
		return nil
	}
	return l.reloadLocked(ctx)
}

// ReadFailed reports whether the last backend read failed, in which case
// the values may not match the stored ledger.
func (l *Ledger) ReadFailed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readErr != nil
}

// Add records amount against period and writes the ledger through.
// Validation happens before any state changes. The backend is read again
// first so the write carries changes made elsewhere since Load; if that
// read fails nothing changes and the error wraps ErrPersistenceRead. While
// an earlier change is still unsaved the read is skipped so that change is
// not lost.
func (l *Ledger) Add(ctx context.Context, period string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s is negative", currency.ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.values[period]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}
	if !l.unsaved {
		if err := l.reloadLocked(ctx); err != nil {
			return err
		}
	}

	l.values[period] = currency.Round(l.values[period].Add(amount))
	return l.persist(ctx, l.entriesLocked())
}

// Reset sets every period to zero and writes the ledger through. It
// overwrites whatever is stored, readable or not.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.periods {
		l.values[p] = decimal.Zero
	}
	if err := l.persist(ctx, l.entriesLocked()); err != nil {
		return err
	}
	l.readErr = nil
	return nil
}

func (l *Ledger) persist(ctx context.Context, entries []store.Entry) error {
	if err := l.backend.WriteAll(ctx, entries); err != nil {
		l.unsaved = true
		l.logger.Error("persistence write failed", "backend", l.backend.Name(), "err", err)
		return fmt.Errorf("%w: %s: %v", ErrPersistenceWrite, l.backend.Name(), err)
	}
	l.unsaved = false
	return nil
}

// Periods returns the period labels in order.
func (l *Ledger) Periods() []string {
	return append([]string(nil), l.periods...)
}

// Value returns the amount saved in period.
func (l *Ledger) Value(period string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.values[period]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}
	return v, nil
}

// Values returns the amounts in period order.
func (l *Ledger) Values() []decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]decimal.Decimal, len(l.periods))
	for i, p := range l.periods {
		out[i] = l.values[p]
	}
	return out
}

// Total returns the sum over all periods.
func (l *Ledger) Total() decimal.Decimal {
	return decimal.Sum(decimal.Zero, l.Values()...)
}

// Entries returns (period, amount) pairs in period order.
func (l *Ledger) Entries() []store.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entriesLocked()
}

func (l *Ledger) entriesLocked() []store.Entry {
	out := make([]store.Entry, len(l.periods))
	for i, p := range l.periods {
		out[i] = store.Entry{Period: p, Amount: l.values[p]}
	}
	return out
}

// Backend returns the backend the ledger writes through to.
func (l *Ledger) Backend() store.Backend {
	return l.backend
}
