// Package session ties one ledger, its backend and a rate provider to the
// goal and holdings entered for a single interactive session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/currency"
	"github.com/theirongolddev/nakop/internal/ledger"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/pipeline"
	"github.com/theirongolddev/nakop/internal/rates"
	"github.com/theirongolddev/nakop/internal/store"
)

// Options configures a new Session.
type Options struct {
	Backend  store.Backend
	Rates    rates.Provider
	Goal     model.Goal
	Holdings model.Holdings
	Logger   *log.Logger
	// Notices are shown with every dashboard, e.g. that the ledger is shared.
	Notices []string
}

// Session is the state of one user interaction: the loaded ledger plus the
// inputs every render pass needs. Mutations are serialized.
type Session struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	rates    rates.Provider
	goal     model.Goal
	holdings model.Holdings
	notices  []string
	logger   *log.Logger
}

// New loads the ledger for opts.Goal's period schedule. A backend read
// failure is not fatal: the session starts from an all-zero ledger, every
// dashboard carries a warning and adds are refused until a read succeeds.
func New(ctx context.Context, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	periods := model.Periods(opts.Goal.Start)

	// Load logs a read failure and the ledger remembers it.
	l, _ := ledger.Load(ctx, opts.Backend, periods, logger)
	return &Session{
		ledger:   l,
		rates:    opts.Rates,
		goal:     opts.Goal,
		holdings: opts.Holdings,
		notices:  append([]string(nil), opts.Notices...),
		logger:   logger,
	}
}

// Ledger returns the session's ledger.
func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// Goal returns the session's goal.
func (s *Session) Goal() model.Goal {
	return s.goal
}

// Holdings returns the session's pre-existing holdings.
func (s *Session) Holdings() model.Holdings {
	return s.holdings
}

// Dashboard rereads the ledger and runs one render pass.
func (s *Session) Dashboard(ctx context.Context) (pipeline.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A failed read is reported through ReadWarning.
	_ = s.ledger.Refresh(ctx)
	return s.dashboardLocked(ctx)
}

// ReadWarning is shown while the stored ledger could not be read.
const ReadWarning = "Saved contributions could not be read, so the figures may be incomplete. Adding is paused until they can be read again."

func (s *Session) dashboardLocked(ctx context.Context) (pipeline.Dashboard, error) {
	var warnings []string
	if s.ledger.ReadFailed() {
		warnings = append(warnings, ReadWarning)
	}
	warnings = append(warnings, s.notices...)
	return pipeline.Build(ctx, pipeline.Inputs{
		Rates:    s.rates,
		Ledger:   s.ledger,
		Goal:     s.goal,
		Holdings: s.holdings,
		Warnings: warnings,
	})
}

// Notices returns the fixed notices given at creation.
func (s *Session) Notices() []string {
	return append([]string(nil), s.notices...)
}

// Added reports the outcome of Session.Add.
type Added struct {
	Period   string
	Amount   decimal.Decimal // home-currency amount recorded
	NewValue decimal.Decimal // the period's value after the add
}

// Add converts a multi-currency contribution to the home currency and
// records it against period. The period and amounts are validated before
// rates are fetched. If the stored ledger cannot be read nothing is
// recorded and the error wraps ledger.ErrPersistenceRead. A write failure
// still returns the recorded amount alongside an error wrapping
// ledger.ErrPersistenceWrite.
func (s *Session) Add(ctx context.Context, period string, amounts model.Amounts) (Added, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ledger.Value(period); err != nil {
		return Added{}, err
	}
	if amounts.RUB.IsNegative() || amounts.USD.IsNegative() || amounts.UZS.IsNegative() {
		return Added{}, fmt.Errorf("%w: contribution parts must not be negative", currency.ErrInvalidAmount)
	}

	var snap model.RateSnapshot
	if !amounts.USD.IsZero() || !amounts.UZS.IsZero() {
		var err error
		snap, err = s.rates.Fetch(ctx)
		if err != nil {
			return Added{}, err
		}
	}

	total, err := currency.Contribution(amounts, snap)
	if err != nil {
		return Added{}, err
	}

	added := Added{Period: period, Amount: total}
	err = s.ledger.Add(ctx, period, total)
	if err != nil && !errors.Is(err, ledger.ErrPersistenceWrite) {
		return Added{}, err
	}
	added.NewValue, _ = s.ledger.Value(period)
	s.logger.Info("contribution recorded", "period", period, "amount", total.StringFixed(2))
	return added, err
}

// Reset zeroes every period.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ledger.Reset(ctx)
	s.logger.Info("ledger reset", "backend", s.ledger.Backend().Name())
	return err
}

// RefreshRates drops any cached rate snapshot so the next pass refetches.
// Providers without a cache are left alone.
func (s *Session) RefreshRates() {
	if c, ok := s.rates.(interface{ Invalidate() }); ok {
		c.Invalidate()
	}
}

// Close releases the backend.
func (s *Session) Close() error {
	return s.ledger.Backend().Close()
}
