package rates

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Refresher refetches a Cache on a cron schedule.
type Refresher struct {
	cache  *Cache
	cron   *cron.Cron
	logger *log.Logger
	ctx    context.Context
}

// NewRefresher registers a refresh of cache at spec, a five-field cron
// expression or a descriptor such as "@hourly".
func NewRefresher(ctx context.Context, cache *Cache, spec string, logger *log.Logger) (*Refresher, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Refresher{
		cache:  cache,
		cron:   cron.New(),
		logger: logger,
		ctx:    ctx,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("rates refresh schedule %q: %w", spec, err)
	}
	return r, nil
}

// Refresh drops the cached snapshot and fetches a new one. On failure the
// cache stays empty until the next successful fetch.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.cache.Invalidate()
	_, err := r.cache.Fetch(ctx)
	return err
}

func (r *Refresher) run() {
	if err := r.Refresh(r.ctx); err != nil {
		r.logger.Warn("scheduled rates refresh failed", "err", err)
		return
	}
	r.logger.Debug("rates refreshed", "at", r.cache.FetchedAt())
}

// Start runs the schedule in the background.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
