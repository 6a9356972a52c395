// Package rates fetches home-currency exchange rates from the CBR daily feed.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/theirongolddev/nakop/internal/model"
)

const (
	// DefaultURL is the CBR daily rates feed.
	DefaultURL = "https://www.cbr-xml-daily.ru/daily_json.js"
	// DefaultTimeout bounds one fetch.
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

// ErrFetch is returned for every fetch failure: network, status, decoding or
// a missing USD quote. Callers must not use any rate when they see it.
var ErrFetch = errors.New("rates: fetch failed")

// Provider returns the current rate snapshot.
type Provider interface {
	Fetch(ctx context.Context) (model.RateSnapshot, error)
}

// Client fetches rates from a CBR-compatible JSON endpoint.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock sets the clock used when the feed carries no date.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for url, or DefaultURL when url is empty.
func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:     url,
		timeout: DefaultTimeout,
		http:    &http.Client{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch implements Provider.
func (c *Client) Fetch(ctx context.Context) (model.RateSnapshot, error) {
	invokedAt := c.now()

	body, err := c.get(ctx)
	if err != nil {
		return model.RateSnapshot{}, err
	}

	var raw dailyResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.RateSnapshot{}, fmt.Errorf("%w: decoding response: %v", ErrFetch, err)
	}
	return snapshotFrom(raw, invokedAt)
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/nakop/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrFetch, err)
	}
	return body, nil
}

// snapshotFrom converts the raw feed into per-unit rates.
// A missing or non-positive USD quote fails the whole snapshot; UZS is optional.
func snapshotFrom(raw dailyResponse, invokedAt time.Time) (model.RateSnapshot, error) {
	usd, ok := raw.Valute[string(model.USD)]
	if !ok || !usd.Value.IsPositive() {
		return model.RateSnapshot{}, fmt.Errorf("%w: USD rate missing from feed", ErrFetch)
	}

	snap := model.RateSnapshot{
		USD:         usd.perUnit(usd.Value),
		USDPrevious: usd.perUnit(usd.Previous),
		Timestamp:   invokedAt,
	}

	if uzs, ok := raw.Valute[string(model.UZS)]; ok && uzs.Value.IsPositive() {
		cur := uzs.perUnit(uzs.Value)
		snap.UZS = &cur
		if uzs.Previous.IsPositive() {
			prev := uzs.perUnit(uzs.Previous)
			snap.UZSPrevious = &prev
		}
	}

	if raw.Date != "" {
		if ts, err := time.Parse(time.RFC3339, raw.Date); err == nil {
			snap.Timestamp = ts
		}
	}

	return snap, nil
}
