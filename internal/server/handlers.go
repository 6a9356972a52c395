package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/currency"
	"github.com/theirongolddev/nakop/internal/ledger"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/pipeline"
	"github.com/theirongolddev/nakop/internal/rates"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// RateView is one rate in API responses. Rate and Delta are per Unit.
type RateView struct {
	Currency  string `json:"currency"`
	Unit      int64  `json:"unit"`
	Rate      string `json:"rate,omitempty"`
	Delta     string `json:"delta,omitempty"`
	Available bool   `json:"available"`
}

// RatesView is served at /v1/rates.
type RatesView struct {
	Timestamp time.Time  `json:"timestamp"`
	Rates     []RateView `json:"rates"`
}

// PeriodView is one period row.
type PeriodView struct {
	Period string `json:"period"`
	Start  string `json:"start"`
	Plan   string `json:"plan"`
	Actual string `json:"actual"`
	Met    bool   `json:"met"`
}

// ProgressView mirrors model.ProgressSnapshot.
type ProgressView struct {
	Accumulated     string `json:"accumulated"`
	Remaining       string `json:"remaining"`
	EstimatedMonths int64  `json:"estimated_months"`
	EstimatedFinish string `json:"estimated_finish"`
	PercentComplete string `json:"percent_complete"`
}

// CapitalView is the starting-capital breakdown.
type CapitalView struct {
	FromUSD    string `json:"from_usd"`
	FromUZS    string `json:"from_uzs"`
	Total      string `json:"total"`
	UZSMissing bool   `json:"uzs_missing,omitempty"`
}

// DashboardView is served at /v1/dashboard.
type DashboardView struct {
	Rates    RatesView    `json:"rates"`
	Goal     string       `json:"goal"`
	Plan     string       `json:"monthly_plan"`
	Start    string       `json:"start"`
	Capital  CapitalView  `json:"capital"`
	Progress ProgressView `json:"progress"`
	Periods  []PeriodView `json:"periods"`
	Warnings []string     `json:"warnings,omitempty"`
}

func ratesView(snap model.RateSnapshot) RatesView {
	v := RatesView{Timestamp: snap.Timestamp}
	for _, l := range pipeline.RateLines(snap) {
		rv := RateView{Currency: string(l.Currency), Unit: l.Unit, Available: l.Available}
		if l.Available {
			rv.Rate = l.Rate.StringFixed(4)
			rv.Delta = l.Delta.StringFixed(4)
		}
		v.Rates = append(v.Rates, rv)
	}
	return v
}

func dashboardView(d pipeline.Dashboard) DashboardView {
	v := DashboardView{
		Rates: ratesView(d.Snapshot),
		Goal:  money(d.Goal.Target),
		Plan:  money(d.Goal.MonthlyPlan),
		Start: d.Goal.Start.Format(model.DateLayout),
		Capital: CapitalView{
			FromUSD:    money(d.Capital.FromUSD),
			FromUZS:    money(d.Capital.FromUZS),
			Total:      money(d.Capital.Total),
			UZSMissing: d.Capital.UZSMissing,
		},
		Progress: ProgressView{
			Accumulated:     money(d.Progress.Accumulated),
			Remaining:       money(d.Progress.Remaining),
			EstimatedMonths: d.Progress.EstimatedMonths,
			EstimatedFinish: d.Progress.EstimatedFinish.Format(model.DateLayout),
			PercentComplete: d.Progress.PercentComplete.StringFixed(2),
		},
		Warnings: d.Warnings,
	}
	for _, r := range d.Rows {
		v.Periods = append(v.Periods, PeriodView{
			Period: r.Label,
			Start:  r.Start.Format(model.DateLayout),
			Plan:   money(r.Plan),
			Actual: money(r.Actual),
			Met:    r.Met,
		})
	}
	return v
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnknownPeriod),
		errors.Is(err, currency.ErrInvalidAmount),
		errors.Is(err, currency.ErrUnknownCurrency):
		return http.StatusBadRequest
	case errors.Is(err, rates.ErrFetch),
		errors.Is(err, currency.ErrRateUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ledger.ErrPersistenceWrite),
		errors.Is(err, ledger.ErrPersistenceRead):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	s.logger.Debug("request failed", "path", c.Request.URL.Path, "err", err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": cli.UserMessage(err)})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Server) handleDashboard(c *gin.Context) {
	d, err := sessionFrom(c).Dashboard(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboardView(d))
}

func (s *Server) handleRates(c *gin.Context) {
	snap, err := s.rates.Fetch(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratesView(snap))
}

func (s *Server) handlePeriods(c *gin.Context) {
	sess := sessionFrom(c)
	goal := sess.Goal()

	entries := sess.Ledger().Entries()
	out := make([]PeriodView, len(entries))
	for i, e := range entries {
		out[i] = PeriodView{
			Period: e.Period,
			Start:  model.PeriodStart(goal.Start, i).Format(model.DateLayout),
			Plan:   money(goal.MonthlyPlan),
			Actual: money(e.Amount),
			Met:    e.Amount.GreaterThanOrEqual(goal.MonthlyPlan),
		}
	}
	c.JSON(http.StatusOK, out)
}

// AmountInput accepts either a JSON number or a locale-formatted string
// such as "1 000,50".
type AmountInput string

// UnmarshalJSON implements json.Unmarshaler.
func (a *AmountInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = AmountInput(n.String())
	return nil
}

// ContributionRequest is the body of POST /v1/contributions.
type ContributionRequest struct {
	Period string      `json:"period" binding:"required"`
	RUB    AmountInput `json:"rub"`
	USD    AmountInput `json:"usd"`
	UZS    AmountInput `json:"uzs"`
}

func (r ContributionRequest) amounts() (model.Amounts, error) {
	var a model.Amounts
	var err error
	if a.RUB, err = currency.ParseAmount(string(r.RUB)); err != nil {
		return a, err
	}
	if a.USD, err = currency.ParseAmount(string(r.USD)); err != nil {
		return a, err
	}
	if a.UZS, err = currency.ParseAmount(string(r.UZS)); err != nil {
		return a, err
	}
	return a, nil
}

// ContributionResponse reports what was recorded.
type ContributionResponse struct {
	Period   string   `json:"period"`
	Amount   string   `json:"amount"`
	Value    string   `json:"value"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) handleAddContribution(c *gin.Context) {
	var req ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Send a JSON body with a period and at least one amount."})
		return
	}

	amounts, err := req.amounts()
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	sess := sessionFrom(c)
	added, err := sess.Add(c.Request.Context(), req.Period, amounts)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ContributionResponse{
		Period:   added.Period,
		Amount:   money(added.Amount),
		Value:    money(added.NewValue),
		Warnings: sess.Notices(),
	})
}

func (s *Server) handleReset(c *gin.Context) {
	if err := sessionFrom(c).Reset(c.Request.Context()); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
