package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheet header written above the data rows.
const (
	HeaderPeriod = "Period"
	HeaderAmount = "AccumulatedAmount"
)

// valuesAPI is the slice of the Sheets values service the backend uses.
type valuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

type sheetsValues struct {
	svc *sheets.Service
}

func (v sheetsValues) Get(ctx context.Context, id, rng string) ([][]any, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(id, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v sheetsValues) Clear(ctx context.Context, id, rng string) error {
	_, err := v.svc.Spreadsheets.Values.Clear(id, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (v sheetsValues) Update(ctx context.Context, id, rng string, rows [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Update(id, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// Sheets stores the ledger in a two-column Google Sheets range: a header
// row followed by one (period, amount) row per period.
//
// Numeric cells are read unformatted and are exact. Amounts typed as text go
// through currency.ParseText, where a lone comma is always a decimal comma:
// a text cell holding "12,345" reads as 12.35, not twelve thousand.
type Sheets struct {
	api           valuesAPI
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// OpenSheets authenticates with a service-account credentials file.
// An empty sheetName addresses the first sheet.
func OpenSheets(ctx context.Context, spreadsheetID, sheetName, credentialsFile string, logger *log.Logger) (*Sheets, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return newSheets(sheetsValues{svc: svc}, spreadsheetID, sheetName, logger), nil
}

func newSheets(api valuesAPI, spreadsheetID, sheetName string, logger *log.Logger) *Sheets {
	return &Sheets{
		api:           api,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        discardIfNil(logger),
	}
}

// Name implements Backend.
func (s *Sheets) Name() string { return "sheets" }

// Close implements Backend.
func (s *Sheets) Close() error { return nil }

func (s *Sheets) rng(a1 string) string {
	if s.sheetName == "" {
		return a1
	}
	return "'" + strings.ReplaceAll(s.sheetName, "'", "''") + "'!" + a1
}

// ReadAll implements Backend. Rows without a period label are skipped and a
// missing amount cell reads as zero.
func (s *Sheets) ReadAll(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := s.api.Get(ctx, s.spreadsheetID, s.rng("A2:B"))
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet %s: %w", s.spreadsheetID, err)
	}

	result := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		period := strings.TrimSpace(fmt.Sprint(row[0]))
		if period == "" {
			continue
		}
		var raw any
		if len(row) > 1 {
			raw = row[1]
		}
		result[period] = decodeCell(s.logger, s.Name(), period, raw)
	}
	return result, nil
}

// WriteAll clears the data columns then writes the header and every entry.
func (s *Sheets) WriteAll(ctx context.Context, entries []Entry) error {
	rows := make([][]any, 0, len(entries)+1)
	rows = append(rows, []any{HeaderPeriod, HeaderAmount})
	for _, e := range entries {
		rows = append(rows, []any{e.Period, e.Amount.Round(2).InexactFloat64()})
	}

	if err := s.api.Clear(ctx, s.spreadsheetID, s.rng("A:B")); err != nil {
		return fmt.Errorf("clearing spreadsheet %s: %w", s.spreadsheetID, err)
	}
	if err := s.api.Update(ctx, s.spreadsheetID, s.rng("A1"), rows); err != nil {
		return fmt.Errorf("updating spreadsheet %s: %w", s.spreadsheetID, err)
	}
	return nil
}
