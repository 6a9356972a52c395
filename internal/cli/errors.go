package cli

import (
	"errors"

	"github.com/theirongolddev/nakop/internal/currency"
	"github.com/theirongolddev/nakop/internal/ledger"
	"github.com/theirongolddev/nakop/internal/rates"
	"github.com/theirongolddev/nakop/internal/store"
)

// UserMessage maps an error to the plain-language text shown to the user.
// The raw error belongs in the debug log.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, rates.ErrFetch):
		return "Exchange rates could not be loaded. Check your connection and try again."
	case errors.Is(err, currency.ErrRateUnavailable):
		return "The exchange rate for that currency is not available right now."
	case errors.Is(err, currency.ErrInvalidAmount):
		return "Amounts must be non-negative numbers."
	case errors.Is(err, currency.ErrUnknownCurrency):
		return "Only RUB, USD and UZS are supported."
	case errors.Is(err, ledger.ErrUnknownPeriod):
		return "That month is not part of the savings schedule."
	case errors.Is(err, ledger.ErrPersistenceWrite):
		return "The change was kept on screen but could not be saved. It will be lost when you quit unless a later save succeeds."
	case errors.Is(err, ledger.ErrPersistenceRead):
		return "Saved contributions could not be read, so nothing was changed. Check the storage backend and try again."
	case errors.Is(err, store.ErrUnknownBackend):
		return "Unknown storage backend. Use one of: file, sqlite, sheets, redis, memory."
	case errors.Is(err, store.ErrNotConfigured):
		return "The storage backend is missing required settings. Run `nakop setup`."
	}
	return "Something went wrong: " + err.Error()
}
