package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/theirongolddev/nakop/internal/config"
)

// Open constructs the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (Backend, error) {
	logger = discardIfNil(logger)

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case config.BackendFile, "":
		return NewFile(cfg.ResolvedFilePath(), logger), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.ResolvedSQLitePath(), logger)
	case config.BackendSheets:
		if cfg.SpreadsheetID == "" {
			return nil, fmt.Errorf("%w: sheets needs a spreadsheet_id", ErrNotConfigured)
		}
		if cfg.CredentialsFile == "" {
			return nil, fmt.Errorf("%w: sheets needs a credentials_file", ErrNotConfigured)
		}
		return OpenSheets(ctx, cfg.SpreadsheetID, cfg.SheetName, cfg.CredentialsFile, logger)
	case config.BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("%w: redis needs a redis_url", ErrNotConfigured)
		}
		return OpenRedis(ctx, cfg.RedisURL, cfg.RedisKey, logger)
	case config.BackendMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
