package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultRedisKey is the hash holding period → amount.
const DefaultRedisKey = "nakop:savings"

// Redis stores the ledger in a single Redis hash.
type Redis struct {
	client *redis.Client
	key    string
	logger *log.Logger
}

// OpenRedis connects to redisURL and verifies the connection. A bare
// host:port is accepted as well as a redis:// URL.
func OpenRedis(ctx context.Context, redisURL, key string, logger *log.Logger) (*Redis, error) {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedis(client, key, logger), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, key string, logger *log.Logger) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key, logger: discardIfNil(logger)}
}

// Name implements Backend.
func (r *Redis) Name() string { return "redis" }

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }

// ReadAll implements Backend.
func (r *Redis) ReadAll(ctx context.Context) (map[string]decimal.Decimal, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.key, err)
	}

	result := make(map[string]decimal.Decimal, len(raw))
	for period, v := range raw {
		result[period] = decodeCell(r.logger, r.Name(), period, v)
	}
	return result, nil
}

// WriteAll replaces the hash in one MULTI/EXEC transaction.
func (r *Redis) WriteAll(ctx context.Context, entries []Entry) error {
	fields := make([]any, 0, 2*len(entries))
	for _, e := range entries {
		fields = append(fields, e.Period, e.Amount.Round(2).StringFixed(2))
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, r.key, fields...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", r.key, err)
	}
	return nil
}
