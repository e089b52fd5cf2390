// Package redis publishes the bot's latest scan and book state to Redis so
// external dashboards can read them without touching the engine. The store
// is optional: a nil *Writer is safe everywhere and a write failure never
// aborts a cycle.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/engine"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/model"
)

const (
	scanKey      = "algobot:scan"
	stateKey     = "algobot:state"
	positionsKey = "algobot:positions"

	snapshotTTL  = 10 * time.Minute
	writeTimeout = 2 * time.Second
)

// WriterConfig configures the Redis snapshot writer.
type WriterConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Writer mirrors cycle snapshots into Redis.
type Writer struct {
	client *goredis.Client
	log    *slog.Logger
}

// New creates a Writer and pings the server.
func New(cfg WriterConfig, log *slog.Logger) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Writer{client: client, log: log}, nil
}

// SaveScan stores the latest scan records.
func (w *Writer) SaveScan(ctx context.Context, records []model.ScanRecord) {
	if w == nil {
		return
	}
	w.set(ctx, scanKey, records)
}

// SaveState stores the engine's book summary and open positions.
func (w *Writer) SaveState(ctx context.Context, stats engine.Stats, positions []model.Position) {
	if w == nil {
		return
	}
	w.set(ctx, stateKey, stats)
	w.set(ctx, positionsKey, positions)
}

func (w *Writer) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.log.Warn("redis marshal failed", "key", key, "err", err)
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := w.client.Set(wctx, key, data, snapshotTTL).Err(); err != nil {
		w.log.Warn("redis write failed", "key", key, "err", err)
	}
}

// Close closes the client.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	return w.client.Close()
}
