package repository

import (
	"context"
	"time"

	"candlerelay/internal/domain/models"
)

// CandleStore is the narrow read interface over the external candle store.
// Implementations translate store-level failures into fault.Unavailable; they
// never raise NotFound or InvalidArgument themselves. Empty result sets are
// returned as-is and interpreted by the query layer.
type CandleStore interface {
	// ListSymbols returns distinct tickers in ascending lexicographic order,
	// optionally filtered by a case-insensitive prefix, truncated to limit.
	ListSymbols(ctx context.Context, limit int, prefix string) ([]string, error)

	// Candles returns candles for an exact ticker+timeframe match, ordered by
	// timestamp per order, truncated to limit.
	Candles(ctx context.Context, ticker string, tfMin, limit int, order Order) ([]models.Candle, error)

	// CandlesRange returns candles with timestamp in [start, end] inclusive,
	// always timestamp-ascending, truncated to limit.
	CandlesRange(ctx context.Context, ticker string, tfMin int, start, end time.Time, limit int) ([]models.Candle, error)

	// FirstLastTimestamp returns the oldest and newest stored timestamp for a
	// ticker+timeframe. ok is false when no rows exist.
	FirstLastTimestamp(ctx context.Context, ticker string, tfMin int) (first, last time.Time, ok bool, err error)

	// Health pings the store.
	Health(ctx context.Context) error

	Close() error
}

// Metrics records operational counters for queries and replay sessions.
type Metrics interface {
	RecordQuery(op string, seconds float64)
	RecordError(kind string)
	RecordReplayStarted()
	RecordReplayFinished(outcome string)
	RecordFrameSent(frameType string)
}
