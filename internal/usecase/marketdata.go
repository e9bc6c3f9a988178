package usecase

import (
	"context"
	"fmt"
	"time"

	"candlerelay/internal/domain/fault"
	"candlerelay/internal/domain/models"
	domrepo "candlerelay/internal/domain/repository"
	"candlerelay/pkg/cache"
	applogger "candlerelay/pkg/logger"
)

// MarketData is the query layer: it translates validated descriptors into
// bounded store lookups and raises NotFound based on result-set size. Input is
// assumed well-formed; business-rule validation happened in the Build* step.
type MarketData struct {
	store    domrepo.CandleStore
	metrics  domrepo.Metrics
	l        *applogger.Logger
	cache    cache.Service
	cacheTTL time.Duration
}

func NewMarketData(store domrepo.CandleStore, metrics domrepo.Metrics, l *applogger.Logger) *MarketData {
	return &MarketData{store: store, metrics: metrics, l: l}
}

// SetCache enables symbol-listing caching. Candle lookups are never cached;
// each replay session fetches its own history.
func (m *MarketData) SetCache(c cache.Service, ttl time.Duration) {
	m.cache = c
	m.cacheTTL = ttl
}

// ListSymbols returns distinct tickers. An empty match is a valid empty list,
// never NotFound.
func (m *MarketData) ListSymbols(ctx context.Context, q SymbolsQuery) ([]string, error) {
	key := fmt.Sprintf("symbols:%d:%s", q.Limit, q.Prefix)
	if m.cache != nil {
		var cached []string
		if err := m.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	symbols, err := m.observe(ctx, "list_symbols", func(ctx context.Context) ([]string, error) {
		return m.store.ListSymbols(ctx, q.Limit, q.Prefix)
	})
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if err := m.cache.Set(ctx, key, symbols, m.cacheTTL); err != nil && m.l != nil {
			m.l.Warn("symbols cache set failed", applogger.Error(err))
		}
	}
	return symbols, nil
}

// Candles returns candles for an exact ticker+timeframe match. Zero matching
// rows is NotFound.
func (m *MarketData) Candles(ctx context.Context, q CandlesQuery) ([]models.Candle, error) {
	candles, err := m.observeCandles(ctx, "get_candles", func(ctx context.Context) ([]models.Candle, error) {
		return m.store.Candles(ctx, q.Ticker, q.TfMin, q.Limit, q.Order)
	})
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		m.metrics.RecordError(fault.KindNotFound.String())
		return nil, fault.NotFound("no candles found for ticker '%s' with timeframe %dmin", q.Ticker, q.TfMin)
	}
	return candles, nil
}

// CandlesRange returns candles with timestamp in [start, end], always
// chronological. Zero matching rows is NotFound.
func (m *MarketData) CandlesRange(ctx context.Context, q CandlesRangeQuery) ([]models.Candle, error) {
	candles, err := m.observeCandles(ctx, "get_candles_range", func(ctx context.Context) ([]models.Candle, error) {
		return m.store.CandlesRange(ctx, q.Ticker, q.TfMin, q.Start, q.End, q.Limit)
	})
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		m.metrics.RecordError(fault.KindNotFound.String())
		return nil, fault.NotFound("no candles found for ticker '%s' with timeframe %dmin in range %s to %s",
			q.Ticker, q.TfMin, q.Start.Format(time.RFC3339), q.End.Format(time.RFC3339))
	}
	return candles, nil
}

// FirstLast returns the first and last stored timestamp for a ticker and
// timeframe. Absence (ok=false) is not an error.
func (m *MarketData) FirstLast(ctx context.Context, ticker string, tfMin int) (time.Time, time.Time, bool, error) {
	start := time.Now()
	first, last, ok, err := m.store.FirstLastTimestamp(ctx, ticker, tfMin)
	m.metrics.RecordQuery("first_last_ts", time.Since(start).Seconds())
	if err != nil {
		m.metrics.RecordError(fault.KindUnavailable.String())
		return time.Time{}, time.Time{}, false, err
	}
	return first, last, ok, nil
}

// Health pings the store.
func (m *MarketData) Health(ctx context.Context) error {
	return m.store.Health(ctx)
}

func (m *MarketData) observe(ctx context.Context, op string, fn func(context.Context) ([]string, error)) ([]string, error) {
	start := time.Now()
	out, err := fn(ctx)
	m.metrics.RecordQuery(op, time.Since(start).Seconds())
	if err != nil {
		m.metrics.RecordError(fault.KindUnavailable.String())
		return nil, err
	}
	return out, nil
}

func (m *MarketData) observeCandles(ctx context.Context, op string, fn func(context.Context) ([]models.Candle, error)) ([]models.Candle, error) {
	start := time.Now()
	out, err := fn(ctx)
	m.metrics.RecordQuery(op, time.Since(start).Seconds())
	if err != nil {
		m.metrics.RecordError(fault.KindUnavailable.String())
		return nil, err
	}
	return out, nil
}
