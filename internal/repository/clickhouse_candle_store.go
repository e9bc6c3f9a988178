package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"candlerelay/internal/domain/fault"
	"candlerelay/internal/domain/models"
	domrepo "candlerelay/internal/domain/repository"
	pkgch "candlerelay/pkg/clickhouse"
	applogger "candlerelay/pkg/logger"
)

// ClickHouseCandleStore implements CandleStore over a pooled ClickHouse
// connection. Every call is bounded by the configured command timeout; all
// store-level failures surface as fault.Unavailable.
type ClickHouseCandleStore struct {
	db         *sql.DB
	table      string
	cmdTimeout time.Duration
	l          *applogger.Logger
}

// NewClickHouseCandleStore creates the candle store repository.
func NewClickHouseCandleStore(ch *pkgch.Client, table string, cmdTimeout time.Duration) *ClickHouseCandleStore {
	return &ClickHouseCandleStore{db: ch.DB(), table: table, cmdTimeout: cmdTimeout}
}

// SetLogger injects a structured logger.
func (s *ClickHouseCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHouseCandleStore) ListSymbols(ctx context.Context, limit int, prefix string) ([]string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows *sql.Rows
	var err error
	if prefix != "" {
		q := fmt.Sprintf("SELECT DISTINCT ticker FROM %s WHERE ticker ILIKE ? ORDER BY ticker ASC LIMIT ?", s.table)
		rows, err = s.db.QueryContext(ctx, q, prefix+"%", limit)
	} else {
		q := fmt.Sprintf("SELECT DISTINCT ticker FROM %s ORDER BY ticker ASC LIMIT ?", s.table)
		rows, err = s.db.QueryContext(ctx, q, limit)
	}
	if err != nil {
		return nil, s.fail("list_symbols", err)
	}
	defer rows.Close()

	symbols := make([]string, 0, limit)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, s.fail("list_symbols", err)
		}
		symbols = append(symbols, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list_symbols", err)
	}
	return symbols, nil
}

func (s *ClickHouseCandleStore) Candles(ctx context.Context, ticker string, tfMin, limit int, order domrepo.Order) ([]models.Candle, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	dir := "ASC"
	if order == domrepo.OrderDesc {
		dir = "DESC"
	}
	q := fmt.Sprintf(
		"SELECT ticker, tf_min, ts, open, high, low, close, volume, openint FROM %s WHERE ticker = ? AND tf_min = ? ORDER BY ts %s LIMIT ?",
		s.table, dir)

	rows, err := s.db.QueryContext(ctx, q, ticker, tfMin, limit)
	if err != nil {
		return nil, s.fail("get_candles", err)
	}
	defer rows.Close()

	return s.scanCandles("get_candles", rows)
}

func (s *ClickHouseCandleStore) CandlesRange(ctx context.Context, ticker string, tfMin int, start, end time.Time, limit int) ([]models.Candle, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	// Range reads are always chronological regardless of the REST order option.
	q := fmt.Sprintf(
		"SELECT ticker, tf_min, ts, open, high, low, close, volume, openint FROM %s WHERE ticker = ? AND tf_min = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?",
		s.table)

	rows, err := s.db.QueryContext(ctx, q, ticker, tfMin, start, end, limit)
	if err != nil {
		return nil, s.fail("get_candles_range", err)
	}
	defer rows.Close()

	return s.scanCandles("get_candles_range", rows)
}

func (s *ClickHouseCandleStore) FirstLastTimestamp(ctx context.Context, ticker string, tfMin int) (time.Time, time.Time, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	q := fmt.Sprintf("SELECT MIN(ts), MAX(ts) FROM %s WHERE ticker = ? AND tf_min = ?", s.table)

	var first, last sql.NullTime
	if err := s.db.QueryRowContext(ctx, q, ticker, tfMin).Scan(&first, &last); err != nil {
		return time.Time{}, time.Time{}, false, s.fail("first_last_ts", err)
	}
	if !first.Valid || !last.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return first.Time, last.Time, true, nil
}

func (s *ClickHouseCandleStore) Health(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func (s *ClickHouseCandleStore) Close() error {
	return nil // pool is owned by pkg/clickhouse.Client
}

func (s *ClickHouseCandleStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cmdTimeout)
}

func (s *ClickHouseCandleStore) scanCandles(op string, rows *sql.Rows) ([]models.Candle, error) {
	candles := make([]models.Candle, 0, 256)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Ticker, &c.TfMin, &c.Ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.OpenInterest); err != nil {
			return nil, s.fail(op, err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, err)
	}
	return candles, nil
}

func (s *ClickHouseCandleStore) fail(op string, err error) error {
	if s.l != nil {
		s.l.Error("clickhouse query error",
			applogger.String("op", op),
			applogger.String("table", s.table),
			applogger.Error(err),
		)
	}
	return mapStoreErr(err)
}

// mapStoreErr classifies a store-level error into the domain taxonomy. Every
// failure is Unavailable; the message distinguishes timeouts from the rest so
// operators can tell them apart.
func mapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Unavailable("query timeout: store operation took too long", err)
	}
	if errors.Is(err, context.Canceled) {
		return fault.Unavailable("store query canceled", err)
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fault.Unavailable("cannot connect to store", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fault.Unavailable("cannot connect to store", err)
	}
	return fault.Unavailable("store query error", err)
}
