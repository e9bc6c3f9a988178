package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"candlerelay/internal/domain/fault"
	"candlerelay/internal/domain/models"
	domrepo "candlerelay/internal/domain/repository"
	"candlerelay/internal/usecase"
	applogger "candlerelay/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubService struct {
	symbols []string
	candles []models.Candle
	first   time.Time
	last    time.Time
	hasMeta bool
	err     error

	calls      int
	gotCandles usecase.CandlesQuery
	gotRange   usecase.CandlesRangeQuery
	gotSymbols usecase.SymbolsQuery
}

func (s *stubService) ListSymbols(_ context.Context, q usecase.SymbolsQuery) ([]string, error) {
	s.calls++
	s.gotSymbols = q
	return s.symbols, s.err
}

func (s *stubService) Candles(_ context.Context, q usecase.CandlesQuery) ([]models.Candle, error) {
	s.calls++
	s.gotCandles = q
	return s.candles, s.err
}

func (s *stubService) CandlesRange(_ context.Context, q usecase.CandlesRangeQuery) ([]models.Candle, error) {
	s.calls++
	s.gotRange = q
	return s.candles, s.err
}

func (s *stubService) FirstLast(_ context.Context, _ string, _ int) (time.Time, time.Time, bool, error) {
	s.calls++
	return s.first, s.last, s.hasMeta, s.err
}

func (s *stubService) Health(_ context.Context) error { return s.err }

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestHandler(t *testing.T, svc *stubService) *MarketHandler {
	t.Helper()
	limits := usecase.LimitPolicy{Max: 5000, SymbolsDefault: 100, CandlesDefault: 200, DefaultTfMin: 5}
	return NewMarketHandler(testLogger(t), svc, limits)
}

func doRequest(t *testing.T, h func(echo.Context) error, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestCandlesDescWithLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc := &stubService{candles: []models.Candle{
		{Ticker: "AAPL", TfMin: 5, Ts: now.Add(5 * time.Minute), Close: 101},
		{Ticker: "AAPL", TfMin: 5, Ts: now, Close: 100},
	}}
	h := newTestHandler(t, svc)

	rec := doRequest(t, h.Candles, "/candles?ticker=AAPL&order=desc&limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body models.CandleResponse
	decode(t, rec, &body)
	if body.Count != 2 || len(body.Data) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if !body.Data[0].Ts.After(body.Data[1].Ts) {
		t.Fatalf("expected newest-first ordering")
	}
	if svc.gotCandles.Order != domrepo.OrderDesc || svc.gotCandles.Limit != 2 {
		t.Fatalf("query not passed through: %+v", svc.gotCandles)
	}
}

func TestCandlesRejectsBadLimitBeforeStore(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc)

	for _, target := range []string{
		"/candles?ticker=AAPL&limit=0",
		"/candles?ticker=AAPL&limit=5001",
		"/candles?ticker=AAPL&limit=-3",
	} {
		rec := doRequest(t, h.Candles, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
	if svc.calls != 0 {
		t.Fatalf("store must not be touched on invalid input, got %d calls", svc.calls)
	}
}

func TestCandlesMissingTicker(t *testing.T) {
	h := newTestHandler(t, &stubService{})
	rec := doRequest(t, h.Candles, "/candles")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCandlesNotFound(t *testing.T) {
	svc := &stubService{err: fault.NotFound("no candles found for ticker 'GHOST' with timeframe 5min")}
	h := newTestHandler(t, svc)

	rec := doRequest(t, h.Candles, "/candles?ticker=GHOST")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] == "" {
		t.Fatalf("expected error message, got %v", body)
	}
}

func TestCandlesStoreUnavailable(t *testing.T) {
	svc := &stubService{err: fault.Unavailable("cannot connect to store", nil)}
	h := newTestHandler(t, svc)

	rec := doRequest(t, h.Candles, "/candles?ticker=AAPL")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "Service Unavailable" || body["type"] != "store_unavailable" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestCandlesRangePassesBounds(t *testing.T) {
	svc := &stubService{candles: []models.Candle{{Ticker: "AAPL", TfMin: 5}}}
	h := newTestHandler(t, svc)

	rec := doRequest(t, h.CandlesRange, "/candles/range?ticker=AAPL&start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.gotRange.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start not passed through: %v", svc.gotRange.Start)
	}
	if svc.gotRange.Limit != 5000 {
		t.Fatalf("expected range default limit 5000, got %d", svc.gotRange.Limit)
	}
}

func TestCandlesRangeStartAfterEnd(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc)

	rec := doRequest(t, h.CandlesRange, "/candles/range?ticker=AAPL&start=2024-01-02T00:00:00Z&end=2024-01-01T00:00:00Z")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("store must not be touched, got %d calls", svc.calls)
	}
}

func TestSymbolsEmptyList(t *testing.T) {
	svc := &stubService{symbols: []string{}}
	h := newTestHandler(t, svc)

	rec := doRequest(t, h.Symbols, "/symbols?prefix=ZZZ")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body models.SymbolsResponse
	decode(t, rec, &body)
	if body.Count != 0 {
		t.Fatalf("unexpected count %d", body.Count)
	}
	if svc.gotSymbols.Prefix != "ZZZ" || svc.gotSymbols.Limit != 100 {
		t.Fatalf("query not passed through: %+v", svc.gotSymbols)
	}
}

func TestCandleMetaAbsentTicker(t *testing.T) {
	svc := &stubService{hasMeta: false}
	h := newTestHandler(t, svc)

	rec := doRequest(t, h.CandleMeta, "/candles/meta?ticker=GHOST")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	decode(t, rec, &body)
	if body["first_ts"] != nil || body["last_ts"] != nil {
		t.Fatalf("expected null bounds, got %v", body)
	}
}

func TestCandleMetaPresentTicker(t *testing.T) {
	first := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	last := time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)
	svc := &stubService{first: first, last: last, hasMeta: true}
	h := newTestHandler(t, svc)

	rec := doRequest(t, h.CandleMeta, "/candles/meta?ticker=AAPL&tf_min=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body models.CandleMetaResponse
	decode(t, rec, &body)
	if body.FirstTs == nil || !body.FirstTs.Equal(first) {
		t.Fatalf("unexpected first_ts %v", body.FirstTs)
	}
	if body.LastTs == nil || !body.LastTs.Equal(last) {
		t.Fatalf("unexpected last_ts %v", body.LastTs)
	}
}

func TestHealthStates(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{"connected", nil, http.StatusOK, "ok", "connected"},
		{"degraded", fault.Unavailable("cannot connect to store", nil), http.StatusServiceUnavailable, "degraded", "disconnected"},
		{"unknown", context.DeadlineExceeded, http.StatusOK, "ok", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{err: tc.err})
			rec := doRequest(t, h.Health, "/health")
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var body models.HealthResponse
			decode(t, rec, &body)
			if body.Status != tc.wantStatus || body.Database != tc.wantDB {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}
