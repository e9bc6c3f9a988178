package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"candlerelay/internal/domain/fault"
	"candlerelay/internal/domain/models"
)

type fakeConn struct {
	sent      []interface{}
	closeCode int
	closeMsg  string
	closed    bool

	sendErrAfter int // fail Send once this many frames went out; 0 disables
	onSend       func(n int)
}

func (c *fakeConn) Send(v interface{}) error {
	if c.sendErrAfter > 0 && len(c.sent) >= c.sendErrAfter {
		return errors.New("broken pipe")
	}
	c.sent = append(c.sent, v)
	if c.onSend != nil {
		c.onSend(len(c.sent))
	}
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.closed = true
	c.closeCode = code
	c.closeMsg = reason
	return nil
}

func (c *fakeConn) statusFrames() []models.StatusFrame {
	var out []models.StatusFrame
	for _, v := range c.sent {
		if f, ok := v.(models.StatusFrame); ok {
			out = append(out, f)
		}
	}
	return out
}

func (c *fakeConn) candleFrames() []models.CandleFrame {
	var out []models.CandleFrame
	for _, v := range c.sent {
		if f, ok := v.(models.CandleFrame); ok {
			out = append(out, f)
		}
	}
	return out
}

func replayParams(step time.Duration) ReplayParams {
	return ReplayParams{Ticker: "AAPL", TfMin: 5, StepSeconds: 1, Step: step}
}

func TestReplayFullSequence(t *testing.T) {
	store := &fakeStore{candles: testCandles(4)}
	m := &fakeMetrics{}
	engine := NewReplayEngine(store, m, nil, 100000)
	conn := &fakeConn{}

	engine.Run(context.Background(), conn, replayParams(time.Millisecond))

	statuses := conn.statusFrames()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 status frames, got %d", len(statuses))
	}
	if statuses[0].Message != models.StatusReplayStarting || statuses[0].TotalCandles != 4 {
		t.Fatalf("unexpected opening status: %+v", statuses[0])
	}
	if statuses[1].Message != models.StatusReplayComplete {
		t.Fatalf("unexpected closing status: %+v", statuses[1])
	}

	candles := conn.candleFrames()
	if len(candles) != 4 {
		t.Fatalf("expected 4 candle frames, got %d", len(candles))
	}
	for i, f := range candles {
		if f.Seq != i {
			t.Fatalf("frame %d has seq %d", i, f.Seq)
		}
		if f.Type != models.FrameTypeCandle {
			t.Fatalf("frame %d has type %q", i, f.Type)
		}
	}
	if !candles[0].Candle.Ts.Before(candles[3].Candle.Ts) {
		t.Fatalf("frames not chronological")
	}

	// Opening status precedes the first candle, closing status follows the last.
	if _, ok := conn.sent[0].(models.StatusFrame); !ok {
		t.Fatalf("first frame is not a status frame")
	}
	if _, ok := conn.sent[len(conn.sent)-1].(models.StatusFrame); !ok {
		t.Fatalf("last frame is not a status frame")
	}

	if !conn.closed || conn.closeCode != CloseNormal {
		t.Fatalf("expected normal close, got code=%d closed=%v", conn.closeCode, conn.closed)
	}
	if m.started != 1 || len(m.finished) != 1 || m.finished[0] != "completed" {
		t.Fatalf("unexpected session metrics: started=%d finished=%v", m.started, m.finished)
	}
}

func TestReplayEmptyHistory(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMetrics{}
	engine := NewReplayEngine(store, m, nil, 100000)
	conn := &fakeConn{}

	engine.Run(context.Background(), conn, replayParams(time.Millisecond))

	if len(conn.candleFrames()) != 0 {
		t.Fatalf("expected no candle frames")
	}
	statuses := conn.statusFrames()
	if len(statuses) != 1 || statuses[0].Message != models.StatusNoCandles {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
	if conn.closeCode != ClosePolicyViolation {
		t.Fatalf("expected close %d, got %d", ClosePolicyViolation, conn.closeCode)
	}
	if len(m.finished) != 1 || m.finished[0] != "not_found" {
		t.Fatalf("unexpected outcome %v", m.finished)
	}
}

func TestReplayStoreUnavailable(t *testing.T) {
	store := &fakeStore{err: fault.Unavailable("cannot connect to store", errors.New("dial tcp refused"))}
	m := &fakeMetrics{}
	engine := NewReplayEngine(store, m, nil, 100000)
	conn := &fakeConn{}

	engine.Run(context.Background(), conn, replayParams(time.Millisecond))

	statuses := conn.statusFrames()
	if len(statuses) != 1 || !strings.HasPrefix(statuses[0].Message, "Store connection error") {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
	if conn.closeCode != CloseInternalError {
		t.Fatalf("expected close %d, got %d", CloseInternalError, conn.closeCode)
	}
	if len(m.finished) != 1 || m.finished[0] != "unavailable" {
		t.Fatalf("unexpected outcome %v", m.finished)
	}
}

func TestReplayDisconnectDuringStream(t *testing.T) {
	store := &fakeStore{candles: testCandles(5)}
	m := &fakeMetrics{}
	engine := NewReplayEngine(store, m, nil, 100000)

	// Send starts failing after the opening status plus two candle frames.
	conn := &fakeConn{sendErrAfter: 3}

	engine.Run(context.Background(), conn, replayParams(time.Millisecond))

	if len(conn.candleFrames()) != 2 {
		t.Fatalf("expected 2 delivered candle frames, got %d", len(conn.candleFrames()))
	}
	// No close-code write and no completion status after a dead peer.
	if conn.closed {
		t.Fatalf("unexpected close on disconnected peer")
	}
	if len(m.finished) != 1 || m.finished[0] != "disconnected" {
		t.Fatalf("unexpected outcome %v", m.finished)
	}
}

func TestReplayContextCanceledBetweenFrames(t *testing.T) {
	store := &fakeStore{candles: testCandles(10)}
	m := &fakeMetrics{}
	engine := NewReplayEngine(store, m, nil, 100000)

	ctx, cancel := context.WithCancel(context.Background())
	conn := &fakeConn{}
	conn.onSend = func(n int) {
		if n == 3 { // opening status + two candles delivered
			cancel()
		}
	}

	engine.Run(ctx, conn, replayParams(50*time.Millisecond))

	if got := len(conn.candleFrames()); got != 2 {
		t.Fatalf("expected 2 candle frames before cancellation, got %d", got)
	}
	statuses := conn.statusFrames()
	if len(statuses) != 1 {
		t.Fatalf("expected only the opening status, got %+v", statuses)
	}
	if len(m.finished) != 1 || m.finished[0] != "disconnected" {
		t.Fatalf("unexpected outcome %v", m.finished)
	}
}

func TestReplaySingleCandleNoPause(t *testing.T) {
	store := &fakeStore{candles: testCandles(1)}
	m := &fakeMetrics{}
	engine := NewReplayEngine(store, m, nil, 100000)
	conn := &fakeConn{}

	// A long step must not matter: with one candle there is no inter-frame wait.
	start := time.Now()
	engine.Run(context.Background(), conn, replayParams(time.Hour))
	if time.Since(start) > time.Second {
		t.Fatalf("single-candle replay paused on the step interval")
	}
	if conn.closeCode != CloseNormal {
		t.Fatalf("expected normal close, got %d", conn.closeCode)
	}
}

func TestReplayUsesHistoryLimitAscending(t *testing.T) {
	store := &fakeStore{candles: testCandles(1)}
	engine := NewReplayEngine(store, &fakeMetrics{}, nil, 42)
	conn := &fakeConn{}

	engine.Run(context.Background(), conn, replayParams(time.Millisecond))

	if store.gotLimit != 42 {
		t.Fatalf("expected history limit 42, got %d", store.gotLimit)
	}
	if store.gotOrder != "asc" {
		t.Fatalf("expected ascending fetch, got %v", store.gotOrder)
	}
}
