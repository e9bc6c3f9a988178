package usecase

import (
	"context"
	"fmt"
	"time"

	"candlerelay/internal/domain/fault"
	"candlerelay/internal/domain/models"
	domrepo "candlerelay/internal/domain/repository"
	applogger "candlerelay/pkg/logger"
)

// Close codes per RFC 6455.
const (
	CloseNormal          = 1000
	ClosePolicyViolation = 1008
	CloseInternalError   = 1011
)

// ReplayState identifies a phase of the replay session.
type ReplayState int

const (
	StateLoading ReplayState = iota + 1
	StateAnnouncing
	StateStreaming
	StateCompleting
	StateClosed
)

func (s ReplayState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnnouncing:
		return "announcing"
	case StateStreaming:
		return "streaming"
	case StateCompleting:
		return "completing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ReplayConn is the minimal channel surface the engine drives. The transport
// adapter owns the underlying connection; Close with a code ends the channel.
type ReplayConn interface {
	Send(v interface{}) error
	Close(code int, reason string) error
}

// ReplayEngine streams a ticker's stored history over a channel at a fixed
// pace, one independent session per connection. Sessions share no state; the
// history is fetched exactly once per connection and never cached across them.
type ReplayEngine struct {
	store        domrepo.CandleStore
	metrics      domrepo.Metrics
	l            *applogger.Logger
	historyLimit int
}

func NewReplayEngine(store domrepo.CandleStore, metrics domrepo.Metrics, l *applogger.Logger, historyLimit int) *ReplayEngine {
	return &ReplayEngine{store: store, metrics: metrics, l: l, historyLimit: historyLimit}
}

// replaySession is the per-connection state, owned exclusively by the
// connection's goroutine. cursor only increases and stays below the sequence
// length while streaming.
type replaySession struct {
	params  ReplayParams
	state   ReplayState
	candles []models.Candle
	cursor  int
}

func (s *replaySession) transition(l *applogger.Logger, next ReplayState) {
	if l != nil {
		l.Debug("replay state transition",
			applogger.String("ticker", s.params.Ticker),
			applogger.String("from", s.state.String()),
			applogger.String("to", next.String()),
		)
	}
	s.state = next
}

// Run drives a replay session to completion. It never returns an error: every
// failure is terminal for the connection and reported through the channel
// itself (status frame + close code). Remote disconnection is silent.
func (e *ReplayEngine) Run(ctx context.Context, conn ReplayConn, p ReplayParams) {
	e.metrics.RecordReplayStarted()
	outcome := "error"
	defer func() { e.metrics.RecordReplayFinished(outcome) }()

	s := &replaySession{params: p, state: StateLoading}

	defer func() {
		if r := recover(); r != nil {
			if e.l != nil {
				e.l.Error("replay panic", applogger.String("ticker", p.Ticker), applogger.Error(fmt.Errorf("%v", r)))
			}
			// Best effort: if the channel is already gone these fail silently.
			_ = e.sendStatus(conn, p, "Internal error", 0)
			_ = conn.Close(CloseInternalError, "internal error")
		}
	}()

	// One history fetch per connection, always chronological.
	candles, err := e.store.Candles(ctx, p.Ticker, p.TfMin, e.historyLimit, domrepo.OrderAsc)
	if err != nil {
		outcome = e.failLoad(conn, p, err)
		s.transition(e.l, StateClosed)
		return
	}
	if len(candles) == 0 {
		_ = e.sendStatus(conn, p, models.StatusNoCandles, 0)
		_ = conn.Close(ClosePolicyViolation, "no candles found")
		outcome = "not_found"
		s.transition(e.l, StateClosed)
		return
	}
	s.candles = candles
	total := len(candles)

	s.transition(e.l, StateAnnouncing)
	if err := e.sendStatus(conn, p, models.StatusReplayStarting, total); err != nil {
		outcome = "disconnected"
		s.transition(e.l, StateClosed)
		return
	}

	s.transition(e.l, StateStreaming)
	timer := time.NewTimer(p.Step)
	if !timer.Stop() {
		<-timer.C
	}
	for s.cursor < total {
		frame := models.CandleFrame{
			Type:   models.FrameTypeCandle,
			Candle: s.candles[s.cursor],
			Seq:    s.cursor,
		}
		if err := conn.Send(frame); err != nil {
			outcome = "disconnected"
			s.transition(e.l, StateClosed)
			return
		}
		e.metrics.RecordFrameSent(models.FrameTypeCandle)

		s.cursor++
		if s.cursor == total {
			break // no suspension after the final frame
		}

		timer.Reset(p.Step)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			outcome = "disconnected"
			s.transition(e.l, StateClosed)
			return
		case <-timer.C:
		}
	}

	s.transition(e.l, StateCompleting)
	if err := e.sendStatus(conn, p, models.StatusReplayComplete, total); err != nil {
		outcome = "disconnected"
		s.transition(e.l, StateClosed)
		return
	}
	_ = conn.Close(CloseNormal, "replay complete")
	outcome = "completed"
	s.transition(e.l, StateClosed)

	if e.l != nil {
		e.l.Info("replay complete",
			applogger.String("ticker", p.Ticker),
			applogger.Int("tf_min", p.TfMin),
			applogger.Int("total_candles", total),
			applogger.Int("step_seconds", p.StepSeconds),
		)
	}
}

// failLoad reports a history-fetch failure over the channel and maps the fault
// kind to its close code.
func (e *ReplayEngine) failLoad(conn ReplayConn, p ReplayParams, err error) string {
	if e.l != nil {
		e.l.Error("replay history fetch failed", applogger.String("ticker", p.Ticker), applogger.Error(err))
	}
	switch fault.KindOf(err) {
	case fault.KindInvalidArgument:
		_ = e.sendStatus(conn, p, "Invalid request: "+err.Error(), 0)
		_ = conn.Close(ClosePolicyViolation, "invalid request")
		return "invalid_argument"
	default:
		_ = e.sendStatus(conn, p, "Store connection error: "+err.Error(), 0)
		_ = conn.Close(CloseInternalError, "store connection failed")
		return "unavailable"
	}
}

func (e *ReplayEngine) sendStatus(conn ReplayConn, p ReplayParams, message string, total int) error {
	err := conn.Send(models.StatusFrame{
		Type:         models.FrameTypeStatus,
		Message:      message,
		Ticker:       p.Ticker,
		TfMin:        p.TfMin,
		StepSeconds:  p.StepSeconds,
		TotalCandles: total,
	})
	if err == nil {
		e.metrics.RecordFrameSent(models.FrameTypeStatus)
	}
	return err
}
