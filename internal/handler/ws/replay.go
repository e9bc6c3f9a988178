package ws

import (
	"context"
	"net/http"
	"time"

	"candlerelay/internal/domain/models"
	"candlerelay/internal/usecase"
	xhttp "candlerelay/pkg/http"
	xlogger "candlerelay/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const writeWait = 10 * time.Second

// ReplayHandler upgrades a replay request and hands the connection to the
// engine. Parameter validation happens before the upgrade so bad requests get
// a plain HTTP 400 instead of a short-lived socket.
type ReplayHandler struct {
	logger *xlogger.Logger
	engine *usecase.ReplayEngine
	limits usecase.LimitPolicy
	steps  usecase.StepPolicy

	upgrader websocket.Upgrader
}

func NewReplayHandler(logger *xlogger.Logger, engine *usecase.ReplayEngine, limits usecase.LimitPolicy, steps usecase.StepPolicy) *ReplayHandler {
	return &ReplayHandler{
		logger: logger,
		engine: engine,
		limits: limits,
		steps:  steps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *ReplayHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/replay", h.Replay)
}

func (h *ReplayHandler) Replay(c echo.Context) error {
	req := &models.ReplayRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}
	params, err := usecase.BuildReplayParams(req, h.limits, h.steps)
	if err != nil {
		return xhttp.FaultResponse(c, err)
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}

	h.logger.Info("replay session opened",
		xlogger.String("ticker", params.Ticker),
		xlogger.Int("tf_min", params.TfMin),
		xlogger.Int("step_seconds", params.StepSeconds),
		xlogger.String("remote", c.RealIP()),
	)

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	conn := &wsConn{ws: ws}
	go readPump(ws, cancel)

	h.engine.Run(ctx, conn, params)
	_ = ws.Close()
	return nil
}

// readPump drains inbound frames so close and ping control messages are
// processed, and cancels the session when the peer goes away.
func readPump(ws *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// wsConn adapts a gorilla connection to the engine's channel surface. The
// engine is the only writer, so no write lock is needed.
type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) Send(v interface{}) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

// Close sends a close control frame with the given code, then tears down the
// underlying connection. The read pump observes the peer's close echo.
func (c *wsConn) Close(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.ws.Close()
}
