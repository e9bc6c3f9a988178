package api

import (
	"context"
	"net/http"
	"time"

	"candlerelay/internal/domain/fault"
	"candlerelay/internal/domain/models"
	"candlerelay/internal/usecase"
	xhttp "candlerelay/pkg/http"
	xlogger "candlerelay/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketDataService is the slice of the query layer the REST surface needs.
type MarketDataService interface {
	ListSymbols(ctx context.Context, q usecase.SymbolsQuery) ([]string, error)
	Candles(ctx context.Context, q usecase.CandlesQuery) ([]models.Candle, error)
	CandlesRange(ctx context.Context, q usecase.CandlesRangeQuery) ([]models.Candle, error)
	FirstLast(ctx context.Context, ticker string, tfMin int) (time.Time, time.Time, bool, error)
	Health(ctx context.Context) error
}

// MarketHandler implements the REST endpoints.
type MarketHandler struct {
	logger *xlogger.Logger
	svc    MarketDataService
	limits usecase.LimitPolicy
}

func NewMarketHandler(logger *xlogger.Logger, svc MarketDataService, limits usecase.LimitPolicy) *MarketHandler {
	return &MarketHandler{logger: logger, svc: svc, limits: limits}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/symbols", h.Symbols)
	e.GET("/candles", h.Candles)
	e.GET("/candles/range", h.CandlesRange)
	e.GET("/candles/meta", h.CandleMeta)
}

// Health checks store connectivity. Only a classified Unavailable degrades the
// response; any other ping failure reports "unknown" with HTTP 200.
func (h *MarketHandler) Health(c echo.Context) error {
	err := h.svc.Health(c.Request().Context())
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", Database: "connected"})
	case fault.IsUnavailable(err):
		return c.JSON(http.StatusServiceUnavailable, models.HealthResponse{
			Status:   "degraded",
			Database: "disconnected",
			Error:    err.Error(),
		})
	default:
		return c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", Database: "unknown"})
	}
}

func (h *MarketHandler) Symbols(c echo.Context) error {
	req := &models.SymbolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}
	q, err := usecase.BuildSymbolsQuery(req, h.limits)
	if err != nil {
		return xhttp.FaultResponse(c, err)
	}

	symbols, err := h.svc.ListSymbols(c.Request().Context(), q)
	if err != nil {
		h.logger.Error("list symbols failed", xlogger.Error(err))
		return xhttp.FaultResponse(c, err)
	}
	return c.JSON(http.StatusOK, models.SymbolsResponse{Symbols: symbols, Count: len(symbols)})
}

func (h *MarketHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}
	q, err := usecase.BuildCandlesQuery(req, h.limits)
	if err != nil {
		return xhttp.FaultResponse(c, err)
	}

	candles, err := h.svc.Candles(c.Request().Context(), q)
	if err != nil {
		if !fault.IsNotFound(err) {
			h.logger.Error("get candles failed", xlogger.Error(err), xlogger.String("ticker", q.Ticker))
		}
		return xhttp.FaultResponse(c, err)
	}
	return c.JSON(http.StatusOK, models.CandleResponse{Data: candles, Count: len(candles)})
}

func (h *MarketHandler) CandlesRange(c echo.Context) error {
	req := &models.CandlesRangeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}
	q, err := usecase.BuildCandlesRangeQuery(req, h.limits)
	if err != nil {
		return xhttp.FaultResponse(c, err)
	}

	candles, err := h.svc.CandlesRange(c.Request().Context(), q)
	if err != nil {
		if !fault.IsNotFound(err) {
			h.logger.Error("get candles range failed", xlogger.Error(err), xlogger.String("ticker", q.Ticker))
		}
		return xhttp.FaultResponse(c, err)
	}
	return c.JSON(http.StatusOK, models.CandleResponse{Data: candles, Count: len(candles)})
}

// CandleMeta reports the first and last stored timestamp for a ticker and
// timeframe. Absent rows yield null bounds, not 404.
func (h *MarketHandler) CandleMeta(c echo.Context) error {
	req := &models.CandleMetaRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}
	ticker, tfMin, err := usecase.BuildCandleMetaQuery(req, h.limits)
	if err != nil {
		return xhttp.FaultResponse(c, err)
	}

	first, last, ok, err := h.svc.FirstLast(c.Request().Context(), ticker, tfMin)
	if err != nil {
		h.logger.Error("candle meta failed", xlogger.Error(err), xlogger.String("ticker", ticker))
		return xhttp.FaultResponse(c, err)
	}

	resp := models.CandleMetaResponse{Ticker: ticker, TfMin: tfMin}
	if ok {
		resp.FirstTs = &first
		resp.LastTs = &last
	}
	return c.JSON(http.StatusOK, resp)
}
