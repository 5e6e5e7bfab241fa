package api

import (
	"errors"
	"net/http"
	"time"

	models "MarketPulse/internal/domain/models"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler serves cached market data reads.
type MarketEchoHandler struct {
	logger  *xlogger.Logger
	streams *usecase.StreamUsecase
}

func NewMarketEchoHandler(logger *xlogger.Logger, streams *usecase.StreamUsecase) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, streams: streams}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/market")
	g.GET("/:symbol", h.SymbolData)
	g.GET("/:symbol/bars", h.History)
	g.GET("/:symbol/:type", h.TypedData)
}

// History serves stored bars: GET /api/market/:symbol/bars?limit=&freq=&since=
func (h *MarketEchoHandler) History(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	freq := models.Frequency(c.QueryParam("freq"))
	if freq == "" {
		freq = models.Freq1Min
	}
	since := xhttp.ParseTimeDefault(c.QueryParam("since"), time.Time{})

	bars, err := h.streams.History(c.Request().Context(), symbol, limit, freq, since)
	if err != nil {
		if errors.Is(err, usecase.ErrNoHistory) {
			return xhttp.AppErrorResponse(c,
				xhttp.NewAppError("ERR_NO_HISTORY", "", "bar history is not configured", http.StatusServiceUnavailable))
		}
		h.logger.Error("bar history query failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("bar history query failed"))
	}
	return xhttp.ListResponse(c, bars, int64(len(bars)))
}

func (h *MarketEchoHandler) SymbolData(c echo.Context) error {
	req := &models.MarketDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	views := h.streams.SymbolData(req.Symbol, time.Duration(req.MaxAgeMs)*time.Millisecond)
	if len(views) == 0 {
		return xhttp.NotFoundResponse(c, "no cached data for symbol")
	}
	return xhttp.ListResponse(c, views, int64(len(views)))
}

func (h *MarketEchoHandler) TypedData(c echo.Context) error {
	req := &models.MarketDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	view, ok := h.streams.TypedData(req.Symbol, models.DataType(req.DataType),
		time.Duration(req.MaxAgeMs)*time.Millisecond)
	if !ok {
		return xhttp.NotFoundResponse(c, "no cached data for symbol and type")
	}
	return xhttp.SuccessResponse(c, view)
}
