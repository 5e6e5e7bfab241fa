package api

import (
	"errors"
	"net/http"

	models "MarketPulse/internal/domain/models"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler serves per-model and ensemble signal generation.
type SignalsEchoHandler struct {
	logger  *xlogger.Logger
	signals *usecase.SignalUsecase
}

func NewSignalsEchoHandler(logger *xlogger.Logger, signals *usecase.SignalUsecase) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, signals: signals}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/signals")
	g.GET("/:symbol", h.Ensemble)
	g.GET("/:symbol/:model", h.Model)
}

func (h *SignalsEchoHandler) Ensemble(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.signals.GenerateEnsemble(c.Request().Context(), req.Symbol, req.Timeframe)
	if err != nil {
		h.logger.Error("ensemble usecase error", xlogger.Error(err),
			xlogger.String("symbol", req.Symbol))
		return xhttp.AppErrorResponse(c, signalError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) Model(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.signals.GenerateModel(c.Request().Context(), req.Symbol, req.Model, req.Timeframe)
	if err != nil {
		h.logger.Error("signal usecase error", xlogger.Error(err),
			xlogger.String("symbol", req.Symbol), xlogger.String("model", req.Model))
		return xhttp.AppErrorResponse(c, signalError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// signalError maps generation failures onto API error envelopes. A data-source
// failure names the source so callers can tell which dependency broke.
func signalError(err error) error {
	if errors.Is(err, usecase.ErrUnknownModel) {
		return xhttp.BadRequestError(err.Error())
	}
	var dsErr *models.DataSourceError
	if errors.As(err, &dsErr) {
		return xhttp.NewAppError("ERR_DATA_SOURCE", "", dsErr.Error(), http.StatusBadGateway).WithError(err)
	}
	return xhttp.InternalError("signal generation failed").WithError(err)
}
