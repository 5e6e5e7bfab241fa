package api

import (
	"errors"
	"net/http"

	models "MarketPulse/internal/domain/models"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StreamEchoHandler exposes connection status and subscription management.
type StreamEchoHandler struct {
	logger  *xlogger.Logger
	streams *usecase.StreamUsecase
	limiter *ratelimit.Limiter

	// token bucket per client IP for mutating subscription calls
	rateCapacity float64
	rateRefill   float64
}

func NewStreamEchoHandler(logger *xlogger.Logger, streams *usecase.StreamUsecase, limiter *ratelimit.Limiter) *StreamEchoHandler {
	return &StreamEchoHandler{
		logger:       logger,
		streams:      streams,
		limiter:      limiter,
		rateCapacity: 10,
		rateRefill:   2,
	}
}

func (h *StreamEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stream")
	g.GET("/status", h.Status)
	g.GET("/health", h.Health)
	g.GET("/metrics", h.Metrics)
	g.GET("/feeds", h.Feeds)
	g.GET("/subscriptions", h.ListSubscriptions)
	g.POST("/subscriptions", h.Subscribe)
	g.DELETE("/subscriptions/:id", h.Unsubscribe)
	g.DELETE("/subscriptions", h.UnsubscribeAll)
}

func (h *StreamEchoHandler) Status(c echo.Context) error {
	m := h.streams.Metrics()
	return xhttp.SuccessResponse(c, echo.Map{
		"state":          m.State,
		"uptime_seconds": m.UptimeSeconds,
		"reconnects":     m.Reconnects,
	})
}

// Health returns 200 when the stream is live, 503 otherwise, so it can back a
// readiness probe directly.
func (h *StreamEchoHandler) Health(c echo.Context) error {
	health := h.streams.Health()
	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}

func (h *StreamEchoHandler) Metrics(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.streams.Metrics())
}

func (h *StreamEchoHandler) Feeds(c echo.Context) error {
	return xhttp.SuccessResponse(c, echo.Map{"feeds": h.streams.Feeds()})
}

// ListSubscriptions lists every subscription, or only those covering a symbol
// when ?symbol= is given.
func (h *StreamEchoHandler) ListSubscriptions(c echo.Context) error {
	var subs []models.Subscription
	if symbol := c.QueryParam("symbol"); symbol != "" {
		subs = h.streams.SubscriptionsFor(symbol)
	} else {
		subs = h.streams.Subscriptions()
	}
	return xhttp.ListResponse(c, subs, int64(len(subs)))
}

func (h *StreamEchoHandler) Subscribe(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "subscription rate exceeded")
	}

	req := &models.SubscribeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sub, err := h.streams.Subscribe(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("subscribe failed", xlogger.Error(err),
			xlogger.Strings("symbols", req.Symbols))
		return xhttp.AppErrorResponse(c, streamError(err))
	}
	return xhttp.CreatedResponse(c, sub)
}

func (h *StreamEchoHandler) Unsubscribe(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "subscription rate exceeded")
	}

	id := c.Param("id")
	if id == "" {
		return xhttp.BadRequestResponse(c, "subscription id required")
	}
	if err := h.streams.Unsubscribe(c.Request().Context(), id); err != nil {
		h.logger.Error("unsubscribe failed", xlogger.Error(err), xlogger.String("id", id))
		return xhttp.AppErrorResponse(c, streamError(err))
	}
	return xhttp.NoContentResponse(c)
}

func (h *StreamEchoHandler) UnsubscribeAll(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "subscription rate exceeded")
	}

	if err := h.streams.UnsubscribeAll(c.Request().Context()); err != nil {
		h.logger.Error("unsubscribe all failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, streamError(err))
	}
	return xhttp.NoContentResponse(c)
}

func (h *StreamEchoHandler) allow(c echo.Context) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.Allow("subs:"+c.RealIP(), h.rateCapacity, h.rateRefill)
}

// streamError maps stream sentinels onto API error envelopes.
func streamError(err error) error {
	switch {
	case errors.Is(err, models.ErrNotConnected):
		return xhttp.NewAppError("ERR_NOT_CONNECTED", "", "stream is not connected", http.StatusServiceUnavailable).WithError(err)
	case errors.Is(err, models.ErrSubscriptionGone):
		return xhttp.NotFoundError("subscription not found").WithError(err)
	case errors.Is(err, models.ErrNoSymbols), errors.Is(err, models.ErrUnknownDataType):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, models.ErrConfirmTimeout):
		return xhttp.NewAppError("ERR_CONFIRM_TIMEOUT", "", "provider did not confirm in time", http.StatusGatewayTimeout).WithError(err)
	default:
		return xhttp.InternalError("stream operation failed").WithError(err)
	}
}
