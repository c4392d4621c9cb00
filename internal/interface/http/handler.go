package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/breatheeasy/internal/domain/action"
	"github.com/yanqian/breatheeasy/internal/domain/airquality"
	"github.com/yanqian/breatheeasy/internal/domain/dashboard"
	"github.com/yanqian/breatheeasy/internal/domain/speech"
)

// ActionService is the envelope surface exposed over HTTP.
type ActionService interface {
	dashboard.Capabilities
	TrendingLocations(ctx context.Context, limit int) action.Envelope[[]action.TrendingLocation]
	RecentActivity(ctx context.Context, limit int) action.Envelope[[]action.Activity]
}

// Handler serves the stateless action endpoints. Every action answers 200
// with an envelope; only a body that is not valid JSON is a transport error.
type Handler struct {
	actions ActionService
	logger  *slog.Logger
}

// NewHandler constructs the action handler.
func NewHandler(actions ActionService, logger *slog.Logger) *Handler {
	return &Handler{
		actions: actions,
		logger:  logger.With("component", "http.handler"),
	}
}

// Forecast handles POST /actions/forecast.
func (h *Handler) Forecast(c *gin.Context) {
	var req airquality.ForecastRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.actions.Forecast(c.Request.Context(), req))
}

// Chat handles POST /actions/chat.
func (h *Handler) Chat(c *gin.Context) {
	var req airquality.ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.actions.Chat(c.Request.Context(), req))
}

// WorldAQI handles GET /actions/world-aqi.
func (h *Handler) WorldAQI(c *gin.Context) {
	c.JSON(http.StatusOK, h.actions.WorldAQI(c.Request.Context()))
}

// Heatmap handles POST /actions/heatmap.
func (h *Handler) Heatmap(c *gin.Context) {
	var req airquality.HeatmapRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.actions.Heatmap(c.Request.Context(), req))
}

// NearbyHospitals handles POST /actions/hospitals.
func (h *Handler) NearbyHospitals(c *gin.Context) {
	var req airquality.Coordinates
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.actions.NearbyHospitals(c.Request.Context(), req))
}

// NearbySchools handles POST /actions/schools.
func (h *Handler) NearbySchools(c *gin.Context) {
	var req airquality.Coordinates
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.actions.NearbySchools(c.Request.Context(), req))
}

// TextToSpeech handles POST /actions/speech.
func (h *Handler) TextToSpeech(c *gin.Context) {
	var req speech.Request
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.actions.TextToSpeech(c.Request.Context(), req))
}

// TrendingLocations handles GET /locations/trending?limit=N.
func (h *Handler) TrendingLocations(c *gin.Context) {
	c.JSON(http.StatusOK, h.actions.TrendingLocations(c.Request.Context(), queryLimit(c)))
}

// RecentActivity handles GET /activity?limit=N.
func (h *Handler) RecentActivity(c *gin.Context) {
	c.JSON(http.StatusOK, h.actions.RecentActivity(c.Request.Context(), queryLimit(c)))
}

// bindJSON decodes the body and aborts with a 400 when it is not valid JSON.
// Field rules are enforced by the capabilities, which report through the envelope.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

// queryLimit returns 0, meaning the configured default, when limit is absent or bad.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
