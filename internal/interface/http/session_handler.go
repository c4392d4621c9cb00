package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/breatheeasy/internal/domain/airquality"
	"github.com/yanqian/breatheeasy/internal/domain/dashboard"
)

// SessionHandler serves the stateful dashboard endpoints.
type SessionHandler struct {
	registry *dashboard.Registry
	tokens   *TokenIssuer
	logger   *slog.Logger
}

// NewSessionHandler constructs the dashboard session handler.
func NewSessionHandler(registry *dashboard.Registry, tokens *TokenIssuer, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		tokens:   tokens,
		logger:   logger.With("component", "http.sessions"),
	}
}

type createSessionResponse struct {
	SessionID string              `json:"sessionId"`
	Token     string              `json:"token"`
	State     dashboard.ViewState `json:"state"`
}

type searchRequest struct {
	Location string `json:"location"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type textRequest struct {
	Text string `json:"text"`
}

type originRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lon"`
}

type playbackRequest struct {
	ClipID string `json:"clipId"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	session, err := h.registry.Create()
	if err != nil {
		abortWithError(c, sessionError(err))
		return
	}
	token, err := h.tokens.Issue(session.ID())
	if err != nil {
		h.registry.Delete(session.ID())
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, codeTokenSignFail, "failed to issue session token", err))
		return
	}
	c.JSON(http.StatusCreated, createSessionResponse{
		SessionID: session.ID(),
		Token:     token,
		State:     session.Snapshot(),
	})
}

// Get handles GET /sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).Snapshot())
}

// Delete handles DELETE /sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	h.registry.Delete(sessionFrom(c).ID())
	c.Status(http.StatusNoContent)
}

// Events streams view state snapshots as server-sent events until the
// client leaves or the session closes.
func (h *SessionHandler) Events(c *gin.Context) {
	updates, cancel := sessionFrom(c).Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(io.Writer) bool {
		select {
		case state, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Search handles POST /sessions/:id/search. Acceptance is 202; results land in the view state.
func (h *SessionHandler) Search(c *gin.Context) {
	var req searchRequest
	if !bindJSON(c, &req) {
		return
	}
	session := sessionFrom(c)
	if _, err := session.Submit(req.Location); err != nil {
		abortWithError(c, sessionError(err))
		return
	}
	c.JSON(http.StatusAccepted, session.Snapshot())
}

// Chat handles POST /sessions/:id/chat.
func (h *SessionHandler) Chat(c *gin.Context) {
	var req messageRequest
	if !bindJSON(c, &req) {
		return
	}
	env, err := sessionFrom(c).Chat(c.Request.Context(), req.Message)
	if err != nil {
		abortWithError(c, sessionError(err))
		return
	}
	c.JSON(http.StatusOK, env)
}

// WorldAQI handles POST /sessions/:id/world-aqi.
func (h *SessionHandler) WorldAQI(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).LoadWorldAQI(c.Request.Context()))
}

// Hospitals handles POST /sessions/:id/hospitals. An empty body or missing
// coordinates means the client could not locate the user.
func (h *SessionHandler) Hospitals(c *gin.Context) {
	origin, ok := bindOrigin(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionFrom(c).LoadNearbyHospitals(c.Request.Context(), origin))
}

// Schools handles POST /sessions/:id/schools.
func (h *SessionHandler) Schools(c *gin.Context) {
	origin, ok := bindOrigin(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionFrom(c).LoadNearbySchools(c.Request.Context(), origin))
}

// Listen handles POST /sessions/:id/voice/listen.
func (h *SessionHandler) Listen(c *gin.Context) {
	h.voiceCommand(c, sessionFrom(c).StartListening)
}

// StopListening handles POST /sessions/:id/voice/stop.
func (h *SessionHandler) StopListening(c *gin.Context) {
	h.voiceCommand(c, sessionFrom(c).StopListening)
}

// RecognitionEnded handles POST /sessions/:id/voice/ended.
func (h *SessionHandler) RecognitionEnded(c *gin.Context) {
	session := sessionFrom(c)
	session.HandleRecognitionEnd()
	c.JSON(http.StatusOK, session.Snapshot())
}

// Transcript handles POST /sessions/:id/voice/transcript.
func (h *SessionHandler) Transcript(c *gin.Context) {
	var req textRequest
	if !bindJSON(c, &req) {
		return
	}
	session := sessionFrom(c)
	if _, err := session.HandleTranscript(req.Text); err != nil {
		abortWithError(c, sessionError(err))
		return
	}
	c.JSON(http.StatusAccepted, session.Snapshot())
}

// Speak handles POST /sessions/:id/voice/speak.
func (h *SessionHandler) Speak(c *gin.Context) {
	var req textRequest
	if !bindJSON(c, &req) {
		return
	}
	session := sessionFrom(c)
	if _, err := session.Speak(req.Text); err != nil {
		abortWithError(c, sessionError(err))
		return
	}
	c.JSON(http.StatusAccepted, session.Snapshot())
}

// Playback handles POST /sessions/:id/voice/playback, the client's report
// that a clip ended or failed.
func (h *SessionHandler) Playback(c *gin.Context) {
	var req playbackRequest
	if !bindJSON(c, &req) {
		return
	}
	var failure string
	switch req.Status {
	case "ended":
	case "error":
		failure = req.Error
		if failure == "" {
			failure = "playback failed"
		}
	default:
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", `status must be "ended" or "error"`, nil))
		return
	}
	if err := sessionFrom(c).FinishPlayback(req.ClipID, failure); err != nil {
		abortWithError(c, sessionError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// DismissNotification handles DELETE /sessions/:id/notifications/:notificationId.
func (h *SessionHandler) DismissNotification(c *gin.Context) {
	if !sessionFrom(c).DismissNotification(c.Param("notificationId")) {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "notification_not_found", "notification not found", nil))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) voiceCommand(c *gin.Context, cmd func() error) {
	if err := cmd(); err != nil {
		abortWithError(c, sessionError(err))
		return
	}
	c.JSON(http.StatusOK, sessionFrom(c).Snapshot())
}

func bindOrigin(c *gin.Context) (*airquality.Coordinates, bool) {
	var req originRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return nil, false
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, true
	}
	return &airquality.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}, true
}
