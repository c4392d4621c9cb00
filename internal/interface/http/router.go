package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/breatheeasy/internal/domain/dashboard"
	"github.com/yanqian/breatheeasy/internal/infra/config"
	"github.com/yanqian/breatheeasy/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, sessions *SessionHandler, tokens *TokenIssuer, registry *dashboard.Registry, recorder *metrics.Recorder, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	httpLogger := logger.With("component", "http.router")
	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(httpLogger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(httpLogger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(recorder.Handler()))

	api := router.Group("/api/v1")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, httpLogger))
	{
		actions := api.Group("/actions")
		actions.POST("/forecast", handler.Forecast)
		actions.POST("/chat", handler.Chat)
		actions.GET("/world-aqi", handler.WorldAQI)
		actions.POST("/heatmap", handler.Heatmap)
		actions.POST("/hospitals", handler.NearbyHospitals)
		actions.POST("/schools", handler.NearbySchools)
		actions.POST("/speech", handler.TextToSpeech)

		api.GET("/locations/trending", handler.TrendingLocations)
		api.GET("/activity", handler.RecentActivity)

		api.POST("/sessions", sessions.Create)
		session := api.Group("/sessions/:id", sessionAuthMiddleware(tokens, registry))
		session.GET("", sessions.Get)
		session.DELETE("", sessions.Delete)
		session.GET("/events", sessions.Events)
		session.POST("/search", sessions.Search)
		session.POST("/chat", sessions.Chat)
		session.POST("/world-aqi", sessions.WorldAQI)
		session.POST("/hospitals", sessions.Hospitals)
		session.POST("/schools", sessions.Schools)
		session.POST("/voice/listen", sessions.Listen)
		session.POST("/voice/stop", sessions.StopListening)
		session.POST("/voice/ended", sessions.RecognitionEnded)
		session.POST("/voice/transcript", sessions.Transcript)
		session.POST("/voice/speak", sessions.Speak)
		session.POST("/voice/playback", sessions.Playback)
		session.DELETE("/notifications/:notificationId", sessions.DismissNotification)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
