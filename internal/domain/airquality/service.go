// Package airquality answers air-quality questions through the schema-checked oracle.
package airquality

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
)

// Service exposes every oracle-backed capability of the dashboard.
type Service interface {
	Forecast(ctx context.Context, req ForecastRequest) (ForecastResult, error)
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	WorldAQI(ctx context.Context) (WorldAQIResult, error)
	Heatmap(ctx context.Context, req HeatmapRequest) (HeatmapResult, error)
	NearbyHospitals(ctx context.Context, at Coordinates) (HospitalsResult, error)
	NearbySchools(ctx context.Context, at Coordinates) (SchoolsResult, error)
}

// TokenCounter sizes chat messages against the budget.
type TokenCounter interface {
	Count(text string) int
}

type service struct {
	cfg    Config
	client *oracle.Client
	tokens TokenCounter
	logger *slog.Logger
}

// NewService wires up the air-quality domain.
func NewService(cfg Config, client *oracle.Client, tokens TokenCounter, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		tokens: tokens,
		logger: logger.With("component", "airquality.service"),
	}
}

func (s *service) request(capability, persona, instruction string, schema map[string]any) oracle.Request {
	return oracle.Request{
		Capability:  capability,
		System:      s.systemPrompt(persona),
		Instruction: instruction,
		Schema:      schema,
		Temperature: s.cfg.Temperature,
	}
}

func (s *service) systemPrompt(persona string) string {
	base := strings.TrimSpace(s.cfg.SystemPrompt)
	if base != "" {
		persona = base + " " + persona
	}
	return persona + " Respond ONLY with JSON matching the provided schema. Never return plain text or extra fields."
}

func roundAQI(v float64) int {
	return int(math.Round(v))
}
