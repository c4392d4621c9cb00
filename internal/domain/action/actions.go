package action

import (
	"context"
	"log/slog"

	"github.com/yanqian/breatheeasy/internal/domain/airquality"
	"github.com/yanqian/breatheeasy/internal/domain/speech"
)

// Action names, as logged and counted.
const (
	NameForecast        = "forecast"
	NameChat            = "chat"
	NameWorldAQI        = "world-aqi"
	NameHeatmap         = "heatmap"
	NameNearbyHospitals = "nearby-hospitals"
	NameNearbySchools   = "nearby-schools"
	NameTextToSpeech    = "text-to-speech"
)

// Config bounds the listing actions.
type Config struct {
	TrendingLimit int
	ActivityLimit int
}

// Actions exposes every capability through envelopes only.
type Actions struct {
	cfg      Config
	runner   *Runner
	air      airquality.Service
	speech   speech.Service
	trending Trending
	activity ActivityLog
	logger   *slog.Logger
}

// NewActions wires the envelope surface. trending and activity may be nil.
func NewActions(cfg Config, runner *Runner, air airquality.Service, speechSvc speech.Service, trending Trending, activity ActivityLog, logger *slog.Logger) *Actions {
	return &Actions{
		cfg:      cfg,
		runner:   runner,
		air:      air,
		speech:   speechSvc,
		trending: trending,
		activity: activity,
		logger:   logger.With("component", "action.actions"),
	}
}

// Forecast also bumps the location's popularity when it succeeds.
func (a *Actions) Forecast(ctx context.Context, req airquality.ForecastRequest) Envelope[airquality.ForecastResult] {
	return RunFor(ctx, a.runner, NameForecast, req.Location, func(ctx context.Context) (airquality.ForecastResult, error) {
		res, err := a.air.Forecast(ctx, req)
		if err != nil {
			return res, err
		}
		if a.trending != nil {
			if err := a.trending.Bump(context.WithoutCancel(ctx), req.Location); err != nil {
				a.logger.Warn("trending bump failed", "location", req.Location, "error", err)
			}
		}
		return res, nil
	})
}

func (a *Actions) Chat(ctx context.Context, req airquality.ChatRequest) Envelope[airquality.ChatResponse] {
	return Run(ctx, a.runner, NameChat, func(ctx context.Context) (airquality.ChatResponse, error) {
		return a.air.Chat(ctx, req)
	})
}

func (a *Actions) WorldAQI(ctx context.Context) Envelope[airquality.WorldAQIResult] {
	return Run(ctx, a.runner, NameWorldAQI, a.air.WorldAQI)
}

func (a *Actions) Heatmap(ctx context.Context, req airquality.HeatmapRequest) Envelope[airquality.HeatmapResult] {
	return RunFor(ctx, a.runner, NameHeatmap, req.Location, func(ctx context.Context) (airquality.HeatmapResult, error) {
		return a.air.Heatmap(ctx, req)
	})
}

func (a *Actions) NearbyHospitals(ctx context.Context, at airquality.Coordinates) Envelope[airquality.HospitalsResult] {
	return Run(ctx, a.runner, NameNearbyHospitals, func(ctx context.Context) (airquality.HospitalsResult, error) {
		return a.air.NearbyHospitals(ctx, at)
	})
}

func (a *Actions) NearbySchools(ctx context.Context, at airquality.Coordinates) Envelope[airquality.SchoolsResult] {
	return Run(ctx, a.runner, NameNearbySchools, func(ctx context.Context) (airquality.SchoolsResult, error) {
		return a.air.NearbySchools(ctx, at)
	})
}

func (a *Actions) TextToSpeech(ctx context.Context, req speech.Request) Envelope[speech.Result] {
	return Run(ctx, a.runner, NameTextToSpeech, func(ctx context.Context) (speech.Result, error) {
		return a.speech.Synthesize(ctx, req)
	})
}

// TrendingLocations lists the most forecast locations. Reads are not recorded
// in the activity log.
func (a *Actions) TrendingLocations(ctx context.Context, limit int) Envelope[[]TrendingLocation] {
	if a.trending == nil {
		return Ok([]TrendingLocation{})
	}
	items, err := a.trending.Top(ctx, clamp(limit, a.cfg.TrendingLimit))
	if err != nil {
		a.logger.Warn("trending read failed", "error", err)
		return Fail[[]TrendingLocation](err.Error())
	}
	if items == nil {
		items = []TrendingLocation{}
	}
	return Ok(items)
}

// RecentActivity lists the latest action outcomes, newest first.
func (a *Actions) RecentActivity(ctx context.Context, limit int) Envelope[[]Activity] {
	if a.activity == nil {
		return Ok([]Activity{})
	}
	items, err := a.activity.Recent(ctx, clamp(limit, a.cfg.ActivityLimit))
	if err != nil {
		a.logger.Warn("activity read failed", "error", err)
		return Fail[[]Activity](err.Error())
	}
	if items == nil {
		items = []Activity{}
	}
	return Ok(items)
}

func clamp(limit, max int) int {
	if max <= 0 {
		max = 50
	}
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
