package action

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/breatheeasy/internal/domain/airquality"
	"github.com/yanqian/breatheeasy/internal/domain/speech"
	apperrors "github.com/yanqian/breatheeasy/pkg/errors"
	"github.com/yanqian/breatheeasy/pkg/metrics"
)

type stubAir struct {
	forecast airquality.ForecastResult
	err      error
	panicMsg string
}

func (s *stubAir) Forecast(context.Context, airquality.ForecastRequest) (airquality.ForecastResult, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.forecast, s.err
}

func (s *stubAir) Chat(context.Context, airquality.ChatRequest) (airquality.ChatResponse, error) {
	return airquality.ChatResponse{Response: "hi"}, s.err
}

func (s *stubAir) WorldAQI(context.Context) (airquality.WorldAQIResult, error) {
	return airquality.WorldAQIResult{}, s.err
}

func (s *stubAir) Heatmap(context.Context, airquality.HeatmapRequest) (airquality.HeatmapResult, error) {
	return airquality.HeatmapResult{}, s.err
}

func (s *stubAir) NearbyHospitals(context.Context, airquality.Coordinates) (airquality.HospitalsResult, error) {
	return airquality.HospitalsResult{}, s.err
}

func (s *stubAir) NearbySchools(context.Context, airquality.Coordinates) (airquality.SchoolsResult, error) {
	return airquality.SchoolsResult{}, s.err
}

type stubSpeech struct{ err error }

func (s stubSpeech) Synthesize(context.Context, speech.Request) (speech.Result, error) {
	return speech.Result{Media: "data:audio/wav;base64,AA=="}, s.err
}

type stubTrending struct {
	mu     sync.Mutex
	bumped []string
	err    error
}

func (s *stubTrending) Bump(_ context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bumped = append(s.bumped, location)
	return s.err
}

func (s *stubTrending) Top(context.Context, int) ([]TrendingLocation, error) {
	return nil, s.err
}

type stubActivity struct {
	mu      sync.Mutex
	entries []Activity
}

func (s *stubActivity) Append(_ context.Context, entry Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubActivity) Recent(context.Context, int) ([]Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Activity(nil), s.entries...), nil
}

func newTestActions(air *stubAir, trending Trending, activity ActivityLog) *Actions {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := NewRunner(logger, metrics.NewRecorder(), activity)
	return NewActions(Config{TrendingLimit: 5, ActivityLimit: 5}, runner, air, stubSpeech{}, trending, activity, logger)
}

func TestForecastSuccessBumpsTrending(t *testing.T) {
	air := &stubAir{forecast: airquality.ForecastResult{ForecastText: "clear", Current: airquality.Conditions{AQI: 142}}}
	trending := &stubTrending{}
	activity := &stubActivity{}

	env := newTestActions(air, trending, activity).Forecast(context.Background(), airquality.ForecastRequest{Location: "New Delhi"})
	require.True(t, env.Success)
	require.NotNil(t, env.Data)
	require.Empty(t, env.Error)
	require.Equal(t, 142, env.Data.Current.AQI)
	require.Equal(t, []string{"New Delhi"}, trending.bumped)

	require.Len(t, activity.entries, 1)
	require.Equal(t, NameForecast, activity.entries[0].Action)
	require.Equal(t, "New Delhi", activity.entries[0].Subject)
	require.True(t, activity.entries[0].Success)
	require.NotEmpty(t, activity.entries[0].ID)
}

func TestForecastFailureIsEnveloped(t *testing.T) {
	air := &stubAir{err: apperrors.Wrap(apperrors.CodeOracleUnavailable, "forecast: oracle request failed", errors.New("timeout"))}
	trending := &stubTrending{}
	activity := &stubActivity{}

	env := newTestActions(air, trending, activity).Forecast(context.Background(), airquality.ForecastRequest{Location: "Paris"})
	require.False(t, env.Success)
	require.Nil(t, env.Data)
	require.Equal(t, "forecast: oracle request failed: timeout", env.Error)
	require.Empty(t, trending.bumped)
	require.False(t, activity.entries[0].Success)
	require.Equal(t, env.Error, activity.entries[0].Error)
}

func TestTrendingFailureDoesNotFailForecast(t *testing.T) {
	env := newTestActions(&stubAir{}, &stubTrending{err: errors.New("valkey down")}, nil).
		Forecast(context.Background(), airquality.ForecastRequest{Location: "Lima"})
	require.True(t, env.Success)
}

func TestPanicIsRecovered(t *testing.T) {
	activity := &stubActivity{}
	env := newTestActions(&stubAir{panicMsg: "boom"}, nil, activity).
		Forecast(context.Background(), airquality.ForecastRequest{Location: "Oslo"})
	require.False(t, env.Success)
	require.Equal(t, "internal error: boom", env.Error)
	require.Len(t, activity.entries, 1)
}

func TestEveryActionEnvelopes(t *testing.T) {
	ctx := context.Background()
	a := newTestActions(&stubAir{err: errors.New("nope")}, nil, nil)

	require.Equal(t, "nope", a.Chat(ctx, airquality.ChatRequest{Message: "hi"}).Error)
	require.Equal(t, "nope", a.WorldAQI(ctx).Error)
	require.Equal(t, "nope", a.Heatmap(ctx, airquality.HeatmapRequest{Location: "x"}).Error)
	require.Equal(t, "nope", a.NearbyHospitals(ctx, airquality.Coordinates{}).Error)
	require.Equal(t, "nope", a.NearbySchools(ctx, airquality.Coordinates{}).Error)

	tts := a.TextToSpeech(ctx, speech.Request{Text: "hello"})
	require.True(t, tts.Success)
	require.Equal(t, "data:audio/wav;base64,AA==", tts.Data.Media)
}

func TestListingsWithoutStores(t *testing.T) {
	a := newTestActions(&stubAir{}, nil, nil)

	trending := a.TrendingLocations(context.Background(), 3)
	require.True(t, trending.Success)
	require.Empty(t, *trending.Data)

	recent := a.RecentActivity(context.Background(), 3)
	require.True(t, recent.Success)
	require.Empty(t, *recent.Data)
}

func TestFailWithEmptyMessage(t *testing.T) {
	env := Fail[int]("")
	require.False(t, env.Success)
	require.NotEmpty(t, env.Error)
}

func TestClamp(t *testing.T) {
	require.Equal(t, 10, clamp(0, 10))
	require.Equal(t, 3, clamp(3, 10))
	require.Equal(t, 10, clamp(99, 10))
	require.Equal(t, 50, clamp(0, 0))
}
