package dashboard

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/breatheeasy/internal/domain/action"
	"github.com/yanqian/breatheeasy/internal/domain/airquality"
	"github.com/yanqian/breatheeasy/internal/domain/speech"
)

type stubCaps struct {
	mu sync.Mutex

	forecast     action.Envelope[airquality.ForecastResult]
	forecastGate chan struct{}
	heatmap      action.Envelope[airquality.HeatmapResult]
	chat         action.Envelope[airquality.ChatResponse]
	world        action.Envelope[airquality.WorldAQIResult]
	hospitals    action.Envelope[airquality.HospitalsResult]
	schools      action.Envelope[airquality.SchoolsResult]
	tts          action.Envelope[speech.Result]

	forecastCalls []string
	spoken        []string
	facilityAt    []airquality.Coordinates
}

func newStubCaps() *stubCaps {
	return &stubCaps{
		forecast: action.Ok(airquality.ForecastResult{
			ForecastText: "Hazy mornings, clearing by Thursday.",
			Current:      airquality.Conditions{AQI: 142, PM25: 55, PM10: 90, Temperature: 22},
			Latitude:     28.6139,
			Longitude:    77.209,
		}),
		heatmap: action.Ok(airquality.HeatmapResult{Points: []airquality.HeatmapPoint{
			{Latitude: 28.61, Longitude: 77.2, Intensity: 0.9, SourceType: airquality.SourceTraffic},
		}}),
		chat:      action.Ok(airquality.ChatResponse{Response: "Wear a mask."}),
		world:     action.Ok(airquality.WorldAQIResult{Countries: []airquality.CountryAQI{{Name: "India", AQI: 160}}}),
		hospitals: action.Ok(airquality.HospitalsResult{Hospitals: []airquality.Hospital{{Name: "AIIMS"}}}),
		schools:   action.Ok(airquality.SchoolsResult{Schools: []airquality.School{{Name: "DPS", LocalAQI: 130}}}),
		tts:       action.Ok(speech.Result{Media: "data:audio/wav;base64,AA=="}),
	}
}

func (s *stubCaps) Forecast(ctx context.Context, req airquality.ForecastRequest) action.Envelope[airquality.ForecastResult] {
	s.mu.Lock()
	s.forecastCalls = append(s.forecastCalls, req.Location)
	gate := s.forecastGate
	env := s.forecast
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return action.Fail[airquality.ForecastResult](ctx.Err().Error())
		}
	}
	return env
}

func (s *stubCaps) Heatmap(context.Context, airquality.HeatmapRequest) action.Envelope[airquality.HeatmapResult] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heatmap
}

func (s *stubCaps) Chat(context.Context, airquality.ChatRequest) action.Envelope[airquality.ChatResponse] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat
}

func (s *stubCaps) WorldAQI(context.Context) action.Envelope[airquality.WorldAQIResult] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world
}

func (s *stubCaps) NearbyHospitals(_ context.Context, at airquality.Coordinates) action.Envelope[airquality.HospitalsResult] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilityAt = append(s.facilityAt, at)
	return s.hospitals
}

func (s *stubCaps) NearbySchools(_ context.Context, at airquality.Coordinates) action.Envelope[airquality.SchoolsResult] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilityAt = append(s.facilityAt, at)
	return s.schools
}

func (s *stubCaps) TextToSpeech(_ context.Context, req speech.Request) action.Envelope[speech.Result] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, req.Text)
	return s.tts
}

func (s *stubCaps) spokenTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func testConfig(voice bool) Config {
	return Config{
		VoiceEnabled:    voice,
		MapZoom:         10,
		DefaultLocation: Location{Name: "New Delhi", Latitude: 28.6139, Longitude: 77.2090},
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testSession struct {
	*Session
	player     *RelayPlayer
	recognizer *RelayRecognizer
}

func newTestSession(t *testing.T, caps *stubCaps, voice bool) testSession {
	t.Helper()
	player := NewRelayPlayer()
	recognizer := NewRelayRecognizer()
	s := NewSession("test", testConfig(voice), caps, player, recognizer, newTestLogger())
	t.Cleanup(s.Close)
	return testSession{Session: s, player: player, recognizer: recognizer}
}

func waitForState(t *testing.T, s *Session, cond func(ViewState) bool) ViewState {
	t.Helper()
	var last ViewState
	require.Eventually(t, func() bool {
		last = s.Snapshot()
		return cond(last)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

// finishClip reports the current clip as played once the player is waiting on it.
func finishClip(t *testing.T, s testSession, failure string) {
	t.Helper()
	require.Eventually(t, func() bool {
		id, ok := s.player.playing()
		return ok && s.FinishPlayback(id, failure) == nil
	}, 2*time.Second, 5*time.Millisecond)
}
