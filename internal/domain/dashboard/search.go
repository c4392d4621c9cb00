package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/breatheeasy/internal/domain/action"
	"github.com/yanqian/breatheeasy/internal/domain/airquality"
)

// Submit starts a search for location. Forecast text, current conditions and
// heatmap are cleared at once; forecast and heatmap are then requested
// concurrently and merged as each lands. The returned channel closes when the
// search settles. A submission while another search is pending is dropped
// with ErrSearchPending.
func (s *Session) Submit(location string) (<-chan struct{}, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.state.SearchPending {
		return nil, ErrSearchPending
	}
	s.state.SearchPending = true
	s.state.Location = location
	s.state.ForecastText = ""
	s.state.Current = nil
	s.state.Category = ""
	s.state.CategoryColor = ""
	s.state.Advice = nil
	s.state.Heatmap = []airquality.HeatmapPoint{}
	s.publishLocked()

	s.logger.Info("search started", "location", location)
	return s.trackLocked(func() { s.runSearch(location) }), nil
}

// Search is Submit followed by waiting for the search to settle or ctx to end.
func (s *Session) Search(ctx context.Context, location string) error {
	done, err := s.Submit(location)
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) runSearch(location string) {
	var g errgroup.Group
	g.Go(func() error {
		s.applyForecast(location, s.caps.Forecast(s.ctx, airquality.ForecastRequest{Location: location}))
		return nil
	})
	g.Go(func() error {
		s.applyHeatmap(location, s.caps.Heatmap(s.ctx, airquality.HeatmapRequest{Location: location}))
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	s.state.SearchPending = false
	s.publishLocked()
	s.mu.Unlock()
}

func (s *Session) applyForecast(location string, env action.Envelope[airquality.ForecastResult]) {
	s.mu.Lock()
	var say string
	if env.Success {
		res := *env.Data
		current := res.Current
		category := current.Category
		if category == "" {
			category = airquality.Category(float64(current.AQI))
		}
		advice := airquality.Advice(category)
		s.state.ForecastText = res.ForecastText
		s.state.Current = &current
		s.state.Category = category
		s.state.CategoryColor = airquality.Color(category)
		s.state.Advice = &advice
		s.state.Map.Center = airquality.Coordinates{Latitude: res.Latitude, Longitude: res.Longitude}
		say = SummaryText(location, current.AQI, category, current.Temperature)
	} else {
		s.notifyLocked("Forecast Error", env.Error)
		say = ApologyText(location)
	}
	s.publishLocked()
	speak := s.state.Voice.Enabled
	s.mu.Unlock()

	if !speak {
		return
	}
	if _, err := s.Speak(say); err != nil {
		s.logger.Info("search narration skipped", "location", location, "reason", err)
	}
}

func (s *Session) applyHeatmap(location string, env action.Envelope[airquality.HeatmapResult]) {
	if !env.Success {
		s.logger.Warn("heatmap failed", "location", location, "error", env.Error)
		return
	}
	s.mu.Lock()
	s.state.Heatmap = append([]airquality.HeatmapPoint(nil), env.Data.Points...)
	s.publishLocked()
	s.mu.Unlock()
}

// SummaryText is the sentence spoken after a successful forecast.
func SummaryText(location string, aqi int, category string, temperature float64) string {
	return fmt.Sprintf("The current AQI in %s is %d, which is %s. The temperature is %s degrees Celsius.",
		location, aqi, category, strconv.FormatFloat(temperature, 'f', -1, 64))
}

// ApologyText is spoken when the forecast for location could not be fetched.
func ApologyText(location string) string {
	return fmt.Sprintf("Sorry, I couldn't get the air quality forecast for %s.", location)
}
