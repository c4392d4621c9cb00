package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanqian/breatheeasy/internal/domain/action"
	"github.com/yanqian/breatheeasy/internal/domain/airquality"
)

// Chat sends one message to the assistant. The user turn is shown at once and
// taken back out if the assistant fails.
func (s *Session) Chat(ctx context.Context, message string) (action.Envelope[airquality.ChatResponse], error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return action.Envelope[airquality.ChatResponse]{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return action.Envelope[airquality.ChatResponse]{}, ErrSessionClosed
	}
	if s.state.ChatPending {
		s.mu.Unlock()
		return action.Envelope[airquality.ChatResponse]{}, ErrChatPending
	}
	s.state.Transcript = append(s.state.Transcript, ChatTurn{Role: RoleUser, Content: message})
	turn := len(s.state.Transcript) - 1
	s.state.ChatPending = true
	s.publishLocked()
	s.mu.Unlock()

	env := s.caps.Chat(ctx, airquality.ChatRequest{Message: message})

	s.mu.Lock()
	defer s.mu.Unlock()
	if env.Success {
		s.state.Transcript = append(s.state.Transcript, ChatTurn{Role: RoleAssistant, Content: env.Data.Response})
	} else {
		s.state.Transcript = append(s.state.Transcript[:turn:turn], s.state.Transcript[turn+1:]...)
		s.notifyLocked("Chat Error", env.Error)
	}
	s.state.ChatPending = false
	s.publishLocked()
	return env, nil
}

// LoadWorldAQI refreshes the world ranking.
func (s *Session) LoadWorldAQI(ctx context.Context) action.Envelope[airquality.WorldAQIResult] {
	env := s.caps.WorldAQI(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if env.Success {
		s.state.WorldAQI = append([]airquality.CountryAQI(nil), env.Data.Countries...)
	} else {
		s.notifyLocked("World AQI Error", env.Error)
	}
	s.publishLocked()
	return env
}

// LoadNearbyHospitals lists hospitals around at, or around the default
// location when the client could not supply a position.
func (s *Session) LoadNearbyHospitals(ctx context.Context, at *airquality.Coordinates) action.Envelope[airquality.HospitalsResult] {
	origin := s.resolveOrigin(at)
	env := s.caps.NearbyHospitals(ctx, origin)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.FacilityOrigin = &origin
	if env.Success {
		s.state.Hospitals = append([]airquality.Hospital(nil), env.Data.Hospitals...)
	} else {
		s.notifyLocked("Hospital Search Error", env.Error)
	}
	s.publishLocked()
	return env
}

// LoadNearbySchools lists schools around at, falling back like LoadNearbyHospitals.
func (s *Session) LoadNearbySchools(ctx context.Context, at *airquality.Coordinates) action.Envelope[airquality.SchoolsResult] {
	origin := s.resolveOrigin(at)
	env := s.caps.NearbySchools(ctx, origin)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.FacilityOrigin = &origin
	if env.Success {
		s.state.Schools = append([]airquality.School(nil), env.Data.Schools...)
	} else {
		s.notifyLocked("School Search Error", env.Error)
	}
	s.publishLocked()
	return env
}

func (s *Session) resolveOrigin(at *airquality.Coordinates) airquality.Coordinates {
	if at != nil {
		return *at
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked("Location Error", fmt.Sprintf("Could not retrieve your location. Showing results near %s.", s.cfg.DefaultLocation.Name))
	s.publishLocked()
	return defaultCenter(s.cfg.DefaultLocation)
}
