package dashboard

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/yanqian/breatheeasy/internal/domain/action"
	"github.com/yanqian/breatheeasy/internal/domain/airquality"
	"github.com/yanqian/breatheeasy/internal/domain/speech"
)

var (
	ErrEmptyLocation     = errors.New("location is required")
	ErrSearchPending     = errors.New("a search is already in progress")
	ErrEmptyMessage      = errors.New("message is required")
	ErrChatPending       = errors.New("a chat message is already in flight")
	ErrEmptyText         = errors.New("text is required")
	ErrIllegalTransition = errors.New("illegal voice transition")
	ErrAlreadySpeaking   = errors.New("already speaking")
	ErrVoiceUnsupported  = errors.New("voice input is not supported")
	ErrVoiceDisabled     = errors.New("voice output is disabled")
	ErrSessionClosed     = errors.New("session closed")
)

// Capabilities is the envelope-only surface the dashboard consumes.
// *action.Actions implements it.
type Capabilities interface {
	Forecast(ctx context.Context, req airquality.ForecastRequest) action.Envelope[airquality.ForecastResult]
	Heatmap(ctx context.Context, req airquality.HeatmapRequest) action.Envelope[airquality.HeatmapResult]
	Chat(ctx context.Context, req airquality.ChatRequest) action.Envelope[airquality.ChatResponse]
	WorldAQI(ctx context.Context) action.Envelope[airquality.WorldAQIResult]
	NearbyHospitals(ctx context.Context, at airquality.Coordinates) action.Envelope[airquality.HospitalsResult]
	NearbySchools(ctx context.Context, at airquality.Coordinates) action.Envelope[airquality.SchoolsResult]
	TextToSpeech(ctx context.Context, req speech.Request) action.Envelope[speech.Result]
}

// Location is a named default position.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Config tunes a session.
type Config struct {
	VoiceEnabled     bool
	MapZoom          int
	DefaultLocation  Location
	MaxNotifications int
}

// ChatTurn is one transcript line.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Notification is a toast shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoiceMode is the state of the voice channel.
type VoiceMode string

const (
	VoiceIdle      VoiceMode = "idle"
	VoiceListening VoiceMode = "listening"
	VoiceSpeaking  VoiceMode = "speaking"
)

// Clip is audio waiting to be played by the client.
type Clip struct {
	ID    string `json:"id"`
	Media string `json:"media"`
}

// VoiceState is the voice channel part of the view.
type VoiceState struct {
	Mode      VoiceMode `json:"mode"`
	Supported bool      `json:"supported"`
	Enabled   bool      `json:"enabled"`
	Text      string    `json:"text,omitempty"`
	Clip      *Clip     `json:"clip,omitempty"`
}

// MapView is where the map is centred.
type MapView struct {
	Center airquality.Coordinates `json:"center"`
	Zoom   int                    `json:"zoom"`
}

// ViewState is everything the dashboard renders.
type ViewState struct {
	Version        uint64                    `json:"version"`
	Location       string                    `json:"location"`
	SearchPending  bool                      `json:"searchPending"`
	ForecastText   string                    `json:"forecastText,omitempty"`
	Current        *airquality.Conditions    `json:"current,omitempty"`
	Category       string                    `json:"category,omitempty"`
	CategoryColor  string                    `json:"categoryColor,omitempty"`
	Advice         *airquality.HealthAdvice  `json:"advice,omitempty"`
	Map            MapView                   `json:"map"`
	Heatmap        []airquality.HeatmapPoint `json:"heatmap"`
	Transcript     []ChatTurn                `json:"transcript"`
	ChatPending    bool                      `json:"chatPending"`
	WorldAQI       []airquality.CountryAQI   `json:"worldAqi"`
	FacilityOrigin *airquality.Coordinates   `json:"facilityOrigin,omitempty"`
	Hospitals      []airquality.Hospital     `json:"hospitals"`
	Schools        []airquality.School       `json:"schools"`
	Voice          VoiceState                `json:"voice"`
	Notifications  []Notification            `json:"notifications"`
}

func (v ViewState) clone() ViewState {
	out := v
	if v.Current != nil {
		current := *v.Current
		out.Current = &current
	}
	if v.Advice != nil {
		advice := *v.Advice
		out.Advice = &advice
	}
	if v.FacilityOrigin != nil {
		origin := *v.FacilityOrigin
		out.FacilityOrigin = &origin
	}
	if v.Voice.Clip != nil {
		clip := *v.Voice.Clip
		out.Voice.Clip = &clip
	}
	out.Heatmap = slices.Clone(v.Heatmap)
	out.Transcript = slices.Clone(v.Transcript)
	out.WorldAQI = slices.Clone(v.WorldAQI)
	out.Hospitals = slices.Clone(v.Hospitals)
	out.Schools = slices.Clone(v.Schools)
	out.Notifications = slices.Clone(v.Notifications)
	return out
}
