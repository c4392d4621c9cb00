package action

import (
	"context"
	"time"
)

// Activity is one recorded action outcome.
type Activity struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Subject    string    `json:"subject,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ActivityLog persists action outcomes.
type ActivityLog interface {
	Append(ctx context.Context, entry Activity) error
	Recent(ctx context.Context, limit int) ([]Activity, error)
}

// TrendingLocation is a location and how often it was forecast.
type TrendingLocation struct {
	Location string `json:"location"`
	Searches int64  `json:"searches"`
}

// Trending ranks searched locations.
type Trending interface {
	Bump(ctx context.Context, location string) error
	Top(ctx context.Context, limit int) ([]TrendingLocation, error)
}
