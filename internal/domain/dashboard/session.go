// Package dashboard is the aggregation layer: per-user view state fed by
// envelope-returning actions, plus the voice loop that narrates results.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/breatheeasy/internal/domain/airquality"
)

const defaultMaxNotifications = 20

// Player plays a clip on the user's device. Play blocks until playback ends,
// fails or is stopped.
type Player interface {
	Play(ctx context.Context, clip Clip) error
	Stop()
}

// Recognizer captures speech on the user's device. Transcripts arrive through
// Session.HandleTranscript.
type Recognizer interface {
	Start() error
	Stop()
}

// Session owns one user's view state. All state is guarded by mu; capability
// calls run without it.
type Session struct {
	id         string
	cfg        Config
	caps       Capabilities
	player     Player
	recognizer Recognizer
	logger     *slog.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       ViewState
	subscribers map[int]chan ViewState
	nextSubID   int
	closed      bool
}

// NewSession builds a session. player and recognizer may be nil when the
// client cannot play audio or capture speech.
func NewSession(id string, cfg Config, caps Capabilities, player Player, recognizer Recognizer, logger *slog.Logger) *Session {
	if cfg.MaxNotifications <= 0 {
		cfg.MaxNotifications = defaultMaxNotifications
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:          id,
		cfg:         cfg,
		caps:        caps,
		player:      player,
		recognizer:  recognizer,
		logger:      logger.With("component", "dashboard.session", "session_id", id),
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[int]chan ViewState),
	}
	s.state = ViewState{
		Map: MapView{
			Center: defaultCenter(cfg.DefaultLocation),
			Zoom:   cfg.MapZoom,
		},
		Heatmap:       []airquality.HeatmapPoint{},
		Transcript:    []ChatTurn{},
		WorldAQI:      []airquality.CountryAQI{},
		Hospitals:     []airquality.Hospital{},
		Schools:       []airquality.School{},
		Notifications: []Notification{},
		Voice: VoiceState{
			Mode:      VoiceIdle,
			Supported: recognizer != nil,
			Enabled:   cfg.VoiceEnabled && player != nil,
		},
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns a copy of the current view state.
func (s *Session) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe streams snapshots, starting with the current one. Slow readers
// only ever see the latest state. The channel closes when the session closes
// or cancel is called.
func (s *Session) Subscribe() (<-chan ViewState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan ViewState, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	ch <- s.state.clone()
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Close stops background work and releases subscribers. It waits for in-flight
// searches and speech to wind down.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.mu.Unlock()

	if s.player != nil {
		s.player.Stop()
	}
	if s.recognizer != nil {
		s.recognizer.Stop()
	}
	s.wg.Wait()
	s.logger.Info("session closed")
}

// publishLocked bumps the version and fans the new state out. Caller holds mu.
func (s *Session) publishLocked() {
	s.state.Version++
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.state.clone()
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// notifyLocked appends a toast, dropping the oldest past the cap. Caller holds mu.
func (s *Session) notifyLocked(title, message string) {
	s.state.Notifications = append(s.state.Notifications, Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		CreatedAt: s.now().UTC(),
	})
	if over := len(s.state.Notifications) - s.cfg.MaxNotifications; over > 0 {
		s.state.Notifications = append([]Notification(nil), s.state.Notifications[over:]...)
	}
}

// DismissNotification removes a toast by id.
func (s *Session) DismissNotification(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.state.Notifications {
		if n.ID == id {
			s.state.Notifications = append(s.state.Notifications[:i:i], s.state.Notifications[i+1:]...)
			s.publishLocked()
			return true
		}
	}
	return false
}

// trackLocked runs fn in the background, tied to the session lifetime. Caller holds mu
// and has checked closed.
func (s *Session) trackLocked(fn func()) <-chan struct{} {
	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		fn()
	}()
	return done
}

func defaultCenter(loc Location) airquality.Coordinates {
	return airquality.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}
}
