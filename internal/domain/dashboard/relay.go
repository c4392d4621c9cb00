package dashboard

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrPlaybackStopped = errors.New("playback stopped")
	ErrUnknownClip     = errors.New("no such clip is playing")
)

// RelayPlayer plays clips on a remote client. The client picks the clip up
// from the session state and reports back through Finish.
type RelayPlayer struct {
	mu      sync.Mutex
	current *playback
}

type playback struct {
	clipID string
	done   chan error
}

// NewRelayPlayer returns an idle player.
func NewRelayPlayer() *RelayPlayer {
	return &RelayPlayer{}
}

// Play implements Player. It returns the client's reported error, or
// ErrPlaybackStopped, or ctx's error.
func (p *RelayPlayer) Play(ctx context.Context, clip Clip) error {
	pb := &playback{clipID: clip.ID, done: make(chan error, 1)}
	p.mu.Lock()
	p.endLocked(ErrPlaybackStopped)
	p.current = pb
	p.mu.Unlock()

	select {
	case err := <-pb.done:
		return err
	case <-ctx.Done():
		p.mu.Lock()
		if p.current == pb {
			p.current = nil
		}
		p.mu.Unlock()
		return ctx.Err()
	}
}

// Stop implements Player.
func (p *RelayPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLocked(ErrPlaybackStopped)
}

// Finish completes the clip with the client's outcome; nil means it ended normally.
func (p *RelayPlayer) Finish(clipID string, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.clipID != clipID {
		return ErrUnknownClip
	}
	p.endLocked(err)
	return nil
}

// playing returns the id of the clip awaiting a report, if any.
func (p *RelayPlayer) playing() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return "", false
	}
	return p.current.clipID, true
}

func (p *RelayPlayer) endLocked(err error) {
	if p.current == nil {
		return
	}
	p.current.done <- err
	p.current = nil
}

// RelayRecognizer tracks whether the remote client should be capturing speech.
type RelayRecognizer struct {
	mu     sync.Mutex
	active bool
}

// NewRelayRecognizer returns an inactive recognizer.
func NewRelayRecognizer() *RelayRecognizer {
	return &RelayRecognizer{}
}

// Start implements Recognizer.
func (r *RelayRecognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	return nil
}

// Stop implements Recognizer.
func (r *RelayRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}

// capturing reports whether capture was requested.
func (r *RelayRecognizer) capturing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
