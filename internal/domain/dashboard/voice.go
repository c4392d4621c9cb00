package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yanqian/breatheeasy/internal/domain/speech"
)

var legalTransitions = map[VoiceMode][]VoiceMode{
	VoiceIdle:      {VoiceListening, VoiceSpeaking},
	VoiceListening: {VoiceIdle, VoiceSpeaking},
	VoiceSpeaking:  {VoiceIdle},
}

// CanTransition reports whether the voice channel may move from one mode to another.
func CanTransition(from, to VoiceMode) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *Session) setVoiceModeLocked(to VoiceMode) error {
	from := s.state.Voice.Mode
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, from, to)
	}
	s.state.Voice.Mode = to
	return nil
}

// StartListening asks the client to capture speech.
func (s *Session) StartListening() error {
	if s.recognizer == nil {
		return ErrVoiceUnsupported
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !CanTransition(s.state.Voice.Mode, VoiceListening) {
		return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, s.state.Voice.Mode, VoiceListening)
	}
	if err := s.recognizer.Start(); err != nil {
		return err
	}
	s.state.Voice.Mode = VoiceListening
	s.publishLocked()
	return nil
}

// StopListening ends speech capture without a transcript.
func (s *Session) StopListening() error {
	if s.recognizer == nil {
		return ErrVoiceUnsupported
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Voice.Mode != VoiceListening {
		return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, s.state.Voice.Mode, VoiceIdle)
	}
	s.recognizer.Stop()
	s.state.Voice.Mode = VoiceIdle
	s.publishLocked()
	return nil
}

// HandleRecognitionEnd records that the client's recognizer stopped on its own.
func (s *Session) HandleRecognitionEnd() {
	s.stopListeningIfActive()
}

// HandleTranscript feeds recognized text to search exactly as if typed, then
// stops listening. It returns the search submission error, if any.
func (s *Session) HandleTranscript(text string) (<-chan struct{}, error) {
	s.mu.Lock()
	mode := s.state.Voice.Mode
	s.mu.Unlock()
	if mode != VoiceListening {
		return nil, fmt.Errorf("%w: transcript while %s", ErrIllegalTransition, mode)
	}

	done, err := s.Submit(text)
	s.stopListeningIfActive()
	return done, err
}

func (s *Session) stopListeningIfActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Voice.Mode != VoiceListening {
		return
	}
	if s.recognizer != nil {
		s.recognizer.Stop()
	}
	s.state.Voice.Mode = VoiceIdle
	s.publishLocked()
}

// Speak synthesizes text and plays it on the client. Listening stops first and
// any current playback is cut. The returned channel closes once the channel is
// back to idle, whether playback ended, failed or synthesis failed.
func (s *Session) Speak(text string) (<-chan struct{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.player == nil {
		return nil, ErrVoiceUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if !s.state.Voice.Enabled {
		return nil, ErrVoiceDisabled
	}
	if s.state.Voice.Mode == VoiceSpeaking {
		return nil, ErrAlreadySpeaking
	}
	if s.state.Voice.Mode == VoiceListening && s.recognizer != nil {
		s.recognizer.Stop()
	}
	if err := s.setVoiceModeLocked(VoiceSpeaking); err != nil {
		return nil, err
	}
	s.state.Voice.Text = text
	s.publishLocked()

	return s.trackLocked(func() { s.speak(text) }), nil
}

func (s *Session) speak(text string) {
	defer s.finishSpeaking()

	env := s.caps.TextToSpeech(s.ctx, speech.Request{Text: text})
	if !env.Success {
		s.logger.Warn("speech synthesis failed", "error", env.Error)
		return
	}

	clip := Clip{ID: uuid.NewString(), Media: env.Data.Media}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Voice.Clip = &clip
	s.publishLocked()
	s.mu.Unlock()

	s.player.Stop()
	if err := s.player.Play(s.ctx, clip); err != nil {
		s.logger.Info("playback ended early", "clip_id", clip.ID, "reason", err)
	}
}

func (s *Session) finishSpeaking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Voice.Clip = nil
	s.state.Voice.Text = ""
	if s.state.Voice.Mode == VoiceSpeaking {
		s.state.Voice.Mode = VoiceIdle
	}
	s.publishLocked()
}

// FinishPlayback relays the client's report that a clip ended. A non-empty
// failure marks it as a playback error.
func (s *Session) FinishPlayback(clipID, failure string) error {
	relay, ok := s.player.(interface {
		Finish(clipID string, err error) error
	})
	if !ok {
		return ErrVoiceUnsupported
	}
	var playErr error
	if failure != "" {
		playErr = errors.New(failure)
	}
	return relay.Finish(clipID, playErr)
}
