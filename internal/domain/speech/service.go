// Package speech turns text into playable audio data URIs.
package speech

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
	apperrors "github.com/yanqian/breatheeasy/pkg/errors"
	"github.com/yanqian/breatheeasy/pkg/metrics"
)

const (
	capability     = "text-to-speech"
	archiveTimeout = 10 * time.Second
)

// Audio is encoded audio returned by a provider.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Synthesizer is implemented by each TTS provider.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// Archive stores synthesized clips. Optional.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Request is the text to speak.
type Request struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// Result carries the playable clip.
type Result struct {
	Media string `json:"media"`
}

// Service exposes text-to-speech.
type Service interface {
	Synthesize(ctx context.Context, req Request) (Result, error)
}

type service struct {
	synth    Synthesizer
	archive  Archive
	recorder *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the speech domain. archive may be nil.
func NewService(synth Synthesizer, archive Archive, recorder *metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		synth:    synth,
		archive:  archive,
		recorder: recorder,
		logger:   logger.With("component", "speech.service"),
		now:      time.Now,
	}
}

func (s *service) Synthesize(ctx context.Context, req Request) (Result, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := oracle.ValidateInput(req); err != nil {
		return Result{}, err
	}

	start := s.now()
	audio, err := s.synth.Synthesize(ctx, req.Text)
	if err != nil {
		s.recorder.ObserveOracle(capability, apperrors.CodeOracleUnavailable, s.now().Sub(start), metrics.TokenUsage{})
		return Result{}, apperrors.Wrap(apperrors.CodeOracleUnavailable, capability+": oracle request failed", err)
	}
	if len(audio.Data) == 0 {
		s.recorder.ObserveOracle(capability, apperrors.CodeSchemaValidation, s.now().Sub(start), metrics.TokenUsage{})
		return Result{}, apperrors.Wrap(apperrors.CodeSchemaValidation, capability+": oracle returned no audio", nil)
	}
	s.recorder.ObserveOracle(capability, "ok", s.now().Sub(start), metrics.TokenUsage{})

	mimeType := audio.MIMEType
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	go s.store(context.WithoutCancel(ctx), audio.Data, mimeType)

	return Result{Media: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(audio.Data)}, nil
}

// store archives a clip off the request path; failures are only logged.
func (s *service) store(ctx context.Context, data []byte, mimeType string) {
	if s.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	key := "speech/" + uuid.NewString() + ".wav"
	if err := s.archive.Put(ctx, key, data, mimeType); err != nil {
		s.logger.Warn("speech archive failed", "key", key, "error", err)
		return
	}
	s.logger.Debug("speech archived", "key", key, "bytes", len(data))
}
