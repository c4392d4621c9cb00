package gemini

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"github.com/yanqian/breatheeasy/internal/domain/speech"
)

const (
	defaultSampleRate = 24000
	defaultVoice      = "Algenib"
)

// Speaker synthesizes speech with a Gemini TTS model.
type Speaker struct {
	models contentGenerator
	model  string
	voice  string
}

// NewSpeaker binds the client to a TTS model and prebuilt voice.
func NewSpeaker(client *genai.Client, model, voice string) *Speaker {
	if strings.TrimSpace(voice) == "" {
		voice = defaultVoice
	}
	return &Speaker{models: client.Models, model: model, voice: voice}
}

// Synthesize implements speech.Synthesizer. Gemini answers with raw 16-bit PCM,
// which is wrapped into a WAV container here.
func (s *Speaker) Synthesize(ctx context.Context, text string) (speech.Audio, error) {
	resp, err := s.models.GenerateContent(ctx, s.model, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	})
	if err != nil {
		return speech.Audio{}, err
	}
	content, err := firstCandidate(resp)
	if err != nil {
		return speech.Audio{}, err
	}
	for _, part := range content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		rate := sampleRate(part.InlineData.MIMEType)
		return speech.Audio{Data: encodeWAV(part.InlineData.Data, rate, 1, 16), MIMEType: "audio/wav"}, nil
	}
	return speech.Audio{}, errors.New("gemini returned no audio data")
}

// sampleRate reads rate=N from mime types like "audio/L16;codec=pcm;rate=24000".
func sampleRate(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(key, "rate") {
			continue
		}
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultSampleRate
}
