package chatgpt

import (
	"context"
	"errors"
	"strings"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
	"github.com/yanqian/breatheeasy/internal/domain/speech"
	"github.com/yanqian/breatheeasy/pkg/metrics"
)

// Oracle answers structured completions through the chat completions API.
type Oracle struct {
	client *Client
	model  string
}

// NewOracle binds the client to a model.
func NewOracle(client *Client, model string) *Oracle {
	return &Oracle{client: client, model: model}
}

// Complete implements oracle.Oracle.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (oracle.Completion, error) {
	messages := make([]Message, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	messages = append(messages, Message{Role: "user", Content: req.Instruction})

	chatReq := ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   schemaName(req.Capability),
				Schema: req.Schema,
			},
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return oracle.Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return oracle.Completion{}, errors.New("chatgpt returned no choices")
	}
	return oracle.Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// schemaName keeps to the [a-zA-Z0-9_-] alphabet the API accepts.
func schemaName(capability string) string {
	var b strings.Builder
	for _, r := range capability {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "answer"
	}
	return b.String()
}

// Speaker synthesizes speech through the audio API.
type Speaker struct {
	client *Client
	model  string
	voice  string
}

// NewSpeaker binds the client to a TTS model and voice.
func NewSpeaker(client *Client, model, voice string) *Speaker {
	return &Speaker{client: client, model: model, voice: voice}
}

// Synthesize implements speech.Synthesizer.
func (s *Speaker) Synthesize(ctx context.Context, text string) (speech.Audio, error) {
	data, err := s.client.CreateSpeech(ctx, SpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: "wav",
	})
	if err != nil {
		return speech.Audio{}, err
	}
	return speech.Audio{Data: data, MIMEType: "audio/wav"}, nil
}
