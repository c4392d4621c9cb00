// Package tokenizer counts prompt tokens for input budgets.
package tokenizer

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Counter counts tokens with the model's BPE encoding, or estimates four
// characters per token when no encoding could be loaded.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// New loads the encoding for model.
func New(model string, logger *slog.Logger) *Counter {
	logger = logger.With("component", "tokenizer")
	enc, err := tiktoken.EncodingForModel(model)
	if err == nil {
		return &Counter{encoding: enc}
	}
	enc, fallbackErr := tiktoken.GetEncoding(fallbackEncoding)
	if fallbackErr == nil {
		logger.Info("model encoding unknown, using fallback", "model", model, "encoding", fallbackEncoding)
		return &Counter{encoding: enc}
	}
	logger.Warn("tiktoken unavailable, estimating tokens", "model", model, "error", fallbackErr)
	return &Counter{}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.encoding == nil {
		return (utf8.RuneCountInString(text) + 3) / 4
	}
	return len(c.encoding.Encode(text, nil, nil))
}
