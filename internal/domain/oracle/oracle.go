// Package oracle sends schema-constrained instructions to a generative model and
// validates what comes back before anyone else sees it.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	apperrors "github.com/yanqian/breatheeasy/pkg/errors"
	"github.com/yanqian/breatheeasy/pkg/metrics"
)

// Request is a single structured completion.
type Request struct {
	// Capability names the calling flow; it doubles as the schema name.
	Capability  string
	System      string
	Instruction string
	Schema      map[string]any
	Temperature float32
}

// Completion is the raw oracle answer.
type Completion struct {
	Content string
	Usage   metrics.TokenUsage
}

// Oracle is implemented by each model provider.
type Oracle interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Client instruments an Oracle and is the handle domain services hold.
type Client struct {
	oracle   Oracle
	recorder *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewClient wraps the provider.
func NewClient(o Oracle, recorder *metrics.Recorder, logger *slog.Logger) *Client {
	return &Client{
		oracle:   o,
		recorder: recorder,
		logger:   logger.With("component", "oracle.client"),
		now:      time.Now,
	}
}

// Generate runs req against the oracle and decodes the answer into W. The answer
// must decode cleanly and satisfy W's validate tags.
func Generate[W any](ctx context.Context, c *Client, req Request) (W, error) {
	var out W
	start := c.now()

	completion, err := c.oracle.Complete(ctx, req)
	if err != nil {
		c.observe(req.Capability, apperrors.CodeOracleUnavailable, start, metrics.TokenUsage{})
		return out, apperrors.Wrap(apperrors.CodeOracleUnavailable, req.Capability+": oracle request failed", err)
	}

	if err := decodeStrict([]byte(sanitize(completion.Content)), &out); err != nil {
		c.observe(req.Capability, apperrors.CodeSchemaValidation, start, completion.Usage)
		c.logger.Warn("oracle answer rejected", "capability", req.Capability, "error", err, "content", truncate(completion.Content, 512))
		return out, apperrors.Wrap(apperrors.CodeSchemaValidation, req.Capability+": oracle answer does not match schema", err)
	}

	c.observe(req.Capability, "ok", start, completion.Usage)
	c.logger.Debug("oracle answer accepted", "capability", req.Capability, "prompt_tokens", completion.Usage.PromptTokens, "completion_tokens", completion.Usage.CompletionTokens)
	return out, nil
}

func (c *Client) observe(capability, outcome string, start time.Time, usage metrics.TokenUsage) {
	c.recorder.ObserveOracle(capability, outcome, c.now().Sub(start), usage)
}

func decodeStrict(data []byte, dst any) error {
	if len(data) == 0 {
		return errors.New("empty answer")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	trimStrings(reflect.ValueOf(dst))
	return checkStruct(dst)
}

// sanitize strips the markdown fences some models wrap around JSON.
func sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimSuffix(s, "```")
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// IsValidation reports an input rejected before any oracle call.
func IsValidation(err error) bool { return apperrors.IsCode(err, apperrors.CodeInvalidInput) }

// IsSchemaValidation reports an oracle answer that failed its output schema.
func IsSchemaValidation(err error) bool {
	return apperrors.IsCode(err, apperrors.CodeSchemaValidation)
}

// IsOracleUnavailable reports a transport, auth or timeout failure talking to the oracle.
func IsOracleUnavailable(err error) bool {
	return apperrors.IsCode(err, apperrors.CodeOracleUnavailable)
}

// Reject turns a post-decode check failure into the same schema_validation error
// Generate produces, for invariants struct tags cannot express.
func Reject(capability string, reason error) error {
	return apperrors.Wrap(apperrors.CodeSchemaValidation, capability+": oracle answer does not match schema", reason)
}
