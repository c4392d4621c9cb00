package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
	"github.com/yanqian/breatheeasy/pkg/metrics"
)

// Oracle answers structured completions with a Gemini text model.
type Oracle struct {
	models contentGenerator
	model  string
}

// NewOracle binds the client to a model.
func NewOracle(client *genai.Client, model string) *Oracle {
	return &Oracle{models: client.Models, model: model}
}

// Complete implements oracle.Oracle.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (oracle.Completion, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toSchema(req.Schema)
	}

	resp, err := o.models.GenerateContent(ctx, o.model, []*genai.Content{
		genai.NewContentFromText(req.Instruction, genai.RoleUser),
	}, cfg)
	if err != nil {
		return oracle.Completion{}, err
	}
	content, err := firstCandidate(resp)
	if err != nil {
		return oracle.Completion{}, err
	}

	var text strings.Builder
	for _, part := range content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	return oracle.Completion{Content: text.String(), Usage: usageOf(resp)}, nil
}

func usageOf(resp *genai.GenerateContentResponse) metrics.TokenUsage {
	if resp.UsageMetadata == nil {
		return metrics.TokenUsage{}
	}
	return metrics.TokenUsage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}
