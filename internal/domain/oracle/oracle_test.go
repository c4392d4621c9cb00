package oracle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleWire struct {
	Name  string   `json:"name" validate:"required"`
	Score *float64 `json:"score" validate:"required,gte=0,lte=500"`
	Items []struct {
		Label string `json:"label" validate:"required"`
	} `json:"items" validate:"min=1,dive"`
}

func TestGenerateAcceptsFencedJSON(t *testing.T) {
	stub := &stubOracle{content: "```json\n{\"name\":\"x\",\"score\":0,\"items\":[{\"label\":\"a\"}]}\n```"}
	client := NewClient(stub, nil, newTestLogger())

	got, err := Generate[sampleWire](context.Background(), client, Request{Capability: "sample", Instruction: "go"})
	require.NoError(t, err)
	require.Equal(t, "x", got.Name)
	require.Equal(t, 0.0, *got.Score)
	require.Equal(t, "sample", stub.last.Capability)
}

func TestGenerateMissingFieldIsSchemaValidation(t *testing.T) {
	stub := &stubOracle{content: `{"name":"x","items":[{"label":"a"}]}`}
	client := NewClient(stub, nil, newTestLogger())

	_, err := Generate[sampleWire](context.Background(), client, Request{Capability: "sample"})
	require.Error(t, err)
	require.True(t, IsSchemaValidation(err))
	require.Contains(t, err.Error(), "score is required")
}

func TestGenerateTrimsStringsBeforeValidation(t *testing.T) {
	stub := &stubOracle{content: `{"name":"  x ","score":1,"items":[{"label":" a"}]}`}
	got, err := Generate[sampleWire](context.Background(), NewClient(stub, nil, newTestLogger()), Request{Capability: "sample"})
	require.NoError(t, err)
	require.Equal(t, "x", got.Name)
	require.Equal(t, "a", got.Items[0].Label)

	stub.content = `{"name":"   ","score":1,"items":[{"label":"a"}]}`
	_, err = Generate[sampleWire](context.Background(), NewClient(stub, nil, newTestLogger()), Request{Capability: "sample"})
	require.True(t, IsSchemaValidation(err))
	require.Contains(t, err.Error(), "name is required")
}

func TestGenerateOutOfRangeIsSchemaValidation(t *testing.T) {
	stub := &stubOracle{content: `{"name":"x","score":900,"items":[{"label":"a"}]}`}
	client := NewClient(stub, nil, newTestLogger())

	_, err := Generate[sampleWire](context.Background(), client, Request{Capability: "sample"})
	require.True(t, IsSchemaValidation(err))
	require.Contains(t, err.Error(), "score must be at most 500")
}

func TestGenerateWrongTypeIsSchemaValidation(t *testing.T) {
	stub := &stubOracle{content: `{"name":"x","score":"high","items":[]}`}
	client := NewClient(stub, nil, newTestLogger())

	_, err := Generate[sampleWire](context.Background(), client, Request{Capability: "sample"})
	require.True(t, IsSchemaValidation(err))
}

func TestGenerateNonJSONIsSchemaValidation(t *testing.T) {
	stub := &stubOracle{content: "I cannot help with that."}
	client := NewClient(stub, nil, newTestLogger())

	_, err := Generate[sampleWire](context.Background(), client, Request{Capability: "sample"})
	require.True(t, IsSchemaValidation(err))
}

func TestGenerateTransportFailureIsOracleUnavailable(t *testing.T) {
	stub := &stubOracle{err: errors.New("status=401")}
	client := NewClient(stub, nil, newTestLogger())

	_, err := Generate[sampleWire](context.Background(), client, Request{Capability: "sample"})
	require.True(t, IsOracleUnavailable(err))
	require.False(t, IsSchemaValidation(err))
}

func TestValidateInput(t *testing.T) {
	type in struct {
		Location string `json:"location" validate:"required"`
	}
	err := ValidateInput(in{})
	require.True(t, IsValidation(err))
	require.Equal(t, "location is required", err.Error())
	require.NoError(t, ValidateInput(in{Location: "Paris"}))
}

func TestObjectRequiresEveryProperty(t *testing.T) {
	schema := Object(map[string]any{"b": String("b"), "a": Number("a")})
	require.Equal(t, []string{"a", "b"}, schema["required"])
	require.Equal(t, "object", schema["type"])
}

type stubOracle struct {
	content string
	err     error
	last    Request
}

func (s *stubOracle) Complete(ctx context.Context, req Request) (Completion, error) {
	s.last = req
	if s.err != nil {
		return Completion{}, s.err
	}
	return Completion{Content: s.content}, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
