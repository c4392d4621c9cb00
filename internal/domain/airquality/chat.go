package airquality

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
	apperrors "github.com/yanqian/breatheeasy/pkg/errors"
)

const capabilityChat = "chat"

type chatWire struct {
	Response string `json:"response" validate:"required"`
}

var chatSchema = oracle.Object(map[string]any{
	"response": oracle.String("The assistant's answer."),
})

func (s *service) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := oracle.ValidateInput(req); err != nil {
		return ChatResponse{}, err
	}
	if budget := s.cfg.MaxChatTokens; budget > 0 && s.tokens != nil {
		if n := s.tokens.Count(req.Message); n > budget {
			return ChatResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("message is %d tokens, limit is %d", n, budget), nil)
		}
	}

	wire, err := oracle.Generate[chatWire](ctx, s.client, s.request(capabilityChat,
		"You are the BreatheEasy assistant. Give helpful, concise and friendly answers about air quality, pollution and related health topics.",
		"User message: "+req.Message, chatSchema))
	if err != nil {
		return ChatResponse{}, err
	}
	answer := strings.TrimSpace(wire.Response)
	if answer == "" {
		return ChatResponse{}, oracle.Reject(capabilityChat, errors.New("response is blank"))
	}
	return ChatResponse{Response: answer}, nil
}
