package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// AskAssistantInput contains the parameters for asking the assistant.
type AskAssistantInput struct {
	UserID   string
	Question string
}

// AskAssistantOutput contains the assistant's answer.
type AskAssistantOutput struct {
	Answer string
}

// AskAssistant is the use case for answering a question with the AI assistant.
// It never touches the user's tasks.
type AskAssistant struct {
	assistant domain.Assistant
	log       domain.Logger
}

// NewAskAssistant creates a new AskAssistant use case.
// A nil assistant makes every call fail with domain.ErrExternalUnavailable.
func NewAskAssistant(assistant domain.Assistant, log domain.Logger) *AskAssistant {
	return &AskAssistant{
		assistant: assistant,
		log:       orNop(log),
	}
}

// Execute asks the question.
// Errors wrap domain.ErrExternalUnavailable.
func (uc *AskAssistant) Execute(ctx context.Context, in AskAssistantInput) (*AskAssistantOutput, error) {
	if uc.assistant == nil {
		return nil, fmt.Errorf("assistant not configured: %w", domain.ErrExternalUnavailable)
	}

	answer, err := uc.assistant.Complete(ctx, in.Question)
	if err != nil {
		uc.log.Warn(in.UserID, "assistant", err.Error())
		return nil, fmt.Errorf("complete: %w: %w", domain.ErrExternalUnavailable, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("empty answer: %w", domain.ErrExternalUnavailable)
	}
	return &AskAssistantOutput{Answer: answer}, nil
}
