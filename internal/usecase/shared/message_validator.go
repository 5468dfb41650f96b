package shared

import (
	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// ValidateMessage strips control characters and surrounding whitespace from
// the message and validates it is not empty.
// Returns the cleaned message if valid, otherwise returns domain.ErrEmptyMessage.
// This centralizes the common pattern of:
//
//	text := domain.CleanText(in.Text)
//	if text == "" {
//	    return nil, domain.ErrEmptyMessage
//	}
func ValidateMessage(message string) (string, error) {
	cleaned := domain.CleanText(message)
	if cleaned == "" {
		return "", domain.ErrEmptyMessage
	}
	return cleaned, nil
}
