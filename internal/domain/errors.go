package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrFavoriteNotFound    = errors.New("favorite task not found")
	ErrMalformedSync       = errors.New("malformed sync payload")
	ErrExternalUnavailable = errors.New("external service unavailable")
	ErrEmptyMessage        = errors.New("message cannot be empty")
	ErrInvalidPostback     = errors.New("invalid postback data")
	ErrInvalidTicket       = errors.New("invalid or expired view ticket")
	ErrUnknownEvent        = errors.New("unknown event kind")
	ErrConfigExists        = errors.New("config file already exists")
)
