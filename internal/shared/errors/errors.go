package errors

import "errors"

var (
	ErrMissingBotToken    = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrValidation         = errors.New("validation failed")
	ErrSearchNotFound     = errors.New("search not found")
	ErrNoSearches         = errors.New("no searches configured")
	ErrUserConfigNotFound = errors.New("user config not found")
)
