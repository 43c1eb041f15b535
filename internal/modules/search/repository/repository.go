package repository

import (
	"github.com/campwatch/campsite-telegram-bot/internal/modules/search/domain"
)

// Repository defines the interface for per-user configuration persistence.
// This abstraction allows easy replacement of storage implementations
// (e.g., FileStorage -> S3 -> PostgreSQL)
type Repository interface {
	GetUserConfig(userID string) (*domain.UserConfig, error)
	SaveUserConfig(cfg *domain.UserConfig) error
	ListUserIDs() ([]string, error)
}
