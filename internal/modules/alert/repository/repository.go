package repository

import (
	"github.com/campwatch/campsite-telegram-bot/internal/modules/alert/domain"
)

// Repository defines the interface for the per-user alert history.
type Repository interface {
	Append(alert *domain.Alert) error
	Recent(userID string, limit int) ([]*domain.Alert, error)
}
