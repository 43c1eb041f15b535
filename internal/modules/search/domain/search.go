package domain

import (
	"time"

	availability "github.com/campwatch/campsite-telegram-bot/internal/modules/availability/domain"
)

// Search is a user's standing request to monitor one or more facilities over
// a date range. LastAvailabilityState is owned by the change-detection engine
// and is nil until the first check completes.
type Search struct {
	Name                  string              `json:"name"`
	Enabled               bool                `json:"enabled"`
	Facilities            []string            `json:"facilities"`
	StartDate             string              `json:"start_date"`
	EndDate               string              `json:"end_date"`
	CampsiteType          string              `json:"campsite_type,omitempty"`
	CampsiteIDs           []string            `json:"campsite_ids,omitempty"`
	Nights                int                 `json:"nights"`
	WeekendsOnly          bool                `json:"weekends_only"`
	Priority              Priority            `json:"priority"`
	CreatedAt             time.Time           `json:"created_at"`
	LastAvailabilityState *availability.State `json:"last_availability_state"`
}

// NotificationSettings selects which transports a user's alerts go to.
type NotificationSettings struct {
	TelegramEnabled bool `json:"telegram_enabled"`
	PushoverEnabled bool `json:"pushover_enabled"`
}

// UserConfig is the persisted per-user document: notification preferences
// plus the ordered collection of that user's searches.
type UserConfig struct {
	Version              string               `json:"version"`
	UserID               string               `json:"user_id"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
	Searches             []Search             `json:"searches"`
}

// NewUserConfig returns the default configuration created lazily on a user's
// first interaction.
func NewUserConfig(userID string) *UserConfig {
	return &UserConfig{
		Version: "1.0",
		UserID:  userID,
		NotificationSettings: NotificationSettings{
			TelegramEnabled: true,
			PushoverEnabled: false,
		},
		Searches: []Search{},
	}
}

// CheckResult is produced once per search per orchestration pass and consumed
// immediately by the notifier; it is never persisted.
type CheckResult struct {
	SearchName        string
	Report            string
	HasAvailabilities bool
	Facilities        []string
	DateRange         string
	Priority          Priority
	Err               string
}
