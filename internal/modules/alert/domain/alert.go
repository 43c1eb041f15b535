package domain

import "time"

// Alert records one notification that was actually sent to a user. The
// bounded per-user history backs the RSS feed.
type Alert struct {
	UserID     string    `json:"user_id"`
	SearchName string    `json:"search_name"`
	Reason     string    `json:"reason"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}
