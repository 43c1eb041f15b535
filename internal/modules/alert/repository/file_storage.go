package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"

	"github.com/campwatch/campsite-telegram-bot/internal/modules/alert/domain"
)

const alertsDir = "alerts"

// FileStorage keeps one JSON file per user holding that user's most recent
// alerts, newest first, truncated to maxHistory entries.
type FileStorage struct {
	basePath   string
	maxHistory int
	mu         sync.Mutex
}

var _ Repository = (*FileStorage)(nil)

func NewFileStorage(basePath string, maxHistory int) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, alertsDir), 0755); err != nil {
		return nil, oops.With("base_path", basePath).Wrapf(err, "failed to create alerts directory")
	}
	if maxHistory <= 0 {
		maxHistory = 50
	}

	return &FileStorage{basePath: basePath, maxHistory: maxHistory}, nil
}

func (s *FileStorage) userPath(userID string) string {
	return filepath.Join(s.basePath, alertsDir, userID+".json")
}

func (s *FileStorage) Append(alert *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err := s.read(alert.UserID)
	if err != nil {
		return err
	}

	alerts = append([]*domain.Alert{alert}, alerts...)
	if len(alerts) > s.maxHistory {
		alerts = alerts[:s.maxHistory]
	}

	data, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return oops.With("user_id", alert.UserID).Wrapf(err, "failed to marshal alerts")
	}

	return os.WriteFile(s.userPath(alert.UserID), data, 0644)
}

func (s *FileStorage) Recent(userID string, limit int) ([]*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err := s.read(userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

func (s *FileStorage) read(userID string) ([]*domain.Alert, error) {
	data, err := os.ReadFile(s.userPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Alert{}, nil
		}
		return nil, oops.With("user_id", userID).Wrapf(err, "failed to read alerts")
	}

	var alerts []*domain.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, oops.With("user_id", userID).Wrapf(err, "failed to unmarshal alerts")
	}
	return alerts, nil
}
