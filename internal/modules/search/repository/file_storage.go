package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/campwatch/campsite-telegram-bot/internal/modules/search/domain"
	sharederrors "github.com/campwatch/campsite-telegram-bot/internal/shared/errors"
)

const (
	usersDir       = "users"
	userFilePrefix = "telegram_"
)

// FileStorage keeps one JSON document per user under <basePath>/users/,
// mirroring the upstream blob-store layout (users/telegram_<id>.json).
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

var _ Repository = (*FileStorage)(nil)

func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, usersDir), 0755); err != nil {
		return nil, oops.With("base_path", basePath).Wrapf(err, "failed to create storage directory")
	}

	return &FileStorage{basePath: basePath}, nil
}

func (s *FileStorage) userPath(userID string) string {
	return filepath.Join(s.basePath, usersDir, userFilePrefix+userID+".json")
}

func (s *FileStorage) GetUserConfig(userID string) (*domain.UserConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.userPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sharederrors.ErrUserConfigNotFound
		}
		return nil, oops.With("user_id", userID).Wrapf(err, "failed to read user config")
	}

	var cfg domain.UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, oops.With("user_id", userID).Wrapf(err, "failed to unmarshal user config")
	}

	return &cfg, nil
}

func (s *FileStorage) SaveUserConfig(cfg *domain.UserConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return oops.With("user_id", cfg.UserID).Wrapf(err, "failed to marshal user config")
	}

	return os.WriteFile(s.userPath(cfg.UserID), data, 0644)
}

func (s *FileStorage) ListUserIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.basePath, usersDir))
	if err != nil {
		return nil, oops.Wrapf(err, "failed to read users directory")
	}

	// Use lo.FilterMap to extract user IDs from file names
	ids := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, userFilePrefix) || filepath.Ext(name) != ".json" {
			return "", false
		}
		return strings.TrimSuffix(strings.TrimPrefix(name, userFilePrefix), ".json"), true
	})

	return ids, nil
}
