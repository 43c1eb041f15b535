package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availability "github.com/campwatch/campsite-telegram-bot/internal/modules/availability/domain"
	"github.com/campwatch/campsite-telegram-bot/internal/modules/search/domain"
	sharederrors "github.com/campwatch/campsite-telegram-bot/internal/shared/errors"
)

func TestFileStorageRoundTrip(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	cfg := domain.NewUserConfig("1001")
	cfg.Searches = append(cfg.Searches, domain.Search{
		Name:       "Yosemite Trip",
		Enabled:    true,
		Facilities: []string{"232448"},
		StartDate:  "2025-07-04",
		EndDate:    "2025-07-06",
		Nights:     2,
		Priority:   domain.PriorityNormal,
		CreatedAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		LastAvailabilityState: &availability.State{
			HasSites:    true,
			SiteCount:   3,
			LastChecked: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	})

	require.NoError(t, storage.SaveUserConfig(cfg))

	loaded, err := storage.GetUserConfig("1001")
	require.NoError(t, err)
	assert.Equal(t, "1001", loaded.UserID)
	require.Len(t, loaded.Searches, 1)
	require.NotNil(t, loaded.Searches[0].LastAvailabilityState)
	assert.Equal(t, 3, loaded.Searches[0].LastAvailabilityState.SiteCount)
	assert.True(t, loaded.NotificationSettings.TelegramEnabled)
}

func TestFileStorageOverwriteIsIdempotent(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	cfg := domain.NewUserConfig("1001")
	require.NoError(t, storage.SaveUserConfig(cfg))
	cfg.Searches = append(cfg.Searches, domain.Search{Name: "One"})
	require.NoError(t, storage.SaveUserConfig(cfg))
	require.NoError(t, storage.SaveUserConfig(cfg))

	loaded, err := storage.GetUserConfig("1001")
	require.NoError(t, err)
	assert.Len(t, loaded.Searches, 1)
}

func TestFileStorageNotFound(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = storage.GetUserConfig("9999")
	assert.ErrorIs(t, err, sharederrors.ErrUserConfigNotFound)
}

func TestFileStorageListUserIDs(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	ids, err := storage.ListUserIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, storage.SaveUserConfig(domain.NewUserConfig("1001")))
	require.NoError(t, storage.SaveUserConfig(domain.NewUserConfig("2002")))

	ids, err = storage.ListUserIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1001", "2002"}, ids)
}
