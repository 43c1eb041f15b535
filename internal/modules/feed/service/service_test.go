package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campwatch/campsite-telegram-bot/internal/modules/alert/domain"
)

type memoryAlertRepo struct {
	alerts map[string][]*domain.Alert
}

func (r *memoryAlertRepo) Append(alert *domain.Alert) error {
	if r.alerts == nil {
		r.alerts = map[string][]*domain.Alert{}
	}
	r.alerts[alert.UserID] = append([]*domain.Alert{alert}, r.alerts[alert.UserID]...)
	return nil
}

func (r *memoryAlertRepo) Recent(userID string, limit int) ([]*domain.Alert, error) {
	alerts := r.alerts[userID]
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

func TestGenerateFeedEmpty(t *testing.T) {
	svc := New(&memoryAlertRepo{})

	feed, err := svc.GenerateFeed("123", "http://localhost:8080")
	require.NoError(t, err)

	assert.Equal(t, "Campsite Alerts", feed.Title)
	assert.Equal(t, "http://localhost:8080/rss/123", feed.Link.Href)
	assert.Empty(t, feed.Items)
}

func TestGenerateFeedItems(t *testing.T) {
	repo := &memoryAlertRepo{}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(&domain.Alert{
		UserID:     "123",
		SearchName: "Yosemite Trip",
		Reason:     "first_availability_found",
		Message:    "3 sites available",
		SentAt:     base,
	}))
	require.NoError(t, repo.Append(&domain.Alert{
		UserID:     "123",
		SearchName: "Joshua Tree",
		Reason:     "significant_increase",
		Message:    "10 sites available",
		SentAt:     base.Add(time.Hour),
	}))

	feed, err := New(repo).GenerateFeed("123", "http://localhost:8080")
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)

	// Newest alert is the first item and sets the feed update time
	assert.Equal(t, "Joshua Tree: significant increase", feed.Items[0].Title)
	assert.Equal(t, "Yosemite Trip: first availability found", feed.Items[1].Title)
	assert.Equal(t, base.Add(time.Hour), feed.Updated)
	assert.Equal(t, "10 sites available", feed.Items[0].Description)
	assert.NotEmpty(t, feed.Items[0].Id)
	assert.NotEqual(t, feed.Items[0].Id, feed.Items[1].Id)
}

func TestGenerateFeedEscapesContent(t *testing.T) {
	repo := &memoryAlertRepo{}
	require.NoError(t, repo.Append(&domain.Alert{
		UserID:     "123",
		SearchName: "Yosemite Trip",
		Reason:     "new_availability",
		Message:    `sites <b>available</b> & "ready"`,
		SentAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}))

	feed, err := New(repo).GenerateFeed("123", "http://localhost:8080")
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)

	assert.Contains(t, feed.Items[0].Content, "&lt;b&gt;available&lt;/b&gt;")
	assert.Contains(t, feed.Items[0].Content, "&amp;")
	assert.NotContains(t, feed.Items[0].Content, "<b>")
}

type failingAlertRepo struct{}

func (failingAlertRepo) Append(*domain.Alert) error { return errors.New("disk full") }

func (failingAlertRepo) Recent(string, int) ([]*domain.Alert, error) {
	return nil, errors.New("disk full")
}

func TestGenerateFeedRepoError(t *testing.T) {
	_, err := New(failingAlertRepo{}).GenerateFeed("123", "http://localhost:8080")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load alerts")
	assert.Contains(t, err.Error(), "disk full")
}
