package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alertdomain "github.com/campwatch/campsite-telegram-bot/internal/modules/alert/domain"
	lookupdomain "github.com/campwatch/campsite-telegram-bot/internal/modules/lookup/domain"
	searchdomain "github.com/campwatch/campsite-telegram-bot/internal/modules/search/domain"
	searchsvc "github.com/campwatch/campsite-telegram-bot/internal/modules/search/service"
	"github.com/campwatch/campsite-telegram-bot/internal/shared/config"
	sharederrors "github.com/campwatch/campsite-telegram-bot/internal/shared/errors"
)

type memorySearchRepo struct {
	configs map[string]*searchdomain.UserConfig
}

func newMemorySearchRepo() *memorySearchRepo {
	return &memorySearchRepo{configs: map[string]*searchdomain.UserConfig{}}
}

func (r *memorySearchRepo) GetUserConfig(userID string) (*searchdomain.UserConfig, error) {
	cfg, ok := r.configs[userID]
	if !ok {
		return nil, sharederrors.ErrUserConfigNotFound
	}
	clone := *cfg
	clone.Searches = append([]searchdomain.Search(nil), cfg.Searches...)
	return &clone, nil
}

func (r *memorySearchRepo) SaveUserConfig(cfg *searchdomain.UserConfig) error {
	clone := *cfg
	clone.Searches = append([]searchdomain.Search(nil), cfg.Searches...)
	r.configs[cfg.UserID] = &clone
	return nil
}

func (r *memorySearchRepo) ListUserIDs() ([]string, error) {
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	return ids, nil
}

type memoryAlertRepo struct {
	alerts []*alertdomain.Alert
}

func (r *memoryAlertRepo) Append(alert *alertdomain.Alert) error {
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *memoryAlertRepo) Recent(userID string, limit int) ([]*alertdomain.Alert, error) {
	return r.alerts, nil
}

// fakeChecker returns a canned report or error per facility ID.
type fakeChecker struct {
	reports map[string]lookupdomain.Report
	errs    map[string]error
}

func (c *fakeChecker) Check(_ context.Context, req lookupdomain.Request) (lookupdomain.Report, error) {
	facilityID := req.Facilities[0]
	if err, ok := c.errs[facilityID]; ok {
		return lookupdomain.Report{}, err
	}
	return c.reports[facilityID], nil
}

type recordingNotifier struct {
	messages []string
	userIDs  []string
	fail     bool
}

func (n *recordingNotifier) Notify(_ context.Context, userID, text string) error {
	if n.fail {
		return errors.New("telegram unreachable")
	}
	n.userIDs = append(n.userIDs, userID)
	n.messages = append(n.messages, text)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		TelegramBotToken: "test-token",
		CheckInterval:    1800,
		AlertHistorySize: 50,
	}
}

func seedUser(t *testing.T, repo *memorySearchRepo, userID string, searches ...searchdomain.Search) {
	t.Helper()
	cfg := searchdomain.NewUserConfig(userID)
	cfg.Searches = searches
	require.NoError(t, repo.SaveUserConfig(cfg))
}

func enabledSearch(name, facilityID string) searchdomain.Search {
	return searchdomain.Search{
		Name:       name,
		Enabled:    true,
		Facilities: []string{facilityID},
		StartDate:  "2025-07-04",
		EndDate:    "2025-07-06",
		Priority:   searchdomain.PriorityNormal,
	}
}

func newTestMonitor(repo *memorySearchRepo, checker lookupdomain.Checker) (*Service, *recordingNotifier, *memoryAlertRepo) {
	alertRepo := &memoryAlertRepo{}
	notifier := &recordingNotifier{}
	svc := New(testConfig(), repo, searchsvc.New(repo), checker, alertRepo)
	svc.SetNotifier(notifier)
	svc.now = func() time.Time {
		return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc, notifier, alertRepo
}

func TestRunPassFirstAvailability(t *testing.T) {
	repo := newMemorySearchRepo()
	seedUser(t, repo, "1001", enabledSearch("Yosemite Trip", "232448"))

	checker := &fakeChecker{reports: map[string]lookupdomain.Report{
		"232448": {
			Text:              "There are campsites available!!!\n🏕 Upper Pines (232448): 3 site(s) available",
			HasAvailabilities: true,
		},
	}}
	svc, notifier, alertRepo := newTestMonitor(repo, checker)

	summary, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SearchesChecked)
	assert.Equal(t, 1, summary.AvailabilitiesFound)
	assert.Equal(t, 1, summary.NotificationsSent)
	assert.Equal(t, 1, summary.UsersProcessed)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "First availability found")
	assert.Contains(t, notifier.messages[0], "YOSEMITE TRIP")
	assert.Contains(t, notifier.messages[0], "recreation.gov/camping/campgrounds/232448")

	// State persisted with the extracted count
	cfg, err := repo.GetUserConfig("1001")
	require.NoError(t, err)
	state := cfg.Searches[0].LastAvailabilityState
	require.NotNil(t, state)
	assert.True(t, state.HasSites)
	assert.Equal(t, 3, state.SiteCount)

	require.Len(t, alertRepo.alerts, 1)
	assert.Equal(t, "first_availability_found", alertRepo.alerts[0].Reason)
}

func TestRunPassUnchangedIsSilent(t *testing.T) {
	repo := newMemorySearchRepo()
	seedUser(t, repo, "1001", enabledSearch("Yosemite Trip", "232448"))

	checker := &fakeChecker{reports: map[string]lookupdomain.Report{
		"232448": {
			Text:              "🏕 Upper Pines (232448): 3 site(s) available",
			HasAvailabilities: true,
		},
	}}
	svc, notifier, _ := newTestMonitor(repo, checker)

	_, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)
	summary, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)

	// First pass notified, second identical one did not
	assert.Len(t, notifier.messages, 1)
	assert.Equal(t, 0, summary.NotificationsSent)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "availability_unchanged", summary.Results[0].Reason)
}

func TestRunPassDisappearanceResetsBaseline(t *testing.T) {
	repo := newMemorySearchRepo()
	seedUser(t, repo, "1001", enabledSearch("Yosemite Trip", "232448"))

	checker := &fakeChecker{reports: map[string]lookupdomain.Report{
		"232448": {
			Text:              "🏕 Upper Pines (232448): 2 site(s) available",
			HasAvailabilities: true,
		},
	}}
	svc, notifier, _ := newTestMonitor(repo, checker)

	_, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)

	// Sites get claimed: no notification, but the baseline resets
	checker.reports["232448"] = lookupdomain.Report{Text: "❌ Upper Pines (232448): 0 site(s) available"}
	summary, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NotificationsSent)

	cfg, err := repo.GetUserConfig("1001")
	require.NoError(t, err)
	state := cfg.Searches[0].LastAvailabilityState
	require.NotNil(t, state)
	assert.False(t, state.HasSites)
	assert.Zero(t, state.SiteCount)

	// Re-appearance counts as new, not unchanged
	checker.reports["232448"] = lookupdomain.Report{
		Text:              "🏕 Upper Pines (232448): 2 site(s) available",
		HasAvailabilities: true,
	}
	summary, err = svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NotificationsSent)
	assert.Contains(t, notifier.messages[len(notifier.messages)-1], "Availability just appeared")
}

func TestRunPassTransientErrorSuppressed(t *testing.T) {
	repo := newMemorySearchRepo()
	seedUser(t, repo, "1001", enabledSearch("Yosemite Trip", "232448"))

	checker := &fakeChecker{errs: map[string]error{
		"232448": errors.New("recreation.gov returned 429 Too Many Requests"),
	}}
	svc, notifier, _ := newTestMonitor(repo, checker)

	summary, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)

	assert.Empty(t, notifier.messages)
	assert.Equal(t, 0, summary.NotificationsSent)

	// Availability state untouched by errors
	cfg, err := repo.GetUserConfig("1001")
	require.NoError(t, err)
	assert.Nil(t, cfg.Searches[0].LastAvailabilityState)
}

func TestRunPassSurfacableErrorNotifies(t *testing.T) {
	repo := newMemorySearchRepo()
	seedUser(t, repo, "1001", enabledSearch("Yosemite Trip", "99999"))

	checker := &fakeChecker{errs: map[string]error{
		"99999": errors.New("invalid park ID 99999"),
	}}
	svc, notifier, _ := newTestMonitor(repo, checker)

	summary, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NotificationsSent)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Error in search: Yosemite Trip")

	cfg, err := repo.GetUserConfig("1001")
	require.NoError(t, err)
	assert.Nil(t, cfg.Searches[0].LastAvailabilityState)
}

func TestRunPassIsolatesFailures(t *testing.T) {
	repo := newMemorySearchRepo()
	seedUser(t, repo, "1001",
		enabledSearch("Broken", "99999"),
		enabledSearch("Working", "232448"))

	checker := &fakeChecker{
		errs: map[string]error{"99999": errors.New("upstream exploded")},
		reports: map[string]lookupdomain.Report{
			"232448": {
				Text:              "🏕 Upper Pines (232448): 4 site(s) available",
				HasAvailabilities: true,
			},
		},
	}
	svc, notifier, _ := newTestMonitor(repo, checker)

	summary, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SearchesChecked)
	assert.Equal(t, 1, summary.AvailabilitiesFound)
	// Error alert plus availability alert
	assert.Equal(t, 2, summary.NotificationsSent)
	assert.Len(t, notifier.messages, 2)
}

func TestRunPassSkipsDisabledSearches(t *testing.T) {
	repo := newMemorySearchRepo()
	disabled := enabledSearch("Paused", "232448")
	disabled.Enabled = false
	seedUser(t, repo, "1001", disabled)

	svc, notifier, _ := newTestMonitor(repo, &fakeChecker{})

	summary, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.SearchesChecked)
	assert.Equal(t, 0, summary.UsersProcessed)
	assert.Empty(t, notifier.messages)
}

func TestRunPassScopedToOneUser(t *testing.T) {
	repo := newMemorySearchRepo()
	seedUser(t, repo, "1001", enabledSearch("Mine", "232448"))
	seedUser(t, repo, "2002", enabledSearch("Theirs", "232448"))

	checker := &fakeChecker{reports: map[string]lookupdomain.Report{
		"232448": {
			Text:              "🏕 Upper Pines (232448): 2 site(s) available",
			HasAvailabilities: true,
		},
	}}
	svc, notifier, _ := newTestMonitor(repo, checker)

	summary, err := svc.RunPass(context.Background(), OneUser("1001"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SearchesChecked)
	assert.Equal(t, 1, summary.UsersProcessed)
	require.Len(t, notifier.userIDs, 1)
	assert.Equal(t, "1001", notifier.userIDs[0])
}

func TestRunPassNotificationFailureKeepsState(t *testing.T) {
	repo := newMemorySearchRepo()
	seedUser(t, repo, "1001", enabledSearch("Yosemite Trip", "232448"))

	checker := &fakeChecker{reports: map[string]lookupdomain.Report{
		"232448": {
			Text:              "🏕 Upper Pines (232448): 3 site(s) available",
			HasAvailabilities: true,
		},
	}}
	alertRepo := &memoryAlertRepo{}
	svc := New(testConfig(), repo, searchsvc.New(repo), checker, alertRepo)
	svc.SetNotifier(&recordingNotifier{fail: true})
	svc.now = time.Now

	summary, err := svc.RunPass(context.Background(), AllUsers())
	require.NoError(t, err)

	// Delivery failed, but state is already the source of truth
	assert.Equal(t, 0, summary.NotificationsSent)
	cfg, err := repo.GetUserConfig("1001")
	require.NoError(t, err)
	require.NotNil(t, cfg.Searches[0].LastAvailabilityState)
	assert.Equal(t, 3, cfg.Searches[0].LastAvailabilityState.SiteCount)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	repo := newMemorySearchRepo()
	svc, _, _ := newTestMonitor(repo, &fakeChecker{})

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		svc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor loop kept running after context cancellation")
	}
}
