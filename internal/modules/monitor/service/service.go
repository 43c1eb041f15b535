// Package service implements the search orchestrator: one pass walks every
// enabled search in scope, runs the upstream lookup, feeds the result through
// change detection and error classification, persists the new baseline and
// routes outbound notifications.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	availability "github.com/campwatch/campsite-telegram-bot/internal/modules/availability/domain"
	availabilitysvc "github.com/campwatch/campsite-telegram-bot/internal/modules/availability/service"
	alertdomain "github.com/campwatch/campsite-telegram-bot/internal/modules/alert/domain"
	alertrepo "github.com/campwatch/campsite-telegram-bot/internal/modules/alert/repository"
	lookupdomain "github.com/campwatch/campsite-telegram-bot/internal/modules/lookup/domain"
	searchdomain "github.com/campwatch/campsite-telegram-bot/internal/modules/search/domain"
	searchrepo "github.com/campwatch/campsite-telegram-bot/internal/modules/search/repository"
	searchsvc "github.com/campwatch/campsite-telegram-bot/internal/modules/search/service"
	"github.com/campwatch/campsite-telegram-bot/internal/shared/config"
)

const dateLayout = "2006-01-02"

// Notifier delivers one outbound message to a user. Implementations own the
// formatting fallback behavior of their transport.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

// Scope selects which users a pass covers. The zero value covers all users.
type Scope struct {
	UserID string
}

// AllUsers covers every stored user configuration.
func AllUsers() Scope { return Scope{} }

// OneUser restricts the pass to a single user, as for a manual check.
func OneUser(userID string) Scope { return Scope{UserID: userID} }

// SearchOutcome is the per-search detail line of a pass summary.
type SearchOutcome struct {
	UserID     string
	SearchName string
	Reason     string
	Notified   bool
	Err        string
}

// PassSummary aggregates one orchestration pass.
type PassSummary struct {
	SearchesChecked     int
	AvailabilitiesFound int
	NotificationsSent   int
	UsersProcessed      int
	Results             []SearchOutcome
}

// Service runs scheduled and on-demand availability passes.
type Service struct {
	cfg        *config.Config
	searchRepo searchrepo.Repository
	searchSvc  *searchsvc.Service
	checker    lookupdomain.Checker
	notifier   Notifier
	alertRepo  alertrepo.Repository

	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new monitor service
func New(cfg *config.Config, searchRepo searchrepo.Repository, searchSvc *searchsvc.Service, checker lookupdomain.Checker, alertRepo alertrepo.Repository) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:        cfg,
		searchRepo: searchRepo,
		searchSvc:  searchSvc,
		checker:    checker,
		alertRepo:  alertRepo,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetNotifier sets the outbound transport. The bot is constructed after the
// monitor, so the notifier arrives late.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Start begins the scheduled monitoring loop. The loop ends when either the
// passed context is canceled or Stop is called.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.monitorLoop(ctx)
}

// Stop halts the monitoring loop and waits for an in-flight pass.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) monitorLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Duration(s.cfg.CheckInterval) * time.Second)
	defer ticker.Stop()

	// Initial pass
	s.runScheduledPass()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runScheduledPass()
		}
	}
}

func (s *Service) runScheduledPass() {
	summary, err := s.RunPass(s.ctx, AllUsers())
	if err != nil {
		slog.Error("Scheduled pass failed", "error", err)
		return
	}
	slog.Info("Scheduled pass completed",
		"searches_checked", summary.SearchesChecked,
		"availabilities_found", summary.AvailabilitiesFound,
		"notifications_sent", summary.NotificationsSent,
		"users_processed", summary.UsersProcessed)
}

// RunPass checks every enabled search in scope. A single search's lookup or
// notification failure never aborts the rest of the pass.
func (s *Service) RunPass(ctx context.Context, scope Scope) (*PassSummary, error) {
	userIDs, err := s.resolveUsers(scope)
	if err != nil {
		return nil, err
	}

	summary := &PassSummary{}
	for _, userID := range userIDs {
		userCfg, err := s.searchRepo.GetUserConfig(userID)
		if err != nil {
			slog.Error("Failed to load user config", "user_id", userID, "error", err)
			continue
		}

		processed := false
		for _, search := range userCfg.Searches {
			if !search.Enabled {
				continue
			}
			processed = true
			summary.SearchesChecked++

			outcome := s.checkSearch(ctx, userCfg, search)
			summary.Results = append(summary.Results, outcome)
			if outcome.Err == "" && outcome.Reason != string(availability.NotifyReasonNoAvailability) &&
				outcome.Reason != string(availability.NotifyReasonAvailabilityDisappeared) {
				summary.AvailabilitiesFound++
			}
			if outcome.Notified {
				summary.NotificationsSent++
			}
		}

		if processed {
			summary.UsersProcessed++
		}
	}

	return summary, nil
}

func (s *Service) resolveUsers(scope Scope) ([]string, error) {
	if scope.UserID != "" {
		return []string{scope.UserID}, nil
	}
	return s.searchRepo.ListUserIDs()
}

// checkSearch runs one search end to end: lookup, classify or decide,
// persist state, notify.
func (s *Service) checkSearch(ctx context.Context, userCfg *searchdomain.UserConfig, search searchdomain.Search) SearchOutcome {
	outcome := SearchOutcome{UserID: userCfg.UserID, SearchName: search.Name}

	result := s.lookup(ctx, search)
	result.SearchName = search.Name
	result.Priority = search.Priority

	if result.Err != "" {
		outcome.Err = result.Err
		outcome.Reason = "error"
		if !availabilitysvc.ShouldNotifyError(result.Err) {
			// Transient upstream trouble; the next scheduled pass retries.
			slog.Warn("Transient lookup error, not notifying",
				"user_id", userCfg.UserID, "search", search.Name, "error", result.Err)
			return outcome
		}
		outcome.Notified = s.send(ctx, userCfg, search.Name, "error", FormatErrorMessage(result))
		return outcome
	}

	count := 0
	if result.HasAvailabilities {
		count = availabilitysvc.ExtractSiteCount(result.Report)
	}
	decision := availabilitysvc.Decide(result.HasAvailabilities, count, search.LastAvailabilityState, s.now())
	outcome.Reason = string(decision.Reason)

	// State is persisted on every check, notifying or not, so the next
	// comparison has a correct baseline.
	if err := s.searchSvc.UpdateAvailabilityState(userCfg.UserID, search.Name, decision.NextState); err != nil {
		slog.Error("Failed to persist availability state",
			"user_id", userCfg.UserID, "search", search.Name, "error", err)
		outcome.Err = err.Error()
		return outcome
	}

	if !decision.Notify {
		slog.Debug("Skipping notification",
			"user_id", userCfg.UserID, "search", search.Name, "reason", decision.Reason)
		return outcome
	}

	message := FormatAvailabilityMessage(result, decision.Reason, decision.NextState.SiteCount)
	outcome.Notified = s.send(ctx, userCfg, search.Name, string(decision.Reason), message)
	return outcome
}

// lookup converts a search into an upstream request and executes it. Any
// failure, including a bad stored date, becomes an error-carrying result.
func (s *Service) lookup(ctx context.Context, search searchdomain.Search) searchdomain.CheckResult {
	result := searchdomain.CheckResult{
		Facilities: search.Facilities,
		DateRange:  search.StartDate + " to " + search.EndDate,
	}

	startDate, err := time.Parse(dateLayout, search.StartDate)
	if err != nil {
		result.Err = "invalid start date: " + search.StartDate
		return result
	}
	endDate, err := time.Parse(dateLayout, search.EndDate)
	if err != nil {
		result.Err = "invalid end date: " + search.EndDate
		return result
	}

	report, err := s.checker.Check(ctx, lookupdomain.Request{
		Facilities:   search.Facilities,
		StartDate:    startDate,
		EndDate:      endDate,
		CampsiteType: search.CampsiteType,
		CampsiteIDs:  search.CampsiteIDs,
		Nights:       search.Nights,
		WeekendsOnly: search.WeekendsOnly,
	})
	if err != nil {
		result.Err = err.Error()
		return result
	}

	result.Report = report.Text
	result.HasAvailabilities = report.HasAvailabilities
	return result
}

// send delivers the message when the user's Telegram channel is enabled and
// records the alert in the history. A delivery failure is logged but does not
// roll back the state update that already happened.
func (s *Service) send(ctx context.Context, userCfg *searchdomain.UserConfig, searchName, reason, message string) bool {
	if !userCfg.NotificationSettings.TelegramEnabled {
		return false
	}
	if s.notifier == nil {
		slog.Error("Notifier not configured", "user_id", userCfg.UserID)
		return false
	}

	if err := s.notifier.Notify(ctx, userCfg.UserID, message); err != nil {
		slog.Error("Failed to send notification",
			"user_id", userCfg.UserID, "search", searchName, "error", err)
		return false
	}

	if err := s.alertRepo.Append(&alertdomain.Alert{
		UserID:     userCfg.UserID,
		SearchName: searchName,
		Reason:     reason,
		Message:    message,
		SentAt:     s.now(),
	}); err != nil {
		slog.Error("Failed to record alert", "user_id", userCfg.UserID, "error", err)
	}

	slog.Info("Notification sent", "user_id", userCfg.UserID, "search", searchName, "reason", reason)
	return true
}
