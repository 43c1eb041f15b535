// Package service implements the subscription manager: CRUD over a user's
// search definitions, always persisting the full updated configuration
// before reporting success.
package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samber/oops"

	availability "github.com/campwatch/campsite-telegram-bot/internal/modules/availability/domain"
	"github.com/campwatch/campsite-telegram-bot/internal/modules/search/domain"
	"github.com/campwatch/campsite-telegram-bot/internal/modules/search/repository"
	sharederrors "github.com/campwatch/campsite-telegram-bot/internal/shared/errors"
)

const dateLayout = "2006-01-02"

var facilityURLPattern = regexp.MustCompile(`recreation\.gov/camping/campgrounds/(\d+)`)

// Service handles search subscription business logic
type Service struct {
	repo repository.Repository
	now  func() time.Time
}

// New creates a new subscription service
func New(repo repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// EnsureUserConfig loads a user's configuration, lazily creating and
// persisting the default one on first interaction.
func (s *Service) EnsureUserConfig(userID string) (*domain.UserConfig, error) {
	cfg, err := s.repo.GetUserConfig(userID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sharederrors.ErrUserConfigNotFound) {
		return nil, err
	}

	cfg = domain.NewUserConfig(userID)
	if err := s.repo.SaveUserConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseFacilityInput accepts a numeric facility ID or a recreation.gov
// campground URL and returns the bare ID. Facility names are not supported.
func ParseFacilityInput(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input != "" && strings.IndexFunc(input, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
		return input, true
	}
	if m := facilityURLPattern.FindStringSubmatch(input); m != nil {
		return m[1], true
	}
	return "", false
}

// Add validates and appends a new search to the user's configuration.
func (s *Service) Add(userID, name, startDate, endDate, facilityID string) (*domain.Search, error) {
	errCtx := oops.With("user_id", userID, "search", name)

	startDT, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, errCtx.Wrapf(sharederrors.ErrValidation, "invalid start date %q, expected YYYY-MM-DD", startDate)
	}
	endDT, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, errCtx.Wrapf(sharederrors.ErrValidation, "invalid end date %q, expected YYYY-MM-DD", endDate)
	}
	if !startDT.Before(endDT) {
		return nil, errCtx.Wrapf(sharederrors.ErrValidation, "end date must be after start date")
	}

	// Compare calendar dates so a start of "today" is accepted for the
	// whole local day
	if startDT.Format(dateLayout) < s.now().Format(dateLayout) {
		return nil, errCtx.Wrapf(sharederrors.ErrValidation, "start date must be today or in the future")
	}

	cfg, err := s.EnsureUserConfig(userID)
	if err != nil {
		return nil, err
	}

	// Duplicate names are rejected case-insensitively
	duplicate := lo.ContainsBy(cfg.Searches, func(existing domain.Search) bool {
		return strings.EqualFold(existing.Name, name)
	})
	if duplicate {
		return nil, errCtx.Wrapf(sharederrors.ErrValidation, "a search named %q already exists", name)
	}

	search := domain.Search{
		Name:         name,
		Enabled:      true,
		Facilities:   []string{facilityID},
		StartDate:    startDate,
		EndDate:      endDate,
		CampsiteIDs:  []string{},
		Nights:       int(endDT.Sub(startDT).Hours() / 24),
		WeekendsOnly: false,
		Priority:     domain.PriorityNormal,
		CreatedAt:    s.now(),
	}

	cfg.Searches = append(cfg.Searches, search)
	if err := s.repo.SaveUserConfig(cfg); err != nil {
		return nil, err
	}

	return &search, nil
}

// List returns the user's searches unmodified.
func (s *Service) List(userID string) ([]domain.Search, error) {
	cfg, err := s.EnsureUserConfig(userID)
	if err != nil {
		return nil, err
	}
	return cfg.Searches, nil
}

// Toggle flips the enabled flag of the named search (case-insensitive) and
// returns its new state along with the originally cased name.
func (s *Service) Toggle(userID, name string) (enabled bool, actualName string, err error) {
	cfg, err := s.EnsureUserConfig(userID)
	if err != nil {
		return false, "", err
	}

	for i := range cfg.Searches {
		if strings.EqualFold(cfg.Searches[i].Name, name) {
			cfg.Searches[i].Enabled = !cfg.Searches[i].Enabled
			if err := s.repo.SaveUserConfig(cfg); err != nil {
				return false, "", err
			}
			return cfg.Searches[i].Enabled, cfg.Searches[i].Name, nil
		}
	}

	return false, "", oops.With("user_id", userID, "search", name).Wrap(sharederrors.ErrSearchNotFound)
}

// Delete removes the named search (case-insensitive).
func (s *Service) Delete(userID, name string) (actualName string, err error) {
	cfg, err := s.EnsureUserConfig(userID)
	if err != nil {
		return "", err
	}

	for _, existing := range cfg.Searches {
		if strings.EqualFold(existing.Name, name) {
			actualName = existing.Name
			break
		}
	}
	if actualName == "" {
		return "", oops.With("user_id", userID, "search", name).Wrap(sharederrors.ErrSearchNotFound)
	}

	cfg.Searches = lo.Filter(cfg.Searches, func(existing domain.Search, _ int) bool {
		return !strings.EqualFold(existing.Name, name)
	})

	if err := s.repo.SaveUserConfig(cfg); err != nil {
		return "", err
	}
	return actualName, nil
}

// DeleteAll clears every search the user has.
func (s *Service) DeleteAll(userID string) (int, error) {
	cfg, err := s.EnsureUserConfig(userID)
	if err != nil {
		return 0, err
	}

	count := len(cfg.Searches)
	if count == 0 {
		return 0, oops.With("user_id", userID).Wrap(sharederrors.ErrNoSearches)
	}

	cfg.Searches = []domain.Search{}
	if err := s.repo.SaveUserConfig(cfg); err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateAvailabilityState writes back the change-detection engine's output
// for one search. Called after every check regardless of the notify decision
// so the next comparison has a correct baseline.
func (s *Service) UpdateAvailabilityState(userID, searchName string, state availability.State) error {
	cfg, err := s.repo.GetUserConfig(userID)
	if err != nil {
		return err
	}

	for i := range cfg.Searches {
		if cfg.Searches[i].Name == searchName {
			cfg.Searches[i].LastAvailabilityState = &state
			return s.repo.SaveUserConfig(cfg)
		}
	}

	return oops.With("user_id", userID, "search", searchName).Wrap(sharederrors.ErrSearchNotFound)
}
