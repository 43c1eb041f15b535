package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/samber/oops"

	alertrepo "github.com/campwatch/campsite-telegram-bot/internal/modules/alert/repository"
)

const feedItemLimit = 50

type Service struct {
	alertRepo alertrepo.Repository
}

func New(alertRepo alertrepo.Repository) *Service {
	return &Service{
		alertRepo: alertRepo,
	}
}

// GenerateFeed builds the RSS feed of a user's recent campsite alerts.
func (s *Service) GenerateFeed(userID string, baseURL string) (*feeds.Feed, error) {
	alerts, err := s.alertRepo.Recent(userID, feedItemLimit)
	if err != nil {
		return nil, oops.With("user_id", userID).Wrapf(err, "failed to load alerts")
	}

	feed := &feeds.Feed{
		Title:       "Campsite Alerts",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss/%s", baseURL, userID)},
		Description: "Recent campsite availability alerts",
		Created:     time.Now(),
	}
	if len(alerts) > 0 {
		feed.Updated = alerts[0].SentAt
	}

	var items []*feeds.Item
	for _, alert := range alerts {
		description := alert.Message
		if description == "" {
			description = "No alert content"
		}

		item := &feeds.Item{
			Title:       fmt.Sprintf("%s: %s", alert.SearchName, strings.ReplaceAll(alert.Reason, "_", " ")),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss/%s", baseURL, userID)},
			Description: description,
			Content:     fmt.Sprintf("<p>%s</p>", escapeHTML(description)),
			Created:     alert.SentAt,
			Id:          fmt.Sprintf("%s-%s-%d", userID, alert.SearchName, alert.SentAt.Unix()),
		}
		items = append(items, item)
	}

	feed.Items = items
	return feed, nil
}

func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
