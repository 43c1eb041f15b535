// Package recgov implements the availability Checker against the
// recreation.gov camps API.
package recgov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/campwatch/campsite-telegram-bot/internal/modules/lookup/domain"
)

const (
	statusAvailable = "Available"
	dateKeyLayout   = "2006-01-02T15:04:05Z"
	dayLayout       = "2006-01-02"

	availableMarker   = "🏕"
	unavailableMarker = "❌"
)

// Client queries the recreation.gov month-availability endpoint per facility
// and renders the combined report consumed by the snapshot extractor.
type Client struct {
	baseURL string
	client  *http.Client
}

var _ domain.Checker = (*Client)(nil)

// New registers the API base URL and request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type campsite struct {
	Site           string            `json:"site"`
	CampsiteType   string            `json:"campsite_type"`
	Availabilities map[string]string `json:"availabilities"`
}

type monthResponse struct {
	Campsites map[string]campsite `json:"campsites"`
}

type campgroundResponse struct {
	Campground struct {
		FacilityName string `json:"facility_name"`
	} `json:"campground"`
}

// Check fetches availability for every facility in the request and builds
// the marker-line report. A failure on any facility fails the whole check;
// the orchestrator classifies the error text before surfacing it.
func (c *Client) Check(ctx context.Context, req domain.Request) (domain.Report, error) {
	countByFacility := make(map[string]int, len(req.Facilities))
	nameByFacility := make(map[string]string, len(req.Facilities))
	total := 0

	for _, facilityID := range req.Facilities {
		count, err := c.countAvailableSites(ctx, facilityID, req)
		if err != nil {
			return domain.Report{}, oops.With("facility_id", facilityID).Wrap(err)
		}
		countByFacility[facilityID] = count
		nameByFacility[facilityID] = c.facilityName(ctx, facilityID)
		total += count
	}

	var sb strings.Builder
	if total > 0 {
		fmt.Fprintf(&sb, "There are campsites available between %s and %s!!!\n",
			req.StartDate.Format(dayLayout), req.EndDate.Format(dayLayout))
	} else {
		fmt.Fprintf(&sb, "There are no campsites available between %s and %s :(\n",
			req.StartDate.Format(dayLayout), req.EndDate.Format(dayLayout))
	}
	for _, facilityID := range req.Facilities {
		marker := unavailableMarker
		if countByFacility[facilityID] > 0 {
			marker = availableMarker
		}
		fmt.Fprintf(&sb, "%s %s (%s): %d site(s) available\n",
			marker, nameByFacility[facilityID], facilityID, countByFacility[facilityID])
	}

	return domain.Report{
		Text:              strings.TrimRight(sb.String(), "\n"),
		HasAvailabilities: total > 0,
	}, nil
}

// countAvailableSites counts the sites in one facility with enough
// consecutive available nights inside the requested window.
func (c *Client) countAvailableSites(ctx context.Context, facilityID string, req domain.Request) (int, error) {
	availableNights := map[string]map[time.Time]bool{}
	typeBySite := map[string]string{}
	siteLabelByID := map[string]string{}

	for _, month := range monthsBetween(req.StartDate, req.EndDate) {
		var resp monthResponse
		endpoint := fmt.Sprintf("%s/api/camps/availability/campground/%s/month?%s",
			c.baseURL, facilityID,
			url.Values{"start_date": []string{month.Format("2006-01-02T15:04:05.000Z")}}.Encode())
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return 0, err
		}

		for siteID, site := range resp.Campsites {
			typeBySite[siteID] = site.CampsiteType
			siteLabelByID[siteID] = site.Site
			for dateKey, status := range site.Availabilities {
				if status != statusAvailable {
					continue
				}
				night, err := time.Parse(dateKeyLayout, dateKey)
				if err != nil {
					continue
				}
				if night.Before(req.StartDate) || !night.Before(req.EndDate) {
					continue
				}
				if req.WeekendsOnly && night.Weekday() != time.Friday && night.Weekday() != time.Saturday {
					continue
				}
				if availableNights[siteID] == nil {
					availableNights[siteID] = map[time.Time]bool{}
				}
				availableNights[siteID][night] = true
			}
		}
	}

	nights := req.Nights
	if nights <= 0 {
		nights = int(req.EndDate.Sub(req.StartDate).Hours() / 24)
	}
	if nights < 1 {
		nights = 1
	}

	include := map[string]bool{}
	for _, id := range req.CampsiteIDs {
		include[id] = true
	}

	count := 0
	for siteID, nightsSet := range availableNights {
		if req.CampsiteType != "" && !strings.EqualFold(typeBySite[siteID], req.CampsiteType) {
			continue
		}
		if len(include) > 0 && !include[siteID] && !include[siteLabelByID[siteID]] {
			continue
		}
		if hasConsecutiveRun(nightsSet, nights) {
			count++
		}
	}

	return count, nil
}

// hasConsecutiveRun reports whether the set contains a run of n consecutive
// calendar nights.
func hasConsecutiveRun(nightsSet map[time.Time]bool, n int) bool {
	nights := make([]time.Time, 0, len(nightsSet))
	for night := range nightsSet {
		nights = append(nights, night)
	}
	sort.Slice(nights, func(i, j int) bool { return nights[i].Before(nights[j]) })

	run := 0
	for i, night := range nights {
		if i > 0 && nights[i-1].AddDate(0, 0, 1).Equal(night) {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

// facilityName resolves the campground display name, falling back to the raw
// facility ID when the metadata endpoint is unavailable.
func (c *Client) facilityName(ctx context.Context, facilityID string) string {
	var resp campgroundResponse
	endpoint := fmt.Sprintf("%s/api/camps/campgrounds/%s", c.baseURL, facilityID)
	if err := c.getJSON(ctx, endpoint, &resp); err != nil || resp.Campground.FacilityName == "" {
		return facilityID
	}
	return resp.Campground.FacilityName
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return oops.Wrapf(err, "new request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; campwatch-bot)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return oops.Wrapf(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oops.Errorf("recreation.gov returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.Wrapf(err, "read response body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return oops.Wrapf(err, "unmarshal response")
	}
	return nil
}

// monthsBetween lists the first day of every month touched by [start, end).
func monthsBetween(start, end time.Time) []time.Time {
	var months []time.Time
	month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !month.After(end) {
		months = append(months, month)
		month = month.AddDate(0, 1, 0)
	}
	if len(months) > 1 {
		// end is exclusive: drop a trailing month that starts exactly at end
		last := months[len(months)-1]
		if !last.Before(end) {
			months = months[:len(months)-1]
		}
	}
	return months
}
