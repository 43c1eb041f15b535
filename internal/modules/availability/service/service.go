// Package service holds the availability change-detection policy: deciding
// whether a fresh snapshot of a search warrants notifying the user given the
// previously persisted baseline. Everything here is a pure function so the
// policy can be exercised without any transport or storage in place.
package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/campwatch/campsite-telegram-bot/internal/modules/availability/domain"
)

// SiteMarker prefixes every per-facility line of a successful availability
// report.
const SiteMarker = "🏕"

// Thresholds for the significant-increase rule. Small fluctuations are
// suppressed; only a doubling with margin or a flat jump is notify-worthy.
const (
	increaseMargin = 2
	flatJump       = 5
)

// ExtractSiteCount sums the available-site counts out of a human-readable
// availability report. Qualifying lines contain both the site marker and a
// colon, e.g. "🏕 Park A (232448): 3 site(s) available". A qualifying line
// without a leading integer after the colon contributes 0; malformed input
// never produces an error.
func ExtractSiteCount(report string) int {
	if report == "" {
		return 0
	}

	total := 0
	for _, line := range strings.Split(report, "\n") {
		if !strings.Contains(line, SiteMarker) {
			continue
		}
		_, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
			total += n
		}
	}

	return total
}

// Decide compares the current snapshot against the previous baseline and
// returns the notify decision together with the next state to persist. The
// next state must be written back on every check regardless of the notify
// decision so the following comparison has a correct baseline. In particular
// the disappeared transition never notifies but still resets the baseline,
// so a later re-appearance registers as new rather than unchanged.
func Decide(hasSites bool, siteCount int, prev *domain.State, now time.Time) domain.Decision {
	if !hasSites {
		siteCount = 0
	}

	next := domain.State{
		HasSites:    hasSites,
		SiteCount:   siteCount,
		LastChecked: now,
	}

	// First check ever for this search.
	if prev == nil {
		if hasSites {
			return domain.Decision{Notify: true, Reason: domain.NotifyReasonFirstAvailabilityFound, NextState: next}
		}
		return domain.Decision{Notify: false, Reason: domain.NotifyReasonNoAvailability, NextState: next}
	}

	switch {
	case hasSites && !prev.HasSites:
		return domain.Decision{Notify: true, Reason: domain.NotifyReasonNewAvailability, NextState: next}

	case !hasSites && prev.HasSites:
		// Sites got claimed. Stay quiet to avoid flapping spam, but the
		// baseline reset above makes a re-appearance count as new.
		return domain.Decision{Notify: false, Reason: domain.NotifyReasonAvailabilityDisappeared, NextState: next}

	case hasSites && prev.HasSites:
		doubled := siteCount >= prev.SiteCount*2 && siteCount > prev.SiteCount+increaseMargin
		jumped := siteCount >= prev.SiteCount+flatJump
		if doubled || jumped {
			return domain.Decision{Notify: true, Reason: domain.NotifyReasonSignificantIncrease, NextState: next}
		}
		return domain.Decision{Notify: false, Reason: domain.NotifyReasonAvailabilityUnchanged, NextState: next}
	}

	return domain.Decision{Notify: false, Reason: domain.NotifyReasonNoAvailability, NextState: next}
}

// transientIndicators mark upstream trouble expected to self-resolve; errors
// matching any of them are logged but never surfaced to the user.
var transientIndicators = []string{
	"429",
	"rate limit",
	"too many requests",
	"timeout",
	"timed out",
	"connection",
	"network",
	"temporarily unavailable",
	"service unavailable",
	"502",
	"503",
	"504",
}

// ShouldNotifyError reports whether a lookup failure is worth surfacing to
// the user. Transient upstream trouble (rate limiting, timeouts, gateway
// errors) returns false; everything else, such as configuration errors or
// invalid facility identifiers, fails safe toward notifying.
func ShouldNotifyError(errText string) bool {
	lower := strings.ToLower(errText)
	for _, indicator := range transientIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}
	return true
}
