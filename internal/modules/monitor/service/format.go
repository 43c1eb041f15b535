package service

import (
	"fmt"
	"regexp"
	"strings"

	availability "github.com/campwatch/campsite-telegram-bot/internal/modules/availability/domain"
	searchdomain "github.com/campwatch/campsite-telegram-bot/internal/modules/search/domain"
)

const (
	maxMessageLength = 3000
	truncateAt       = 2950

	bookingURLFormat = "https://www.recreation.gov/camping/campgrounds/%s"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Sanitize makes free-form report text safe for HTML-mode delivery: strips
// embedded tags, escapes the HTML special characters and caps the length.
func Sanitize(text string) string {
	if text == "" {
		return "No details available"
	}

	text = htmlTagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")

	if len(text) > maxMessageLength {
		text = text[:truncateAt] + "...\n\n[Message truncated]"
	}

	return text
}

// FormatAvailabilityMessage renders a notify-worthy check result, prefixed
// according to the transition that triggered it and suffixed with booking
// links for each facility.
func FormatAvailabilityMessage(result searchdomain.CheckResult, reason availability.NotifyReason, siteCount int) string {
	var sb strings.Builder

	switch reason {
	case availability.NotifyReasonFirstAvailabilityFound:
		sb.WriteString("🎉 NEW: First availability found!\n\n")
	case availability.NotifyReasonNewAvailability:
		sb.WriteString("🎉 NEW: Availability just appeared!\n\n")
	case availability.NotifyReasonSignificantIncrease:
		fmt.Fprintf(&sb, "📈 MORE SITES: Now %d sites available!\n\n", siteCount)
	}

	fmt.Fprintf(&sb, "<b>🏕 %s</b>\n\n", strings.ToUpper(result.SearchName))
	sb.WriteString(Sanitize(result.Report))

	if len(result.Facilities) > 0 {
		sb.WriteString("\n\n📅 <b>Book now:</b>\n")
		for _, facilityID := range result.Facilities {
			fmt.Fprintf(&sb, bookingURLFormat+"\n", facilityID)
		}
	} else {
		sb.WriteString("\n\n🏕 Book now! 🏕")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatErrorMessage renders a surfacable lookup failure.
func FormatErrorMessage(result searchdomain.CheckResult) string {
	return fmt.Sprintf("⚠️ <b>Error in search: %s</b>\n\n%s\n\nPlease check your search criteria.",
		result.SearchName, Sanitize(result.Err))
}

// FormatPassSummary renders the completion message for a manual check.
func FormatPassSummary(summary *PassSummary) string {
	var sb strings.Builder
	sb.WriteString("✅ <b>Manual Check Complete!</b>\n\n")

	if summary.AvailabilitiesFound > 0 {
		fmt.Fprintf(&sb, "🎉 Found availability in %d of %d searches!\n\nDetailed results were sent above. 🏕️",
			summary.AvailabilitiesFound, summary.SearchesChecked)
	} else {
		fmt.Fprintf(&sb, "❌ No availability found in %d search(es).\n\nI'll keep monitoring automatically. 🔍",
			summary.SearchesChecked)
	}

	errCount := 0
	for _, result := range summary.Results {
		if result.Err != "" {
			errCount++
		}
	}
	if errCount > 0 {
		fmt.Fprintf(&sb, "\n\n⚠️ %d search(es) had errors - check your search criteria.", errCount)
	}

	return sb.String()
}
