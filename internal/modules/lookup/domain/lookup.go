package domain

import (
	"context"
	"time"
)

// Request describes one availability lookup: which facilities to query over
// which date range, with optional narrowing filters.
type Request struct {
	Facilities   []string
	StartDate    time.Time
	EndDate      time.Time
	CampsiteType string
	CampsiteIDs  []string
	Nights       int
	WeekendsOnly bool
}

// Report is the human-readable availability summary for a request. Each
// facility contributes one marker line of the form
// "🏕 <name> (<id>): <n> site(s) available".
type Report struct {
	Text              string
	HasAvailabilities bool
}

// Checker performs the upstream availability lookup.
type Checker interface {
	Check(ctx context.Context, req Request) (Report, error)
}
