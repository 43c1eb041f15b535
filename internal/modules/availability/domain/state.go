package domain

import "time"

// State is the per-search availability baseline persisted between check
// passes. SiteCount is always 0 when HasSites is false.
type State struct {
	HasSites    bool      `json:"has_sites"`
	SiteCount   int       `json:"site_count"`
	LastChecked time.Time `json:"last_checked"`
}

// Decision is the outcome of comparing a fresh snapshot against the
// previous baseline.
type Decision struct {
	Notify    bool
	Reason    NotifyReason
	NextState State
}
