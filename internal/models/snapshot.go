package models

import "time"

// Snapshot is one atomically-replaced set of account and quota data
// produced by a single refresh. It is never mutated after construction;
// a refresh either replaces the whole snapshot or leaves the old one
// untouched. Account and quota ordering is the order the source
// delivered, which downstream aggregation relies on for deterministic
// tie-breaking.
type Snapshot struct {
	Accounts  []Account
	Models    []string
	FetchedAt time.Time
	Latency   time.Duration
}

// Counts summarizes account statuses for the dashboard header.
type Counts struct {
	Total       int
	Available   int
	RateLimited int
	Invalid     int
}

// CountStatuses derives summary counts directly from the snapshot so the
// header and the matrix always describe the same data.
func (s *Snapshot) CountStatuses() Counts {
	c := Counts{Total: len(s.Accounts)}
	for _, a := range s.Accounts {
		switch a.Status {
		case StatusOK:
			c.Available++
		case StatusRateLimited:
			c.RateLimited++
		case StatusInvalid:
			c.Invalid++
		}
	}
	return c
}
