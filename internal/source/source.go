// Package source fetches raw per-account quota data and assembles the
// two logical snapshots a refresh needs. Per-account failures are
// recorded on the account and never abort the batch; only batch-level
// failures (unreadable config, canceled context) surface as errors.
package source

import (
	"context"
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

// Source supplies the two logical reads of one refresh. Both must
// succeed for a snapshot to be built; the refresh controller enforces
// the all-or-nothing rule.
type Source interface {
	Summary(ctx context.Context) (*Summary, error)
	Limits(ctx context.Context) (*Limits, error)
}

// QuotaField is one model's quota reading on the wire. A nil Fraction
// means unknown; a zero ResetTime means no reset is known.
type QuotaField struct {
	Fraction  *float64
	ResetTime time.Time
}

// SummaryAccount is one account's health-style reading.
type SummaryAccount struct {
	Email    string
	Status   models.Status
	LastUsed time.Time
	Models   map[string]QuotaField
	Err      string
}

// Summary is the health-style snapshot: statuses, current usage and
// fetch latency.
type Summary struct {
	Counts    models.Counts
	Accounts  []SummaryAccount
	LatencyMs int64
}

// LimitsAccount is one account's limits-style reading.
type LimitsAccount struct {
	Email  string
	Status models.Status
	Limits map[string]QuotaField
}

// Limits is the limits-style snapshot: the global model list and
// per-account limit readings.
type Limits struct {
	Models   []string
	Accounts []LimitsAccount
}

// BuildSnapshot merges the two reads into one immutable snapshot.
// The global model order comes from the limits read; models only seen
// on individual accounts are appended in first-seen order. Each
// account's quota rows follow the global order so downstream
// tie-breaking is deterministic. Summary readings win over limits
// readings for the same model since they are the fresher of the two.
func BuildSnapshot(sum *Summary, lim *Limits, now time.Time) *models.Snapshot {
	order := make([]string, 0, len(lim.Models))
	seen := make(map[string]bool, len(lim.Models))
	for _, id := range lim.Models {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}

	limitsByEmail := make(map[string]LimitsAccount, len(lim.Accounts))
	for _, acc := range lim.Accounts {
		limitsByEmail[acc.Email] = acc
	}

	// Pick up models the limits read didn't know about.
	for _, acc := range sum.Accounts {
		for id := range acc.Models {
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}

	snap := &models.Snapshot{
		Models:    order,
		FetchedAt: now,
		Latency:   time.Duration(sum.LatencyMs) * time.Millisecond,
	}

	for _, sa := range sum.Accounts {
		acc := models.Account{
			Email:    sa.Email,
			Status:   sa.Status,
			LastUsed: sa.LastUsed,
			Err:      sa.Err,
		}
		la, hasLimits := limitsByEmail[sa.Email]
		for _, id := range order {
			field, ok := sa.Models[id]
			if !ok && hasLimits {
				field, ok = la.Limits[id]
			}
			if !ok {
				continue
			}
			acc.Quotas = append(acc.Quotas, models.ModelQuota{
				Model:     id,
				Fraction:  clampFraction(field.Fraction),
				ResetTime: field.ResetTime,
			})
		}
		snap.Accounts = append(snap.Accounts, acc)
	}

	return snap
}

// clampFraction forces a reading into [0,1]; out-of-range values are
// upstream bugs we render rather than propagate.
func clampFraction(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return &v
}
