// Package aggregate computes model-level and family-level quota
// aggregates from a snapshot. Everything here is a pure function of its
// inputs; no I/O, no clocks other than the caller-supplied now.
package aggregate

import (
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

// ResetPoint identifies the next upcoming quota reset across all
// accounts and models.
type ResetPoint struct {
	Model string
	At    time.Time
}

// FamilyStat is one family's gauge value plus how many accounts
// contributed to it.
type FamilyStat struct {
	Gauge      float64
	Accounts   int
	SoonestAt  time.Time
	HasSoonest bool
}

// Aggregates holds everything derived from one snapshot. Recomputed on
// every refresh, never persisted, never derived from a stale snapshot.
type Aggregates struct {
	ModelAverages map[string]*float64
	ModelOrder    []string
	Overall       *float64
	Families      map[models.Family]FamilyStat
	NextReset     *ResetPoint
}

// Compute derives all aggregates from a snapshot in one pass set.
func Compute(snap *models.Snapshot, now time.Time) Aggregates {
	avgs, order := ModelAverages(snap.Accounts)
	aggs := Aggregates{
		ModelAverages: avgs,
		ModelOrder:    order,
		Overall:       OverallAverage(avgs),
		Families:      make(map[models.Family]FamilyStat, len(models.KnownFamilies)),
		NextReset:     NextGlobalReset(snap.Accounts, now),
	}
	for _, fam := range models.KnownFamilies {
		gauge, contributors := FamilyGauge(snap.Accounts, fam)
		at, ok := SoonestFamilyReset(snap.Accounts, fam)
		aggs.Families[fam] = FamilyStat{
			Gauge:      gauge,
			Accounts:   contributors,
			SoonestAt:  at,
			HasSoonest: ok,
		}
	}
	return aggs
}

// ModelAverages averages the non-nil remaining fractions per model id
// across all accounts offering that model. Nil fractions are skipped
// entirely; they count neither toward the sum nor the divisor. A model
// whose every fraction is nil maps to nil. The returned order is
// first-seen order across accounts.
//
// Note this is deliberately the opposite null policy from FamilyGauge:
// here "unknown" is excluded so the average reflects only real
// readings for that specific model.
func ModelAverages(accounts []models.Account) (map[string]*float64, []string) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	seen := make(map[string]bool)
	var order []string

	for _, acc := range accounts {
		for _, q := range acc.Quotas {
			if !seen[q.Model] {
				seen[q.Model] = true
				order = append(order, q.Model)
			}
			if q.Fraction != nil {
				sums[q.Model] += *q.Fraction
				counts[q.Model]++
			}
		}
	}

	avgs := make(map[string]*float64, len(order))
	for _, id := range order {
		if n := counts[id]; n > 0 {
			avgs[id] = models.Fraction(sums[id] / float64(n))
		} else {
			avgs[id] = nil
		}
	}
	return avgs, order
}

// OverallAverage is the unweighted mean of the non-nil model averages,
// or nil if there are none.
func OverallAverage(modelAverages map[string]*float64) *float64 {
	var sum float64
	var n int
	for _, avg := range modelAverages {
		if avg != nil {
			sum += *avg
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return models.Fraction(sum / float64(n))
}

// FamilyGauge computes the family-level headroom gauge. Per account,
// every family model's fraction is taken with nil treated as 0 -
// exhausted and unknown both count as no headroom - and averaged into
// one scalar; those per-account scalars are then averaged unweighted.
// Accounts offering no model of the family contribute nothing. Returns
// the gauge and the number of contributing accounts.
func FamilyGauge(accounts []models.Account, family models.Family) (float64, int) {
	var sum float64
	var contributors int

	for _, acc := range accounts {
		var accSum float64
		var accModels int
		for _, q := range acc.Quotas {
			if models.FamilyOf(q.Model) != family {
				continue
			}
			accModels++
			if q.Fraction != nil {
				accSum += *q.Fraction
			}
		}
		if accModels > 0 {
			sum += accSum / float64(accModels)
			contributors++
		}
	}

	if contributors == 0 {
		return 0, 0
	}
	return sum / float64(contributors), contributors
}

// SoonestFamilyReset finds the earliest known reset time among the
// family's models: per account the minimum set reset time, then the
// minimum across accounts. The second return is false when no family
// model carries a reset time at all.
func SoonestFamilyReset(accounts []models.Account, family models.Family) (time.Time, bool) {
	var soonest time.Time
	found := false

	for _, acc := range accounts {
		var accMin time.Time
		accFound := false
		for _, q := range acc.Quotas {
			if models.FamilyOf(q.Model) != family || q.ResetTime.IsZero() {
				continue
			}
			if !accFound || q.ResetTime.Before(accMin) {
				accMin = q.ResetTime
				accFound = true
			}
		}
		if accFound && (!found || accMin.Before(soonest)) {
			soonest = accMin
			found = true
		}
	}

	return soonest, found
}

// NextGlobalReset scans every account/model quota for the next upcoming
// reset of an exhausted quota. A candidate must have a reset time set,
// strictly in the future, and a fraction of exactly 0 - low-but-nonzero
// quotas do not count. Ties keep the first candidate in snapshot order
// (accounts, then each account's models) so the result is deterministic.
func NextGlobalReset(accounts []models.Account, now time.Time) *ResetPoint {
	var best *ResetPoint
	for _, acc := range accounts {
		for _, q := range acc.Quotas {
			if q.Fraction == nil || *q.Fraction != 0 {
				continue
			}
			if q.ResetTime.IsZero() || !q.ResetTime.After(now) {
				continue
			}
			if best == nil || q.ResetTime.Before(best.At) {
				best = &ResetPoint{Model: q.Model, At: q.ResetTime}
			}
		}
	}
	return best
}
