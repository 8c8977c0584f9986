// Package viewmodel turns snapshots and aggregates into render-ready
// strings and severity levels, shared by the dashboard views.
package viewmodel

import (
	"fmt"
	"math"
	"strings"
)

// Severity buckets a remaining fraction for styling.
type Severity string

const (
	// SeverityNA means the fraction is unknown.
	SeverityNA Severity = "na"
	// SeverityHigh means plenty of quota remains.
	SeverityHigh Severity = "high"
	// SeverityMedium means quota is partially consumed.
	SeverityMedium Severity = "medium"
	// SeverityLow means quota is nearly gone but not exhausted.
	SeverityLow Severity = "low"
	// SeverityExhausted means the quota is exactly spent.
	SeverityExhausted Severity = "exhausted"
)

// Classify buckets a nullable remaining fraction. Zero is its own
// bucket; "nearly gone" and "gone" style differently.
func Classify(fraction *float64) Severity {
	switch {
	case fraction == nil:
		return SeverityNA
	case *fraction == 0:
		return SeverityExhausted
	case *fraction >= 0.75:
		return SeverityHigh
	case *fraction >= 0.25:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// FormatPercent renders a nullable fraction as a whole percent, or the
// given placeholder when unknown.
func FormatPercent(fraction *float64, placeholder string) string {
	if fraction == nil {
		return placeholder
	}
	return fmt.Sprintf("%d%%", int(math.Round(*fraction*100)))
}

// MaskEmail hides most of the local part of an email address. Long
// local parts keep their first four characters, short ones only two, so
// a masked short address never spells out the whole thing.
func MaskEmail(email string) string {
	local, domain, hasDomain := strings.Cut(email, "@")

	keep := 4
	if len(local) <= 4 {
		keep = 2
	}
	if keep > len(local) {
		keep = len(local)
	}
	masked := local[:keep] + "***"

	if hasDomain {
		return masked + "@" + domain
	}
	return masked
}
