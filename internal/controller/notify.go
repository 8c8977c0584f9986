package controller

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/quotadeck/quotadeck/internal/aggregate"
	"github.com/quotadeck/quotadeck/internal/logger"
	"github.com/quotadeck/quotadeck/internal/models"
)

const (
	// criticalThreshold is the family gauge level that triggers a
	// depletion alert when crossed downward.
	criticalThreshold = 0.05
	// recoveryDelta is the gauge rise between refreshes that signals a
	// quota reset worth announcing.
	recoveryDelta = 0.20
)

// DesktopNotifier sends system notifications.
type DesktopNotifier struct{}

// Notify delivers a desktop notification, logging on failure.
func (DesktopNotifier) Notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		logger.Warn("failed to send notification", "error", err)
	}
}

// currentGauges captures each family's gauge so the next refresh can
// detect crossings.
func currentGauges(aggs aggregate.Aggregates) map[models.Family]float64 {
	gauges := make(map[models.Family]float64, len(aggs.Families))
	for family, stat := range aggs.Families {
		if stat.Accounts > 0 {
			gauges[family] = stat.Gauge
		}
	}
	return gauges
}

// checkNotifications compares family gauges against the previous
// refresh and alerts on depletion and recovery crossings. The first
// refresh has no baseline and stays silent.
func (c *Controller) checkNotifications(prev map[models.Family]float64, aggs aggregate.Aggregates) {
	if c.notify == nil || prev == nil {
		return
	}

	for family, stat := range aggs.Families {
		if stat.Accounts == 0 {
			continue
		}
		before, ok := prev[family]
		if !ok {
			continue
		}

		name := family.DisplayName()
		switch {
		case before >= criticalThreshold && stat.Gauge < criticalThreshold:
			c.notify.Notify(
				fmt.Sprintf("%s quota nearly exhausted", name),
				fmt.Sprintf("%s capacity dropped to %.0f%% across %d account(s)", name, stat.Gauge*100, stat.Accounts),
			)
		case stat.Gauge-before > recoveryDelta:
			c.notify.Notify(
				fmt.Sprintf("%s quota refreshed", name),
				fmt.Sprintf("%s capacity recovered to %.0f%%", name, stat.Gauge*100),
			)
		}
	}
}
