// Package report renders the one-shot terminal summary: per-account
// quota sections, the cross-account model table and the overall line.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/quotadeck/quotadeck/internal/aggregate"
	"github.com/quotadeck/quotadeck/internal/countdown"
	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/ui/styles"
	"github.com/quotadeck/quotadeck/internal/viewmodel"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Secondary)
	accountStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted)

	tierHighStyle = lipgloss.NewStyle().Foreground(styles.Success)
	tierMidStyle  = lipgloss.NewStyle().Foreground(styles.Warning)
	tierLowStyle  = lipgloss.NewStyle().Foreground(styles.Error)
)

// Render produces the full report for one snapshot.
func Render(snap *models.Snapshot, aggs *aggregate.Aggregates, now time.Time) string {
	var b strings.Builder

	counts := snap.CountStatuses()
	b.WriteString(bannerStyle.Render("quotadeck") + "  " + mutedStyle.Render("quota report") + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf(
		"%d account(s): %d available, %d rate-limited, %d invalid (fetched in %dms)",
		counts.Total, counts.Available, counts.RateLimited, counts.Invalid,
		snap.Latency.Milliseconds(),
	)) + "\n\n")

	for _, acc := range snap.Accounts {
		b.WriteString(renderAccount(acc))
		b.WriteString("\n")
	}

	b.WriteString(renderModelTable(aggs))
	b.WriteString("\n")

	b.WriteString(accountStyle.Render("Overall: ") +
		tierStyle(aggs.Overall).Render(viewmodel.FormatPercent(aggs.Overall, "n/a")) + "\n")

	if aggs.NextReset != nil {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(
			"Next reset: %s in %s", aggs.NextReset.Model,
			countdown.Duration(aggs.NextReset.At.Sub(now)))) + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("Run 'quotadeck dashboard' for the live view.") + "\n")
	return b.String()
}

// renderAccount writes one account section. Accounts whose fetch failed
// show only their status and error text, no quota rows.
func renderAccount(acc models.Account) string {
	var b strings.Builder

	b.WriteString(accountStyle.Render(localPart(acc.Email)))
	b.WriteString(" " + statusBadge(acc.Status))
	b.WriteString("\n")

	if !acc.Status.Usable() {
		msg := acc.Err
		if msg == "" {
			msg = "quota fetch failed"
		}
		b.WriteString("  " + styles.ErrorTextStyle.Render(msg) + "\n")
		return b.String()
	}

	quotas := make([]models.ModelQuota, len(acc.Quotas))
	copy(quotas, acc.Quotas)
	sort.Slice(quotas, func(i, j int) bool { return quotas[i].Model < quotas[j].Model })

	width := modelColumnWidth(quotas)
	for _, q := range quotas {
		value := tierStyle(q.Fraction).Render(viewmodel.FormatPercent(q.Fraction, "n/a"))
		b.WriteString(fmt.Sprintf("  %-*s %s\n", width, q.Model, value))
	}
	return b.String()
}

// renderModelTable writes the per-model averages across accounts,
// sorted alphabetically like the per-account sections.
func renderModelTable(aggs *aggregate.Aggregates) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("By model") + "\n")

	if len(aggs.ModelOrder) == 0 {
		b.WriteString(mutedStyle.Render("  no quota data") + "\n")
		return b.String()
	}

	ids := make([]string, len(aggs.ModelOrder))
	copy(ids, aggs.ModelOrder)
	sort.Strings(ids)

	width := 0
	for _, id := range ids {
		if len(id) > width {
			width = len(id)
		}
	}
	for _, id := range ids {
		avg := aggs.ModelAverages[id]
		b.WriteString(fmt.Sprintf("  %-*s %s\n", width, id,
			tierStyle(avg).Render(viewmodel.FormatPercent(avg, "n/a"))))
	}
	return b.String()
}

// tierStyle buckets a fraction for the report's coarser color scale.
func tierStyle(fraction *float64) lipgloss.Style {
	switch {
	case fraction == nil:
		return mutedStyle
	case *fraction >= 0.50:
		return tierHighStyle
	case *fraction >= 0.20:
		return tierMidStyle
	default:
		return tierLowStyle
	}
}

func statusBadge(status models.Status) string {
	switch status {
	case models.StatusOK:
		return styles.StatusOKStyle.Render("(ok)")
	case models.StatusRateLimited:
		return styles.StatusRateLimitedStyle.Render("(rate-limited)")
	default:
		return styles.StatusBadStyle.Render("(" + string(status) + ")")
	}
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func modelColumnWidth(quotas []models.ModelQuota) int {
	width := 0
	for _, q := range quotas {
		if len(q.Model) > width {
			width = len(q.Model)
		}
	}
	return width
}
