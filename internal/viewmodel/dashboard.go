package viewmodel

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/quotadeck/quotadeck/internal/aggregate"
	"github.com/quotadeck/quotadeck/internal/countdown"
	"github.com/quotadeck/quotadeck/internal/filter"
	"github.com/quotadeck/quotadeck/internal/models"
)

// QuotaRow is one model line inside an account card.
type QuotaRow struct {
	Model     string
	Value     string
	Severity  Severity
	Countdown string
}

// Card is one account's render state.
type Card struct {
	Email    string
	Masked   string
	Status   models.Status
	Err      string
	Expanded bool
	LastUsed string
	Rows     []QuotaRow
}

// MatrixCell is one account x model intersection.
type MatrixCell struct {
	Text     string
	Severity Severity
}

// MatrixRow is one account's row in the comparison matrix.
type MatrixRow struct {
	Masked string
	Cells  []MatrixCell
}

// Matrix is the account x model comparison grid.
type Matrix struct {
	Models []string
	Rows   []MatrixRow
}

// Gauge is one family's headroom bar.
type Gauge struct {
	Family   models.Family
	Label    string
	Fill     float64
	Percent  string
	Accounts string
	Reset    string
	HasData  bool
}

// Dashboard is everything the live view renders from one snapshot, with
// the current filter and expansion state already applied.
type Dashboard struct {
	Counts    models.Counts
	Cards     []Card
	Matrix    Matrix
	Gauges    []Gauge
	Overall   string
	NextReset string
	FetchedAt time.Time
}

// BuildDashboard assembles the dashboard view-model. snap may be nil
// before the first refresh; the result is then an empty dashboard.
func BuildDashboard(snap *models.Snapshot, aggs *aggregate.Aggregates, f filter.Filter, expanded map[string]bool, now time.Time) Dashboard {
	if snap == nil {
		return Dashboard{NextReset: "all ok"}
	}

	view := f.Apply(snap)

	d := Dashboard{
		Counts:    snap.CountStatuses(),
		FetchedAt: snap.FetchedAt,
		Cards: lo.Map(view.Accounts, func(acc models.Account, _ int) Card {
			return buildCard(acc, f, expanded[acc.Email], now)
		}),
		Matrix: buildMatrix(view),
	}

	if aggs != nil {
		d.Overall = FormatPercent(aggs.Overall, "n/a")
		d.NextReset = formatNextReset(aggs.NextReset, now)
		d.Gauges = buildGauges(aggs, now)
	}
	return d
}

func buildCard(acc models.Account, f filter.Filter, expanded bool, now time.Time) Card {
	card := Card{
		Email:    acc.Email,
		Masked:   MaskEmail(acc.Email),
		Status:   acc.Status,
		Err:      acc.Err,
		Expanded: expanded,
	}
	if !acc.LastUsed.IsZero() {
		card.LastUsed = acc.LastUsed.Local().Format("Jan 2 15:04")
	}
	if !acc.Status.Usable() {
		return card
	}

	for _, q := range acc.Quotas {
		if !f.MatchesFamily(q.Model) {
			continue
		}
		row := QuotaRow{
			Model:    q.Model,
			Value:    FormatPercent(q.Fraction, "n/a"),
			Severity: Classify(q.Fraction),
		}
		if !q.ResetTime.IsZero() && q.ResetTime.After(now) {
			row.Countdown = countdown.Duration(q.ResetTime.Sub(now))
		}
		card.Rows = append(card.Rows, row)
	}
	return card
}

// buildMatrix lays accounts against the visible model columns. Cells
// distinguish a missing model ("-") from an unknown reading ("N/A") and
// replace every cell of an unusable account with its status.
func buildMatrix(view filter.View) Matrix {
	m := Matrix{Models: view.Models}
	for _, acc := range view.Accounts {
		row := MatrixRow{Masked: MaskEmail(acc.Email)}
		for _, model := range view.Models {
			row.Cells = append(row.Cells, matrixCell(acc, model))
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func matrixCell(acc models.Account, model string) MatrixCell {
	if !acc.Status.Usable() {
		return MatrixCell{Text: "[" + string(acc.Status) + "]", Severity: SeverityNA}
	}
	q, ok := acc.Quota(model)
	if !ok {
		return MatrixCell{Text: "-", Severity: SeverityNA}
	}
	return MatrixCell{
		Text:     FormatPercent(q.Fraction, "N/A"),
		Severity: Classify(q.Fraction),
	}
}

func buildGauges(aggs *aggregate.Aggregates, now time.Time) []Gauge {
	return lo.Map(models.KnownFamilies, func(fam models.Family, _ int) Gauge {
		stat := aggs.Families[fam]
		g := Gauge{
			Family:  fam,
			Label:   fam.DisplayName(),
			HasData: stat.Accounts > 0,
		}
		if !g.HasData {
			g.Percent = "no data"
			return g
		}
		g.Fill = stat.Gauge
		g.Percent = FormatPercent(models.Fraction(stat.Gauge), "n/a")
		g.Accounts = fmt.Sprintf("%d account(s)", stat.Accounts)
		if stat.HasSoonest && stat.SoonestAt.After(now) {
			g.Reset = "resets in " + countdown.Duration(stat.SoonestAt.Sub(now))
		} else {
			g.Reset = "all ok"
		}
		return g
	})
}

// formatNextReset renders the global next-reset line. With no exhausted
// quota awaiting a reset the line reads "all ok".
func formatNextReset(next *aggregate.ResetPoint, now time.Time) string {
	if next == nil {
		return "all ok"
	}
	return fmt.Sprintf("%s resets in %s", next.Model, countdown.Duration(next.At.Sub(now)))
}
