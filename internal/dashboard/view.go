package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/quotadeck/quotadeck/internal/countdown"
	"github.com/quotadeck/quotadeck/internal/ui/components"
	"github.com/quotadeck/quotadeck/internal/ui/styles"
	"github.com/quotadeck/quotadeck/internal/viewmodel"
)

const minWidth = 40

// View renders the whole dashboard.
func (m Model) View() string {
	width := m.width
	if width < minWidth {
		width = minWidth
	}

	vs := m.ctrl.ViewState()
	now := m.now()
	d := viewmodel.BuildDashboard(m.ctrl.Snapshot(), m.ctrl.Aggregates(), m.ctrl.Filter(), vs.Expanded, now)

	var b strings.Builder
	b.WriteString(m.renderHeader(d, vs.Loading, vs.LastUpdated, now) + "\n\n")

	if vs.LastError != "" {
		b.WriteString(m.renderErrorBanner(vs.LastError, width) + "\n")
	}
	if m.searching || vs.Query != "" {
		b.WriteString(m.renderSearch() + "\n\n")
	}

	b.WriteString(m.renderGauges(d, width) + "\n")

	if chart := m.renderTrend(width); chart != "" {
		b.WriteString(chart + "\n\n")
	}

	b.WriteString(m.renderCards(d) + "\n")
	b.WriteString(m.renderMatrix(d, width) + "\n\n")
	b.WriteString(m.renderHelp())

	return styles.DocStyle.Render(b.String())
}

func (m Model) renderHeader(d viewmodel.Dashboard, loading bool, lastUpdated, now time.Time) string {
	title := styles.TitleStyle.Render("quotadeck")

	counts := styles.HelpStyle.Render(fmt.Sprintf(
		"%d account(s): %d ok, %d rate-limited, %d invalid",
		d.Counts.Total, d.Counts.Available, d.Counts.RateLimited, d.Counts.Invalid,
	))

	status := ""
	switch {
	case loading:
		status = m.spinner.View()
	case !lastUpdated.IsZero():
		status = styles.HelpStyle.Render("updated " + countdown.Ago(lastUpdated, now))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", counts, "  ", status)
}

func (m Model) renderErrorBanner(msg string, width int) string {
	inner := width - 8
	if inner < 20 {
		inner = 20
	}
	return styles.ErrorBannerStyle.Render(
		"refresh failed: " + ansi.Truncate(msg, inner, "…") +
			styles.HelpStyle.Render("  (esc to dismiss, r to retry)"))
}

func (m Model) renderSearch() string {
	box := styles.BlurredBorderStyle
	if m.searching {
		box = styles.FocusedBorderStyle
	}
	return box.Render(m.search.View())
}

func (m Model) renderGauges(d viewmodel.Dashboard, width int) string {
	var b strings.Builder
	b.WriteString(styles.SubTitleStyle.Render("Families") + "\n")

	for _, g := range d.Gauges {
		accent := styles.GetFamilyColor(string(g.Family))
		if !g.HasData {
			b.WriteString(components.EmptyGaugeBar(g.Label, width, accent) + "\n")
			continue
		}
		line := components.GaugeBar(g.Label, g.Fill, g.Percent, width, accent)
		detail := g.Accounts
		if g.Reset != "" {
			detail += ", " + g.Reset
		}
		b.WriteString(line + " " + styles.HelpStyle.Render(detail) + "\n")
	}

	overall := "overall " + d.Overall
	if spark := components.RenderSparkline(m.history.Samples(), 16); spark != "" {
		overall += " " + spark
	}
	overall += " | next reset: " + d.NextReset
	b.WriteString(styles.HelpStyle.Render(overall) + "\n")
	return b.String()
}

func (m Model) renderTrend(width int) string {
	if m.history.Len() < 2 {
		return ""
	}
	chartWidth := width - 20
	if chartWidth < 20 {
		chartWidth = 20
	}
	return components.RenderTrendChart(m.history.Samples(), chartWidth, 4, "overall remaining %")
}

func (m Model) renderCards(d viewmodel.Dashboard) string {
	var b strings.Builder
	b.WriteString(styles.SubTitleStyle.Render("Accounts") + "\n")

	if len(d.Cards) == 0 {
		b.WriteString(styles.HelpStyle.Render("no accounts match") + "\n")
		return b.String()
	}

	for i, card := range d.Cards {
		b.WriteString(m.renderCard(card, i == m.selected) + "\n")
	}
	return b.String()
}

func (m Model) renderCard(card viewmodel.Card, selected bool) string {
	var b strings.Builder

	title := styles.CardTitleStyle.Render(card.Masked)
	if selected {
		title = styles.CardTitleStyle.Render("> " + card.Masked)
	}
	b.WriteString(title + " " + renderStatus(card) + "\n")

	if card.Err != "" {
		b.WriteString(styles.ErrorTextStyle.Render(card.Err))
	} else if card.Expanded {
		for _, row := range card.Rows {
			line := fmt.Sprintf("%-28s %s", row.Model,
				styles.GetSeverityStyle(row.Severity).Render(fmt.Sprintf("%6s", row.Value)))
			if row.Countdown != "" {
				line += styles.HelpStyle.Render("  resets in " + row.Countdown)
			}
			b.WriteString(line + "\n")
		}
		if card.LastUsed != "" {
			b.WriteString(styles.HelpStyle.Render("last used " + card.LastUsed))
		}
	} else {
		b.WriteString(styles.HelpStyle.Render(summarizeRows(card.Rows)))
	}

	style := styles.CardStyle
	if card.Expanded {
		style = styles.ExpandedCardStyle
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

// summarizeRows compresses a collapsed card into one line of
// model=percent pairs.
func summarizeRows(rows []viewmodel.QuotaRow) string {
	if len(rows) == 0 {
		return "no quota data"
	}
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, shortModel(row.Model)+" "+row.Value)
	}
	return strings.Join(parts, "  ")
}

// shortModel trims a long model id to its last path-ish segment.
func shortModel(id string) string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}

func renderStatus(card viewmodel.Card) string {
	switch {
	case card.Status == "ok":
		return styles.StatusOKStyle.Render("●")
	case card.Status == "rate-limited":
		return styles.StatusRateLimitedStyle.Render("◐")
	default:
		return styles.StatusBadStyle.Render("○ " + string(card.Status))
	}
}

// renderMatrix draws the accounts x models grid. Column text is padded
// before styling so ANSI codes never skew the alignment.
func (m Model) renderMatrix(d viewmodel.Dashboard, width int) string {
	if len(d.Matrix.Models) == 0 || len(d.Matrix.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.SubTitleStyle.Render("Matrix") + "\n")

	emailWidth := len("account")
	for _, row := range d.Matrix.Rows {
		if len(row.Masked) > emailWidth {
			emailWidth = len(row.Masked)
		}
	}

	colWidths := make([]int, len(d.Matrix.Models))
	headers := make([]string, len(d.Matrix.Models))
	for i, model := range d.Matrix.Models {
		headers[i] = shortModel(model)
		colWidths[i] = len(headers[i])
		if colWidths[i] < 9 {
			colWidths[i] = 9
		}
	}

	header := fmt.Sprintf("%-*s", emailWidth, "account")
	for i, h := range headers {
		header += fmt.Sprintf("  %*s", colWidths[i], h)
	}
	b.WriteString(styles.TableHeaderStyle.Render(ansi.Truncate(header, width, "…")) + "\n")

	for _, row := range d.Matrix.Rows {
		line := fmt.Sprintf("%-*s", emailWidth, row.Masked)
		for i, cell := range row.Cells {
			padded := fmt.Sprintf("  %*s", colWidths[i], cell.Text)
			line += styles.GetSeverityStyle(cell.Severity).Render(padded)
		}
		b.WriteString(ansi.Truncate(line, width, "…") + "\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	auto := "off"
	if m.ctrl.AutoRefreshActive() {
		auto = "on"
	}
	keys := []string{
		styles.HelpKeyStyle.Render("r") + " refresh",
		styles.HelpKeyStyle.Render("/") + " search",
		styles.HelpKeyStyle.Render("f") + " family",
		styles.HelpKeyStyle.Render("enter") + " expand",
		styles.HelpKeyStyle.Render("a") + " auto-refresh (" + auto + ")",
		styles.HelpKeyStyle.Render("q") + " quit",
	}
	return styles.HelpStyle.Render(strings.Join(keys, " · "))
}
