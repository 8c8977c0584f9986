// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/quotadeck/quotadeck/internal/viewmodel"
)

// Color definitions for the quotadeck theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Brand colors
	Claude = lipgloss.Color("208") // Orange
	Gemini = lipgloss.Color("39")  // Blue

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered account card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary)

// ExpandedCardStyle highlights a card whose detail rows are open.
var ExpandedCardStyle = CardStyle.
	BorderForeground(Secondary)

// FocusedBorderStyle creates a focused border, used by the search box.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// BlurredBorderStyle creates an unfocused border.
var BlurredBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// ErrorBannerStyle frames the refresh failure banner.
var ErrorBannerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Error).
	Foreground(Error).
	Padding(0, 2).
	MarginBottom(1)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// TableHeaderStyle styles the matrix header row.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// StatusOKStyle styles available account markers.
var StatusOKStyle = lipgloss.NewStyle().
	Foreground(Success)

// StatusRateLimitedStyle styles rate-limited account markers.
var StatusRateLimitedStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Bold(true)

// StatusBadStyle styles invalid and errored account markers.
var StatusBadStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// QuotaHighStyle for comfortable quota levels.
var QuotaHighStyle = lipgloss.NewStyle().
	Foreground(Success)

// QuotaMediumStyle for partially consumed quota.
var QuotaMediumStyle = lipgloss.NewStyle().
	Foreground(Warning)

// QuotaLowStyle for nearly exhausted quota.
var QuotaLowStyle = lipgloss.NewStyle().
	Foreground(Error)

// QuotaExhaustedStyle for a quota at exactly zero.
var QuotaExhaustedStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// QuotaNAStyle for unknown readings and absent models.
var QuotaNAStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// GetSeverityStyle maps a severity bucket onto its display style.
func GetSeverityStyle(sev viewmodel.Severity) lipgloss.Style {
	switch sev {
	case viewmodel.SeverityHigh:
		return QuotaHighStyle
	case viewmodel.SeverityMedium:
		return QuotaMediumStyle
	case viewmodel.SeverityLow:
		return QuotaLowStyle
	case viewmodel.SeverityExhausted:
		return QuotaExhaustedStyle
	default:
		return QuotaNAStyle
	}
}

// GetFamilyColor returns the brand color for a family label.
func GetFamilyColor(family string) lipgloss.Color {
	switch family {
	case "claude":
		return Claude
	case "gemini":
		return Gemini
	default:
		return Primary
	}
}
