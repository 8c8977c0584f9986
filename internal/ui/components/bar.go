// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quotadeck/quotadeck/internal/logger"
	"github.com/quotadeck/quotadeck/internal/ui/styles"
)

// RenderGradientBar renders the bar characters for a fill in [0,1],
// shading from red (empty side) to green.
func RenderGradientBar(fill float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * fill)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#ff6b6b", "#51cf66", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// GaugeBar renders a labeled family gauge line: label, gradient bar and
// right-aligned percent text.
func GaugeBar(label string, fill float64, percent string, width int, accent lipgloss.Color) string {
	labelWidth := 10
	percentWidth := 8
	barWidth := width - labelWidth - percentWidth - 4
	if barWidth < 10 {
		barWidth = 10
	}

	labelStr := lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		Width(labelWidth).
		Render(label)

	percentStr := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(percent)

	return fmt.Sprintf("%s [%s] %s", labelStr, RenderGradientBar(fill, barWidth), percentStr)
}

// EmptyGaugeBar renders the gauge line for a family with no data.
func EmptyGaugeBar(label string, width int, accent lipgloss.Color) string {
	labelWidth := 10
	barWidth := width - labelWidth - 12
	if barWidth < 10 {
		barWidth = 10
	}

	labelStr := lipgloss.NewStyle().
		Foreground(accent).
		Width(labelWidth).
		Render(label)

	bar := lipgloss.NewStyle().
		Foreground(styles.Subtle).
		Render(strings.Repeat("░", barWidth))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, styles.HelpStyle.Render("no data"))
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
