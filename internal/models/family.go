package models

import "strings"

// Family is the vendor classification of a model id.
type Family string

const (
	FamilyClaude  Family = "claude"
	FamilyGemini  Family = "gemini"
	FamilyUnknown Family = "unknown"
)

// KnownFamilies lists the families that get their own gauge, in display order.
var KnownFamilies = []Family{FamilyClaude, FamilyGemini}

// FamilyOf classifies a model id by substring match.
func FamilyOf(modelID string) Family {
	id := strings.ToLower(modelID)
	switch {
	case strings.Contains(id, "claude"):
		return FamilyClaude
	case strings.Contains(id, "gemini"):
		return FamilyGemini
	default:
		return FamilyUnknown
	}
}

// DisplayName returns the capitalized family name for labels.
func (f Family) DisplayName() string {
	switch f {
	case FamilyClaude:
		return "Claude"
	case FamilyGemini:
		return "Gemini"
	default:
		return "Unknown"
	}
}
