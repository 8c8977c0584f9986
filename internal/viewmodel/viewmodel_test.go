package viewmodel

import (
	"testing"

	"github.com/quotadeck/quotadeck/internal/models"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long local part", "alexandra@example.com", "alex***@example.com"},
		{"exactly five", "alice@example.com", "alic***@example.com"},
		{"short local part", "bob@example.com", "bo***@example.com"},
		{"four characters", "carl@example.com", "ca***@example.com"},
		{"single character", "a@example.com", "a***@example.com"},
		{"no domain", "alexandra", "alex***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskEmail(tt.in); got != tt.want {
				t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		fraction *float64
		want     Severity
	}{
		{"nil", nil, SeverityNA},
		{"zero", models.Fraction(0), SeverityExhausted},
		{"barely above zero", models.Fraction(0.01), SeverityLow},
		{"just below medium", models.Fraction(0.24), SeverityLow},
		{"medium boundary", models.Fraction(0.25), SeverityMedium},
		{"just below high", models.Fraction(0.74), SeverityMedium},
		{"high boundary", models.Fraction(0.75), SeverityHigh},
		{"full", models.Fraction(1), SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.fraction); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name     string
		fraction *float64
		want     string
	}{
		{"nil uses placeholder", nil, "n/a"},
		{"zero", models.Fraction(0), "0%"},
		{"rounds half up", models.Fraction(0.875), "88%"},
		{"rounds down", models.Fraction(0.834), "83%"},
		{"full", models.Fraction(1), "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPercent(tt.fraction, "n/a"); got != tt.want {
				t.Errorf("FormatPercent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(3)

	h.Push(models.Fraction(0.5))
	h.Push(nil) // unknown overall is skipped
	h.Push(models.Fraction(0.6))
	h.Push(models.Fraction(0.7))
	h.Push(models.Fraction(0.8))

	samples := h.Samples()
	want := []float64{60, 70, 80}
	if len(samples) != len(want) {
		t.Fatalf("samples = %v, want %v", samples, want)
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("samples[%d] = %f, want %f", i, samples[i], want[i])
		}
	}

	// Samples returns a copy.
	samples[0] = 999
	if h.Samples()[0] == 999 {
		t.Error("Samples should not expose internal storage")
	}
}
