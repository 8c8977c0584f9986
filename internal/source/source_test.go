package source

import (
	"testing"
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

func TestBuildSnapshot(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	reset := now.Add(30 * time.Minute)

	sum := &Summary{
		LatencyMs: 250,
		Accounts: []SummaryAccount{
			{
				Email:  "a@x.com",
				Status: models.StatusOK,
				Models: map[string]QuotaField{
					"m1": {Fraction: models.Fraction(0.8)},
					"m3": {Fraction: models.Fraction(0.1), ResetTime: reset},
				},
			},
			{
				Email:  "b@x.com",
				Status: models.StatusError,
				Err:    "boom",
			},
		},
	}
	lim := &Limits{
		Models: []string{"m1", "m2"},
		Accounts: []LimitsAccount{
			{
				Email:  "a@x.com",
				Status: models.StatusOK,
				Limits: map[string]QuotaField{
					"m1": {Fraction: models.Fraction(0.5)},
					"m2": {Fraction: models.Fraction(0.9)},
				},
			},
		},
	}

	snap := BuildSnapshot(sum, lim, now)

	wantModels := []string{"m1", "m2", "m3"}
	if len(snap.Models) != len(wantModels) {
		t.Fatalf("models = %v, want %v", snap.Models, wantModels)
	}
	for i := range wantModels {
		if snap.Models[i] != wantModels[i] {
			t.Errorf("models[%d] = %s, want %s", i, snap.Models[i], wantModels[i])
		}
	}

	if !snap.FetchedAt.Equal(now) {
		t.Errorf("fetchedAt = %v, want %v", snap.FetchedAt, now)
	}
	if snap.Latency != 250*time.Millisecond {
		t.Errorf("latency = %v, want 250ms", snap.Latency)
	}

	if len(snap.Accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(snap.Accounts))
	}

	a := snap.Accounts[0]
	if len(a.Quotas) != 3 {
		t.Fatalf("account a quotas = %+v, want 3 rows", a.Quotas)
	}
	// Summary reading wins over the limits reading for m1.
	if q := a.Quotas[0]; q.Model != "m1" || q.Fraction == nil || *q.Fraction != 0.8 {
		t.Errorf("quotas[0] = %+v, want m1 0.8", q)
	}
	// m2 only exists in limits and is backfilled from there.
	if q := a.Quotas[1]; q.Model != "m2" || q.Fraction == nil || *q.Fraction != 0.9 {
		t.Errorf("quotas[1] = %+v, want m2 0.9", q)
	}
	if q := a.Quotas[2]; q.Model != "m3" || !q.ResetTime.Equal(reset) {
		t.Errorf("quotas[2] = %+v, want m3 with reset", q)
	}

	b := snap.Accounts[1]
	if b.Status != models.StatusError || b.Err != "boom" {
		t.Errorf("account b = %+v, want error status carried through", b)
	}
	if len(b.Quotas) != 0 {
		t.Errorf("errored account should have no quota rows, got %+v", b.Quotas)
	}
}

func TestBuildSnapshot_ClampsFractions(t *testing.T) {
	now := time.Now()
	sum := &Summary{
		Accounts: []SummaryAccount{{
			Email:  "a@x.com",
			Status: models.StatusOK,
			Models: map[string]QuotaField{
				"m1": {Fraction: models.Fraction(1.5)},
				"m2": {Fraction: models.Fraction(-0.25)},
				"m3": {Fraction: nil},
			},
		}},
	}
	lim := &Limits{Models: []string{"m1", "m2", "m3"}}

	snap := BuildSnapshot(sum, lim, now)
	q := snap.Accounts[0].Quotas

	if *q[0].Fraction != 1 {
		t.Errorf("m1 fraction = %f, want clamped to 1", *q[0].Fraction)
	}
	if *q[1].Fraction != 0 {
		t.Errorf("m2 fraction = %f, want clamped to 0", *q[1].Fraction)
	}
	if q[2].Fraction != nil {
		t.Error("m3 fraction should stay nil")
	}
}

func TestParseFraction(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{"number", "0.42", models.Fraction(0.42)},
		{"zero", "0", models.Fraction(0)},
		{"null", "null", nil},
		{"string", `"lots"`, nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFraction([]byte(tt.in))
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseFraction(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if tt.want != nil && *got != *tt.want {
				t.Errorf("parseFraction(%q) = %f, want %f", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestParseTimeField(t *testing.T) {
	iso := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"iso string", `"2026-08-25T10:30:00Z"`, iso},
		{"unix seconds", "1787999400", time.Unix(1787999400, 0)},
		{"unix millis", "1787999400000", time.UnixMilli(1787999400000)},
		{"null", "null", time.Time{}},
		{"garbage string", `"soon"`, time.Time{}},
		{"empty", "", time.Time{}},
		{"negative", "-5", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimeField([]byte(tt.in))
			if !got.Equal(tt.want) {
				t.Errorf("parseTimeField(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	status, msg := classifyError(&statusError{code: 401, msg: "denied"})
	if status != models.StatusInvalid {
		t.Errorf("401 status = %s, want invalid", status)
	}
	if msg == "" {
		t.Error("401 message should not be empty")
	}

	status, _ = classifyError(errTest{})
	if status != models.StatusError {
		t.Errorf("generic error status = %s, want error", status)
	}
}

type errTest struct{}

func (errTest) Error() string { return "timeout" }
