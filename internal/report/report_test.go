package report

import (
	"strings"
	"testing"
	"time"

	"github.com/quotadeck/quotadeck/internal/aggregate"
	"github.com/quotadeck/quotadeck/internal/models"
)

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Models: []string{"model-b", "model-a"},
		Accounts: []models.Account{
			{
				Email:  "alice@example.com",
				Status: models.StatusOK,
				Quotas: []models.ModelQuota{
					{Model: "model-b", Fraction: models.Fraction(0.8)},
				},
			},
			{
				Email:  "bob@example.com",
				Status: models.StatusOK,
				Quotas: []models.ModelQuota{
					{Model: "model-b", Fraction: models.Fraction(0.4)},
					{Model: "model-a", Fraction: nil},
				},
			},
			{
				Email:  "carol@example.com",
				Status: models.StatusError,
				Err:    "token exchange failed",
			},
		},
		FetchedAt: time.Now(),
		Latency:   120 * time.Millisecond,
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	snap := testSnapshot()
	aggs := aggregate.Compute(snap, now)

	out := Render(snap, &aggs, now)

	// Header counts.
	if !strings.Contains(out, "3 account(s): 2 available, 0 rate-limited, 0 invalid") {
		t.Errorf("missing counts line:\n%s", out)
	}

	// Account sections use the local part only.
	for _, local := range []string{"alice", "bob", "carol"} {
		if !strings.Contains(out, local) {
			t.Errorf("missing account section %q", local)
		}
	}
	if strings.Contains(out, "alice@example.com") {
		t.Error("report should not print full email addresses")
	}

	// Per-account readings with n/a for unknown.
	if !strings.Contains(out, "80%") || !strings.Contains(out, "40%") {
		t.Errorf("missing per-account percentages:\n%s", out)
	}
	if !strings.Contains(out, "n/a") {
		t.Error("unknown readings should render as n/a")
	}

	// Errored account shows only its error text.
	if !strings.Contains(out, "token exchange failed") {
		t.Error("missing error text for failed account")
	}

	// Model table averages: model-b (0.8+0.4)/2 = 60%, overall 60%.
	if !strings.Contains(out, "By model") {
		t.Error("missing model table")
	}
	if !strings.Contains(out, "60%") {
		t.Errorf("missing 60%% average:\n%s", out)
	}
	if !strings.Contains(out, "Overall: ") {
		t.Error("missing overall line")
	}

	if !strings.Contains(out, "quotadeck dashboard") {
		t.Error("missing dashboard hint")
	}
}

func TestRender_AccountModelsSortedAlphabetically(t *testing.T) {
	now := time.Now()
	snap := testSnapshot()
	aggs := aggregate.Compute(snap, now)

	out := Render(snap, &aggs, now)

	// bob's section lists model-a before model-b even though the
	// snapshot delivered them in the opposite order.
	bobSection := out[strings.Index(out, "bob"):]
	if strings.Index(bobSection, "model-a") > strings.Index(bobSection, "model-b") {
		t.Error("account models should be sorted alphabetically")
	}
}

func TestRender_ModelTableSortedAlphabetically(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	snap := &models.Snapshot{
		Models: []string{"zeta-model", "alpha-model"},
		Accounts: []models.Account{
			{
				Email:  "alice@example.com",
				Status: models.StatusOK,
				Quotas: []models.ModelQuota{
					{Model: "zeta-model", Fraction: models.Fraction(0.5)},
					{Model: "alpha-model", Fraction: models.Fraction(0.5)},
				},
			},
		},
		FetchedAt: now,
	}
	aggs := aggregate.Compute(snap, now)

	out := Render(snap, &aggs, now)

	// The table sorts alphabetically even though the snapshot delivered
	// zeta-model first.
	table := out[strings.Index(out, "By model"):]
	alpha := strings.Index(table, "alpha-model")
	zeta := strings.Index(table, "zeta-model")
	if alpha < 0 || zeta < 0 {
		t.Fatalf("model table missing rows:\n%s", table)
	}
	if alpha > zeta {
		t.Errorf("model table should sort alphabetically:\n%s", table)
	}
}

func TestRender_NextReset(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	snap := testSnapshot()
	snap.Accounts[0].Quotas[0] = models.ModelQuota{
		Model:     "model-b",
		Fraction:  models.Fraction(0),
		ResetTime: now.Add(90 * time.Second),
	}
	aggs := aggregate.Compute(snap, now)

	out := Render(snap, &aggs, now)
	if !strings.Contains(out, "Next reset: model-b in 1m 30s") {
		t.Errorf("missing next reset line:\n%s", out)
	}
}
