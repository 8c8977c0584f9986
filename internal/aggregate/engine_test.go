package aggregate

import (
	"testing"
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

func account(email string, quotas ...models.ModelQuota) models.Account {
	return models.Account{Email: email, Status: models.StatusOK, Quotas: quotas}
}

func quota(model string, fraction *float64) models.ModelQuota {
	return models.ModelQuota{Model: model, Fraction: fraction}
}

func TestModelAverages(t *testing.T) {
	tests := []struct {
		name     string
		accounts []models.Account
		want     map[string]*float64
	}{
		{
			name: "simple average",
			accounts: []models.Account{
				account("a@x.com", quota("m1", models.Fraction(0.8))),
				account("b@x.com", quota("m1", models.Fraction(0.4))),
			},
			want: map[string]*float64{"m1": models.Fraction(0.6)},
		},
		{
			name: "nil readings excluded from divisor",
			accounts: []models.Account{
				account("a@x.com", quota("m1", models.Fraction(0.8))),
				account("b@x.com", quota("m1", nil)),
			},
			want: map[string]*float64{"m1": models.Fraction(0.8)},
		},
		{
			name: "all nil maps to nil",
			accounts: []models.Account{
				account("a@x.com", quota("m1", nil)),
				account("b@x.com", quota("m1", nil)),
			},
			want: map[string]*float64{"m1": nil},
		},
		{
			name: "zero counts as a real reading",
			accounts: []models.Account{
				account("a@x.com", quota("m1", models.Fraction(0))),
				account("b@x.com", quota("m1", models.Fraction(1))),
			},
			want: map[string]*float64{"m1": models.Fraction(0.5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ModelAverages(tt.accounts)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d models, want %d", len(got), len(tt.want))
			}
			for id, want := range tt.want {
				gotAvg := got[id]
				if (gotAvg == nil) != (want == nil) {
					t.Fatalf("model %s: got %v, want %v", id, gotAvg, want)
				}
				if want != nil && !almostEqual(*gotAvg, *want) {
					t.Errorf("model %s: got %f, want %f", id, *gotAvg, *want)
				}
			}
		})
	}
}

func TestModelAverages_Order(t *testing.T) {
	accounts := []models.Account{
		account("a@x.com", quota("m2", models.Fraction(0.5)), quota("m1", models.Fraction(0.5))),
		account("b@x.com", quota("m3", models.Fraction(0.5)), quota("m1", models.Fraction(0.5))),
	}
	_, order := ModelAverages(accounts)
	want := []string{"m2", "m1", "m3"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestOverallAverage(t *testing.T) {
	avgs := map[string]*float64{
		"m1": models.Fraction(0.8),
		"m2": models.Fraction(0.4),
		"m3": nil,
	}
	got := OverallAverage(avgs)
	if got == nil || !almostEqual(*got, 0.6) {
		t.Fatalf("got %v, want 0.6", got)
	}

	if OverallAverage(map[string]*float64{"m1": nil}) != nil {
		t.Error("all-nil averages should yield nil overall")
	}
	if OverallAverage(nil) != nil {
		t.Error("empty averages should yield nil overall")
	}
}

func TestFamilyGauge(t *testing.T) {
	tests := []struct {
		name     string
		accounts []models.Account
		want     float64
		wantN    int
	}{
		{
			name: "nil treated as zero",
			accounts: []models.Account{
				account("a@x.com",
					quota("claude-x", models.Fraction(0.5)),
					quota("claude-y", nil)),
			},
			want:  0.25,
			wantN: 1,
		},
		{
			name: "per account mean then unweighted mean",
			accounts: []models.Account{
				account("a@x.com",
					quota("claude-x", models.Fraction(1.0)),
					quota("claude-y", models.Fraction(0.0))),
				account("b@x.com", quota("claude-x", models.Fraction(0.5))),
			},
			want:  0.5,
			wantN: 2,
		},
		{
			name: "accounts without family models do not dilute",
			accounts: []models.Account{
				account("a@x.com", quota("claude-x", models.Fraction(0.8))),
				account("b@x.com", quota("gemini-x", models.Fraction(0.1))),
			},
			want:  0.8,
			wantN: 1,
		},
		{
			name:     "no contributors",
			accounts: []models.Account{account("a@x.com", quota("gemini-x", models.Fraction(0.5)))},
			want:     0,
			wantN:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := FamilyGauge(tt.accounts, models.FamilyClaude)
			if n != tt.wantN {
				t.Fatalf("contributors = %d, want %d", n, tt.wantN)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("gauge = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSoonestFamilyReset(t *testing.T) {
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	accounts := []models.Account{
		account("a@x.com",
			models.ModelQuota{Model: "claude-x", ResetTime: base.Add(2 * time.Hour)},
			models.ModelQuota{Model: "claude-y", ResetTime: base.Add(1 * time.Hour)}),
		account("b@x.com",
			models.ModelQuota{Model: "claude-x", ResetTime: base.Add(3 * time.Hour)}),
	}

	got, ok := SoonestFamilyReset(accounts, models.FamilyClaude)
	if !ok {
		t.Fatal("expected a reset time")
	}
	if !got.Equal(base.Add(1 * time.Hour)) {
		t.Errorf("soonest = %v, want %v", got, base.Add(1*time.Hour))
	}

	if _, ok := SoonestFamilyReset(accounts, models.FamilyGemini); ok {
		t.Error("gemini has no reset times, want ok=false")
	}
}

func TestNextGlobalReset(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	t.Run("earliest exhausted quota wins", func(t *testing.T) {
		accounts := []models.Account{
			account("a@x.com",
				models.ModelQuota{Model: "m1", Fraction: models.Fraction(0), ResetTime: now.Add(10 * time.Minute)}),
			account("b@x.com",
				models.ModelQuota{Model: "m2", Fraction: models.Fraction(0), ResetTime: now.Add(5 * time.Minute)}),
		}
		got := NextGlobalReset(accounts, now)
		if got == nil {
			t.Fatal("expected a reset point")
		}
		if got.Model != "m2" {
			t.Errorf("model = %s, want m2", got.Model)
		}
	})

	t.Run("nonzero fractions never qualify", func(t *testing.T) {
		accounts := []models.Account{
			account("a@x.com",
				models.ModelQuota{Model: "m1", Fraction: models.Fraction(0.01), ResetTime: now.Add(time.Minute)}),
		}
		if got := NextGlobalReset(accounts, now); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("nil fractions never qualify", func(t *testing.T) {
		accounts := []models.Account{
			account("a@x.com",
				models.ModelQuota{Model: "m1", ResetTime: now.Add(time.Minute)}),
		}
		if got := NextGlobalReset(accounts, now); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("past resets never qualify", func(t *testing.T) {
		accounts := []models.Account{
			account("a@x.com",
				models.ModelQuota{Model: "m1", Fraction: models.Fraction(0), ResetTime: now.Add(-time.Minute)}),
		}
		if got := NextGlobalReset(accounts, now); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("ties keep first in snapshot order", func(t *testing.T) {
		at := now.Add(5 * time.Minute)
		accounts := []models.Account{
			account("a@x.com",
				models.ModelQuota{Model: "m1", Fraction: models.Fraction(0), ResetTime: at}),
			account("b@x.com",
				models.ModelQuota{Model: "m2", Fraction: models.Fraction(0), ResetTime: at}),
		}
		got := NextGlobalReset(accounts, now)
		if got == nil || got.Model != "m1" {
			t.Fatalf("got %+v, want m1", got)
		}
	})
}

func TestCompute(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	snap := &models.Snapshot{
		Accounts: []models.Account{
			account("a@x.com", quota("claude-x", models.Fraction(0.8))),
			account("b@x.com",
				quota("claude-x", models.Fraction(0.4)),
				quota("gemini-x", nil)),
		},
		Models: []string{"claude-x", "gemini-x"},
	}

	aggs := Compute(snap, now)

	if avg := aggs.ModelAverages["claude-x"]; avg == nil || !almostEqual(*avg, 0.6) {
		t.Errorf("claude-x average = %v, want 0.6", avg)
	}
	if aggs.ModelAverages["gemini-x"] != nil {
		t.Error("gemini-x average should be nil")
	}
	if aggs.Overall == nil || !almostEqual(*aggs.Overall, 0.6) {
		t.Errorf("overall = %v, want 0.6", aggs.Overall)
	}
	if stat := aggs.Families[models.FamilyClaude]; stat.Accounts != 2 {
		t.Errorf("claude contributors = %d, want 2", stat.Accounts)
	}
	if stat := aggs.Families[models.FamilyGemini]; stat.Gauge != 0 || stat.Accounts != 1 {
		t.Errorf("gemini stat = %+v, want gauge 0 with 1 account", stat)
	}
	if aggs.NextReset != nil {
		t.Errorf("next reset = %+v, want nil", aggs.NextReset)
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
