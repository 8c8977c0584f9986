package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestLoadSnapshot_Empty(t *testing.T) {
	cache := openTestCache(t)

	snap, err := cache.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap != nil {
		t.Errorf("empty cache should yield nil snapshot, got %+v", snap)
	}
}

func TestReplaceAndLoadSnapshot(t *testing.T) {
	cache := openTestCache(t)

	fetched := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	reset := fetched.Add(time.Hour)
	snap := &models.Snapshot{
		Models:    []string{"claude-x", "gemini-y"},
		FetchedAt: fetched,
		Latency:   320 * time.Millisecond,
		Accounts: []models.Account{
			{
				Email:    "alice@example.com",
				Status:   models.StatusOK,
				LastUsed: fetched.Add(-time.Hour),
				Quotas: []models.ModelQuota{
					{Model: "claude-x", Fraction: models.Fraction(0.8), ResetTime: reset},
					{Model: "gemini-y", Fraction: nil},
				},
			},
			{
				Email:  "bob@example.com",
				Status: models.StatusError,
				Err:    "fetch failed",
			},
		},
	}

	if err := cache.ReplaceSnapshot(snap); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}

	got, err := cache.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got == nil {
		t.Fatal("expected a snapshot")
	}

	if !got.FetchedAt.Equal(fetched) {
		t.Errorf("fetchedAt = %v, want %v", got.FetchedAt, fetched)
	}
	if got.Latency != 320*time.Millisecond {
		t.Errorf("latency = %v", got.Latency)
	}
	if len(got.Models) != 2 || got.Models[0] != "claude-x" {
		t.Errorf("models = %v", got.Models)
	}
	if len(got.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(got.Accounts))
	}

	alice := got.Accounts[0]
	if alice.Email != "alice@example.com" || alice.Status != models.StatusOK {
		t.Errorf("alice = %+v", alice)
	}
	if len(alice.Quotas) != 2 {
		t.Fatalf("alice quotas = %+v", alice.Quotas)
	}
	if q := alice.Quotas[0]; q.Fraction == nil || *q.Fraction != 0.8 || !q.ResetTime.Equal(reset) {
		t.Errorf("quota[0] = %+v", q)
	}
	if alice.Quotas[1].Fraction != nil {
		t.Error("nil fraction should round-trip as nil")
	}

	bob := got.Accounts[1]
	if bob.Status != models.StatusError || bob.Err != "fetch failed" {
		t.Errorf("bob = %+v", bob)
	}
}

func TestReplaceSnapshot_Overwrites(t *testing.T) {
	cache := openTestCache(t)

	first := &models.Snapshot{
		Models:    []string{"m1"},
		FetchedAt: time.Now().UTC(),
		Accounts: []models.Account{
			{Email: "a@x.com", Status: models.StatusOK,
				Quotas: []models.ModelQuota{{Model: "m1", Fraction: models.Fraction(0.5)}}},
		},
	}
	second := &models.Snapshot{
		Models:    []string{"m2"},
		FetchedAt: time.Now().UTC(),
		Accounts: []models.Account{
			{Email: "b@x.com", Status: models.StatusOK,
				Quotas: []models.ModelQuota{{Model: "m2", Fraction: models.Fraction(0.9)}}},
		},
	}

	if err := cache.ReplaceSnapshot(first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := cache.ReplaceSnapshot(second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := cache.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].Email != "b@x.com" {
		t.Errorf("accounts = %+v, want only the second snapshot's", got.Accounts)
	}
	if len(got.Models) != 1 || got.Models[0] != "m2" {
		t.Errorf("models = %v", got.Models)
	}
}
