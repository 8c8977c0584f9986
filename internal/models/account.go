// Package models defines data structures and domain types.
package models

import "time"

// Status represents the fetch status of a single account.
type Status string

const (
	// StatusOK means the account's quota data was fetched successfully.
	StatusOK Status = "ok"
	// StatusRateLimited means the upstream throttled the account but data is usable.
	StatusRateLimited Status = "rate-limited"
	// StatusInvalid means the account's credentials were rejected.
	StatusInvalid Status = "invalid"
	// StatusError means the quota fetch failed for the account.
	StatusError Status = "error"
)

// ParseStatus maps a wire status string onto a known Status.
// Unrecognized values are treated as errors rather than dropped.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusOK, StatusRateLimited, StatusInvalid, StatusError:
		return Status(s)
	default:
		return StatusError
	}
}

// Usable reports whether the account's quota rows carry meaningful data.
func (s Status) Usable() bool {
	return s == StatusOK || s == StatusRateLimited
}

// ModelQuota is the remaining quota for one model on one account.
// A nil Fraction means the value is unknown or unavailable, which is
// distinct from 0 (exhausted). A zero ResetTime means no reset is known.
type ModelQuota struct {
	Model     string    `json:"model"`
	Fraction  *float64  `json:"remainingFraction"`
	ResetTime time.Time `json:"resetTime,omitempty"`
}

// Account is one service account as delivered by a snapshot.
// Quotas preserves the order the snapshot delivered the models in.
type Account struct {
	Email    string       `json:"email"`
	Status   Status       `json:"status"`
	LastUsed time.Time    `json:"lastUsed,omitempty"`
	Quotas   []ModelQuota `json:"quotas"`
	Err      string       `json:"error,omitempty"`
}

// Quota returns the account's quota entry for a model id.
func (a Account) Quota(model string) (ModelQuota, bool) {
	for _, q := range a.Quotas {
		if q.Model == model {
			return q, true
		}
	}
	return ModelQuota{}, false
}

// Fraction returns a pointer to a copy of f. Convenience for building
// literals and test fixtures around the nullable quota fraction.
func Fraction(f float64) *float64 {
	return &f
}
