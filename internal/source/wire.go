package source

import (
	"encoding/json"
	"time"
)

// wireQuota is a single model quota as the upstream serializes it.
// Both fields are optional and routinely malformed; anything we can't
// parse decodes to the zero reading instead of failing the account.
type wireQuota struct {
	RemainingFraction json.RawMessage `json:"remainingFraction"`
	ResetTime         json.RawMessage `json:"resetTime"`
}

// wireHealth is the per-account health endpoint payload.
type wireHealth struct {
	Status   string               `json:"status"`
	LastUsed json.RawMessage      `json:"lastUsed"`
	Models   map[string]wireQuota `json:"models"`
}

// wireLimits is the per-account limits endpoint payload.
type wireLimits struct {
	Models []string             `json:"models"`
	Limits map[string]wireQuota `json:"limits"`
}

func (w wireQuota) toField() QuotaField {
	return QuotaField{
		Fraction:  parseFraction(w.RemainingFraction),
		ResetTime: parseTimeField(w.ResetTime),
	}
}

func toFields(m map[string]wireQuota) map[string]QuotaField {
	fields := make(map[string]QuotaField, len(m))
	for id, q := range m {
		fields[id] = q.toField()
	}
	return fields
}

// parseFraction decodes a remaining fraction. Missing, null or
// non-numeric values mean "unknown" and map to nil.
func parseFraction(data json.RawMessage) *float64 {
	if len(data) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}

// parseTimeField parses a JSON time value as either an ISO string or a
// Unix timestamp in seconds or milliseconds. Unparseable values map to
// the zero time.
func parseTimeField(data json.RawMessage) time.Time {
	if len(data) == 0 {
		return time.Time{}
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		if t, err := time.Parse(time.RFC3339, strVal); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339Nano, strVal); err == nil {
			return t
		}
		return time.Time{}
	}

	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		if numVal <= 0 {
			return time.Time{}
		}
		if numVal > 1e12 {
			return time.UnixMilli(int64(numVal))
		}
		return time.Unix(int64(numVal), 0)
	}

	return time.Time{}
}
