package viewmodel

// History is a session-only ring of overall-average samples feeding the
// dashboard sparkline. Nothing here is persisted; a restart begins an
// empty history.
type History struct {
	samples []float64
	max     int
}

// DefaultHistorySize bounds the sparkline to roughly two hours of
// minutely refreshes.
const DefaultHistorySize = 120

// NewHistory creates a history holding at most max samples.
func NewHistory(max int) *History {
	if max < 1 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Push records one overall average. Unknown overall values are skipped
// so the sparkline never dips to a fake zero.
func (h *History) Push(overall *float64) {
	if overall == nil {
		return
	}
	h.samples = append(h.samples, *overall*100)
	if len(h.samples) > h.max {
		h.samples = h.samples[len(h.samples)-h.max:]
	}
}

// Samples returns the recorded values in percent, oldest first.
func (h *History) Samples() []float64 {
	out := make([]float64, len(h.samples))
	copy(out, h.samples)
	return out
}

// Len returns the number of recorded samples.
func (h *History) Len() int {
	return len(h.samples)
}
