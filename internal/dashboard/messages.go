// Package dashboard implements the live terminal view: account cards,
// the comparison matrix, family gauges and reset countdowns, updating
// on refresh events and a once-per-second tick.
package dashboard

import (
	"time"

	"github.com/quotadeck/quotadeck/internal/accounts"
	"github.com/quotadeck/quotadeck/internal/controller"
)

// TickMsg drives the countdown re-render.
type TickMsg struct {
	Time time.Time
}

// ControllerEventMsg carries a refresh lifecycle event.
type ControllerEventMsg struct {
	Event controller.Event
}

// AccountsEventMsg carries an accounts file change event.
type AccountsEventMsg struct {
	Event accounts.Event
}

// SearchDebouncedMsg fires when search input has been quiescent long
// enough to apply. Seq discards stale timers after further typing.
type SearchDebouncedMsg struct {
	Seq int
}
