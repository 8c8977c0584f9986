package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotadeck/quotadeck/internal/accounts"
	"github.com/quotadeck/quotadeck/internal/controller"
)

// waitForCountdownTick blocks on the countdown scheduler's next tick.
func waitForCountdownTick(ch <-chan time.Time) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return TickMsg{Time: t}
	}
}

// waitForControllerEvent blocks on the next refresh lifecycle event.
func waitForControllerEvent(ch <-chan controller.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ControllerEventMsg{Event: event}
	}
}

// waitForAccountsEvent blocks on the next accounts file event.
func waitForAccountsEvent(ch <-chan accounts.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return AccountsEventMsg{Event: event}
	}
}

// searchDebounceCmd schedules the debounced search application.
func searchDebounceCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return SearchDebouncedMsg{Seq: seq}
	})
}
