package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotadeck/quotadeck/internal/accounts"
	"github.com/quotadeck/quotadeck/internal/config"
	"github.com/quotadeck/quotadeck/internal/controller"
	"github.com/quotadeck/quotadeck/internal/countdown"
	"github.com/quotadeck/quotadeck/internal/filter"
	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/ui/components"
	"github.com/quotadeck/quotadeck/internal/viewmodel"
)

// Model is the bubbletea model for the live dashboard.
type Model struct {
	ctrl *controller.Controller
	svc  *accounts.Service
	cfg  *config.Config
	keys KeyMap

	search    textinput.Model
	searching bool
	searchSeq int

	spinner  components.LoadingSpinner
	history  *viewmodel.History
	sched    *countdown.Scheduler
	selected int

	width  int
	height int

	now func() time.Time
}

// New creates the dashboard model. The controller's auto-refresh loop
// is armed here so a fresh dashboard starts ticking immediately.
func New(ctrl *controller.Controller, svc *accounts.Service, cfg *config.Config) Model {
	search := textinput.New()
	search.Placeholder = "filter by email"
	search.CharLimit = 64
	search.Width = 30

	ctrl.StartAutoRefresh(cfg.RefreshInterval)

	return Model{
		ctrl:    ctrl,
		svc:     svc,
		cfg:     cfg,
		keys:    DefaultKeyMap(),
		search:  search,
		spinner: components.NewSpinner("refreshing..."),
		history: viewmodel.NewHistory(viewmodel.DefaultHistorySize),
		sched:   countdown.NewScheduler(cfg.CountdownInterval),
		now:     time.Now,
	}
}

// Init triggers the first refresh and arms the event and tick loops.
func (m Model) Init() tea.Cmd {
	m.sched.Start()
	cmds := []tea.Cmd{
		m.spinner.Init(),
		waitForCountdownTick(m.sched.Ticks()),
		waitForControllerEvent(m.ctrl.Events()),
		func() tea.Msg {
			m.ctrl.TryRefresh()
			return nil
		},
	}
	if m.svc != nil {
		cmds = append(cmds, waitForAccountsEvent(m.svc.Events()))
	}
	return tea.Batch(cmds...)
}

// Update handles all dashboard messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		// Countdowns re-render on every tick; the view derives them
		// from the snapshot each time.
		return m, waitForCountdownTick(m.sched.Ticks())

	case ControllerEventMsg:
		switch msg.Event.Type {
		case controller.EventSnapshotReplaced:
			if aggs := m.ctrl.Aggregates(); aggs != nil {
				m.history.Push(aggs.Overall)
			}
			m.spinner.SetLabel("refreshing...")
		case controller.EventRefreshFailed:
			// The next attempt after a failure reads as a retry.
			m.spinner.SetLabel("retrying...")
		}
		return m, waitForControllerEvent(m.ctrl.Events())

	case AccountsEventMsg:
		if msg.Event.Type == accounts.EventChanged {
			m.ctrl.TryRefresh()
		}
		return m, waitForAccountsEvent(m.svc.Events())

	case SearchDebouncedMsg:
		if msg.Seq == m.searchSeq {
			m.ctrl.SetQuery(m.search.Value())
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// updateSearch routes keys into the search input. Every edit rearms the
// debounce timer; only the last one applies the query.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.searchSeq++
		m.ctrl.SetQuery("")
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		m.ctrl.SetQuery(m.search.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.searchSeq++
	return m, tea.Batch(cmd, searchDebounceCmd(m.searchSeq, m.cfg.SearchDebounce))
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sched.Stop()
		m.ctrl.Close()
		if m.svc != nil {
			_ = m.svc.Close()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.TryRefresh()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Family):
		m.ctrl.SetFamily(nextFamily(m.ctrl.ViewState().Family))
		m.selected = 0
		return m, nil

	case key.Matches(msg, m.keys.Expand):
		if email, ok := m.selectedEmail(); ok {
			m.ctrl.ToggleExpanded(email)
		}
		return m, nil

	case key.Matches(msg, m.keys.AutoRefresh):
		if m.ctrl.AutoRefreshActive() {
			m.ctrl.StopAutoRefresh()
		} else {
			m.ctrl.StartAutoRefresh(m.cfg.RefreshInterval)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.visibleAccounts())-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.DismissError()
		return m, nil
	}

	return m, nil
}

// nextFamily cycles all -> claude -> gemini -> all.
func nextFamily(current models.Family) models.Family {
	switch current {
	case filter.FamilyAll, "":
		return models.FamilyClaude
	case models.FamilyClaude:
		return models.FamilyGemini
	default:
		return filter.FamilyAll
	}
}

func (m Model) visibleAccounts() []models.Account {
	snap := m.ctrl.Snapshot()
	if snap == nil {
		return nil
	}
	return m.ctrl.Filter().Apply(snap).Accounts
}

func (m Model) selectedEmail() (string, bool) {
	visible := m.visibleAccounts()
	if m.selected < 0 || m.selected >= len(visible) {
		return "", false
	}
	return visible[m.selected].Email, true
}
