// Package controller owns the refresh lifecycle: the single in-flight
// fetch rule, atomic snapshot replacement, the auto-refresh timer and
// the error/retry state the banner renders from.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/quotadeck/quotadeck/internal/aggregate"
	"github.com/quotadeck/quotadeck/internal/db"
	"github.com/quotadeck/quotadeck/internal/filter"
	"github.com/quotadeck/quotadeck/internal/logger"
	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/source"
)

// State is the refresh state machine's current node.
type State int

const (
	// StateIdle means no refresh is running and the last one succeeded
	// (or none has run yet).
	StateIdle State = iota
	// StateLoading means exactly one refresh is in flight.
	StateLoading
	// StateError means the last refresh failed; the previous snapshot
	// is still displayed and a banner carries the message.
	StateError
)

// EventType defines the type of controller event.
type EventType int

const (
	// EventRefreshStarted is emitted when a refresh begins.
	EventRefreshStarted EventType = iota
	// EventSnapshotReplaced is emitted after a successful refresh.
	EventSnapshotReplaced
	// EventRefreshFailed is emitted when a refresh aborts wholesale.
	EventRefreshFailed
)

// Event is a controller lifecycle notification.
type Event struct {
	Type EventType
	Err  error
}

// ErrRefreshInFlight is returned by Refresh when another refresh is
// already running; the trigger is dropped, not queued.
var ErrRefreshInFlight = errors.New("refresh already in flight")

// ViewState is the presentation state that survives snapshot
// replacement. Identities are keyed by email and family string, never
// by snapshot indices, so a refresh can't clobber them.
type ViewState struct {
	Family      models.Family
	Query       string
	Expanded    map[string]bool
	Loading     bool
	LastError   string
	LastUpdated time.Time
}

// Notifier delivers out-of-band alerts when gauges cross thresholds.
type Notifier interface {
	Notify(title, message string)
}

// Controller drives refreshes against a snapshot source.
type Controller struct {
	src    source.Source
	cache  *db.Cache
	notify Notifier
	now    func() time.Time

	mu          sync.Mutex
	state       State
	snap        *models.Snapshot
	aggs        *aggregate.Aggregates
	family      models.Family
	query       string
	expanded    map[string]bool
	lastError   string
	lastUpdated time.Time
	prevGauges  map[models.Family]float64

	events   chan Event
	autoStop chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithCache persists each successful snapshot to the given cache.
func WithCache(cache *db.Cache) Option {
	return func(c *Controller) { c.cache = cache }
}

// WithNotifier enables threshold notifications.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

// WithClock overrides the controller's clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates an idle controller with no snapshot.
func New(src source.Source, opts ...Option) *Controller {
	c := &Controller{
		src:      src,
		now:      time.Now,
		family:   filter.FamilyAll,
		expanded: make(map[string]bool),
		events:   make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the controller's event channel.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// State returns the current refresh state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current snapshot, nil before the first refresh.
// Snapshots are immutable so sharing the pointer is safe.
func (c *Controller) Snapshot() *models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Aggregates returns the aggregates computed from the current snapshot.
func (c *Controller) Aggregates() *aggregate.Aggregates {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aggs
}

// ViewState returns a copy of the presentation state.
func (c *Controller) ViewState() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	expanded := make(map[string]bool, len(c.expanded))
	for k, v := range c.expanded {
		expanded[k] = v
	}
	return ViewState{
		Family:      c.family,
		Query:       c.query,
		Expanded:    expanded,
		Loading:     c.state == StateLoading,
		LastError:   c.lastError,
		LastUpdated: c.lastUpdated,
	}
}

// Filter returns the filter matching the current view state.
func (c *Controller) Filter() filter.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filter.Filter{Family: c.family, Query: c.query}
}

// SetFamily narrows the view to one model family.
func (c *Controller) SetFamily(f models.Family) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.family = f
}

// SetQuery sets the account search query.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// ToggleExpanded flips an account card's expanded state.
func (c *Controller) ToggleExpanded(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expanded[email] {
		delete(c.expanded, email)
	} else {
		c.expanded[email] = true
	}
}

// DismissError clears the error banner without retrying.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateError {
		c.state = StateIdle
	}
	c.lastError = ""
}

// SeedSnapshot installs a cached snapshot when nothing has been fetched
// yet. A seeded snapshot never overwrites live data.
func (c *Controller) SeedSnapshot(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap != nil || c.state == StateLoading {
		return
	}
	aggs := aggregate.Compute(snap, c.now())
	c.snap = snap
	c.aggs = &aggs
	c.lastUpdated = snap.FetchedAt
}

// TryRefresh starts an asynchronous refresh unless one is already in
// flight, in which case the trigger is dropped. Returns whether a
// refresh was started.
func (c *Controller) TryRefresh() bool {
	if !c.beginRefresh() {
		return false
	}
	go func() { _ = c.runRefresh(context.Background()) }()
	return true
}

// Refresh runs one refresh synchronously. When another refresh is in
// flight the trigger is dropped and ErrRefreshInFlight is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.beginRefresh() {
		return ErrRefreshInFlight
	}
	return c.runRefresh(ctx)
}

func (c *Controller) beginRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateLoading {
		return false
	}
	c.state = StateLoading
	c.sendEvent(Event{Type: EventRefreshStarted})
	return true
}

// runRefresh issues the two source reads concurrently and applies the
// all-or-nothing rule: if either fails, the previous snapshot and
// aggregates stay untouched.
func (c *Controller) runRefresh(ctx context.Context) error {
	var (
		sum    *source.Summary
		lim    *source.Limits
		sumErr error
		limErr error
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sum, sumErr = c.src.Summary(ctx)
	}()
	go func() {
		defer wg.Done()
		lim, limErr = c.src.Limits(ctx)
	}()
	wg.Wait()

	err := sumErr
	if err == nil {
		err = limErr
	}
	if err != nil {
		c.mu.Lock()
		c.state = StateError
		c.lastError = err.Error()
		c.sendEvent(Event{Type: EventRefreshFailed, Err: err})
		c.mu.Unlock()
		return err
	}

	now := c.now()
	snap := source.BuildSnapshot(sum, lim, now)
	aggs := aggregate.Compute(snap, now)

	c.mu.Lock()
	prev := c.prevGauges
	c.snap = snap
	c.aggs = &aggs
	c.state = StateIdle
	c.lastError = ""
	c.lastUpdated = now
	c.prevGauges = currentGauges(aggs)
	c.sendEvent(Event{Type: EventSnapshotReplaced})
	c.mu.Unlock()

	c.checkNotifications(prev, aggs)

	if c.cache != nil {
		if err := c.cache.ReplaceSnapshot(snap); err != nil {
			logger.Warn("failed to cache snapshot", "error", err)
		}
	}
	return nil
}

// StartAutoRefresh arms the recurring refresh timer, canceling any
// previous one first so at most one loop ever runs.
func (c *Controller) StartAutoRefresh(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopAutoLocked()
	stop := make(chan struct{})
	c.autoStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.TryRefresh()
			case <-stop:
				return
			}
		}
	}()
}

// StopAutoRefresh cancels the recurring refresh timer.
func (c *Controller) StopAutoRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopAutoLocked()
}

// AutoRefreshActive reports whether the recurring timer is armed.
func (c *Controller) AutoRefreshActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoStop != nil
}

func (c *Controller) stopAutoLocked() {
	if c.autoStop != nil {
		close(c.autoStop)
		c.autoStop = nil
	}
}

// sendEvent delivers an event without blocking; a lagging consumer
// drops events rather than stalling a refresh.
func (c *Controller) sendEvent(event Event) {
	select {
	case c.events <- event:
	default:
	}
}

// Close stops the auto-refresh loop.
func (c *Controller) Close() {
	c.StopAutoRefresh()
}
