// Package accounts loads the monitored-accounts file and watches it for
// external edits.
package accounts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quotadeck/quotadeck/internal/logger"
)

// Account is one configured service account: the identity we report on
// plus the credential used to fetch its quota.
type Account struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

// File is the on-disk accounts file structure.
type File struct {
	Accounts []Account `json:"accounts"`
	Version  int       `json:"version,omitempty"`
}

// Event signals an accounts-file change or a watcher error.
type Event struct {
	Type  EventType
	Error error
}

// EventType defines the type of accounts event.
type EventType int

const (
	EventLoaded EventType = iota
	EventChanged
	EventError
)

const watchDebounce = 500 * time.Millisecond

// Service provides read access to the accounts file with change
// notifications. It never writes the file; account management is
// someone else's job.
type Service struct {
	mu            sync.RWMutex
	accounts      []Account
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New loads the accounts file and starts watching it.
func New(filePath string) (*Service, error) {
	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventLoaded})
	return s, nil
}

// Load reads the accounts file once, without watching.
func Load(filePath string) ([]Account, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file %s: %w", filePath, err)
	}
	return f.Accounts, nil
}

// Events returns the event channel for subscribing to account changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// List returns a copy of the configured accounts.
func (s *Service) List() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]Account, len(s.accounts))
	copy(accounts, s.accounts)
	return accounts
}

// Count returns the number of configured accounts.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// ByEmail returns the account with the given email, or nil.
func (s *Service) ByEmail(email string) *Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.accounts {
		if s.accounts[i].Email == email {
			acc := s.accounts[i]
			return &acc
		}
	}
	return nil
}

func (s *Service) load() error {
	accounts, err := Load(s.filePath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.accounts = accounts
	s.mu.Unlock()
	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory: editors replace the file, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		_ = watcher.Close()
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.scheduleReload()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// scheduleReload debounces bursts of file events into one reload.
func (s *Service) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(watchDebounce, func() {
		if err := s.load(); err != nil {
			logger.Error("failed to reload accounts", "path", s.filePath, "error", err)
			s.sendEvent(Event{Type: EventError, Error: err})
			return
		}
		s.sendEvent(Event{Type: EventChanged})
	})
}

func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
	}
}

// Close stops the watcher and event delivery.
func (s *Service) Close() error {
	close(s.stopChan)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
