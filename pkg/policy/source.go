package policy

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bramblewiki/bramble/pkg/event"
)

// Source hands out the current policy table and supports atomic replacement.
// Evaluators read through Current on every check, so a reload takes effect
// on the next evaluation without coordination.
type Source struct {
	current    atomic.Pointer[Table]
	path       string
	dispatcher *event.Dispatcher
	watcher    *fsnotify.Watcher
	done       chan struct{}
}

// NewSource creates a source serving the given table. dispatcher may be nil
// when nothing needs reload notifications.
func NewSource(t *Table, dispatcher *event.Dispatcher) *Source {
	s := &Source{dispatcher: dispatcher, done: make(chan struct{})}
	s.current.Store(t)
	return s
}

// LoadFile creates a source from a YAML policy file.
func LoadFile(path string, dispatcher *event.Dispatcher) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}
	s := NewSource(t, dispatcher)
	s.path = path
	return s, nil
}

// Current returns the active table.
func (s *Source) Current() *Table {
	return s.current.Load()
}

// Replace swaps in a new table and publishes a policy.reload event.
func (s *Source) Replace(t *Table) {
	s.current.Store(t)
	if s.dispatcher != nil {
		s.dispatcher.Publish(event.Event{Type: event.TypePolicyReload, At: time.Now()})
	}
}

// Reload re-reads the backing file. A parse failure leaves the active table
// untouched.
func (s *Source) Reload() error {
	if s.path == "" {
		return fmt.Errorf("policy source has no backing file")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return fmt.Errorf("policy file %s: %w", s.path, err)
	}
	s.Replace(t)
	return nil
}

// Watch starts watching the backing file and reloads it on change. onError
// receives reload failures (nil is allowed); the previous table stays active
// after a failed reload.
func (s *Source) Watch(onError func(error)) error {
	if s.path == "" {
		return fmt.Errorf("policy source has no backing file")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create policy watcher: %w", err)
	}
	if err := w.Add(s.path); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch policy file: %w", err)
	}
	s.watcher = w

	go func() {
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.Reload(); err != nil && onError != nil {
					onError(err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()
	return nil
}

// Close stops the watcher, if one is running.
func (s *Source) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
