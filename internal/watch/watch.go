// Package watch reports writes to the notes database made by other processes.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay coalesces bursts of writes into one event.
const DefaultDelay = 150 * time.Millisecond

// Event signals that the database changed on disk.
type Event struct {
	At time.Time
}

// Watcher watches a SQLite database file and its WAL.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event
	done   chan struct{}
	logger *zap.Logger

	closeOnce sync.Once
}

// New starts watching the directory holding dbPath. Writes to the database
// or its -wal file are coalesced over delay into a single Event.
func New(dbPath string, delay time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(dbPath)); err != nil {
		_ = fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:     fs,
		events: make(chan Event, 1),
		done:   make(chan struct{}),
		logger: logger.Named("watch"),
	}
	go w.loop(filepath.Clean(dbPath), delay)
	return w, nil
}

// Events delivers change notifications. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fs.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) loop(dbPath string, delay time.Duration) {
	defer close(w.done)
	defer close(w.events)

	walPath := dbPath + "-wal"
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if name != dbPath && name != walPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(delay)

		case <-timer.C:
			select {
			case w.events <- Event{At: time.Now()}:
			default:
				// The consumer has not drained the previous event yet.
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}
