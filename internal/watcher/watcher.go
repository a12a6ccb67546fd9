// Package watcher reports changes to the page directory so that open
// browsers can reload. Bursts of changes are debounced into one batch.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/practicals/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches directories and hands debounced batches of changes to
// its handlers.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	batcher  *batcher
	filters  []FileFilter
	handlers []ChangeHandler
	logger   logging.Logger
	mutex    sync.RWMutex
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter determines if a file should be watched
type FileFilter func(path string) bool

// ChangeHandler handles file change events
type ChangeHandler func(events []ChangeEvent) error

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &FileWatcher{
		watcher: watcher,
		batcher: newBatcher(debounceDelay),
		logger:  logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a file filter
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath adds a directory to watch. Only the directory itself is watched;
// the page directory is flat.
func (fw *FileWatcher) AddPath(path string) error {
	cleanPath, err := validatePath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return fw.watcher.Add(cleanPath)
}

// validatePath cleans a path and rejects traversal segments.
func validatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("path contains directory traversal: %s", path)
		}
	}
	return filepath.Clean(path), nil
}

// Start runs the watcher until ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.batcher.run(ctx)
	go fw.dispatch(ctx)
	go fw.watchLoop(ctx)

	return nil
}

// Stop closes the underlying fsnotify watcher. Pending changes are dropped.
func (fw *FileWatcher) Stop() error {
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	fw.mutex.RLock()
	filters := fw.filters
	fw.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(event.Name) {
			return
		}
	}

	fw.batcher.push(toChangeEvent(event))
}

func toChangeEvent(event fsnotify.Event) ChangeEvent {
	var modTime time.Time
	var size int64
	if info, err := os.Stat(event.Name); err == nil {
		modTime = info.ModTime()
		size = info.Size()
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}

	return ChangeEvent{
		Type:    eventType,
		Path:    event.Name,
		ModTime: modTime,
		Size:    size,
	}
}

func (fw *FileWatcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.batcher.out:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			fw.logger.Debug(ctx, "Page directory changed", "events", len(events))
			for _, handler := range handlers {
				if err := handler(events); err != nil {
					fw.logger.Error(ctx, err, "File watcher handler failed")
				}
			}
		}
	}
}

// batcher releases queued events once none has arrived for delay.
type batcher struct {
	delay time.Duration
	in    chan ChangeEvent
	out   chan []ChangeEvent
}

func newBatcher(delay time.Duration) *batcher {
	return &batcher{
		delay: delay,
		in:    make(chan ChangeEvent, 100),
		out:   make(chan []ChangeEvent, 10),
	}
}

// push queues an event, dropping it when the queue is full.
func (b *batcher) push(event ChangeEvent) {
	select {
	case b.in <- event:
	default:
	}
}

// run owns the pending batch until ctx is done.
func (b *batcher) run(ctx context.Context) {
	var (
		pending batch
		timer   *time.Timer
		fire    <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event := <-b.in:
			pending.add(event)
			if timer == nil {
				timer = time.NewTimer(b.delay)
			} else {
				timer.Reset(b.delay)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if events := pending.take(); len(events) > 0 {
				select {
				case b.out <- events:
				default:
				}
			}
		}
	}
}

// batch holds one event per path: the latest one, at the position the path
// was first seen.
type batch struct {
	order  []string
	latest map[string]ChangeEvent
}

func (b *batch) add(event ChangeEvent) {
	if b.latest == nil {
		b.latest = make(map[string]ChangeEvent)
	}
	if _, seen := b.latest[event.Path]; !seen {
		b.order = append(b.order, event.Path)
	}
	b.latest[event.Path] = event
}

// take returns the batch and empties it.
func (b *batch) take() []ChangeEvent {
	events := make([]ChangeEvent, 0, len(b.order))
	for _, path := range b.order {
		events = append(events, b.latest[path])
	}
	*b = batch{}
	return events
}

// ExtensionFilter keeps files with the given extension (without the dot).
func ExtensionFilter(ext string) FileFilter {
	suffix := "." + ext
	return func(path string) bool {
		return filepath.Ext(path) == suffix
	}
}

// StaticFilter keeps stylesheets and scripts.
func StaticFilter(path string) bool {
	switch filepath.Ext(path) {
	case ".css", ".js":
		return true
	default:
		return false
	}
}

// AnyFilter keeps a path when any of filters keeps it.
func AnyFilter(filters ...FileFilter) FileFilter {
	return func(path string) bool {
		for _, f := range filters {
			if f(path) {
				return true
			}
		}
		return false
	}
}

// NoHiddenFilter drops dot files and editor swap files.
func NoHiddenFilter(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}
