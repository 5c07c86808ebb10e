package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DirStore keeps each table as <dir>/<table>.csv
type DirStore struct {
	dir string
	mu  sync.Mutex
}

// OpenDir opens an existing directory of CSV tables
func OpenDir(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir store: directory is required: %w", ErrUnavailable)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dir store: %w: %w", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dir store: %s is not a directory: %w", dir, ErrUnavailable)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) ID() string { return "dir:" + s.dir }

func (s *DirStore) Capabilities() Capabilities { return Capabilities{Append: true} }

// Dir returns the directory being served
func (s *DirStore) Dir() string { return s.dir }

// Fetch parses the table's CSV file
func (s *DirStore) Fetch(ctx context.Context, table string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path(table))
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", table, ErrUnavailable, err)
	}

	rows, err := ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	return rows, nil
}

// Append writes values as a new CSV record at the end of the table's file
func (s *DirStore) Append(ctx context.Context, table string, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(table), os.O_RDWR|os.O_APPEND, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: open: %w", table, err)
	}
	defer func() { _ = f.Close() }()

	// Files saved by spreadsheet tools often lack the final newline
	needsNewline, err := missingTrailingNewline(f)
	if err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	if needsNewline {
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("%s: write: %w", table, err)
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(values); err != nil {
		return fmt.Errorf("%s: write: %w", table, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%s: flush: %w", table, err)
	}
	return nil
}

func (s *DirStore) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

func missingTrailingNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read tail: %w", err)
	}
	return last[0] != '\n', nil
}

// Watcher reports tables whose CSV file changed outside this process so that
// cached snapshots can be dropped before their TTL runs out
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	onChange    func(table string)
	logger      *zap.Logger
	debounceDur time.Duration
	pending     map[string]time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a watcher for dir. onChange is called with the table
// name once per burst of writes.
func NewWatcher(dir string, onChange func(table string), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		watcher:     fw,
		dir:         dir,
		onChange:    onChange,
		logger:      logger,
		debounceDur: 200 * time.Millisecond,
		pending:     make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Debug("watching catalog directory", zap.String("dir", w.dir))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounceDur / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush(false)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".csv") {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	table := strings.TrimSuffix(filepath.Base(event.Name), ".csv")
	w.mu.Lock()
	w.pending[table] = time.Now()
	w.mu.Unlock()
}

// flush reports tables that have been quiet for the debounce window
func (w *Watcher) flush(all bool) {
	now := time.Now()
	var ready []string

	w.mu.Lock()
	for table, at := range w.pending {
		if all || now.Sub(at) >= w.debounceDur {
			ready = append(ready, table)
			delete(w.pending, table)
		}
	}
	w.mu.Unlock()

	for _, table := range ready {
		w.logger.Debug("catalog table changed on disk", zap.String("table", table))
		w.onChange(table)
	}
}
