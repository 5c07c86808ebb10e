package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps tables in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	tables   map[string][][]string
	readOnly bool
	fetches  map[string]int
}

// NewMemoryStore creates a store seeded with tables (header row first)
func NewMemoryStore(tables map[string][][]string) *MemoryStore {
	s := &MemoryStore{
		tables:  make(map[string][][]string, len(tables)),
		fetches: make(map[string]int),
	}
	for name, rows := range tables {
		s.tables[name] = copyRows(rows)
	}
	return s
}

// ReadOnly marks the store read-only and returns it
func (s *MemoryStore) ReadOnly() *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly = true
	return s
}

func (s *MemoryStore) ID() string { return fmt.Sprintf("memory:%p", s) }

func (s *MemoryStore) Capabilities() Capabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Capabilities{Append: !s.readOnly}
}

// Fetch returns a copy of the table
func (s *MemoryStore) Fetch(ctx context.Context, table string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	s.fetches[table]++
	return copyRows(rows), nil
}

// Append adds a row to an existing table
func (s *MemoryStore) Append(ctx context.Context, table string, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return ErrReadOnly
	}
	rows, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	s.tables[table] = append(rows, append([]string(nil), values...))
	return nil
}

// Fetches reports how many times a table was read from the store
func (s *MemoryStore) Fetches(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches[table]
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
