package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/proposta/internal/pipeline"
)

// mockGenerator implements Generator
type mockGenerator struct {
	fail  map[string]bool
	delay time.Duration
}

func (m *mockGenerator) GenerateFile(ctx context.Context, path string) (*pipeline.Result, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.fail[path] {
		return nil, errors.New("generate error")
	}
	return &pipeline.Result{Source: path, OutputPath: strings.TrimSuffix(path, ".yaml") + ".html"}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBatchProcessor_ProcessFiles(t *testing.T) {
	processor := NewBatchProcessor(&mockGenerator{}, 2, nil)

	paths := []string{"a.yaml", "b.yaml", "c.yaml", "d.yaml", "e.yaml"}
	results := processor.ProcessFiles(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("result %d: expected %s, got %s", i, paths[i], res.Path)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
		if res.Result == nil {
			t.Errorf("expected result for %s", res.Path)
		}
	}
}

func TestBatchProcessor_ProcessFiles_PartialFailure(t *testing.T) {
	gen := &mockGenerator{fail: map[string]bool{"b.yaml": true}}
	processor := NewBatchProcessor(gen, 3, nil)

	results := processor.ProcessFiles(context.Background(), []string{"a.yaml", "b.yaml", "c.yaml"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].Error == nil {
		t.Error("expected error for b.yaml")
	}
	if results[1].Result != nil {
		t.Error("expected nil result on error")
	}
	if results[0].Error != nil || results[2].Error != nil {
		t.Error("a failing form should not affect the others")
	}
}

func TestBatchProcessor_ProcessFiles_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockGenerator{}, 2, nil)

	results := processor.ProcessFiles(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockGenerator{delay: 50 * time.Millisecond}, 2, nil)
	paths := []string{"a.yaml", "b.yaml", "c.yaml"}
	results := processor.ProcessFiles(ctx, paths)

	if len(results) != len(paths) {
		t.Fatalf("expected every form to be reported, got %d", len(results))
	}
	for _, res := range results {
		if res.Error == nil {
			t.Errorf("expected cancellation error for %s", res.Path)
		}
	}
}

func TestReadFormList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "forms.txt")
	writeFile(t, list, "a.yaml\n# comment\n\n  b.yaml  \n/abs/c.yaml\na.yaml\n")

	paths, err := ReadFormList(list)
	if err != nil {
		t.Fatalf("ReadFormList failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml"), "/abs/c.yaml"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d: %v", len(expected), len(paths), paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadFormList_NonExistent(t *testing.T) {
	if _, err := ReadFormList("no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "forms.txt")
	writeFile(t, list, "one.yaml\ntwo.yaml\n")

	processor := NewBatchProcessor(&mockGenerator{}, 2, nil)
	results, err := processor.ProcessList(context.Background(), list)
	if err != nil {
		t.Fatalf("ProcessList failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yml"), "")
	writeFile(t, filepath.Join(dir, "a.yaml"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}
	single := filepath.Join(t.TempDir(), "x.yaml")
	writeFile(t, single, "")

	paths, err := ExpandInputs([]string{dir, single, single})
	if err != nil {
		t.Fatalf("ExpandInputs failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yml"), single}
	if len(paths) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, p)
		}
	}

	if _, err := ExpandInputs([]string{filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("expected error for missing input")
	}
}
