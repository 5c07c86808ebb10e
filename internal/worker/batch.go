package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/pipeline"
)

// Generator produces one document from a form file
type Generator interface {
	GenerateFile(ctx context.Context, path string) (*pipeline.Result, error)
}

// GenerateResult is the outcome for one form file
type GenerateResult struct {
	Index  int
	Path   string
	Result *pipeline.Result
	Error  error
}

// BatchProcessor generates many forms concurrently
type BatchProcessor struct {
	generator   Generator
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(g Generator, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		generator:   g,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessFiles generates every form and returns results in input order.
// One failing form never stops the others.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*GenerateResult {
	if len(paths) == 0 {
		return []*GenerateResult{}
	}

	pool := NewPool[*GenerateResult](ctx, b.concurrency)

	go func() {
		for i, path := range paths {
			if !pool.Go(b.task(i, path)) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]*GenerateResult, 0, len(paths))
	done := make(map[int]bool, len(paths))
	for gr := range pool.Out() {
		done[gr.Index] = true
		results = append(results, gr)
		if gr.Error != nil {
			b.logger.Warn("form failed", zap.String("form", gr.Path), zap.Error(gr.Error))
		}
	}

	// Forms never picked up because ctx ended
	for i, path := range paths {
		if !done[i] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results = append(results, &GenerateResult{Index: i, Path: path, Error: err})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

func (b *BatchProcessor) task(i int, path string) Task[*GenerateResult] {
	return func(ctx context.Context) *GenerateResult {
		res, err := b.generator.GenerateFile(ctx, path)
		return &GenerateResult{Index: i, Path: path, Result: res, Error: err}
	}
}

// ProcessList reads form paths from a list file and generates them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*GenerateResult, error) {
	paths, err := ReadFormList(listPath)
	if err != nil {
		return nil, fmt.Errorf("read form list: %w", err)
	}
	return b.ProcessFiles(ctx, paths), nil
}

// ReadFormList reads form paths from a file, one per line. Relative paths
// resolve against the list file's directory; blank lines and # comments
// are skipped and repeats dropped.
func ReadFormList(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}

// ExpandInputs turns command arguments into form paths: directories
// contribute their *.yaml and *.yml files in name order, other paths are
// taken as they are
func ExpandInputs(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				add(filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}
