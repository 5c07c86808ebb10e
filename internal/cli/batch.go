package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/proposta/internal/worker"
)

var (
	concurrency  int
	formList     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [form.yaml|dir]...",
	Short: "Generate many proposals in parallel",
	Long: `Batch generates one document per form:
- Forms come from arguments (files, or directories of *.yaml / *.yml)
  and/or a list file with one form path per line
- The catalog is loaded once and shared by every form
- Forms are processed in parallel with a configurable worker count
- A failing form is reported and does not stop the others

Example:
  proposta batch forms/
  proposta batch --list forms.txt --concurrency 8 --out-dir ./propostas`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addOutputFlags(batchCmd)
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&formList, "list", "", "file listing form paths, one per line")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	paths, err := worker.ExpandInputs(args)
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}
	if formList != "" {
		listed, err := worker.ReadFormList(formList)
		if err != nil {
			return fmt.Errorf("read form list: %w", err)
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no forms given")
	}

	p, cfg, err := openPipeline(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	workers := cfg.Workers
	if concurrency > 0 {
		workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Proposta Batch Generation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Forms:        %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Store:        %s\n", p.Store().ID())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	fmt.Fprintf(os.Stderr, "⚙️  Loading catalog...\n")
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return describe(fmt.Errorf("load catalog: %w", err))
	}
	fmt.Fprintf(os.Stderr, "✓ %d scope items in %d categories\n\n", len(snap.Scope), len(snap.Categories()))

	processor := worker.NewBatchProcessor(p.WithSnapshot(snap), workers, logger)
	results := processor.ProcessFiles(ctx, paths)

	successCount := 0
	failureCount := 0
	for _, r := range results {
		if r.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s -> %s\n", r.Path, r.Result.OutputPath)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d forms\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d forms failed", failureCount, len(results))
	}
	return nil
}
