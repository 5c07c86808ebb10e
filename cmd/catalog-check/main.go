// Diagnostic program that connects to a catalog store, loads every table and
// prints the columns it found. Useful when a sheet was renamed or reordered
// and generation starts failing with schema errors.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/cache"
	"github.com/ppiankov/proposta/internal/catalog"
	"github.com/ppiankov/proposta/internal/logging"
	"github.com/ppiankov/proposta/internal/model"
)

func main() {
	cfg := model.DefaultConfig()
	var (
		kind    string
		csvURLs []string
		verbose bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "catalog-check",
		Short: "Load every catalog table and print the columns found",
		Example: `  catalog-check --kind dir --dir ./catalogo
  catalog-check --kind sheets --spreadsheet-id 1AbC... --credentials sa.json
  catalog-check --kind csv --csv Escopos=https://... --csv Exclusoes=https://...`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg.Store.Kind = model.StoreKind(kind)
			cfg.Store.CSVURLs = make(map[string]string)
			for _, kv := range csvURLs {
				name, u, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--csv wants Table=URL, got %q", kv)
				}
				cfg.Store.CSVURLs[name] = u
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return run(ctx, cfg, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", string(cfg.Store.Kind), "store kind: sheets, csv, sqlite, dir")
	f.StringVar(&cfg.Store.SpreadsheetID, "spreadsheet-id", "", "spreadsheet id (sheets)")
	f.StringVar(&cfg.Store.CredentialsFile, "credentials", "", "service account JSON (sheets)")
	f.StringArrayVar(&csvURLs, "csv", nil, "Table=URL of a published CSV endpoint (csv, repeatable)")
	f.StringVar(&cfg.Store.SQLitePath, "sqlite", "", "SQLite file (sqlite)")
	f.StringVar(&cfg.Store.Dir, "dir", "", "directory of <Table>.csv files (dir)")
	f.BoolVar(&cfg.Store.LegacyTitles, "legacy-titles", false, "scope sheet uses Titulo instead of Titulo_Curto")
	f.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *model.Config, logger *zap.Logger) error {
	fmt.Println("=== Catalog Check ===")
	fmt.Println()

	s, err := catalog.Connect(ctx, cfg.Store, cfg.HTTP, logger)
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		return err
	}
	fmt.Printf("Store: %s\n", s.ID())
	fmt.Printf("Append supported: %v\n", s.Capabilities().Append)
	fmt.Println(strings.Repeat("-", 60))

	loader := catalog.NewLoader(s, cache.Nop{}, 0, logger)
	report := catalog.Check(ctx, loader, catalog.SnapshotOptions{LegacyTitles: cfg.Store.LegacyTitles})

	for _, t := range report.Tables {
		if t.OK() {
			fmt.Printf("  ✓ %s: %d rows\n", t.Table, t.Rows)
		} else {
			fmt.Printf("  ✗ %s: %v\n", t.Table, t.Err)
		}
		if len(t.Columns) > 0 {
			fmt.Printf("      columns: %s\n", strings.Join(t.Columns, " | "))
		}
	}

	if len(report.Duplicates) > 0 {
		fmt.Println()
		fmt.Printf("  ⚠️  %d duplicate title(s), first occurrence wins:\n", len(report.Duplicates))
		for _, d := range report.Duplicates {
			fmt.Printf("     - %s: %s %q (x%d)\n", d.Table, d.Category, d.Title, d.Count)
		}
	}

	fmt.Println()
	if !report.OK() {
		fmt.Println("=== Check Failed ===")
		return fmt.Errorf("catalog has broken tables")
	}
	fmt.Println("=== Check Complete ===")
	return nil
}
