package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/catalog"
	"github.com/ppiankov/proposta/internal/model"
	"github.com/ppiankov/proposta/internal/pipeline"
	"github.com/ppiankov/proposta/internal/store"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	headStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

var catalogTimeout time.Duration

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and extend the shared catalog",
	Long: `Inspect and extend the shared catalog.

Tables: Escopos, Exclusoes, Responsabilidades, Clientes, Coberturas.`,
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load every table and report missing columns and duplicate titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), catalogTimeout)
		defer cancel()

		p, cfg, err := openPipeline(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		report := catalog.Check(ctx, p.Loader(), catalog.SnapshotOptions{LegacyTitles: cfg.Store.LegacyTitles})
		printCheckReport(cmd.OutOrStdout(), p.Store().ID(), report)
		if !report.OK() {
			return fmt.Errorf("catalog has broken tables")
		}
		return nil
	},
}

func printCheckReport(w io.Writer, storeID string, report *catalog.CheckReport) {
	fmt.Fprintf(w, "%s\n\n", headStyle.Render("Catalog "+storeID))
	for _, t := range report.Tables {
		if t.OK() {
			fmt.Fprintf(w, "%s %-18s %4d rows  [%s]\n", okStyle.Render("✓"), t.Table, t.Rows, strings.Join(t.Columns, ", "))
			continue
		}
		fmt.Fprintf(w, "%s %-18s %v\n", failStyle.Render("✗"), t.Table, t.Err)
	}
	if len(report.Duplicates) > 0 {
		fmt.Fprintf(w, "\n%s\n", warnStyle.Render("Duplicate titles (the first row wins):"))
		for _, d := range report.Duplicates {
			key := d.Title
			if d.Category != "" {
				key = d.Category + " / " + d.Title
			}
			fmt.Fprintf(w, "  %s: %q x%d\n", d.Table, key, d.Count)
		}
	}
}

var catalogListCmd = &cobra.Command{
	Use:   "list <table>",
	Short: "Print the rows of a catalog table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), catalogTimeout)
		defer cancel()

		p, cfg, err := openPipeline(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		var required []string
		for _, spec := range catalog.Tables(catalog.SnapshotOptions{LegacyTitles: cfg.Store.LegacyTitles}) {
			if spec.Name == args[0] {
				required = spec.Required
			}
		}
		if required == nil {
			return fmt.Errorf("unknown table %q (tables: %s)", args[0], strings.Join(catalog.TableNames(), ", "))
		}

		t, err := p.Loader().Load(ctx, args[0], required)
		if err != nil {
			return describe(err)
		}
		printTable(cmd.OutOrStdout(), t)
		return nil
	},
}

func printTable(w io.Writer, t *catalog.Table) {
	fmt.Fprintf(w, "%s  %s\n", headStyle.Render(t.Name), mutedStyle.Render(fmt.Sprintf("%d rows", t.Len())))
	for i := 0; i < t.Len(); i++ {
		parts := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			if v := t.Value(i, col); v != "" {
				parts = append(parts, mutedStyle.Render(col+":")+" "+v)
			}
		}
		fmt.Fprintf(w, "%3d  %s\n", i+1, strings.Join(parts, "  "))
	}
}

var (
	addCategory string
	addTitle    string
	addText     string
	addClient   model.ClientRecord
)

var catalogAddCmd = &cobra.Command{
	Use:   "add <scope|exclusion|responsibility|client|coverage>",
	Short: "Append a new entry to the shared catalog",
	Long: `Append a new entry to the shared catalog. The next load sees it
immediately; cached reads of that table are dropped.

Example:
  proposta catalog add scope --category Dutos --title "Duto flexível" --text "Fornecimento de duto flexível"
  proposta catalog add exclusion --title Pintura --text "Pintura não inclusa."
  proposta catalog add client --company "ACME Ltda" --contact Ana --email ana@acme.com`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"scope", "exclusion", "responsibility", "client", "coverage"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), catalogTimeout)
		defer cancel()

		p, _, err := openPipeline(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		w := p.Writer()
		if !w.CanAppend() {
			return fmt.Errorf("store %s is read-only; switch store.kind to sheets, sqlite or dir to add entries", p.Store().ID())
		}

		if err := appendEntry(ctx, w, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Added %s to %s\n", args[0], p.Store().ID())
		return nil
	},
}

func appendEntry(ctx context.Context, w *catalog.Writer, kind string) error {
	need := func(fields ...string) error {
		for i := 0; i < len(fields); i += 2 {
			if strings.TrimSpace(fields[i+1]) == "" {
				return fmt.Errorf("--%s is required for %s", fields[i], kind)
			}
		}
		return nil
	}

	switch kind {
	case "scope":
		if err := need("category", addCategory, "title", addTitle, "text", addText); err != nil {
			return err
		}
		return w.AppendScopeItem(ctx, model.ScopeItem{Category: addCategory, ShortTitle: addTitle, FullText: addText})
	case "exclusion":
		if err := need("title", addTitle, "text", addText); err != nil {
			return err
		}
		return w.AppendExclusion(ctx, model.ExclusionItem{ShortTitle: addTitle, FullText: addText})
	case "responsibility":
		if err := need("title", addTitle, "text", addText); err != nil {
			return err
		}
		return w.AppendResponsibility(ctx, model.ResponsibilityItem{ShortTitle: addTitle, FullText: addText})
	case "client":
		if err := need("company", addClient.Company); err != nil {
			return err
		}
		return w.AppendClient(ctx, addClient)
	case "coverage":
		if err := need("text", addText); err != nil {
			return err
		}
		return w.AppendCoverage(ctx, model.CoverageTemplate{FullText: addText})
	default:
		return fmt.Errorf("unknown entry kind %q", kind)
	}
}

var catalogMirrorCmd = &cobra.Command{
	Use:   "mirror <file.db>",
	Short: "Copy every catalog table into a local SQLite database",
	Long: `Mirror copies the configured catalog into a SQLite file, replacing the
tables it already holds. Point store.kind=sqlite at it to work offline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), catalogTimeout)
		defer cancel()

		p, _, err := openPipeline(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		dst, err := store.OpenSQLite(ctx, args[0])
		if err != nil {
			return err
		}
		defer func() { _ = dst.Close() }()

		if err := store.Mirror(ctx, p.Store(), dst, catalog.TableNames()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Mirrored %s into %s\n", p.Store().ID(), args[0])
		return nil
	},
}

var catalogWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate a directory catalog whenever its CSV files change",
	Long: `Watch follows a dir store (store.kind=dir). Each time a table file is
written from outside, its cached snapshot is dropped and the table is
re-validated. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := effectiveConfig(cmd)
		if err != nil {
			return err
		}
		p, err := pipeline.New(ctx, withoutStoreWatch(cfg), logger)
		if err != nil {
			return describe(err)
		}
		defer func() { _ = p.Close() }()

		ds, ok := p.Store().(*store.DirStore)
		if !ok {
			return fmt.Errorf("watch needs store.kind=dir, have %s", cfg.Store.Kind)
		}

		specs := make(map[string][]string)
		for _, s := range catalog.Tables(catalog.SnapshotOptions{LegacyTitles: cfg.Store.LegacyTitles}) {
			specs[s.Name] = s.Required
		}

		out := cmd.OutOrStdout()
		watcher, err := store.NewWatcher(ds.Dir(), func(table string) {
			required, known := specs[table]
			if !known {
				return
			}
			if err := p.Loader().Invalidate(table); err != nil {
				logger.Warn("invalidate cache", zap.String("table", table), zap.Error(err))
			}
			t, err := p.Loader().Load(ctx, table, required)
			if err != nil {
				fmt.Fprintf(out, "%s %-18s %v\n", failStyle.Render("✗"), table, err)
				return
			}
			fmt.Fprintf(out, "%s %-18s %4d rows\n", okStyle.Render("✓"), table, t.Len())
		}, logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()

		fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", ds.Dir())
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogCheckCmd, catalogListCmd, catalogAddCmd, catalogMirrorCmd, catalogWatchCmd)
	catalogCmd.PersistentFlags().DurationVar(&catalogTimeout, "timeout", time.Minute, "timeout for catalog operations")

	f := catalogAddCmd.Flags()
	f.StringVar(&addCategory, "category", "", "scope category")
	f.StringVar(&addTitle, "title", "", "short title used for selection")
	f.StringVar(&addText, "text", "", "full text written into proposals")
	f.StringVar(&addClient.Company, "company", "", "client company")
	f.StringVar(&addClient.ContactName, "contact", "", "client contact name")
	f.StringVar(&addClient.Phone, "phone", "", "client phone")
	f.StringVar(&addClient.Email, "email", "", "client e-mail")
	f.StringVar(&addClient.CityState, "city-state", "", "client city/state")
}

// withoutStoreWatch copies cfg with store.watch off; catalog watch runs its
// own watcher and the pipeline must not start a second one on the same dir
func withoutStoreWatch(cfg *model.Config) *model.Config {
	c := *cfg
	c.Store.Watch = false
	return &c
}
