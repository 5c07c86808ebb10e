package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/proposta/internal/catalog"
	"github.com/ppiankov/proposta/internal/model"
	"github.com/ppiankov/proposta/internal/pipeline"
	"github.com/ppiankov/proposta/internal/proposal"
	"github.com/ppiankov/proposta/internal/store"
)

var (
	outputDir    string
	outputFormat string
	scopeMode    string
	clientInName bool
	noCache      bool
	timeout      time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <form.yaml>",
	Short: "Generate one proposal document from a form",
	Long: `Generate loads the catalog, resolves the selections in a proposal form
and writes the rendered document.

The form names the client, the proposal number and the selected catalog
entries by short title. Scope selections may carry a quantity and a free-text
complement. Selections that no longer exist in the catalog are dropped.

Example:
  proposta generate form.yaml
  proposta generate form.yaml --out-dir ./propostas --client-in-name
  proposta generate form.yaml --mode flat --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addOutputFlags(generateCmd)
	generateCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
}

// addOutputFlags registers the flags shared by generate and batch
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputDir, "out-dir", "", "output directory (default from config)")
	cmd.Flags().StringVar(&outputFormat, "format", "", "output format: html or json (default from config)")
	cmd.Flags().StringVar(&scopeMode, "mode", "", "scope mode: grouped or flat (default from config)")
	cmd.Flags().BoolVar(&clientInName, "client-in-name", false, "append the client company to the file name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the catalog cache (force fresh reads)")
}

// effectiveConfig loads configuration and applies command flags
func effectiveConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	if scopeMode != "" {
		cfg.Proposal.Mode = model.ScopeMode(scopeMode)
	}
	if clientInName {
		cfg.Output.ClientInName = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func openPipeline(ctx context.Context, cmd *cobra.Command) (*pipeline.Pipeline, *model.Config, error) {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, describe(err)
	}
	return p, cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, _, err := openPipeline(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	res, err := p.GenerateFile(ctx, args[0])
	if err != nil {
		return describe(err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Request %s\n", res.RequestID)
		fmt.Fprintf(os.Stderr, "✓ Client: %s\n", res.Context.Project.Client.Company)
		fmt.Fprintf(os.Stderr, "✓ Scope: %d groups, %d items\n", len(res.Context.ScopeGroups), countItems(res.Context))
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote: %s\n", res.OutputPath)
	return nil
}

func countItems(pctx *model.ProposalContext) int {
	n := len(pctx.ScopeItems)
	for _, g := range pctx.ScopeGroups {
		n += len(g.Items)
	}
	return n
}

// describe adds an operator hint to the errors users can act on
func describe(err error) error {
	var (
		schema *catalog.SchemaError
		nf     *catalog.NotFoundError
		conn   *catalog.ConnectionError
	)
	switch {
	case errors.Is(err, store.ErrBodyTooLarge):
		return fmt.Errorf("%w\nhint: raise http.max_body_bytes to fit the whole table", err)
	case errors.As(err, &schema):
		return fmt.Errorf("%w\nhint: rename the columns in the %s sheet or run 'proposta catalog check'", err, schema.Table)
	case errors.As(err, &nf):
		return fmt.Errorf("%w\nhint: create the %s sheet in the catalog", err, nf.Table)
	case errors.As(err, &conn):
		return fmt.Errorf("%w\nhint: check store settings with 'proposta config show' and retry", err)
	case errors.Is(err, proposal.ErrClientNotFound):
		return fmt.Errorf("%w\nhint: add it with 'proposta catalog add client' or give client_record in the form", err)
	case pipeline.IsRetryable(err):
		return fmt.Errorf("%w\nhint: the form is unchanged, retry", err)
	default:
		return err
	}
}
