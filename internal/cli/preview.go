package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ppiankov/proposta/internal/model"
	"github.com/ppiankov/proposta/internal/proposal"
)

var previewTimeout time.Duration

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E5C07B")).
			MarginTop(1)
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <form.yaml>",
	Short: "Show the assembled proposal in the terminal without writing a file",
	Long: `Preview resolves a form against the catalog exactly as generate does and
prints the grouped scope, exclusions and responsibilities.

Example:
  proposta preview form.yaml
  proposta preview form.yaml --mode flat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), previewTimeout)
		defer cancel()

		form, err := proposal.LoadForm(args[0])
		if err != nil {
			return err
		}

		p, _, err := openPipeline(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		pctx, err := p.BuildContext(ctx, form)
		if err != nil {
			return describe(err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderPreview(pctx))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVar(&scopeMode, "mode", "", "scope mode: grouped or flat (default from config)")
	previewCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the catalog cache (force fresh reads)")
	previewCmd.Flags().DurationVar(&previewTimeout, "timeout", 30*time.Second, "overall timeout")
}

func renderPreview(pctx *model.ProposalContext) string {
	var b strings.Builder

	c := pctx.Project.Client
	header := []string{
		titleStyle.Render(fmt.Sprintf("Proposta %s  rev. %s", pctx.Project.ProposalNumber, pctx.Revision)),
		c.Company,
	}
	if c.ContactName != "" {
		header = append(header, mutedStyle.Render("A/C "+c.ContactName))
	}
	if pctx.Project.Project != "" {
		header = append(header, mutedStyle.Render("Obra: "+pctx.Project.Project))
	}
	b.WriteString(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header...)))
	b.WriteString("\n")

	if pctx.Coverage != "" {
		b.WriteString(sectionStyle.Render("Cobertura"))
		b.WriteString("\n")
		b.WriteString(itemStyle.Render(pctx.Coverage))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Escopo"))
	b.WriteString("\n")
	if pctx.Mode == model.ScopeModeFlat {
		writeItems(&b, pctx.ScopeItems)
	} else {
		for _, g := range pctx.ScopeGroups {
			b.WriteString(titleStyle.Render(g.Index + " " + g.Label))
			b.WriteString("\n")
			writeItems(&b, g.Items)
		}
	}

	for _, s := range []struct {
		title string
		items []string
	}{
		{"Responsabilidades do Cliente", pctx.Responsibilities},
		{"Exclusões", pctx.Exclusions},
	} {
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		writeItems(&b, s.items)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeItems(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString(itemStyle.Render(mutedStyle.Render("(nenhum)")))
		b.WriteString("\n")
		return
	}
	for _, item := range items {
		b.WriteString(itemStyle.Render("• " + item))
		b.WriteString("\n")
	}
}
