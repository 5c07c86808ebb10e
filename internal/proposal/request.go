package proposal

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/proposta/internal/catalog"
	"github.com/ppiankov/proposta/internal/model"
)

var (
	ErrMissingProposalNumber = errors.New("proposal number is required")
	ErrClientNotFound        = errors.New("client not found in catalog")
	ErrCoverageOutOfRange    = errors.New("coverage index out of range")
	ErrUnknownScopeMode      = errors.New("unknown scope mode")
)

// Form is the user's input for one proposal, as submitted
type Form struct {
	Client       string              `yaml:"client"` // company name in the clients table
	ClientRecord *model.ClientRecord `yaml:"client_record,omitempty"`

	ProposalNumber string `yaml:"proposal_number"`
	Project        string `yaml:"project"`
	Location       string `yaml:"location"`
	Date           string `yaml:"date"`

	Coverage      string `yaml:"coverage,omitempty"`
	CoverageIndex *int   `yaml:"coverage_index,omitempty"`

	Responsibilities []string    `yaml:"responsibilities"`
	Scope            []Selection `yaml:"scope"`
	Exclusions       []string    `yaml:"exclusions"`

	Commercial model.CommercialFields `yaml:"commercial"`
	Mode       model.ScopeMode        `yaml:"mode,omitempty"`
	Revision   string                 `yaml:"revision,omitempty"`
}

// ParseForm decodes a YAML form
func ParseForm(data []byte) (*Form, error) {
	var f Form
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return &f, nil
}

// LoadForm reads a YAML form from path
func LoadForm(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}
	return ParseForm(data)
}

// Options are the configured defaults a form may override
type Options struct {
	QuantityLabel string
	Section       string
	Revision      string
	Mode          model.ScopeMode
}

// HandleRequest builds the proposal context for form against snap. It is
// idempotent: the same snapshot and form always give the same context.
func HandleRequest(snap *catalog.Snapshot, form *Form, opts Options) (*model.ProposalContext, error) {
	if strings.TrimSpace(form.ProposalNumber) == "" {
		return nil, ErrMissingProposalNumber
	}

	mode := firstMode(form.Mode, opts.Mode)
	if mode != model.ScopeModeGrouped && mode != model.ScopeModeFlat {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScopeMode, mode)
	}

	client, err := resolveClient(snap, form)
	if err != nil {
		return nil, err
	}

	coverage, err := resolveCoverage(snap, form)
	if err != nil {
		return nil, err
	}

	asm := NewAssembler(opts.QuantityLabel, opts.Section)
	scope := Scope{Mode: mode}
	if mode == model.ScopeModeFlat {
		scope.Items = asm.Flat(snap.Scope, form.Scope)
	} else {
		scope.Groups = asm.Assemble(snap.Scope, form.Scope)
	}

	ctx := Build(
		model.ProjectFields{
			Client:         client,
			ProposalNumber: form.ProposalNumber,
			Project:        form.Project,
			Location:       form.Location,
			Date:           form.Date,
		},
		coverage,
		Reconcile(snap.Responsibilities, form.Responsibilities),
		scope,
		Reconcile(snap.Exclusions, form.Exclusions),
		form.Commercial,
	)

	switch {
	case form.Revision != "":
		ctx.Revision = form.Revision
	case opts.Revision != "":
		ctx.Revision = opts.Revision
	}

	return ctx, nil
}

func resolveClient(snap *catalog.Snapshot, form *Form) (model.ClientRecord, error) {
	if form.ClientRecord != nil {
		return *form.ClientRecord, nil
	}
	if form.Client == "" {
		return model.ClientRecord{}, fmt.Errorf("%w: no client selected", ErrClientNotFound)
	}
	c, ok := snap.Client(form.Client)
	if !ok {
		return model.ClientRecord{}, fmt.Errorf("%w: %q", ErrClientNotFound, form.Client)
	}
	return c, nil
}

func resolveCoverage(snap *catalog.Snapshot, form *Form) (string, error) {
	if form.Coverage != "" {
		return form.Coverage, nil
	}
	if form.CoverageIndex == nil {
		return "", nil
	}
	i := *form.CoverageIndex
	if i < 0 || i >= len(snap.Coverages) {
		return "", fmt.Errorf("%w: %d (catalog has %d)", ErrCoverageOutOfRange, i, len(snap.Coverages))
	}
	return snap.Coverages[i].FullText, nil
}

func firstMode(modes ...model.ScopeMode) model.ScopeMode {
	for _, m := range modes {
		if m != "" {
			return m
		}
	}
	return model.ScopeModeGrouped
}

// Filename derives the download name from the proposal number and,
// optionally, the client company with spaces replaced
func Filename(number, client, ext string) string {
	name := "Proposta_" + pathSafe(number)
	if client = strings.TrimSpace(client); client != "" {
		name += "_" + strings.ReplaceAll(pathSafe(client), " ", "_")
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// Proposal numbers are often written as 123/2024
func pathSafe(s string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(strings.TrimSpace(s))
}
