package proposal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/proposta/internal/catalog"
	"github.com/ppiankov/proposta/internal/model"
)

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Scope: []model.ScopeItem{
			{Category: "Ducts", ShortTitle: "Flex Duct", FullText: "Supply flexible duct."},
		},
		Exclusions: []model.ExclusionItem{
			{ShortTitle: "Painting", FullText: "Painting is excluded."},
		},
		Responsibilities: []model.ResponsibilityItem{
			{ShortTitle: "Power", FullText: "Client provides power."},
		},
		Clients: []model.ClientRecord{
			{Company: "ACME Ltda", ContactName: "Ana", Phone: "11 9999-0000", Email: "ana@acme.com", CityState: "São Paulo/SP"},
		},
		Coverages: []model.CoverageTemplate{
			{FullText: "Dear Sirs, we present our proposal."},
		},
	}
}

func TestHandleRequest_EndToEnd(t *testing.T) {
	form := &Form{
		Client:         "ACME Ltda",
		ProposalNumber: "PC-001",
		Scope:          []Selection{{Title: "Flex Duct", Quantity: 1}},
		Exclusions:     []string{"Painting"},
	}

	ctx, err := HandleRequest(testSnapshot(), form, Options{})
	require.NoError(t, err)

	require.Len(t, ctx.ScopeGroups, 1)
	assert.Equal(t, "DUCTS", ctx.ScopeGroups[0].Label)
	assert.Equal(t, "1.1", ctx.ScopeGroups[0].Index)
	assert.Equal(t, []string{"Supply flexible duct."}, ctx.ScopeGroups[0].Items)
	assert.Equal(t, []string{"Painting is excluded."}, ctx.Exclusions)
	assert.Equal(t, model.DefaultRevision, ctx.Revision)
	assert.Equal(t, "ana@acme.com", ctx.Project.Client.Email)

	fields := ctx.Fields()
	assert.Equal(t, []string{"Painting is excluded."}, fields[model.FieldExclusions])
	groups := fields[model.FieldScopeGroups].([]map[string]any)
	require.Len(t, groups, 1)
	assert.Equal(t, "DUCTS", groups[0][model.FieldGroupLabel])
	assert.NotContains(t, fields, model.FieldScopeItems)
}

func TestHandleRequest_IsIdempotent(t *testing.T) {
	form := &Form{
		Client:           "ACME Ltda",
		ProposalNumber:   "PC-002",
		Responsibilities: []string{"Power"},
		Scope:            []Selection{{Title: "Flex Duct", Quantity: 3, Complement: "galvanized"}},
	}
	snap := testSnapshot()

	first, err := HandleRequest(snap, form, Options{QuantityLabel: "Quantity"})
	require.NoError(t, err)
	second, err := HandleRequest(snap, form, Options{QuantityLabel: "Quantity"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Supply flexible duct. — Quantity: 3. galvanized."}, first.ScopeGroups[0].Items)
	assert.Equal(t, []string{"Client provides power."}, first.Responsibilities)
}

func TestHandleRequest_FlatMode(t *testing.T) {
	form := &Form{
		Client:         "ACME Ltda",
		ProposalNumber: "PC-003",
		Mode:           model.ScopeModeFlat,
		Scope:          []Selection{{Title: "Flex Duct"}, {Title: "Removed"}},
	}

	ctx, err := HandleRequest(testSnapshot(), form, Options{Mode: model.ScopeModeGrouped})
	require.NoError(t, err)
	assert.Equal(t, model.ScopeModeFlat, ctx.Mode)
	assert.Equal(t, []string{"Supply flexible duct."}, ctx.ScopeItems)
	assert.Nil(t, ctx.ScopeGroups)

	fields := ctx.Fields()
	assert.Equal(t, []string{"Supply flexible duct."}, fields[model.FieldScopeItems])
	assert.NotContains(t, fields, model.FieldScopeGroups)
}

func TestHandleRequest_CoverageAndRevision(t *testing.T) {
	idx := 0
	form := &Form{Client: "ACME Ltda", ProposalNumber: "PC-004", CoverageIndex: &idx}

	ctx, err := HandleRequest(testSnapshot(), form, Options{Revision: "R1"})
	require.NoError(t, err)
	assert.Equal(t, "Dear Sirs, we present our proposal.", ctx.Coverage)
	assert.Equal(t, "R1", ctx.Revision)

	form.Coverage = "Custom cover."
	form.Revision = "R2"
	ctx, err = HandleRequest(testSnapshot(), form, Options{Revision: "R1"})
	require.NoError(t, err)
	assert.Equal(t, "Custom cover.", ctx.Coverage)
	assert.Equal(t, "R2", ctx.Revision)
}

func TestHandleRequest_InlineClient(t *testing.T) {
	form := &Form{
		ProposalNumber: "PC-005",
		ClientRecord:   &model.ClientRecord{Company: "New Co"},
	}
	ctx, err := HandleRequest(testSnapshot(), form, Options{})
	require.NoError(t, err)
	assert.Equal(t, "New Co", ctx.Project.Client.Company)
}

func TestHandleRequest_Errors(t *testing.T) {
	badIdx := 5
	tests := []struct {
		name string
		form Form
		want error
	}{
		{"missing number", Form{Client: "ACME Ltda"}, ErrMissingProposalNumber},
		{"unknown client", Form{Client: "Other", ProposalNumber: "1"}, ErrClientNotFound},
		{"no client", Form{ProposalNumber: "1"}, ErrClientNotFound},
		{"coverage index", Form{Client: "ACME Ltda", ProposalNumber: "1", CoverageIndex: &badIdx}, ErrCoverageOutOfRange},
		{"mode", Form{Client: "ACME Ltda", ProposalNumber: "1", Mode: "tree"}, ErrUnknownScopeMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			ctx, err := HandleRequest(testSnapshot(), &form, Options{})
			assert.Nil(t, ctx)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseForm(t *testing.T) {
	data := []byte(`
client: ACME Ltda
proposal_number: "123/2024"
project: Retrofit
coverage_index: 0
responsibilities: [Power]
scope:
  - title: Flex Duct
    quantity: 3
    complement: galvanized
  - category: Ducts
    title: Grille
exclusions:
  - Painting
commercial:
  payment_terms: 30/60/90
  validity: 15 dias
mode: flat
`)
	form, err := ParseForm(data)
	require.NoError(t, err)

	assert.Equal(t, "123/2024", form.ProposalNumber)
	require.NotNil(t, form.CoverageIndex)
	assert.Equal(t, 0, *form.CoverageIndex)
	assert.Equal(t, []Selection{
		{Title: "Flex Duct", Quantity: 3, Complement: "galvanized"},
		{Category: "Ducts", Title: "Grille"},
	}, form.Scope)
	assert.Equal(t, "30/60/90", form.Commercial.PaymentTerms)
	assert.Equal(t, model.ScopeModeFlat, form.Mode)

	_, err = ParseForm([]byte("scope: {"))
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Proposta_123-2024.html", Filename("123/2024", "", "html"))
	assert.Equal(t, "Proposta_PC-001_ACME_Ltda.docx", Filename("PC-001", " ACME Ltda ", ".docx"))
}
