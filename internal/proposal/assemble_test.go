package proposal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/proposta/internal/model"
)

func TestItemText(t *testing.T) {
	a := NewAssembler("Quantity", "")

	tests := []struct {
		name       string
		base       string
		quantity   int
		complement string
		want       string
	}{
		{"quantity one no complement", "Supply of duct", 1, "", "Supply of duct"},
		{"zero quantity", "Supply of duct", 0, "", "Supply of duct"},
		{"whitespace complement", "Supply of duct", 1, "   ", "Supply of duct"},
		{"quantity and complement", "Supply of duct", 3, "galvanized", "Supply of duct — Quantity: 3. galvanized."},
		{"quantity only", "Supply of duct", 2, "", "Supply of duct — Quantity: 2."},
		{"complement only", "Supply of duct", 1, "brand X", "Supply of duct — brand X."},
		{"complement trimmed", "Supply of duct", 1, " brand X ", "Supply of duct — brand X."},
		{"base kept verbatim", "Supply flexible duct.", 4, "", "Supply flexible duct. — Quantity: 4."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.ItemText(tt.base, tt.quantity, tt.complement))
		})
	}
}

func TestItemText_DefaultLabel(t *testing.T) {
	a := NewAssembler("", "")
	assert.Equal(t, "Duto — Quantidade: 2.", a.ItemText("Duto", 2, ""))
}

func catalogABC() []model.ScopeItem {
	return []model.ScopeItem{
		{Category: "A", ShortTitle: "a1", FullText: "Item a1."},
		{Category: "B", ShortTitle: "b1", FullText: "Item b1."},
		{Category: "A", ShortTitle: "a2", FullText: "Item a2."},
		{Category: "C", ShortTitle: "c1", FullText: "Item c1."},
	}
}

func TestAssemble_OmitsEmptyCategoriesWithoutGaps(t *testing.T) {
	a := NewAssembler("", "")

	got := a.Assemble(catalogABC(), []Selection{{Title: "c1"}, {Title: "a1"}})

	want := []model.ScopeGroup{
		{Index: "1.1", Label: "A", Items: []string{"Item a1."}},
		{Index: "1.2", Label: "C", Items: []string{"Item c1."}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_CatalogOrderWithinCategory(t *testing.T) {
	a := NewAssembler("", "2")

	got := a.Assemble(catalogABC(), []Selection{{Title: "a2"}, {Title: "b1"}, {Title: "a1", Quantity: 2}})

	want := []model.ScopeGroup{
		{Index: "2.1", Label: "A", Items: []string{"Item a1. — Quantidade: 2.", "Item a2."}},
		{Index: "2.2", Label: "B", Items: []string{"Item b1."}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_UppercasesAccentedLabels(t *testing.T) {
	a := NewAssembler("", "")
	items := []model.ScopeItem{{Category: "Exaustão mecânica", ShortTitle: "x", FullText: "X."}}

	got := a.Assemble(items, []Selection{{Title: "x"}})
	assert.Equal(t, "EXAUSTÃO MECÂNICA", got[0].Label)
}

func TestAssemble_CategoryPinnedSelection(t *testing.T) {
	a := NewAssembler("", "")
	items := []model.ScopeItem{
		{Category: "Dutos", ShortTitle: "Instalação", FullText: "Instalação de dutos."},
		{Category: "Splits", ShortTitle: "Instalação", FullText: "Instalação de splits."},
	}

	pinned := a.Assemble(items, []Selection{{Category: "Splits", Title: "Instalação"}})
	assert.Equal(t, []model.ScopeGroup{{Index: "1.1", Label: "SPLITS", Items: []string{"Instalação de splits."}}}, pinned)

	unpinned := a.Assemble(items, []Selection{{Title: "Instalação"}})
	assert.Len(t, unpinned, 2)
}

func TestAssemble_DuplicateRowFirstWins(t *testing.T) {
	a := NewAssembler("", "")
	items := []model.ScopeItem{
		{Category: "Dutos", ShortTitle: "Duto", FullText: "Primeiro."},
		{Category: "Dutos", ShortTitle: "Duto", FullText: "Segundo."},
	}

	got := a.Assemble(items, []Selection{{Title: "Duto"}})
	assert.Equal(t, []string{"Primeiro."}, got[0].Items)
}

func TestAssemble_NothingSelected(t *testing.T) {
	a := NewAssembler("", "")
	assert.Empty(t, a.Assemble(catalogABC(), nil))
	assert.Empty(t, a.Assemble(catalogABC(), []Selection{{Title: "gone"}}))
}

func TestFlat_SelectionOrder(t *testing.T) {
	a := NewAssembler("Quantity", "")

	got := a.Flat(catalogABC(), []Selection{
		{Title: "c1", Complement: "note"},
		{Title: "gone"},
		{Title: "a1", Quantity: 3},
	})
	assert.Equal(t, []string{"Item c1. — note.", "Item a1. — Quantity: 3."}, got)
}
