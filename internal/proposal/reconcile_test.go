package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/proposta/internal/model"
)

func TestReconcile(t *testing.T) {
	items := []model.ExclusionItem{
		{ShortTitle: "Pintura", FullText: "Pintura não inclusa."},
		{ShortTitle: "Civil", FullText: "Obras civis não inclusas."},
		{ShortTitle: "Pintura", FullText: "Sombreada."},
	}

	tests := []struct {
		name     string
		selected []string
		want     []string
	}{
		{"selection order not catalog order", []string{"Civil", "Pintura"}, []string{"Obras civis não inclusas.", "Pintura não inclusa."}},
		{"stale titles dropped", []string{"Elétrica", "Civil"}, []string{"Obras civis não inclusas."}},
		{"duplicates repeated", []string{"Civil", "Civil"}, []string{"Obras civis não inclusas.", "Obras civis não inclusas."}},
		{"case sensitive", []string{"pintura"}, []string{}},
		{"no trimming", []string{"Civil "}, []string{}},
		{"first occurrence wins", []string{"Pintura"}, []string{"Pintura não inclusa."}},
		{"empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(items, tt.selected)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), len(tt.selected))
		})
	}
}

func TestReconcile_ScopeItems(t *testing.T) {
	items := []model.ScopeItem{{Category: "Dutos", ShortTitle: "Duto", FullText: "Duto."}}
	assert.Equal(t, []string{"Duto."}, Reconcile(items, []string{"Duto"}))
}
