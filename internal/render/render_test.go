package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/proposta/internal/model"
)

func groupedFields() map[string]any {
	return map[string]any{
		model.FieldProposalNumber:   "1024/25",
		model.FieldCompany:          "ACME Ltda",
		model.FieldContactName:      "Ana",
		model.FieldRevision:         "00",
		model.FieldCoverage:         "Instalação de HVAC",
		model.FieldResponsibilities: []string{"Fornecer energia."},
		model.FieldExclusions:       []string{"Obras civis.", "Andaimes <altura>."},
		model.FieldScopeGroups: []map[string]any{
			{
				model.FieldGroupIndex: "1.1",
				model.FieldGroupLabel: "DUTOS",
				model.FieldGroupItems: []string{"Fornecimento de dutos — Quantidade: 3."},
			},
		},
		model.FieldPrice: "R$ 10.000,00",
	}
}

func TestTemplateFor(t *testing.T) {
	assert.Equal(t, FlatTemplate, TemplateFor(model.ScopeModeFlat))
	assert.Equal(t, GroupedTemplate, TemplateFor(model.ScopeModeGrouped))
	assert.Equal(t, GroupedTemplate, TemplateFor(""))
}

func TestNew(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "html", r.Ext())

	r, err = New("json")
	require.NoError(t, err)
	assert.Equal(t, "json", r.Ext())

	_, err = New("docx")
	assert.Error(t, err)
}

func TestHTMLRenderer_Grouped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&HTMLRenderer{}).Render(&buf, GroupedTemplate, groupedFields()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Proposta Comercial 1024/25</h1>")
	assert.Contains(t, out, "<h3>1.1 DUTOS</h3>")
	assert.Contains(t, out, "<li>Fornecimento de dutos — Quantidade: 3.</li>")
	assert.Contains(t, out, "<p>Cliente: ACME Ltda</p>")
	assert.Contains(t, out, "<td>R$ 10.000,00</td>")
	assert.Contains(t, out, "Andaimes &lt;altura&gt;.")
	assert.NotContains(t, out, "Telefone")
}

func TestHTMLRenderer_Flat(t *testing.T) {
	fields := groupedFields()
	delete(fields, model.FieldScopeGroups)
	fields[model.FieldScopeItems] = []string{"Item A", "Item B"}

	var buf bytes.Buffer
	require.NoError(t, (&HTMLRenderer{}).Render(&buf, FlatTemplate, fields))
	assert.Contains(t, buf.String(), "<li>Item A</li><li>Item B</li>")
	assert.NotContains(t, buf.String(), "<h3>")
}

func TestHTMLRenderer_EmptyListsOmitSection(t *testing.T) {
	fields := groupedFields()
	fields[model.FieldExclusions] = []string{}

	var buf bytes.Buffer
	require.NoError(t, (&HTMLRenderer{}).Render(&buf, GroupedTemplate, fields))
	assert.NotContains(t, buf.String(), "Exclusões")
}

func TestRender_TemplateMismatch(t *testing.T) {
	for _, r := range []Renderer{&HTMLRenderer{}, &JSONRenderer{}} {
		t.Run(r.Ext(), func(t *testing.T) {
			// grouped fields against the flat template
			err := r.Render(&bytes.Buffer{}, FlatTemplate, groupedFields())
			var rerr *RenderError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, FlatTemplate.Name, rerr.Template)
			assert.Equal(t, model.FieldScopeItems, rerr.Field)
		})
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	err := (&HTMLRenderer{}).Render(&bytes.Buffer{}, Template{Name: "x"}, groupedFields())
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "x", rerr.Template)
}

func TestHTMLRenderer_WrongFieldType(t *testing.T) {
	fields := groupedFields()
	fields[model.FieldScopeGroups] = "not a list"

	err := (&HTMLRenderer{}).Render(&bytes.Buffer{}, GroupedTemplate, fields)
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, model.FieldScopeGroups, rerr.Field)
	assert.Contains(t, rerr.Error(), "string")
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONRenderer{}).Render(&buf, GroupedTemplate, groupedFields()))

	var got struct {
		Template string         `json:"template"`
		Fields   map[string]any `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, GroupedTemplate.Name, got.Template)
	assert.Equal(t, "1024/25", got.Fields[model.FieldProposalNumber])
	assert.Contains(t, buf.String(), "Andaimes <altura>.")
}
