// Package render turns a proposal field mapping into a document
package render

import (
	"fmt"
	"io"

	"github.com/ppiankov/proposta/internal/model"
)

// Template names a document layout and the scope field it reads
type Template struct {
	Name       string
	ScopeField string
}

var (
	GroupedTemplate = Template{Name: "proposta-agrupada", ScopeField: model.FieldScopeGroups}
	FlatTemplate    = Template{Name: "proposta-simples", ScopeField: model.FieldScopeItems}
)

// TemplateFor returns the template matching a scope mode
func TemplateFor(mode model.ScopeMode) Template {
	if mode == model.ScopeModeFlat {
		return FlatTemplate
	}
	return GroupedTemplate
}

// Renderer writes one document from a field mapping
type Renderer interface {
	Render(w io.Writer, tmpl Template, fields map[string]any) error
	Ext() string
}

// New returns the renderer for an output format
func New(format string) (Renderer, error) {
	switch format {
	case "", "html":
		return &HTMLRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// RenderError is a template/field mismatch or an output failure. The
// request that produced the fields can be retried unchanged.
type RenderError struct {
	Template string
	Field    string
	Err      error
}

func (e *RenderError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("render %s: field %q: %v", e.Template, e.Field, e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

var errMissingField = fmt.Errorf("missing field")

// requiredFields lists the keys every template reads
func requiredFields(tmpl Template) []string {
	return []string{
		model.FieldProposalNumber,
		model.FieldCompany,
		model.FieldRevision,
		model.FieldResponsibilities,
		model.FieldExclusions,
		tmpl.ScopeField,
	}
}

func checkFields(tmpl Template, fields map[string]any) error {
	if tmpl.ScopeField == "" {
		return &RenderError{Template: tmpl.Name, Err: fmt.Errorf("template has no scope field")}
	}
	for _, f := range requiredFields(tmpl) {
		if _, ok := fields[f]; !ok {
			return &RenderError{Template: tmpl.Name, Field: f, Err: errMissingField}
		}
	}
	return nil
}

func str(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func strList(tmpl Template, fields map[string]any, key string) ([]string, error) {
	v, ok := fields[key].([]string)
	if !ok {
		return nil, &RenderError{Template: tmpl.Name, Field: key, Err: fmt.Errorf("expected a list of strings, got %T", fields[key])}
	}
	return v, nil
}
