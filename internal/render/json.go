package render

import (
	"encoding/json"
	"io"
)

// JSONRenderer writes the field mapping itself, for external template engines
type JSONRenderer struct{}

func (r *JSONRenderer) Ext() string { return "json" }

// Render validates fields against tmpl and writes them as indented JSON
func (r *JSONRenderer) Render(w io.Writer, tmpl Template, fields map[string]any) error {
	if err := checkFields(tmpl, fields); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any{
		"template": tmpl.Name,
		"fields":   fields,
	}); err != nil {
		return &RenderError{Template: tmpl.Name, Err: err}
	}
	return nil
}
