package render

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/proposta/internal/model"
)

// HTMLRenderer builds the proposal as an HTML document tree
type HTMLRenderer struct{}

func (r *HTMLRenderer) Ext() string { return "html" }

// Render writes the document for fields using tmpl's layout
func (r *HTMLRenderer) Render(w io.Writer, tmpl Template, fields map[string]any) error {
	if err := checkFields(tmpl, fields); err != nil {
		return err
	}

	doc, err := r.build(tmpl, fields)
	if err != nil {
		return err
	}

	if err := html.Render(w, doc); err != nil {
		return &RenderError{Template: tmpl.Name, Err: err}
	}
	return nil
}

func (r *HTMLRenderer) build(tmpl Template, fields map[string]any) (*html.Node, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := elem(atom.Html, attr("lang", "pt-BR"))
	doc.AppendChild(root)

	head := elem(atom.Head)
	head.AppendChild(elem(atom.Meta, attr("charset", "utf-8")))
	withText(head, atom.Title, "Proposta "+str(fields, model.FieldProposalNumber))
	root.AppendChild(head)

	body := elem(atom.Body)
	root.AppendChild(body)

	header := elem(atom.Header)
	withText(header, atom.H1, "Proposta Comercial "+str(fields, model.FieldProposalNumber))
	withText(header, atom.P, "Revisão "+str(fields, model.FieldRevision))
	if d := str(fields, model.FieldDate); d != "" {
		withText(header, atom.P, d)
	}
	body.AppendChild(header)

	client := elem(atom.Section, attr("class", "cliente"))
	for _, row := range []struct{ label, key string }{
		{"Cliente", model.FieldCompany},
		{"A/C", model.FieldContactName},
		{"Telefone", model.FieldPhone},
		{"E-mail", model.FieldEmail},
		{"Cidade/UF", model.FieldCityState},
		{"Obra", model.FieldProject},
		{"Local", model.FieldLocation},
	} {
		if v := str(fields, row.key); v != "" {
			withText(client, atom.P, row.label+": "+v)
		}
	}
	body.AppendChild(client)

	if c := str(fields, model.FieldCoverage); c != "" {
		withText(body, atom.P, c).Attr = []html.Attribute{attr("class", "cobertura")}
	}

	scope := elem(atom.Section, attr("class", "escopo"))
	withText(scope, atom.H2, "Escopo de Fornecimento")
	if err := r.scope(scope, tmpl, fields); err != nil {
		return nil, err
	}
	body.AppendChild(scope)

	for _, list := range []struct{ title, key, class string }{
		{"Responsabilidades do Cliente", model.FieldResponsibilities, "responsabilidades"},
		{"Exclusões", model.FieldExclusions, "exclusoes"},
	} {
		items, err := strList(tmpl, fields, list.key)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			continue
		}
		sec := elem(atom.Section, attr("class", list.class))
		withText(sec, atom.H2, list.title)
		sec.AppendChild(textList(items))
		body.AppendChild(sec)
	}

	terms := elem(atom.Section, attr("class", "condicoes"))
	withText(terms, atom.H2, "Condições Comerciais")
	table := elem(atom.Table)
	for _, row := range []struct{ label, key string }{
		{"Valor", model.FieldPrice},
		{"Forma de pagamento", model.FieldPaymentTerms},
		{"Prazo de entrega", model.FieldDeliveryTime},
		{"Garantia", model.FieldWarranty},
		{"Validade da proposta", model.FieldValidity},
		{"Observações", model.FieldNotes},
	} {
		v := str(fields, row.key)
		if v == "" {
			continue
		}
		tr := elem(atom.Tr)
		withText(tr, atom.Th, row.label)
		withText(tr, atom.Td, v)
		table.AppendChild(tr)
	}
	terms.AppendChild(table)
	body.AppendChild(terms)

	return doc, nil
}

func (r *HTMLRenderer) scope(parent *html.Node, tmpl Template, fields map[string]any) error {
	switch tmpl.ScopeField {
	case model.FieldScopeItems:
		items, err := strList(tmpl, fields, model.FieldScopeItems)
		if err != nil {
			return err
		}
		parent.AppendChild(textList(items))
		return nil

	case model.FieldScopeGroups:
		groups, ok := fields[model.FieldScopeGroups].([]map[string]any)
		if !ok {
			return &RenderError{
				Template: tmpl.Name,
				Field:    model.FieldScopeGroups,
				Err:      fmt.Errorf("expected a list of groups, got %T", fields[model.FieldScopeGroups]),
			}
		}
		for _, g := range groups {
			items, ok := g[model.FieldGroupItems].([]string)
			if !ok {
				return &RenderError{Template: tmpl.Name, Field: model.FieldGroupItems, Err: errMissingField}
			}
			withText(parent, atom.H3, fmt.Sprintf("%s %s", str(g, model.FieldGroupIndex), str(g, model.FieldGroupLabel)))
			parent.AppendChild(textList(items))
		}
		return nil

	default:
		return &RenderError{Template: tmpl.Name, Field: tmpl.ScopeField, Err: fmt.Errorf("unsupported scope field")}
	}
}

func elem(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func withText(parent *html.Node, a atom.Atom, s string) *html.Node {
	n := elem(a)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	parent.AppendChild(n)
	return n
}

func textList(items []string) *html.Node {
	ul := elem(atom.Ul)
	for _, item := range items {
		withText(ul, atom.Li, item)
	}
	return ul
}
