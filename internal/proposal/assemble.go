package proposal

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ppiankov/proposta/internal/model"
)

// Selection is one chosen scope item with its per-item adjustments
type Selection struct {
	Category   string `yaml:"category,omitempty" json:"category,omitempty"` // empty matches the title in any category
	Title      string `yaml:"title" json:"title"`
	Quantity   int    `yaml:"quantity,omitempty" json:"quantity,omitempty"`
	Complement string `yaml:"complement,omitempty" json:"complement,omitempty"`
}

func (s Selection) matches(item model.ScopeItem) bool {
	return s.Title == item.ShortTitle && (s.Category == "" || s.Category == item.Category)
}

// Defaults for Assembler
const (
	DefaultQuantityLabel = "Quantidade"
	DefaultSection       = "1"
)

// Assembler groups selected scope items and writes their final text
type Assembler struct {
	QuantityLabel string
	Section       string
	Language      language.Tag
}

// NewAssembler returns an assembler; empty arguments take the defaults
func NewAssembler(quantityLabel, section string) *Assembler {
	if quantityLabel == "" {
		quantityLabel = DefaultQuantityLabel
	}
	if section == "" {
		section = DefaultSection
	}
	return &Assembler{
		QuantityLabel: quantityLabel,
		Section:       section,
		Language:      language.BrazilianPortuguese,
	}
}

// ItemText appends the quantity clause (only when quantity > 1) and the
// complement clause to base:
//
//	base — Quantidade: 3. complement.
//
// With neither clause base is returned unchanged.
func (a *Assembler) ItemText(base string, quantity int, complement string) string {
	var clauses []string
	if quantity > 1 {
		clauses = append(clauses, fmt.Sprintf("%s: %d", a.QuantityLabel, quantity))
	}
	if c := strings.TrimSpace(complement); c != "" {
		clauses = append(clauses, c)
	}
	if len(clauses) == 0 {
		return base
	}
	return base + " — " + strings.Join(clauses, ". ") + "."
}

// Assemble emits one group per category that has at least one selected item.
// Categories keep the order they first appear in items, items keep catalog
// order within a category, and groups are numbered <section>.1, <section>.2,
// ... counting only emitted groups.
func (a *Assembler) Assemble(items []model.ScopeItem, selections []Selection) []model.ScopeGroup {
	byTitle := make(map[string][]Selection, len(selections))
	for _, s := range selections {
		byTitle[s.Title] = append(byTitle[s.Title], s)
	}

	var order []string
	byCategory := make(map[string][]model.ScopeItem)
	for _, item := range items {
		if _, ok := byCategory[item.Category]; !ok {
			order = append(order, item.Category)
		}
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	// Casers carry state and must not be shared across goroutines
	upper := cases.Upper(a.Language)

	var groups []model.ScopeGroup
	for _, category := range order {
		var texts []string
		emitted := make(map[string]bool)

		for _, item := range byCategory[category] {
			if emitted[item.ShortTitle] {
				continue // shadowed duplicate; the first row wins
			}
			sel, ok := firstMatch(byTitle[item.ShortTitle], item)
			if !ok {
				continue
			}
			emitted[item.ShortTitle] = true
			texts = append(texts, a.ItemText(item.FullText, sel.Quantity, sel.Complement))
		}

		if len(texts) == 0 {
			continue
		}
		groups = append(groups, model.ScopeGroup{
			Index: fmt.Sprintf("%s.%d", a.Section, len(groups)+1),
			Label: upper.String(category),
			Items: texts,
		})
	}

	return groups
}

// Flat returns the simplified scope: one text per selection in selection
// order, stale selections dropped
func (a *Assembler) Flat(items []model.ScopeItem, selections []Selection) []string {
	out := make([]string, 0, len(selections))
	for _, sel := range selections {
		for _, item := range items {
			if sel.matches(item) {
				out = append(out, a.ItemText(item.FullText, sel.Quantity, sel.Complement))
				break
			}
		}
	}
	return out
}

func firstMatch(candidates []Selection, item model.ScopeItem) (Selection, bool) {
	for _, s := range candidates {
		if s.matches(item) {
			return s, true
		}
	}
	return Selection{}, false
}
