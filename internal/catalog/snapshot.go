package catalog

import (
	"context"

	"github.com/ppiankov/proposta/internal/model"
)

// Snapshot is the typed, read-only view of every catalog table needed to
// build one proposal
type Snapshot struct {
	Scope            []model.ScopeItem
	Exclusions       []model.ExclusionItem
	Responsibilities []model.ResponsibilityItem
	Clients          []model.ClientRecord
	Coverages        []model.CoverageTemplate
}

// SnapshotOptions tune how tables are read
type SnapshotOptions struct {
	LegacyTitles bool // scope sheet uses Titulo instead of Titulo_Curto
}

// LoadSnapshot loads all five catalog tables. The first failure aborts the
// whole snapshot.
func LoadSnapshot(ctx context.Context, l *Loader, opts SnapshotOptions) (*Snapshot, error) {
	scopeCols := model.ScopeColumns(opts.LegacyTitles)
	scope, err := l.Load(ctx, model.TableScope, scopeCols)
	if err != nil {
		return nil, err
	}
	exclusions, err := l.Load(ctx, model.TableExclusions, model.TitledColumns())
	if err != nil {
		return nil, err
	}
	responsibilities, err := l.Load(ctx, model.TableResponsibilities, model.TitledColumns())
	if err != nil {
		return nil, err
	}
	clients, err := l.Load(ctx, model.TableClients, model.ClientColumns())
	if err != nil {
		return nil, err
	}
	coverages, err := l.Load(ctx, model.TableCoverages, model.CoverageColumns())
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Scope:            ScopeItems(scope, scopeCols[1]),
		Exclusions:       ExclusionItems(exclusions),
		Responsibilities: ResponsibilityItems(responsibilities),
		Clients:          ClientRecords(clients),
		Coverages:        CoverageTemplates(coverages),
	}, nil
}

// ScopeItems maps scope rows in catalog order; titleCol is Titulo_Curto or
// the legacy Titulo
func ScopeItems(t *Table, titleCol string) []model.ScopeItem {
	out := make([]model.ScopeItem, t.Len())
	for i := range t.Rows {
		out[i] = model.ScopeItem{
			Category:   t.Value(i, model.ColCategory),
			ShortTitle: t.Value(i, titleCol),
			FullText:   t.Value(i, model.ColFullText),
		}
	}
	return out
}

func ExclusionItems(t *Table) []model.ExclusionItem {
	out := make([]model.ExclusionItem, t.Len())
	for i := range t.Rows {
		out[i] = model.ExclusionItem{
			ShortTitle: t.Value(i, model.ColShortTitle),
			FullText:   t.Value(i, model.ColFullText),
		}
	}
	return out
}

func ResponsibilityItems(t *Table) []model.ResponsibilityItem {
	out := make([]model.ResponsibilityItem, t.Len())
	for i := range t.Rows {
		out[i] = model.ResponsibilityItem{
			ShortTitle: t.Value(i, model.ColShortTitle),
			FullText:   t.Value(i, model.ColFullText),
		}
	}
	return out
}

func ClientRecords(t *Table) []model.ClientRecord {
	out := make([]model.ClientRecord, t.Len())
	for i := range t.Rows {
		out[i] = model.ClientRecord{
			Company:     t.Value(i, model.ColCompany),
			ContactName: t.Value(i, model.ColContactName),
			Phone:       t.Value(i, model.ColPhone),
			Email:       t.Value(i, model.ColEmail),
			CityState:   t.Value(i, model.ColCityState),
		}
	}
	return out
}

func CoverageTemplates(t *Table) []model.CoverageTemplate {
	out := make([]model.CoverageTemplate, t.Len())
	for i := range t.Rows {
		out[i] = model.CoverageTemplate{FullText: t.Value(i, model.ColFullText)}
	}
	return out
}

// Client finds a client by exact company name; the first match wins
func (s *Snapshot) Client(company string) (model.ClientRecord, bool) {
	for _, c := range s.Clients {
		if c.Company == company {
			return c, true
		}
	}
	return model.ClientRecord{}, false
}

// Categories lists scope categories in first-appearance order
func (s *Snapshot) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range s.Scope {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}

// Duplicate is a key that appears more than once in a table. Lookups use the
// first occurrence; later rows are shadowed.
type Duplicate struct {
	Table    string
	Category string // scope table only
	Title    string
	Count    int
}

// Duplicates reports shadowed titles in every titled table and repeated
// company names in the clients table
func (s *Snapshot) Duplicates() []Duplicate {
	var out []Duplicate

	type scopeKey struct{ category, title string }
	scopeCounts := make(map[scopeKey]int)
	var scopeOrder []scopeKey
	for _, item := range s.Scope {
		k := scopeKey{item.Category, item.ShortTitle}
		if scopeCounts[k] == 0 {
			scopeOrder = append(scopeOrder, k)
		}
		scopeCounts[k]++
	}
	for _, k := range scopeOrder {
		if n := scopeCounts[k]; n > 1 {
			out = append(out, Duplicate{Table: model.TableScope, Category: k.category, Title: k.title, Count: n})
		}
	}

	out = append(out, duplicateTitles(model.TableExclusions, titlesOf(s.Exclusions))...)
	out = append(out, duplicateTitles(model.TableResponsibilities, titlesOf(s.Responsibilities))...)

	companies := make([]string, len(s.Clients))
	for i, c := range s.Clients {
		companies[i] = c.Company
	}
	out = append(out, duplicateTitles(model.TableClients, companies)...)

	return out
}

func titlesOf[T interface{ Title() string }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title()
	}
	return out
}

func duplicateTitles(table string, titles []string) []Duplicate {
	counts := make(map[string]int)
	var order []string
	for _, t := range titles {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	var out []Duplicate
	for _, t := range order {
		if counts[t] > 1 {
			out = append(out, Duplicate{Table: table, Title: t, Count: counts[t]})
		}
	}
	return out
}
