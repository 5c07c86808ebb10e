// Package proposal turns a catalog snapshot and a filled-in form into the
// context a document template is rendered from. Everything here is pure.
package proposal

// Titled is a catalog row addressable by its short title
type Titled interface {
	Title() string
	Text() string
}

// Reconcile maps selected short titles back to their full texts, in
// selection order. Matching is exact and case-sensitive; the first row with
// a title wins. Titles no longer in the catalog are dropped silently.
func Reconcile[T Titled](items []T, selected []string) []string {
	byTitle := make(map[string]string, len(items))
	for _, item := range items {
		if _, ok := byTitle[item.Title()]; !ok {
			byTitle[item.Title()] = item.Text()
		}
	}

	out := make([]string, 0, len(selected))
	for _, title := range selected {
		if text, ok := byTitle[title]; ok {
			out = append(out, text)
		}
	}
	return out
}
