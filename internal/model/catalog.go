package model

// Catalog table names as they appear in the shared spreadsheet
const (
	TableScope            = "Escopos"
	TableExclusions       = "Exclusoes"
	TableResponsibilities = "Responsabilidades"
	TableClients          = "Clientes"
	TableCoverages        = "Coberturas"
)

// Catalog column names
const (
	ColCategory    = "Categoria"
	ColShortTitle  = "Titulo_Curto"
	ColLegacyTitle = "Titulo" // scope sheets created before Titulo_Curto existed
	ColFullText    = "Texto_Completo"
	ColCompany     = "Empresa"
	ColContactName = "Nome_Contato"
	ColPhone       = "Telefone"
	ColEmail       = "Email"
	ColCityState   = "Cidade_Estado"
)

// ScopeColumns returns the required columns of the scope table, in declared order
func ScopeColumns(legacy bool) []string {
	if legacy {
		return []string{ColCategory, ColLegacyTitle, ColFullText}
	}
	return []string{ColCategory, ColShortTitle, ColFullText}
}

// TitledColumns are the required columns of the exclusions and responsibilities tables
func TitledColumns() []string {
	return []string{ColShortTitle, ColFullText}
}

// ClientColumns are the required columns of the clients table
func ClientColumns() []string {
	return []string{ColCompany, ColContactName, ColPhone, ColEmail, ColCityState}
}

// CoverageColumns are the required columns of the coverage templates table
func CoverageColumns() []string {
	return []string{ColFullText}
}

// ScopeItem is one selectable equipment/service description
type ScopeItem struct {
	Category   string `json:"category" yaml:"category"`
	ShortTitle string `json:"short_title" yaml:"short_title"`
	FullText   string `json:"full_text" yaml:"full_text"`
}

// Title returns the short display title
func (s ScopeItem) Title() string { return s.ShortTitle }

// Text returns the canonical long-form description
func (s ScopeItem) Text() string { return s.FullText }

// Values returns the row in the scope table's declared column order
func (s ScopeItem) Values() []string {
	return []string{s.Category, s.ShortTitle, s.FullText}
}

// ExclusionItem is a standard exclusion clause
type ExclusionItem struct {
	ShortTitle string `json:"short_title" yaml:"short_title"`
	FullText   string `json:"full_text" yaml:"full_text"`
}

func (e ExclusionItem) Title() string    { return e.ShortTitle }
func (e ExclusionItem) Text() string     { return e.FullText }
func (e ExclusionItem) Values() []string { return []string{e.ShortTitle, e.FullText} }

// ResponsibilityItem is a standard client responsibility clause
type ResponsibilityItem struct {
	ShortTitle string `json:"short_title" yaml:"short_title"`
	FullText   string `json:"full_text" yaml:"full_text"`
}

func (r ResponsibilityItem) Title() string    { return r.ShortTitle }
func (r ResponsibilityItem) Text() string     { return r.FullText }
func (r ResponsibilityItem) Values() []string { return []string{r.ShortTitle, r.FullText} }

// ClientRecord identifies a client company and its contact.
// Company is the lookup key.
type ClientRecord struct {
	Company     string `json:"company" yaml:"company"`
	ContactName string `json:"contact_name" yaml:"contact_name"`
	Phone       string `json:"phone" yaml:"phone"`
	Email       string `json:"email" yaml:"email"`
	CityState   string `json:"city_state" yaml:"city_state"`
}

// Values returns the row in the clients table's declared column order
func (c ClientRecord) Values() []string {
	return []string{c.Company, c.ContactName, c.Phone, c.Email, c.CityState}
}

// CoverageTemplate is a reusable cover-letter text
type CoverageTemplate struct {
	FullText string `json:"full_text" yaml:"full_text"`
}

// Values returns the row in the coverage table's declared column order
func (c CoverageTemplate) Values() []string { return []string{c.FullText} }
