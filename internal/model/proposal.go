package model

// ScopeMode selects how the technical scope is handed to the renderer
type ScopeMode string

const (
	ScopeModeGrouped ScopeMode = "grouped" // category groups with section indices
	ScopeModeFlat    ScopeMode = "flat"    // one list of item texts
)

// DefaultRevision is injected when no revision tracking exists
const DefaultRevision = "00"

// Renderer field names. Templates reference these exact keys.
const (
	FieldCompany          = "empresa"
	FieldContactName      = "contato"
	FieldPhone            = "telefone"
	FieldEmail            = "email"
	FieldCityState        = "cidade_estado"
	FieldProposalNumber   = "numero_proposta"
	FieldProject          = "projeto"
	FieldLocation         = "local_obra"
	FieldDate             = "data"
	FieldCoverage         = "cobertura"
	FieldResponsibilities = "responsabilidades"
	FieldScopeGroups      = "escopos"
	FieldScopeItems       = "itens_escopo"
	FieldExclusions       = "exclusoes"
	FieldPaymentTerms     = "forma_pagamento"
	FieldDeliveryTime     = "prazo_entrega"
	FieldValidity         = "validade"
	FieldPrice            = "valor"
	FieldWarranty         = "garantia"
	FieldNotes            = "observacoes"
	FieldRevision         = "revisao"

	FieldGroupIndex = "indice"
	FieldGroupLabel = "categoria"
	FieldGroupItems = "itens"
)

// ScopeGroup is a category-labeled, sequentially indexed bundle of selected
// scope texts. It only lives for one generation request.
type ScopeGroup struct {
	Index string   `json:"index"`
	Label string   `json:"label"`
	Items []string `json:"items"`
}

// ProjectFields identify the proposal and the client it is addressed to
type ProjectFields struct {
	Client         ClientRecord `json:"client" yaml:"client"`
	ProposalNumber string       `json:"proposal_number" yaml:"proposal_number"`
	Project        string       `json:"project" yaml:"project"`
	Location       string       `json:"location" yaml:"location"`
	Date           string       `json:"date" yaml:"date"` // preformatted by the caller
}

// CommercialFields are free-text commercial terms. No pricing is computed.
type CommercialFields struct {
	PaymentTerms string `json:"payment_terms" yaml:"payment_terms"`
	DeliveryTime string `json:"delivery_time" yaml:"delivery_time"`
	Validity     string `json:"validity" yaml:"validity"`
	Price        string `json:"price" yaml:"price"`
	Warranty     string `json:"warranty" yaml:"warranty"`
	Notes        string `json:"notes" yaml:"notes"`
}

// ProposalContext is everything the renderer needs for one document
type ProposalContext struct {
	Project          ProjectFields    `json:"project"`
	Coverage         string           `json:"coverage"`
	Responsibilities []string         `json:"responsibilities"`
	Mode             ScopeMode        `json:"mode"`
	ScopeGroups      []ScopeGroup     `json:"scope_groups,omitempty"`
	ScopeItems       []string         `json:"scope_items,omitempty"`
	Exclusions       []string         `json:"exclusions"`
	Commercial       CommercialFields `json:"commercial"`
	Revision         string           `json:"revision"`
}

// Fields flattens the context into the mapping consumed by templates.
// Only the scope field of the active mode is emitted.
func (c *ProposalContext) Fields() map[string]any {
	fields := map[string]any{
		FieldCompany:          c.Project.Client.Company,
		FieldContactName:      c.Project.Client.ContactName,
		FieldPhone:            c.Project.Client.Phone,
		FieldEmail:            c.Project.Client.Email,
		FieldCityState:        c.Project.Client.CityState,
		FieldProposalNumber:   c.Project.ProposalNumber,
		FieldProject:          c.Project.Project,
		FieldLocation:         c.Project.Location,
		FieldDate:             c.Project.Date,
		FieldCoverage:         c.Coverage,
		FieldResponsibilities: nonNil(c.Responsibilities),
		FieldExclusions:       nonNil(c.Exclusions),
		FieldPaymentTerms:     c.Commercial.PaymentTerms,
		FieldDeliveryTime:     c.Commercial.DeliveryTime,
		FieldValidity:         c.Commercial.Validity,
		FieldPrice:            c.Commercial.Price,
		FieldWarranty:         c.Commercial.Warranty,
		FieldNotes:            c.Commercial.Notes,
		FieldRevision:         c.Revision,
	}

	switch c.Mode {
	case ScopeModeFlat:
		fields[FieldScopeItems] = nonNil(c.ScopeItems)
	default:
		groups := make([]map[string]any, 0, len(c.ScopeGroups))
		for _, g := range c.ScopeGroups {
			groups = append(groups, map[string]any{
				FieldGroupIndex: g.Index,
				FieldGroupLabel: g.Label,
				FieldGroupItems: nonNil(g.Items),
			})
		}
		fields[FieldScopeGroups] = groups
	}

	return fields
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
