package proposal

import "github.com/ppiankov/proposta/internal/model"

// Scope is the technical scope in whichever representation the active
// template expects
type Scope struct {
	Mode   model.ScopeMode
	Groups []model.ScopeGroup
	Items  []string
}

// Build assembles the renderer context. It performs no I/O and no
// validation. The revision is the fixed default; callers with their own
// revision tracking overwrite it.
func Build(
	project model.ProjectFields,
	coverage string,
	responsibilities []string,
	scope Scope,
	exclusions []string,
	commercial model.CommercialFields,
) *model.ProposalContext {
	ctx := &model.ProposalContext{
		Project:          project,
		Coverage:         coverage,
		Responsibilities: responsibilities,
		Mode:             scope.Mode,
		Exclusions:       exclusions,
		Commercial:       commercial,
		Revision:         model.DefaultRevision,
	}

	if scope.Mode == model.ScopeModeFlat {
		ctx.ScopeItems = scope.Items
	} else {
		ctx.Mode = model.ScopeModeGrouped
		ctx.ScopeGroups = scope.Groups
	}
	return ctx
}
