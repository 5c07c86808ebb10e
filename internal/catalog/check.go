package catalog

import (
	"context"
	"errors"

	"github.com/ppiankov/proposta/internal/model"
)

// TableSpec pairs a catalog table with the columns it must carry
type TableSpec struct {
	Name     string
	Required []string
}

// Tables lists every catalog table in load order
func Tables(opts SnapshotOptions) []TableSpec {
	return []TableSpec{
		{Name: model.TableScope, Required: model.ScopeColumns(opts.LegacyTitles)},
		{Name: model.TableExclusions, Required: model.TitledColumns()},
		{Name: model.TableResponsibilities, Required: model.TitledColumns()},
		{Name: model.TableClients, Required: model.ClientColumns()},
		{Name: model.TableCoverages, Required: model.CoverageColumns()},
	}
}

// TableNames lists the catalog table names
func TableNames() []string {
	specs := Tables(SnapshotOptions{})
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// TableReport is the health of one table
type TableReport struct {
	Table   string
	Rows    int
	Columns []string
	Err     error
}

// OK reports whether the table loaded and validated
func (r TableReport) OK() bool { return r.Err == nil }

// CheckReport is the health of the whole catalog
type CheckReport struct {
	Tables     []TableReport
	Duplicates []Duplicate
}

// OK reports whether every table is usable. Duplicates are warnings.
func (r *CheckReport) OK() bool {
	for _, t := range r.Tables {
		if !t.OK() {
			return false
		}
	}
	return true
}

// Check loads every table independently so one broken table does not hide
// problems in the others. Duplicates are only computed when all tables load.
func Check(ctx context.Context, l *Loader, opts SnapshotOptions) *CheckReport {
	report := &CheckReport{}
	for _, spec := range Tables(opts) {
		tr := TableReport{Table: spec.Name}
		t, err := l.Load(ctx, spec.Name, spec.Required)
		if err != nil {
			tr.Err = err
			var schema *SchemaError
			if errors.As(err, &schema) {
				tr.Columns = schema.Found
			}
		} else {
			tr.Rows = t.Len()
			tr.Columns = t.Columns
		}
		report.Tables = append(report.Tables, tr)
	}

	if report.OK() {
		if snap, err := LoadSnapshot(ctx, l, opts); err == nil {
			report.Duplicates = snap.Duplicates()
		}
	}
	return report
}
