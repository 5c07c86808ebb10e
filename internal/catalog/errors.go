package catalog

import (
	"fmt"
	"strings"
)

// ConnectionError means the catalog store is unreachable or rejected the
// credentials. Nothing in the session can proceed.
type ConnectionError struct {
	Store string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("catalog store %s unavailable: %v", e.Store, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NotFoundError means a named table does not exist in the store
type NotFoundError struct {
	Table string
	Err   error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %q does not exist in the catalog", e.Table)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// SchemaError means required columns are missing after header normalization
type SchemaError struct {
	Table   string
	Missing []string
	Found   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %q is missing column(s) %s; columns found: [%s]",
		e.Table, quoteJoin(e.Missing), quoteJoin(e.Found))
}

// WriteError means appending a row failed. It is never retried.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("append to %q failed: %v", e.Table, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
