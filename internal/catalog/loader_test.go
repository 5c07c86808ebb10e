package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/proposta/internal/cache"
	"github.com/ppiankov/proposta/internal/model"
	"github.com/ppiankov/proposta/internal/store"
)

func newTestLoader(tables map[string][][]string) (*Loader, *store.MemoryStore) {
	s := store.NewMemoryStore(tables)
	return NewLoader(s, cache.NewMemoryCache(time.Minute), time.Minute, nil), s
}

func TestLoad_NormalizesHeaderAndPadsRows(t *testing.T) {
	l, _ := newTestLoader(map[string][][]string{
		model.TableScope: {
			{" Categoria", "Titulo_Curto ", " Texto_Completo ", "Extra"},
			{"Dutos", "Duto Flex", "Fornecimento de duto flexível."},
			{"", "", "", ""},
		},
	})

	tbl, err := l.Load(context.Background(), model.TableScope, model.ScopeColumns(false))
	require.NoError(t, err)

	assert.Equal(t, []string{"Categoria", "Titulo_Curto", "Texto_Completo", "Extra"}, tbl.Columns)
	require.Equal(t, 1, tbl.Len(), "blank rows are dropped")
	assert.Equal(t, "Duto Flex", tbl.Value(0, "Titulo_Curto"))
	assert.Equal(t, "", tbl.Value(0, "Extra"))
	assert.Equal(t, "", tbl.Value(0, "Absent"))
	assert.Equal(t, map[string]string{
		"Categoria":      "Dutos",
		"Titulo_Curto":   "Duto Flex",
		"Texto_Completo": "Fornecimento de duto flexível.",
		"Extra":          "",
	}, tbl.Records()[0])
}

func TestLoad_SchemaErrorCarriesMissingAndFound(t *testing.T) {
	l, _ := newTestLoader(map[string][][]string{
		model.TableExclusions: {
			{"Titulo", "Texto Completo"},
			{"Pintura", "Pintura não inclusa."},
		},
	})

	tbl, err := l.Load(context.Background(), model.TableExclusions, model.TitledColumns())
	assert.Nil(t, tbl)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr), "got %v", err)
	assert.Equal(t, model.TableExclusions, schemaErr.Table)
	assert.Equal(t, []string{"Titulo_Curto", "Texto_Completo"}, schemaErr.Missing)
	assert.Equal(t, []string{"Titulo", "Texto Completo"}, schemaErr.Found)
	assert.Contains(t, err.Error(), `"Titulo_Curto"`)
	assert.Contains(t, err.Error(), `columns found: ["Titulo", "Texto Completo"]`)
}

func TestLoad_SchemaErrorForAnyMissingColumn(t *testing.T) {
	required := model.ClientColumns()
	for i := range required {
		header := append(append([]string(nil), required[:i]...), required[i+1:]...)
		row := make([]string, len(header))
		for j := range row {
			row[j] = fmt.Sprintf("v%d", j)
		}

		l, _ := newTestLoader(map[string][][]string{model.TableClients: {header, row}})
		_, err := l.Load(context.Background(), model.TableClients, required)

		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr), "dropping %s", required[i])
		assert.Equal(t, []string{required[i]}, schemaErr.Missing)
	}
}

func TestLoad_EmptyTableIsShapedWithRequiredColumns(t *testing.T) {
	tests := []struct {
		name string
		raw  [][]string
	}{
		{"no rows at all", [][]string{}},
		{"header only", [][]string{{"Something", "Else"}}},
		{"header and blank rows", [][]string{{"Texto_Completo"}, {""}, {"  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLoader(map[string][][]string{model.TableCoverages: tt.raw})

			tbl, err := l.Load(context.Background(), model.TableCoverages, model.CoverageColumns())
			require.NoError(t, err)
			assert.Equal(t, 0, tbl.Len())
			assert.Equal(t, model.CoverageColumns(), tbl.Columns)
			assert.NotNil(t, tbl.Rows)
		})
	}
}

func TestLoad_MissingTableIsNotFound(t *testing.T) {
	l, _ := newTestLoader(map[string][][]string{})

	_, err := l.Load(context.Background(), model.TableResponsibilities, model.TitledColumns())

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, model.TableResponsibilities, nf.Table)
	assert.True(t, errors.Is(err, store.ErrTableNotFound))
	assert.Contains(t, err.Error(), model.TableResponsibilities)
}

type unavailableStore struct{ *store.MemoryStore }

func (*unavailableStore) ID() string { return "down" }
func (*unavailableStore) Fetch(context.Context, string) ([][]string, error) {
	return nil, fmt.Errorf("dial tcp: %w", store.ErrUnavailable)
}

func TestLoad_UnavailableStoreIsConnectionError(t *testing.T) {
	l := NewLoader(&unavailableStore{MemoryStore: store.NewMemoryStore(nil)}, nil, time.Minute, nil)

	_, err := l.Load(context.Background(), model.TableScope, model.ScopeColumns(false))

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "got %v", err)
	assert.Equal(t, "down", connErr.Store)
}

func TestLoad_CachesWithinWindow(t *testing.T) {
	l, s := newTestLoader(map[string][][]string{
		model.TableExclusions: {{"Titulo_Curto", "Texto_Completo"}, {"Pintura", "Pintura não inclusa."}},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Load(ctx, model.TableExclusions, model.TitledColumns())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, s.Fetches(model.TableExclusions))

	require.NoError(t, l.Invalidate(model.TableExclusions))
	_, err := l.Load(ctx, model.TableExclusions, model.TitledColumns())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Fetches(model.TableExclusions))
}

func TestLoad_ValidatesCachedSnapshotPerCaller(t *testing.T) {
	l, _ := newTestLoader(map[string][][]string{
		model.TableScope: {{"Categoria", "Titulo", "Texto_Completo"}, {"Dutos", "Duto", "Duto."}},
	})
	ctx := context.Background()

	_, err := l.Load(ctx, model.TableScope, model.ScopeColumns(true))
	require.NoError(t, err)

	_, err = l.Load(ctx, model.TableScope, model.ScopeColumns(false))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Titulo_Curto"}, schemaErr.Missing)
}

func TestLoad_DiskCacheSpansLoaders(t *testing.T) {
	s := store.NewMemoryStore(map[string][][]string{
		model.TableCoverages: {{"Texto_Completo"}, {"Prezados,"}},
	})
	dir := t.TempDir()
	ctx := context.Background()

	first := NewLoader(s, cache.New(time.Minute, dir), time.Minute, nil)
	_, err := first.Load(ctx, model.TableCoverages, model.CoverageColumns())
	require.NoError(t, err)

	// A second process shares only the disk layer
	second := NewLoader(s, cache.New(time.Minute, dir), time.Minute, nil)
	tbl, err := second.Load(ctx, model.TableCoverages, model.CoverageColumns())
	require.NoError(t, err)
	assert.Equal(t, "Prezados,", tbl.Value(0, model.ColFullText))
	assert.Equal(t, 1, s.Fetches(model.TableCoverages))
}

func TestLoad_OversizedCSVExportFailsWithoutRows(t *testing.T) {
	const body = "Titulo_Curto,Texto_Completo\nPintura,Pintura não inclusa.\nCivil,Obras civis não inclusas.\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = fmt.Fprint(w, body)
	}))
	defer server.Close()

	httpCfg := model.DefaultConfig().HTTP
	httpCfg.RequestsPerSecond = 0
	httpCfg.MaxBodyBytes = int64(strings.Index(body, "não inclusas") + len("nã"))
	s := store.NewCSVStore(map[string]string{model.TableExclusions: server.URL}, httpCfg, nil)
	c := cache.NewMemoryCache(time.Minute)
	l := NewLoader(s, c, time.Minute, nil)

	tbl, err := l.Load(context.Background(), model.TableExclusions, model.TitledColumns())

	assert.Nil(t, tbl)
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "got %v", err)
	assert.True(t, errors.Is(err, store.ErrBodyTooLarge))
	_, cached := c.Get(cache.Key(s.ID(), model.TableExclusions))
	assert.False(t, cached, "a cut-off table must not be cached")
}
