package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/model"
)

// CSVStore reads tables from anonymous published CSV endpoints, one URL per
// table. It cannot append.
type CSVStore struct {
	urls    map[string]string
	fetcher *Fetcher
	limiter *Limiter
	logger  *zap.Logger
}

// NewCSVStore creates a read-only store over the given table URLs
func NewCSVStore(urls map[string]string, httpCfg model.HTTPConfig, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Config loaders lower-case map keys, so table names match case-insensitively
	copied := make(map[string]string, len(urls))
	for k, v := range urls {
		copied[strings.ToLower(k)] = v
	}
	limiter := NewLimiter(httpCfg.RequestsPerSecond, httpCfg.Burst)
	for host, rps := range httpCfg.HostRates {
		limiter.SetHostRate(host, rps, 0)
	}
	return &CSVStore{
		urls:    copied,
		fetcher: NewFetcher(httpCfg.Timeout, httpCfg.UserAgent, httpCfg.MaxBodyBytes, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		limiter: limiter,
		logger:  logger,
	}
}

// ID is derived from the configured URLs
func (s *CSVStore) ID() string {
	keys := make([]string, 0, len(s.urls))
	for k := range s.urls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("csv")
	for _, k := range keys {
		b.WriteString("|" + k + "=" + s.urls[k])
	}
	return b.String()
}

func (s *CSVStore) Capabilities() Capabilities { return Capabilities{Append: false} }

// Fetch downloads and parses the table's CSV export
func (s *CSVStore) Fetch(ctx context.Context, table string) ([][]string, error) {
	u, ok := s.urls[strings.ToLower(table)]
	if !ok || u == "" {
		return nil, fmt.Errorf("%s: no CSV URL configured: %w", table, ErrTableNotFound)
	}

	if err := s.limiter.Wait(ctx, u); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	s.logger.Debug("fetching CSV table", zap.String("table", table), zap.String("url", u))
	result, err := s.fetcher.FetchWithRetry(ctx, u)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.Code == http.StatusNotFound || statusErr.Code == http.StatusGone) {
			return nil, fmt.Errorf("%s: %w", table, ErrTableNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %w", table, ErrUnavailable, err)
	}

	// An unpublished sheet answers with a sign-in page instead of CSV
	if strings.HasPrefix(result.ContentType, "text/html") {
		return nil, fmt.Errorf("%s: endpoint returned HTML, not CSV (is the sheet published?): %w", table, ErrUnavailable)
	}

	rows, err := ParseCSV(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	return rows, nil
}

// Append is not supported by published CSV endpoints
func (s *CSVStore) Append(ctx context.Context, table string, values []string) error {
	return fmt.Errorf("%s: %w", table, ErrReadOnly)
}

// ParseCSV parses a CSV export, tolerating ragged rows and a UTF-8 BOM
func ParseCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return rows, nil
}
