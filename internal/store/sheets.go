package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore reads and appends worksheets of one spreadsheet through the
// authenticated Sheets API. Each table is a worksheet whose first row is
// the header.
type SheetsStore struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewSheetsStore opens the spreadsheet. credentialsFile may be empty to use
// application default credentials; extra client options are appended.
func NewSheetsStore(ctx context.Context, spreadsheetID, credentialsFile string, opts ...option.ClientOption) (*SheetsStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets store: spreadsheet id is required: %w", ErrUnavailable)
	}

	var all []option.ClientOption
	if credentialsFile != "" {
		all = append(all, option.WithCredentialsFile(credentialsFile))
	}
	all = append(all, opts...)

	srv, err := sheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("sheets store: create service: %w: %w", ErrUnavailable, err)
	}

	s := &SheetsStore{srv: srv, spreadsheetID: spreadsheetID}

	// Open-by-id doubles as the credentials check
	if _, err := srv.Spreadsheets.Get(spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("sheets store: open %s: %w", spreadsheetID, classifySheetsError(err, ""))
	}

	return s, nil
}

func (s *SheetsStore) ID() string { return "sheets:" + s.spreadsheetID }

func (s *SheetsStore) Capabilities() Capabilities { return Capabilities{Append: true} }

// Fetch reads every populated row of the worksheet
func (s *SheetsStore) Fetch(ctx context.Context, table string) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange(table)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, classifySheetsError(err, table))
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append adds values as a new row after the last populated row
func (s *SheetsStore) Append(ctx context.Context, table string, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, sheetRange(table), &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%s: %w", table, classifySheetsError(err, table))
	}
	return nil
}

// sheetRange quotes a worksheet name so the whole sheet is addressed
func sheetRange(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}

func classifySheetsError(err error, table string) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch {
	case apiErr.Code == http.StatusBadRequest && table != "" && strings.Contains(apiErr.Message, "Unable to parse range"):
		return fmt.Errorf("%w: %s", ErrTableNotFound, apiErr.Message)
	case apiErr.Code == http.StatusUnauthorized,
		apiErr.Code == http.StatusForbidden,
		apiErr.Code == http.StatusNotFound,
		apiErr.Code >= 500:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return err
	}
}
