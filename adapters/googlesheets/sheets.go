package googlesheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	sheettable "github.com/ideamans/go-sheettable"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Source opens a Google Sheets spreadsheet as a sheettable engine
type Source struct {
	service *sheets.Service
	config  Config
}

// NewSource creates a source over the configured spreadsheet.
// config.Credentials, when set, are resolved here; opts may add an endpoint
// or an HTTP client.
func NewSource(ctx context.Context, config Config, opts ...option.ClientOption) (*Source, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Credentials != nil {
		auth, err := config.Credentials.clientOption(ctx)
		if err != nil {
			return nil, err
		}
		opts = append([]option.ClientOption{auth}, opts...)
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Source{
		service: service,
		config:  config,
	}, nil
}

// Open implements sheettable.Source. No request is made until the engine is
// used.
func (s *Source) Open(ctx context.Context, readOnly bool) (sheettable.Engine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return &engine{
		service:  s.service,
		config:   s.config,
		readOnly: readOnly,
		written:  make(map[string]bool),
	}, nil
}

type engine struct {
	service  *sheets.Service
	config   Config
	readOnly bool
	written  map[string]bool
	titles   []string // sheet titles, fetched once
	closed   bool
}

// Sheets returns the sheet titles in spreadsheet order
func (e *engine) Sheets(ctx context.Context) ([]string, error) {
	if e.closed {
		return nil, fmt.Errorf("%w: engine is closed", sheettable.ErrState)
	}
	if e.titles != nil {
		return slices.Clone(e.titles), nil
	}

	resp, err := e.service.Spreadsheets.Get(e.config.SpreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apiError("failed to get spreadsheet", err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	e.titles = titles
	return slices.Clone(titles), nil
}

// Rows fetches the sheet in a single request. Values are requested
// unformatted so numbers and booleans keep their type.
func (e *engine) Rows(ctx context.Context, sheet string) (sheettable.RowIterator, error) {
	if err := e.requireSheet(ctx, sheet); err != nil {
		return nil, err
	}

	resp, err := e.service.Spreadsheets.Values.Get(e.config.SpreadsheetID, a1Range(sheet, e.config.columns())).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apiError("failed to get sheet data", err)
	}

	rows := make([]*sheettable.Row, 0, len(resp.Values))
	for i, values := range resp.Values {
		row := sheettable.NewRow(i + 1)
		for j, v := range values {
			if v == nil || v == "" {
				continue
			}
			row.Add(j+1, convertCellValue(v))
		}
		if len(row.Cells) > 0 {
			rows = append(rows, row)
		}
	}
	return sheettable.NewSliceIterator(rows), nil
}

// WriteSheet replaces the content of the sheet, adding the sheet first when
// the spreadsheet does not have it. Gaps between row numbers are written as
// blank rows.
func (e *engine) WriteSheet(ctx context.Context, sheet string, rows []*sheettable.Row) error {
	if e.closed {
		return fmt.Errorf("%w: engine is closed", sheettable.ErrState)
	}
	if e.readOnly {
		return fmt.Errorf("%w: spreadsheet opened read-only", sheettable.ErrState)
	}
	if e.written[sheet] {
		return fmt.Errorf("%w: sheet %q already written", sheettable.ErrState, sheet)
	}
	e.written[sheet] = true

	values, err := sheetValues(rows)
	if err != nil {
		return err
	}

	if err := e.addSheet(ctx, sheet); err != nil {
		return err
	}

	_, err = e.service.Spreadsheets.Values.Clear(e.config.SpreadsheetID, a1Range(sheet, e.config.columns()), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return apiError("failed to clear sheet", err)
	}
	if len(values) == 0 {
		return nil
	}

	vr := &sheets.ValueRange{
		Values: values,
	}
	_, err = e.service.Spreadsheets.Values.Update(e.config.SpreadsheetID, a1Range(sheet, "A1"), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return apiError("failed to update sheet", err)
	}
	return nil
}

func (e *engine) Close() error {
	e.closed = true
	return nil
}

func (e *engine) requireSheet(ctx context.Context, sheet string) error {
	titles, err := e.Sheets(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(titles, sheet) {
		return fmt.Errorf("%w: sheet %q", sheettable.ErrNotFound, sheet)
	}
	return nil
}

func (e *engine) addSheet(ctx context.Context, sheet string) error {
	titles, err := e.Sheets(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(titles, sheet) {
		return nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheet},
			},
		}},
	}
	if _, err := e.service.Spreadsheets.BatchUpdate(e.config.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return apiError("failed to add sheet", err)
	}
	e.titles = append(e.titles, sheet)
	return nil
}

// sheetValues lays rows out densely from row 1 and column A
func sheetValues(rows []*sheettable.Row) ([][]interface{}, error) {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b *sheettable.Row) int {
		return a.Number - b.Number
	})

	values := make([][]interface{}, 0, len(sorted))
	for _, row := range sorted {
		if row.Number < 1 {
			return nil, fmt.Errorf("%w: invalid row number %d", sheettable.ErrInvalidArgument, row.Number)
		}
		for len(values) < row.Number-1 {
			values = append(values, []interface{}{})
		}
		cells := row.Values(row.MaxColumn())
		for i, v := range cells {
			cells[i] = convertToSheetValue(v)
		}
		if len(values) == row.Number {
			// Duplicate row number; the later row wins
			values[len(values)-1] = cells
			continue
		}
		values = append(values, cells)
	}
	return values, nil
}

// a1Range builds "Sheet!A:ZZ", quoting titles that are not plain words
func a1Range(sheet, cells string) string {
	plain := sheet != ""
	for _, r := range sheet {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			plain = false
			break
		}
	}
	if !plain {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cells
}

func apiError(msg string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %w", sheettable.ErrNotFound, msg, err)
	}
	return fmt.Errorf("%w: %s: %w", sheettable.ErrIO, msg, err)
}

// convertCellValue converts a Google Sheets cell value to Go type
func convertCellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		// Unformatted values keep numbers and booleans typed, so any string
		// is a text cell
		return val
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt64 && val < math.MaxInt64 {
			return int64(val)
		}
		return val
	case bool:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// convertToSheetValue converts a Go value to a JSON value the API accepts.
// Numbers and booleans are sent as such; null cells become "".
func convertToSheetValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return uint64(val)
	case uint8:
		return uint64(val)
	case uint16:
		return uint64(val)
	case uint32:
		return uint64(val)
	case uint64:
		return val
	case float32:
		return float64(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return strconv.FormatFloat(val, 'g', -1, 64)
		}
		return val
	case bool:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		if sheettable.IsNull(val) {
			return ""
		}
		return fmt.Sprintf("%v", val)
	}
}
