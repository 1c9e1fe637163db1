package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"almacen-backend/internal/logger"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const maxAttempts = 3

var initialBackoff = 500 * time.Millisecond

var log = logger.Log

// GoogleStore guarda los datos en una planilla de Google Sheets.
type GoogleStore struct {
	srv           *gsheets.Service
	spreadsheetID string
	limiter       *rate.Limiter

	mu       sync.Mutex
	sheetIDs map[string]int64
}

func NewGoogleStore(ctx context.Context, spreadsheetID, credentialsFile string, rps float64) (*GoogleStore, error) {
	srv, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("no se pudo crear el cliente de Sheets: %w", err)
	}
	return &GoogleStore{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(rate.Limit(rps), 5),
		sheetIDs:      make(map[string]int64),
	}, nil
}

func (s *GoogleStore) Name() string { return "google" }

func (s *GoogleStore) Close() error { return nil }

// call respeta el límite de requests y reintenta 429/5xx con backoff exponencial.
func (s *GoogleStore) call(ctx context.Context, op string, fn func() error) error {
	var err error
	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if werr := s.limiter.Wait(ctx); werr != nil {
			return werr
		}
		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) || attempt == maxAttempts {
			break
		}
		log.Warningf("sheets %s falló (intento %d/%d): %v", op, attempt, maxAttempts, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("sheets %s: %w", op, err)
}

func retryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	return false
}

func (s *GoogleStore) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	var resp *gsheets.ValueRange
	err := s.call(ctx, "read "+sheet, func() error {
		var err error
		resp, err = s.srv.Spreadsheets.Values.Get(s.spreadsheetID, A1(sheet, fmt.Sprintf("A%d:Z", FirstDataRow))).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, v := range raw {
			row[j] = cellString(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(t)
	}
}

func (s *GoogleStore) AppendRows(ctx context.Context, sheet string, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	vr := &gsheets.ValueRange{Values: toInterfaces(rows)}

	var resp *gsheets.AppendValuesResponse
	err := s.call(ctx, "append "+sheet, func() error {
		var err error
		resp, err = s.srv.Spreadsheets.Values.Append(s.spreadsheetID, A1(sheet, "A1"), vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, err
	}
	if resp.Updates == nil {
		return 0, fmt.Errorf("sheets append %s: respuesta sin rango", sheet)
	}
	return RowOfRange(resp.Updates.UpdatedRange)
}

func (s *GoogleStore) UpdateRow(ctx context.Context, sheet string, row int, values []any) error {
	vr := &gsheets.ValueRange{Values: toInterfaces([][]any{values})}
	return s.call(ctx, "update "+sheet, func() error {
		_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, A1(sheet, fmt.Sprintf("A%d", row)), vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
}

func (s *GoogleStore) UpdateCell(ctx context.Context, sheet string, row, col int, value any) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{{value}}}
	return s.call(ctx, "update "+sheet, func() error {
		_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, A1(sheet, CellRef(col, row)), vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
}

func (s *GoogleStore) DeleteRows(ctx context.Context, sheet string, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	// de abajo hacia arriba para que los índices sigan siendo válidos
	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	reqs := make([]*gsheets.Request, 0, len(sorted))
	for _, r := range sorted {
		reqs = append(reqs, &gsheets.Request{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(r - 1),
					EndIndex:   int64(r),
				},
			},
		})
	}
	return s.batch(ctx, "delete rows "+sheet, reqs)
}

func (s *GoogleStore) UnmergeAll(ctx context.Context, sheet string) error {
	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	return s.batch(ctx, "unmerge "+sheet, []*gsheets.Request{{
		UnmergeCells: &gsheets.UnmergeCellsRequest{Range: &gsheets.GridRange{SheetId: sheetID}},
	}})
}

func (s *GoogleStore) ApplyFormat(ctx context.Context, sheet string, ops []FormatOp) (int, error) {
	if len(ops) == 0 {
		return 0, nil
	}
	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return len(ops), err
	}

	reqs := make([]*gsheets.Request, len(ops))
	for i, op := range ops {
		reqs[i] = formatRequest(sheetID, op)
	}

	// un solo batch; si falla se aplica de a una para aislar las que fallan
	if err := s.batch(ctx, "format "+sheet, reqs); err == nil {
		return 0, nil
	}

	var errs []error
	for i, req := range reqs {
		if err := s.batch(ctx, "format "+sheet, []*gsheets.Request{req}); err != nil {
			errs = append(errs, fmt.Errorf("op %d filas %d-%d col %s: %w", i, ops[i].FromRow, ops[i].ToRow, ColName(ops[i].Col), err))
		}
	}
	return len(errs), errors.Join(errs...)
}

func formatRequest(sheetID int64, op FormatOp) *gsheets.Request {
	gr := &gsheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(op.FromRow - 1),
		EndRowIndex:      int64(op.ToRow),
		StartColumnIndex: int64(op.Col - 1),
		EndColumnIndex:   int64(op.Col),
	}
	if op.Kind == OpMerge {
		return &gsheets.Request{MergeCells: &gsheets.MergeCellsRequest{Range: gr, MergeType: "MERGE_ALL"}}
	}

	format := &gsheets.CellFormat{
		TextFormat: &gsheets.TextFormat{
			Bold:            op.Style.Bold,
			FontSize:        int64(op.Style.FontSize),
			ForegroundColor: hexColor(op.Style.FontColor),
		},
	}
	fields := []string{"textFormat"}
	if op.Style.Background != "" {
		format.BackgroundColor = hexColor(op.Style.Background)
		fields = append(fields, "backgroundColor")
	}
	return &gsheets.Request{RepeatCell: &gsheets.RepeatCellRequest{
		Range:  gr,
		Cell:   &gsheets.CellData{UserEnteredFormat: format},
		Fields: "userEnteredFormat(" + strings.Join(fields, ",") + ")",
	}}
}

func hexColor(hex string) *gsheets.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil
	}
	return &gsheets.Color{
		Red:   float64((v>>16)&0xff) / 255,
		Green: float64((v>>8)&0xff) / 255,
		Blue:  float64(v&0xff) / 255,
	}
}

func (s *GoogleStore) EnsureSheets(ctx context.Context, headers map[string][]string) error {
	if err := s.loadSheetIDs(ctx); err != nil {
		return err
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var reqs []*gsheets.Request
	var created []string
	s.mu.Lock()
	for _, name := range names {
		if _, ok := s.sheetIDs[name]; !ok {
			reqs = append(reqs, &gsheets.Request{AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: name},
			}})
			created = append(created, name)
		}
	}
	s.mu.Unlock()

	if len(reqs) == 0 {
		return nil
	}
	if err := s.batch(ctx, "add sheets", reqs); err != nil {
		return err
	}
	if err := s.loadSheetIDs(ctx); err != nil {
		return err
	}
	for _, name := range created {
		header := make([]any, len(headers[name]))
		for i, h := range headers[name] {
			header[i] = h
		}
		if err := s.UpdateRow(ctx, name, 1, header); err != nil {
			return err
		}
		log.Infof("hoja %s creada", name)
	}
	return nil
}

func (s *GoogleStore) batch(ctx context.Context, op string, reqs []*gsheets.Request) error {
	body := &gsheets.BatchUpdateSpreadsheetRequest{Requests: reqs}
	return s.call(ctx, op, func() error {
		_, err := s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, body).Context(ctx).Do()
		return err
	})
}

func (s *GoogleStore) sheetID(ctx context.Context, title string) (int64, error) {
	s.mu.Lock()
	id, ok := s.sheetIDs[title]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	if err := s.loadSheetIDs(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok = s.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("la hoja %q no existe", title)
	}
	return id, nil
}

func (s *GoogleStore) loadSheetIDs(ctx context.Context) error {
	var ss *gsheets.Spreadsheet
	err := s.call(ctx, "get properties", func() error {
		var err error
		ss, err = s.srv.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	return nil
}

func toInterfaces(rows [][]any) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = append([]interface{}(nil), r...)
	}
	return out
}
