package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/xuri/excelize/v2"
)

// XLSXStore usa un libro .xlsx local con el mismo contrato de hojas y
// columnas que la planilla de Google. Cada mutación se guarda a disco.
type XLSXStore struct {
	mu     sync.Mutex
	path   string
	f      *excelize.File
	styles map[CellStyle]int
}

func OpenXLSX(path string) (*XLSXStore, error) {
	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("no se pudo abrir %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("no se pudo crear %s: %w", path, err)
		}
	} else {
		return nil, err
	}

	return &XLSXStore{path: path, f: f, styles: make(map[CellStyle]int)}, nil
}

func (s *XLSXStore) Name() string { return "xlsx" }

func (s *XLSXStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

func (s *XLSXStore) save() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("no se pudo guardar %s: %w", s.path, err)
	}
	return nil
}

func (s *XLSXStore) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx read %s: %w", sheet, err)
	}
	if len(rows) < FirstDataRow {
		return [][]string{}, nil
	}
	return rows[FirstDataRow-1:], nil
}

func (s *XLSXStore) AppendRows(ctx context.Context, sheet string, rows [][]any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("xlsx append %s: %w", sheet, err)
	}
	first := len(existing) + 1
	if first < FirstDataRow {
		first = FirstDataRow
	}
	for i, r := range rows {
		row := r
		if err := s.f.SetSheetRow(sheet, CellRef(1, first+i), &row); err != nil {
			return 0, fmt.Errorf("xlsx append %s: %w", sheet, err)
		}
	}
	return first, s.save()
}

func (s *XLSXStore) UpdateRow(ctx context.Context, sheet string, row int, values []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.f.SetSheetRow(sheet, CellRef(1, row), &values); err != nil {
		return fmt.Errorf("xlsx update %s!%d: %w", sheet, row, err)
	}
	return s.save()
}

func (s *XLSXStore) UpdateCell(ctx context.Context, sheet string, row, col int, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.f.SetCellValue(sheet, CellRef(col, row), value); err != nil {
		return fmt.Errorf("xlsx update %s!%s: %w", sheet, CellRef(col, row), err)
	}
	return s.save()
}

func (s *XLSXStore) DeleteRows(ctx context.Context, sheet string, rows []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, r := range sorted {
		if err := s.f.RemoveRow(sheet, r); err != nil {
			return fmt.Errorf("xlsx delete %s!%d: %w", sheet, r, err)
		}
	}
	return s.save()
}

func (s *XLSXStore) UnmergeAll(ctx context.Context, sheet string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := s.f.GetMergeCells(sheet)
	if err != nil {
		return fmt.Errorf("xlsx unmerge %s: %w", sheet, err)
	}
	for _, mc := range merged {
		if err := s.f.UnmergeCell(sheet, mc.GetStartAxis(), mc.GetEndAxis()); err != nil {
			return fmt.Errorf("xlsx unmerge %s %s:%s: %w", sheet, mc.GetStartAxis(), mc.GetEndAxis(), err)
		}
	}
	return s.save()
}

func (s *XLSXStore) ApplyFormat(ctx context.Context, sheet string, ops []FormatOp) (int, error) {
	if err := ctx.Err(); err != nil {
		return len(ops), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for i, op := range ops {
		top, bottom := CellRef(op.Col, op.FromRow), CellRef(op.Col, op.ToRow)
		var err error
		switch op.Kind {
		case OpMerge:
			err = s.f.MergeCell(sheet, top, bottom)
		case OpStyle:
			var styleID int
			if styleID, err = s.styleID(op.Style); err == nil {
				err = s.f.SetCellStyle(sheet, top, bottom, styleID)
			}
		default:
			err = fmt.Errorf("operación desconocida %d", op.Kind)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("op %d %s:%s: %w", i, top, bottom, err))
		}
	}
	if err := s.save(); err != nil {
		errs = append(errs, err)
	}
	return len(errs), errors.Join(errs...)
}

func (s *XLSXStore) styleID(cs CellStyle) (int, error) {
	if id, ok := s.styles[cs]; ok {
		return id, nil
	}
	st := &excelize.Style{
		Font: &excelize.Font{
			Bold:  cs.Bold,
			Color: cs.FontColor,
			Size:  float64(cs.FontSize),
		},
	}
	if cs.Background != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{cs.Background}}
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	s.styles[cs] = id
	return id, nil
}

// MergedRanges devuelve los rangos combinados de la hoja ("A2:A4").
func (s *XLSXStore) MergedRanges(sheet string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := s.f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(merged))
	for _, mc := range merged {
		out = append(out, mc.GetStartAxis()+":"+mc.GetEndAxis())
	}
	sort.Strings(out)
	return out, nil
}

func (s *XLSXStore) EnsureSheets(ctx context.Context, headers map[string][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	for _, name := range names {
		idx, err := s.f.GetSheetIndex(name)
		if err != nil {
			return err
		}
		if idx != -1 {
			continue
		}
		if _, err := s.f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx new sheet %s: %w", name, err)
		}
		header := make([]any, len(headers[name]))
		for i, h := range headers[name] {
			header[i] = h
		}
		if err := s.f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		changed = true
	}

	// la hoja por defecto de un libro nuevo sobra
	if _, ok := headers["Sheet1"]; !ok {
		if idx, _ := s.f.GetSheetIndex("Sheet1"); idx != -1 && len(s.f.GetSheetList()) > 1 {
			if rows, _ := s.f.GetRows("Sheet1"); len(rows) == 0 {
				if err := s.f.DeleteSheet("Sheet1"); err == nil {
					changed = true
				}
			}
		}
	}

	if !changed {
		return nil
	}
	return s.save()
}
