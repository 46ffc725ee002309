package excelmap

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// SheetCreator renders one SheetMetadata into its workbook.
type SheetCreator[T any] struct {
	meta   *SheetMetadata[T]
	logger zerolog.Logger
	styles *styleCache
}

// NewSheetCreator returns a creator for meta that does not log.
func NewSheetCreator[T any](meta *SheetMetadata[T]) *SheetCreator[T] {
	return &SheetCreator[T]{meta: meta, logger: zerolog.Nop()}
}

// WithLogger sets the logger used for per sheet debug output.
func (sc *SheetCreator[T]) WithLogger(l zerolog.Logger) *SheetCreator[T] {
	sc.logger = l
	return sc
}

// CreateSheet adds the sheet, writes the header row and one row per item.
// The first failure stops the sheet and is returned; cells already written stay.
func (sc *SheetCreator[T]) CreateSheet() error {
	m := sc.meta
	if m == nil {
		return fmt.Errorf("sheet metadata is nil")
	}
	f := m.workbook
	idx, err := f.GetSheetIndex(m.sheetName)
	if err != nil {
		return fmt.Errorf("looking up sheet %q: %w", m.sheetName, err)
	}
	if idx != -1 {
		return fmt.Errorf("%w: %q", ErrSheetExists, m.sheetName)
	}
	if _, err := f.NewSheet(m.sheetName); err != nil {
		return fmt.Errorf("creating sheet %q: %w", m.sheetName, err)
	}
	sc.styles = newStyleCache(f)

	if err := sc.writeHeader(); err != nil {
		return err
	}
	for i := range m.data {
		if err := sc.writeRow(i); err != nil {
			return err
		}
	}
	if err := sc.applyLayout(); err != nil {
		return err
	}

	sc.logger.Debug().
		Str("sheet", m.sheetName).
		Int("columns", len(m.columns)).
		Int("rows", len(m.data)).
		Msg("sheet written")
	return nil
}

func (sc *SheetCreator[T]) writeHeader() error {
	m := sc.meta
	for i := range m.columns {
		col := &m.columns[i]
		cell, err := excelize.CoordinatesToCellName(col.index+1, 1)
		if err != nil {
			return err
		}
		if err := m.workbook.SetCellStr(m.sheetName, cell, col.Name); err != nil {
			return fmt.Errorf("writing header %q: %w", col.Name, err)
		}
		ctx := CellContext{Sheet: m.sheetName, Field: col.Field, Header: true, Row: 1, Index: -1, Value: col.Name}
		if err := sc.applyStyle(i, ctx, cell); err != nil {
			return err
		}

		name, err := excelize.ColumnNumberToName(col.index + 1)
		if err != nil {
			return err
		}
		if err := m.workbook.SetColWidth(m.sheetName, name, name, float64(col.Width)); err != nil {
			return fmt.Errorf("setting width of column %s: %w", name, err)
		}
	}
	return nil
}

func (sc *SheetCreator[T]) writeRow(index int) error {
	m := sc.meta
	row := index + 2
	item := &m.data[index]
	for i := range m.columns {
		col := &m.columns[i]
		cell, err := excelize.CoordinatesToCellName(col.index+1, row)
		if err != nil {
			return err
		}
		raw := col.get(item)
		if err := sc.writeValue(col, cell, raw); err != nil {
			return &MappingError{Sheet: m.sheetName, Row: row, Cell: cell, Field: col.Field, Value: raw, Err: err}
		}
		ctx := CellContext{Sheet: m.sheetName, Field: col.Field, Row: row, Index: index, Value: raw}
		if err := sc.applyStyle(i, ctx, cell); err != nil {
			return err
		}
	}
	return nil
}

// writeValue converts v according to the column type and stores it. Nil
// values leave the cell empty.
func (sc *SheetCreator[T]) writeValue(col *Column[T], cell string, v interface{}) error {
	f, sheet := sc.meta.workbook, sc.meta.sheetName
	val, ok := indirect(v)
	if !ok {
		return nil
	}
	switch col.Type {
	case CellTypeText:
		s, err := textValue(val, col.pattern)
		if err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		return f.SetCellStr(sheet, cell, s)
	case CellTypeNumeric:
		n, err := numericValue(val)
		if err != nil || n == nil {
			return err
		}
		if fv, ok := n.(float64); ok {
			return f.SetCellFloat(sheet, cell, fv, -1, 64)
		}
		return f.SetCellValue(sheet, cell, n)
	case CellTypeDate:
		t, ok := val.(time.Time)
		if !ok {
			return fmt.Errorf("%T is not a date", val)
		}
		if t.IsZero() {
			return nil
		}
		return f.SetCellValue(sheet, cell, t)
	case CellTypeTime:
		frac, err := timeOfDay(val)
		if err != nil {
			return err
		}
		return f.SetCellFloat(sheet, cell, frac, -1, 64)
	}
	return fmt.Errorf("unknown cell type %s", col.Type)
}

func (sc *SheetCreator[T]) applyStyle(colIndex int, ctx CellContext, cell string) error {
	col := &sc.meta.columns[colIndex]
	id, err := sc.styles.styleID(styleKey{column: colIndex, header: ctx.Header}, func() (*excelize.Style, bool) {
		return col.cellStyle(ctx)
	})
	if err != nil {
		return fmt.Errorf("styling %s: %w", cell, err)
	}
	return sc.meta.workbook.SetCellStyle(sc.meta.sheetName, cell, cell, id)
}

// applyLayout freezes the header row and adds the auto filter when asked.
func (sc *SheetCreator[T]) applyLayout() error {
	m := sc.meta
	if len(m.columns) == 0 {
		return nil
	}
	if m.freezeHeader {
		if err := m.workbook.SetPanes(m.sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freezing header: %w", err)
		}
	}
	if m.autoFilter {
		last, err := excelize.CoordinatesToCellName(span(m.columns), len(m.data)+1)
		if err != nil {
			return err
		}
		if err := m.workbook.AutoFilter(m.sheetName, "A1:"+last, nil); err != nil {
			return fmt.Errorf("adding auto filter: %w", err)
		}
	}
	return nil
}
