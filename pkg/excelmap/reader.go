package excelmap

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// MatchType selects how columns without a fixed position are found on import.
type MatchType int

const (
	// MatchByName matches header text against column names.
	MatchByName MatchType = iota
	// MatchByPosition reads columns in schema declaration order.
	MatchByPosition
)

func (m MatchType) String() string {
	if m == MatchByPosition {
		return "position"
	}
	return "name"
}

// ParseMatchType parses "name" or "position". Empty means MatchByName.
func ParseMatchType(s string) (MatchType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return MatchByName, nil
	case "position":
		return MatchByPosition, nil
	}
	return MatchByName, fmt.Errorf("unknown match type %q", s)
}

type importConfig struct {
	sheet      string
	sheetIndex int
	headerRow  int
	match      MatchType
	loc        *time.Location
	validate   *validator.Validate
	logger     zerolog.Logger
}

// ImportOption configures ReadSheet, Import and ImportFile.
type ImportOption func(*importConfig)

// FromSheet reads the named sheet.
func FromSheet(name string) ImportOption {
	return func(c *importConfig) {
		c.sheet = name
	}
}

// FromSheetAt reads the sheet at the 0-based index. The default is the first sheet.
func FromSheetAt(index int) ImportOption {
	return func(c *importConfig) {
		c.sheetIndex = index
	}
}

// WithHeaderRow sets the 1-based header row; data starts below it.
// Zero means the sheet has no header and columns are matched by position.
func WithHeaderRow(row int) ImportOption {
	return func(c *importConfig) {
		c.headerRow = row
	}
}

func WithMatchType(m MatchType) ImportOption {
	return func(c *importConfig) {
		c.match = m
	}
}

// WithLocation sets the location of imported dates. The default is UTC.
func WithLocation(loc *time.Location) ImportOption {
	return func(c *importConfig) {
		c.loc = loc
	}
}

// WithValidator validates every imported struct with the validate tags of T.
func WithValidator(v *validator.Validate) ImportOption {
	return func(c *importConfig) {
		c.validate = v
	}
}

func WithImportLogger(l zerolog.Logger) ImportOption {
	return func(c *importConfig) {
		c.logger = l
	}
}

// binding ties a schema column to a 0-based sheet column.
type binding[T any] struct {
	col   *Column[T]
	index int
}

// ImportFile reads the workbook at path, see ReadSheet.
func ImportFile[T any](path string, schema *Schema[T], opts ...ImportOption) ([]T, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	defer f.Close()
	return ReadSheet(f, schema, opts...)
}

// Import reads a workbook from r, see ReadSheet.
func Import[T any](r io.Reader, schema *Schema[T], opts ...ImportOption) ([]T, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	defer f.Close()
	return ReadSheet(f, schema, opts...)
}

// ReadSheet builds one T per non-empty data row of a sheet.
//
// A column with a fixed position is always read from that position. Other
// columns are matched by header text, first against the name, then the name
// ignoring case, then the field identifier, unless MatchByPosition is set or
// the sheet has no header row. Unmatched optional columns are left at their
// zero value; an unmatched required column fails with *LookupError. Cells that
// cannot be decoded fail with *MappingError.
func ReadSheet[T any](f *excelize.File, schema *Schema[T], opts ...ImportOption) ([]T, error) {
	if f == nil {
		return nil, fmt.Errorf("workbook is nil")
	}
	if schema == nil {
		return nil, configErrorf("", "schema is nil")
	}
	cfg := importConfig{headerRow: 1, loc: time.UTC, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.headerRow < 0 {
		return nil, fmt.Errorf("header row %d is negative", cfg.headerRow)
	}
	if cfg.loc == nil {
		cfg.loc = time.UTC
	}

	sheet, err := resolveSheet(f, cfg)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading rows of %q: %w", sheet, err)
	}

	var header []string
	dataStart := 0
	if cfg.headerRow > 0 {
		if len(rows) >= cfg.headerRow {
			header = rows[cfg.headerRow-1]
		}
		dataStart = cfg.headerRow
	}
	bindings, err := bindColumns(schema, sheet, header, cfg)
	if err != nil {
		return nil, err
	}

	dec := decoder{loc: cfg.loc}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		dec.date1904 = *props.Date1904
	}
	validateStruct := cfg.validate != nil && reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Struct

	var out []T
	for i := dataStart; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		rowNum := i + 1
		var item T
		for _, b := range bindings {
			raw := ""
			if b.index < len(row) {
				raw = row[b.index]
			}
			cell, _ := excelize.CoordinatesToCellName(b.index+1, rowNum)
			if b.col.Required && strings.TrimSpace(raw) == "" {
				return nil, &MappingError{Sheet: sheet, Row: rowNum, Cell: cell, Field: b.col.Field, Value: raw, Err: errRequiredEmpty}
			}
			v, err := dec.decode(raw, b.col.valueType, b.col.Type, b.col.pattern)
			if err != nil {
				return nil, &MappingError{Sheet: sheet, Row: rowNum, Cell: cell, Field: b.col.Field, Value: raw, Err: err}
			}
			b.col.set(&item, v.Interface())
		}
		if validateStruct {
			if err := cfg.validate.Struct(&item); err != nil {
				return nil, &MappingError{Sheet: sheet, Row: rowNum, Err: err}
			}
		}
		out = append(out, item)
	}

	cfg.logger.Debug().
		Str("sheet", sheet).
		Int("columns", len(bindings)).
		Int("rows", len(out)).
		Msg("sheet imported")
	return out, nil
}

func resolveSheet(f *excelize.File, cfg importConfig) (string, error) {
	if cfg.sheet != "" {
		idx, err := f.GetSheetIndex(cfg.sheet)
		if err != nil {
			return "", fmt.Errorf("looking up sheet %q: %w", cfg.sheet, err)
		}
		if idx == -1 {
			return "", fmt.Errorf("%w: %q", ErrSheetNotFound, cfg.sheet)
		}
		return f.GetSheetName(idx), nil
	}
	sheets := f.GetSheetList()
	if cfg.sheetIndex < 0 || cfg.sheetIndex >= len(sheets) {
		return "", fmt.Errorf("%w: index %d", ErrSheetNotFound, cfg.sheetIndex)
	}
	return sheets[cfg.sheetIndex], nil
}

func bindColumns[T any](schema *Schema[T], sheet string, header []string, cfg importConfig) ([]binding[T], error) {
	byPosition := cfg.match == MatchByPosition || cfg.headerRow == 0
	var bindings []binding[T]
	for i := range schema.columns {
		col := &schema.columns[i]
		if col.set == nil {
			continue
		}
		var index int
		switch {
		case col.Position >= 0, byPosition:
			index = col.index
		default:
			index = matchHeader(header, col)
		}
		if index < 0 {
			if col.Required {
				return nil, &LookupError{Sheet: sheet, Field: col.Field, Name: col.Name, Position: NoPosition}
			}
			continue
		}
		bindings = append(bindings, binding[T]{col: col, index: index})
	}
	return bindings, nil
}

func matchHeader[T any](header []string, col *Column[T]) int {
	for i, h := range header {
		if strings.TrimSpace(h) == col.Name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), col.Name) {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), col.Field) {
			return i
		}
	}
	return -1
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
