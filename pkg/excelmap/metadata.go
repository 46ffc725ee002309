package excelmap

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// SheetMetadata describes one sheet to render: columns, rows, name and the
// workbook it goes into. It is built once per append and never mutated.
type SheetMetadata[T any] struct {
	schema       *Schema[T]
	columns      []Column[T]
	data         []T
	sheetName    string
	workbook     *excelize.File
	freezeHeader bool
	autoFilter   bool
}

func (m *SheetMetadata[T]) SheetName() string        { return m.sheetName }
func (m *SheetMetadata[T]) Schema() *Schema[T]       { return m.schema }
func (m *SheetMetadata[T]) Columns() []Column[T]     { return m.schema.Columns() }
func (m *SheetMetadata[T]) Len() int                 { return len(m.data) }
func (m *SheetMetadata[T]) Workbook() *excelize.File { return m.workbook }

// SheetBuilder assembles a SheetMetadata. A builder builds exactly once.
type SheetBuilder[T any] struct {
	schema       *Schema[T]
	data         []T
	workbook     *excelize.File
	sheetName    string
	freezeHeader bool
	autoFilter   bool
	built        bool
}

// NewSheetBuilder starts the metadata for data rendered with schema into wb.
func NewSheetBuilder[T any](schema *Schema[T], data []T, wb *excelize.File) *SheetBuilder[T] {
	return &SheetBuilder[T]{schema: schema, data: data, workbook: wb}
}

// SheetName sets the target sheet name. Blank keeps the schema default.
func (b *SheetBuilder[T]) SheetName(name string) *SheetBuilder[T] {
	b.sheetName = name
	return b
}

// FreezeHeader keeps the header row visible while scrolling.
func (b *SheetBuilder[T]) FreezeHeader(on bool) *SheetBuilder[T] {
	b.freezeHeader = on
	return b
}

// AutoFilter adds a filter over the header and data rows.
func (b *SheetBuilder[T]) AutoFilter(on bool) *SheetBuilder[T] {
	b.autoFilter = on
	return b
}

// Build validates the inputs and returns the metadata.
func (b *SheetBuilder[T]) Build() (*SheetMetadata[T], error) {
	if b.built {
		return nil, fmt.Errorf("sheet builder already used")
	}
	if b.schema == nil {
		return nil, configErrorf("", "schema is nil")
	}
	if b.workbook == nil {
		return nil, fmt.Errorf("workbook is nil")
	}
	name := strings.TrimSpace(b.sheetName)
	if name == "" {
		name = b.schema.SheetName()
	}
	name = truncateSheetName(name)
	if err := validateSheetName(name); err != nil {
		return nil, configErrorf("", "sheet name: %s", err.Error())
	}
	b.built = true

	data := make([]T, len(b.data))
	copy(data, b.data)
	return &SheetMetadata[T]{
		schema:       b.schema,
		columns:      b.schema.columns,
		data:         data,
		sheetName:    name,
		workbook:     b.workbook,
		freezeHeader: b.freezeHeader,
		autoFilter:   b.autoFilter,
	}, nil
}

func truncateSheetName(name string) string {
	if utf8.RuneCountInString(name) <= maxSheetNameLength {
		return name
	}
	return string([]rune(name)[:maxSheetNameLength])
}

func validateSheetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is empty")
	}
	if utf8.RuneCountInString(name) > maxSheetNameLength {
		return fmt.Errorf("%q is longer than %d characters", name, maxSheetNameLength)
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return fmt.Errorf("%q starts or ends with an apostrophe", name)
	}
	if strings.ContainsAny(name, `:\/?*[]`) {
		return fmt.Errorf("%q contains one of :\\/?*[]", name)
	}
	return nil
}
