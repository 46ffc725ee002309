package excelmap

import (
	"reflect"
	"strings"
)

// Schema is the ordered, validated list of columns for T. It is immutable;
// Override returns a new schema.
type Schema[T any] struct {
	sheetName string
	columns   []Column[T]
}

// NewSchema applies defaults to every column and validates the whole set.
// Errors are *ConfigError.
func NewSchema[T any](builders ...*ColumnBuilder[T]) (*Schema[T], error) {
	cols := make([]Column[T], 0, len(builders))
	for _, b := range builders {
		if b == nil {
			return nil, configErrorf("", "nil column builder")
		}
		cols = append(cols, b.col)
	}
	return newSchema("", cols)
}

// MustSchema panics if err is non-nil. Intended for package level schema variables.
func MustSchema[T any](s *Schema[T], err error) *Schema[T] {
	if err != nil {
		panic(err)
	}
	return s
}

func newSchema[T any](sheetName string, cols []Column[T]) (*Schema[T], error) {
	fields := make(map[string]bool, len(cols))
	positions := make(map[int]string, len(cols))
	for i := range cols {
		c := &cols[i]
		if err := c.normalize(); err != nil {
			return nil, err
		}
		if fields[c.Field] {
			return nil, configErrorf(c.Field, "duplicate field identifier")
		}
		fields[c.Field] = true
		if c.Position == NoPosition {
			continue
		}
		if other, ok := positions[c.Position]; ok {
			return nil, configErrorf(c.Field, "position %d already used by %q", c.Position, other)
		}
		positions[c.Position] = c.Field
	}
	if sheetName != "" {
		if err := validateSheetName(sheetName); err != nil {
			return nil, configErrorf("", "sheet name: %s", err.Error())
		}
	}
	layout(cols, positions)
	return &Schema[T]{sheetName: sheetName, columns: cols}, nil
}

// layout assigns every column its sheet index: fixed positions keep theirs,
// the others take the free indexes from the left in declaration order.
func layout[T any](cols []Column[T], taken map[int]string) {
	next := 0
	for i := range cols {
		c := &cols[i]
		if c.Position != NoPosition {
			c.index = c.Position
			continue
		}
		for {
			if _, ok := taken[next]; !ok {
				break
			}
			next++
		}
		c.index = next
		next++
	}
}

// span is the number of sheet columns from A to the rightmost column.
func span[T any](cols []Column[T]) int {
	n := 0
	for i := range cols {
		if cols[i].index+1 > n {
			n = cols[i].index + 1
		}
	}
	return n
}

// Columns returns a copy of the columns in declaration order.
func (s *Schema[T]) Columns() []Column[T] {
	out := make([]Column[T], len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks a column up by field identifier.
func (s *Schema[T]) Column(field string) (Column[T], bool) {
	for _, c := range s.columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (s *Schema[T]) Len() int { return len(s.columns) }

// TypeName is the Go type name of T, used for lookups in override files.
func (s *Schema[T]) TypeName() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// SheetName is the name used when an append does not give one: the override
// sheet name if any, otherwise the type name cut to the sheet name limit.
func (s *Schema[T]) SheetName() string {
	if s.sheetName != "" {
		return s.sheetName
	}
	name := s.TypeName()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		name = "Sheet"
	}
	return truncateSheetName(name)
}

// With binds a data collection to the schema for Exporter.AppendSheet.
func (s *Schema[T]) With(data []T) *Dataset[T] {
	return &Dataset[T]{schema: s, data: data}
}

// Dataset is a schema paired with the rows to export.
type Dataset[T any] struct {
	schema *Schema[T]
	data   []T
}
