package excelmap

import (
	"fmt"
	"reflect"
	"time"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// Column is one entry of a schema: how a single field of T maps to a sheet column.
type Column[T any] struct {
	// Field is the source identifier, unique within a schema.
	Field string
	// Name is the header text. Defaults to Field.
	Name                string
	Type                CellType
	DatePattern         string
	Width               int
	VerticalAlignment   VerticalAlignment
	HorizontalAlignment HorizontalAlignment
	HeaderColor         Color
	Color               Color
	CustomStyle         CellStyleProcessor
	FontStyle           FontStyle
	// Position is the 0-based column index used on import, NoPosition when unset.
	Position int
	// Required columns must be present on import and hold a value in every row.
	Required bool

	valueType reflect.Type
	index     int
	get       func(*T) interface{}
	set       func(*T, interface{})
	pattern   datePattern
}

// ValueType returns the Go type of the field behind the column.
func (c Column[T]) ValueType() reflect.Type { return c.valueType }

// Index returns the 0-based sheet column the column is written to. It equals
// Position when one is set.
func (c Column[T]) Index() int { return c.index }

// Settable reports whether import can write the column back into T.
func (c Column[T]) Settable() bool { return c.set != nil }

// ColumnBuilder configures one column. Errors surface from NewSchema.
type ColumnBuilder[T any] struct {
	col Column[T]
}

// Field starts a column bound to an accessor and a mutator of T.
// A nil set makes the column export only.
func Field[T, V any](id string, get func(*T) V, set func(*T, V)) *ColumnBuilder[T] {
	b := &ColumnBuilder[T]{col: Column[T]{
		Field:     id,
		Position:  NoPosition,
		valueType: reflect.TypeOf((*V)(nil)).Elem(),
	}}
	if get != nil {
		b.col.get = func(item *T) interface{} { return get(item) }
	}
	if set != nil {
		b.col.set = func(item *T, v interface{}) {
			val, _ := v.(V)
			set(item, val)
		}
	}
	return b
}

func (b *ColumnBuilder[T]) Name(name string) *ColumnBuilder[T] {
	b.col.Name = name
	return b
}

func (b *ColumnBuilder[T]) Type(t CellType) *ColumnBuilder[T] {
	b.col.Type = t
	return b
}

// Pattern sets the date pattern, e.g. "yyyy-MM-dd".
func (b *ColumnBuilder[T]) Pattern(pattern string) *ColumnBuilder[T] {
	b.col.DatePattern = pattern
	return b
}

func (b *ColumnBuilder[T]) Width(width int) *ColumnBuilder[T] {
	b.col.Width = width
	return b
}

func (b *ColumnBuilder[T]) Align(a HorizontalAlignment) *ColumnBuilder[T] {
	b.col.HorizontalAlignment = a
	return b
}

func (b *ColumnBuilder[T]) VAlign(a VerticalAlignment) *ColumnBuilder[T] {
	b.col.VerticalAlignment = a
	return b
}

func (b *ColumnBuilder[T]) HeaderColor(c Color) *ColumnBuilder[T] {
	b.col.HeaderColor = c
	return b
}

func (b *ColumnBuilder[T]) Color(c Color) *ColumnBuilder[T] {
	b.col.Color = c
	return b
}

func (b *ColumnBuilder[T]) Style(p CellStyleProcessor) *ColumnBuilder[T] {
	b.col.CustomStyle = p
	return b
}

func (b *ColumnBuilder[T]) Font(f FontStyle) *ColumnBuilder[T] {
	b.col.FontStyle = f
	return b
}

func (b *ColumnBuilder[T]) Position(pos int) *ColumnBuilder[T] {
	b.col.Position = pos
	return b
}

func (b *ColumnBuilder[T]) Required() *ColumnBuilder[T] {
	b.col.Required = true
	return b
}

// normalize applies defaults and validates a column in place.
func (c *Column[T]) normalize() error {
	if c.Field == "" {
		return configErrorf("", "field identifier is empty")
	}
	if c.get == nil {
		return configErrorf(c.Field, "accessor is nil")
	}
	if c.Name == "" {
		c.Name = c.Field
	}
	if c.Type < CellTypeText || c.Type > CellTypeTime {
		return configErrorf(c.Field, "unknown cell type %d", int(c.Type))
	}
	if err := checkValueType(c.Type, c.valueType); err != nil {
		return configErrorf(c.Field, "%s", err.Error())
	}
	if c.set != nil && !decodable(c.valueType) {
		return configErrorf(c.Field, "%s values cannot be read from cells", c.valueType)
	}
	if c.Width < 0 {
		return configErrorf(c.Field, "width %d is negative", c.Width)
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Position < NoPosition {
		return configErrorf(c.Field, "position %d is invalid", c.Position)
	}
	if c.DatePattern == "" {
		c.DatePattern = DefaultDatePattern
		if c.Type == CellTypeTime {
			c.DatePattern = DefaultTimePattern
		}
	}
	p, err := compilePattern(c.DatePattern)
	if err != nil {
		return configErrorf(c.Field, "%s", err.Error())
	}
	c.pattern = p
	if c.HorizontalAlignment == "" {
		c.HorizontalAlignment = HAlignCenter
	}
	if !c.HorizontalAlignment.valid() {
		return configErrorf(c.Field, "unknown horizontal alignment %q", c.HorizontalAlignment)
	}
	if c.VerticalAlignment == "" {
		c.VerticalAlignment = VAlignCenter
	}
	if !c.VerticalAlignment.valid() {
		return configErrorf(c.Field, "unknown vertical alignment %q", c.VerticalAlignment)
	}
	if c.HeaderColor, err = c.HeaderColor.normalize(); err != nil {
		return configErrorf(c.Field, "header color: %s", err.Error())
	}
	if c.Color, err = c.Color.normalize(); err != nil {
		return configErrorf(c.Field, "color: %s", err.Error())
	}
	return nil
}

func checkValueType(ct CellType, t reflect.Type) error {
	base := t
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	switch ct {
	case CellTypeDate:
		if base != timeType {
			return fmt.Errorf("DATE column bound to %s, want time.Time", t)
		}
	case CellTypeTime:
		if base != timeType && base != durationType {
			return fmt.Errorf("TIME column bound to %s, want time.Time or time.Duration", t)
		}
	case CellTypeNumeric:
		if base == durationType {
			return fmt.Errorf("NUMERIC column bound to %s", t)
		}
		switch base.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64, reflect.String:
		default:
			return fmt.Errorf("NUMERIC column bound to %s, want a number or numeric string", t)
		}
	}
	return nil
}
