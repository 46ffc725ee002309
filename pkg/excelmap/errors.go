package excelmap

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig matches every *ConfigError.
	ErrConfig = errors.New("excelmap: configuration error")
	// ErrMapping matches every *MappingError.
	ErrMapping = errors.New("excelmap: mapping error")
	// ErrLookup matches every *LookupError.
	ErrLookup = errors.New("excelmap: lookup error")

	// ErrSheetExists is returned when a sheet with the same name is already in the workbook.
	ErrSheetExists = errors.New("excelmap: sheet already exists")
	// ErrNoSheets is returned when writing an exporter that never received a sheet.
	ErrNoSheets = errors.New("excelmap: no sheets appended")
	// ErrSheetNotFound is returned by the importer when the requested sheet is missing.
	ErrSheetNotFound = errors.New("excelmap: sheet not found")
	// ErrInvalidWorkbook is returned by Import and ImportFile when the input cannot be opened as a workbook.
	ErrInvalidWorkbook = errors.New("excelmap: cannot open workbook")

	errRequiredEmpty = errors.New("required value is empty")
)

// ConfigError reports an invalid or conflicting column configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid column configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration for field %q: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErrorf(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// MappingError reports a value that could not be coerced between a field and a cell.
// Row is the 1-based worksheet row and Cell the cell reference, e.g. "B7".
type MappingError struct {
	Sheet string
	Row   int
	Cell  string
	Field string
	Value interface{}
	Err   error
}

func (e *MappingError) Error() string {
	loc := e.Sheet
	if e.Cell != "" {
		loc = fmt.Sprintf("%s!%s", e.Sheet, e.Cell)
	} else if e.Row > 0 {
		loc = fmt.Sprintf("%s row %d", e.Sheet, e.Row)
	}
	if e.Field == "" {
		return fmt.Sprintf("mapping error at %s: %v", loc, e.Err)
	}
	return fmt.Sprintf("mapping error at %s (field %q, value %v): %v", loc, e.Field, e.Value, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

func (e *MappingError) Is(target error) bool { return target == ErrMapping }

// LookupError reports a required column that no header or position resolves to.
type LookupError struct {
	Sheet    string
	Field    string
	Name     string
	Position int
}

func (e *LookupError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("sheet %q: no column at position %d for field %q", e.Sheet, e.Position, e.Field)
	}
	return fmt.Sprintf("sheet %q: no column named %q for field %q", e.Sheet, e.Name, e.Field)
}

func (e *LookupError) Is(target error) bool { return target == ErrLookup }
