package excelmap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// overrides.go - YAML column overrides applied on top of a schema

// OverrideFile is the root of a schema override document:
//
//	schemas:
//	  Employee:
//	    sheet_name: Staff
//	    columns:
//	      HireDate:
//	        name: Hired On
//	        pattern: dd/MM/yyyy
type OverrideFile struct {
	Schemas map[string]SchemaOverride `yaml:"schemas"`
}

// SchemaOverride holds the overrides for one schema, keyed by field identifier.
type SchemaOverride struct {
	SheetName string                    `yaml:"sheet_name"`
	Columns   map[string]ColumnOverride `yaml:"columns"`
}

// ColumnOverride changes the presentation of a column. Zero values keep the
// schema's setting; pointer fields allow resetting to zero values.
type ColumnOverride struct {
	Name        string `yaml:"name"`
	Width       int    `yaml:"width"`
	Pattern     string `yaml:"pattern"`
	HAlign      string `yaml:"halign"`
	VAlign      string `yaml:"valign"`
	HeaderColor string `yaml:"header_color"`
	Color       string `yaml:"color"`
	Position    *int   `yaml:"position"`
	Required    *bool  `yaml:"required"`
}

// LoadOverrides loads an override document from a YAML file.
func LoadOverrides(path string) (*OverrideFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening overrides file: %w", err)
	}
	defer file.Close()

	return LoadOverridesFromReader(file)
}

// LoadOverridesFromReader loads an override document from an io.Reader.
func LoadOverridesFromReader(r io.Reader) (*OverrideFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}

	var of OverrideFile
	if err := yaml.Unmarshal(data, &of); err != nil {
		return nil, fmt.Errorf("parsing YAML overrides: %w", err)
	}
	return &of, nil
}

// LoadOverridesFromString loads an override document from a YAML string.
func LoadOverridesFromString(content string) (*OverrideFile, error) {
	return LoadOverridesFromReader(strings.NewReader(content))
}

// For returns the overrides for a schema type name, or nil.
func (of *OverrideFile) For(typeName string) *SchemaOverride {
	if of == nil {
		return nil
	}
	if so, ok := of.Schemas[typeName]; ok {
		return &so
	}
	return nil
}

// Override returns a copy of the schema with the overrides applied and
// re-validated. A nil override returns the schema itself.
func (s *Schema[T]) Override(o *SchemaOverride) (*Schema[T], error) {
	if o == nil {
		return s, nil
	}
	cols := s.Columns()
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c.Field] = i
	}
	for field, co := range o.Columns {
		i, ok := index[field]
		if !ok {
			return nil, configErrorf(field, "override for unknown column")
		}
		c := &cols[i]
		if co.Name != "" {
			c.Name = co.Name
		}
		if co.Width != 0 {
			c.Width = co.Width
		}
		if co.Pattern != "" {
			c.DatePattern = co.Pattern
		}
		if co.HAlign != "" {
			c.HorizontalAlignment = HorizontalAlignment(co.HAlign)
		}
		if co.VAlign != "" {
			c.VerticalAlignment = VerticalAlignment(co.VAlign)
		}
		if co.HeaderColor != "" {
			c.HeaderColor = Color(co.HeaderColor)
		}
		if co.Color != "" {
			c.Color = Color(co.Color)
		}
		if co.Position != nil {
			c.Position = *co.Position
		}
		if co.Required != nil {
			c.Required = *co.Required
		}
	}
	sheetName := s.sheetName
	if o.SheetName != "" {
		sheetName = o.SheetName
	}
	return newSchema(sheetName, cols)
}
