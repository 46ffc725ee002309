package excelmap

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// tagKeys are the keys understood in an `excel:"..."` struct tag.
var tagKeys = map[string]bool{
	"name": true, "header": true, "type": true, "pattern": true, "width": true,
	"halign": true, "valign": true, "header_color": true, "color": true, "position": true,
}

// SchemaFromStruct derives a schema from the exported fields of the struct T.
//
// Tag format: `excel:"name:Hire Date,type:date,pattern:yyyy-MM-dd,width:15,position:2,required"`.
// `excel:"-"` skips the field. Without a name, the json tag name and then the
// field name are used as the header. Fields whose type cannot be read back
// from a cell are export only.
func SchemaFromStruct[T any]() (*Schema[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, configErrorf("", "%s is not a struct", t)
	}
	var cols []Column[T]
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("excel")
		if tag == "-" {
			continue
		}
		col := Column[T]{
			Field:     field.Name,
			Position:  NoPosition,
			valueType: field.Type,
		}
		if err := parseExcelTag(&col, tag); err != nil {
			return nil, err
		}
		if col.Name == "" {
			if jsonTag := field.Tag.Get("json"); jsonTag != "" && jsonTag != "-" {
				col.Name = strings.Split(jsonTag, ",")[0]
			}
		}
		index := field.Index
		col.get = func(item *T) interface{} {
			return reflect.ValueOf(item).Elem().FieldByIndex(index).Interface()
		}
		if decodable(field.Type) {
			col.set = func(item *T, v interface{}) {
				fv := reflect.ValueOf(item).Elem().FieldByIndex(index)
				if v == nil {
					fv.Set(reflect.Zero(fv.Type()))
					return
				}
				fv.Set(reflect.ValueOf(v))
			}
		}
		cols = append(cols, col)
	}
	return newSchema("", cols)
}

// parseExcelTag parses the excel struct tag. A comma followed by text that is
// not a known key continues the previous value, so patterns may hold commas.
func parseExcelTag[T any](col *Column[T], tag string) error {
	if strings.TrimSpace(tag) == "" {
		return nil
	}
	values := make(map[string]string)
	var last string
	for _, part := range strings.Split(tag, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "required" {
			col.Required = true
			last = ""
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		key := strings.TrimSpace(kv[0])
		if len(kv) == 2 && tagKeys[key] {
			values[key] = strings.TrimSpace(kv[1])
			last = key
			continue
		}
		if last == "" {
			return configErrorf(col.Field, "unknown excel tag option %q", trimmed)
		}
		values[last] += "," + part
	}

	for key, value := range values {
		switch key {
		case "name", "header":
			col.Name = value
		case "type":
			ct, err := ParseCellType(value)
			if err != nil {
				return configErrorf(col.Field, "%s", err.Error())
			}
			col.Type = ct
		case "pattern":
			col.DatePattern = value
		case "width":
			w, err := strconv.Atoi(value)
			if err != nil {
				return configErrorf(col.Field, "width %q is not an integer", value)
			}
			col.Width = w
		case "halign":
			col.HorizontalAlignment = HorizontalAlignment(value)
		case "valign":
			col.VerticalAlignment = VerticalAlignment(value)
		case "header_color":
			col.HeaderColor = Color(value)
		case "color":
			col.Color = Color(value)
		case "position":
			p, err := strconv.Atoi(value)
			if err != nil {
				return configErrorf(col.Field, "position %q is not an integer", value)
			}
			col.Position = p
		default:
			return fmt.Errorf("unhandled tag key %q", key)
		}
	}
	return nil
}
