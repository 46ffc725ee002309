package excelmap

import (
	"fmt"
	"strings"
)

// =============================================================================
// Constants & Types
// =============================================================================

const (
	DefaultDatePattern = "yyyy-MM-dd HH:mm:ss"
	DefaultTimePattern = "HH:mm:ss"
	DefaultWidth       = 20
	NoPosition         = -1

	maxSheetNameLength = 31
)

// CellType is the declared semantic type of a column's values.
type CellType int

const (
	CellTypeText CellType = iota
	CellTypeNumeric
	CellTypeDate
	// CellTypeTime holds a time of day without the date part.
	CellTypeTime
)

func (t CellType) String() string {
	switch t {
	case CellTypeText:
		return "TEXT"
	case CellTypeNumeric:
		return "NUMERIC"
	case CellTypeDate:
		return "DATE"
	case CellTypeTime:
		return "TIME"
	}
	return fmt.Sprintf("CellType(%d)", int(t))
}

// ParseCellType parses the case-insensitive name of a cell type.
func ParseCellType(s string) (CellType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TEXT":
		return CellTypeText, nil
	case "NUMERIC", "NUMBER":
		return CellTypeNumeric, nil
	case "DATE":
		return CellTypeDate, nil
	case "TIME":
		return CellTypeTime, nil
	}
	return CellTypeText, fmt.Errorf("unknown cell type %q", s)
}

// HorizontalAlignment values map one to one onto the provider's alignment names.
type HorizontalAlignment string

const (
	HAlignGeneral         HorizontalAlignment = "general"
	HAlignLeft            HorizontalAlignment = "left"
	HAlignCenter          HorizontalAlignment = "center"
	HAlignRight           HorizontalAlignment = "right"
	HAlignFill            HorizontalAlignment = "fill"
	HAlignJustify         HorizontalAlignment = "justify"
	HAlignCenterSelection HorizontalAlignment = "centerContinuous"
	HAlignDistributed     HorizontalAlignment = "distributed"
)

func (a HorizontalAlignment) valid() bool {
	switch a {
	case HAlignGeneral, HAlignLeft, HAlignCenter, HAlignRight, HAlignFill,
		HAlignJustify, HAlignCenterSelection, HAlignDistributed:
		return true
	}
	return false
}

// VerticalAlignment values map one to one onto the provider's alignment names.
type VerticalAlignment string

const (
	VAlignTop         VerticalAlignment = "top"
	VAlignCenter      VerticalAlignment = "center"
	VAlignBottom      VerticalAlignment = "bottom"
	VAlignJustify     VerticalAlignment = "justify"
	VAlignDistributed VerticalAlignment = "distributed"
)

func (a VerticalAlignment) valid() bool {
	switch a {
	case VAlignTop, VAlignCenter, VAlignBottom, VAlignJustify, VAlignDistributed:
		return true
	}
	return false
}

// Color is an RGB hex code such as "FFFF00". A leading '#' is accepted.
// The empty Color means no fill.
type Color string

// A few predefined colors from the legacy 56 color palette.
const (
	ColorNone        Color = ""
	ColorBlack       Color = "000000"
	ColorWhite       Color = "FFFFFF"
	ColorRed         Color = "FF0000"
	ColorBrightGreen Color = "00FF00"
	ColorBlue        Color = "0000FF"
	ColorYellow      Color = "FFFF00"
	ColorGrey25      Color = "C0C0C0"
	ColorGrey50      Color = "808080"
	ColorLightYellow Color = "FFFFCC"
	ColorLightGreen  Color = "CCFFCC"
	ColorPaleBlue    Color = "99CCFF"
	ColorLightOrange Color = "FF9900"
	ColorRose        Color = "FF99CC"
)

func (c Color) normalize() (Color, error) {
	s := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(string(c)), "#"))
	if s == "" {
		return ColorNone, nil
	}
	if len(s) != 6 {
		return ColorNone, fmt.Errorf("color %q must have 6 hex digits", string(c))
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			return ColorNone, fmt.Errorf("color %q is not hexadecimal", string(c))
		}
	}
	return Color(s), nil
}
