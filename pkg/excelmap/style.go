package excelmap

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// CellContext describes the cell a style or font hook is asked about.
type CellContext struct {
	Sheet  string
	Field  string
	Header bool
	// Row is the 1-based worksheet row.
	Row int
	// Index is the 0-based position in the data collection, -1 for the header.
	Index int
	Value interface{}
}

// CellStyleProcessor adjusts the style computed for a cell before it is registered.
type CellStyleProcessor interface {
	ProcessStyle(ctx CellContext, style *excelize.Style)
}

// CellStyleFunc adapts a function to CellStyleProcessor.
type CellStyleFunc func(ctx CellContext, style *excelize.Style)

func (f CellStyleFunc) ProcessStyle(ctx CellContext, style *excelize.Style) { f(ctx, style) }

// FontStyle returns the font for a cell, or nil to keep the default font.
type FontStyle interface {
	Font(ctx CellContext) *excelize.Font
}

// FontStyleFunc adapts a function to FontStyle.
type FontStyleFunc func(ctx CellContext) *excelize.Font

func (f FontStyleFunc) Font(ctx CellContext) *excelize.Font { return f(ctx) }

// DefaultFontStyle makes the header bold and leaves data cells alone.
var DefaultFontStyle FontStyle = FontStyleFunc(func(ctx CellContext) *excelize.Font {
	if ctx.Header {
		return &excelize.Font{Bold: true}
	}
	return nil
})

const numFmtText = 49

// baseStyle builds the style of a column cell before any hook runs.
func (c *Column[T]) baseStyle(header bool) *excelize.Style {
	style := &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: string(c.HorizontalAlignment),
			Vertical:   string(c.VerticalAlignment),
		},
	}
	fill := c.Color
	if header {
		fill = c.HeaderColor
	}
	if fill != ColorNone {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{string(fill)},
			Pattern: 1,
		}
	}
	if header {
		return style
	}
	switch c.Type {
	case CellTypeText:
		style.NumFmt = numFmtText
	case CellTypeDate, CellTypeTime:
		numFmt := c.pattern.numFmt
		style.CustomNumFmt = &numFmt
	}
	return style
}

// cellStyle resolves the final style of one cell and returns whether the
// result depends on the cell, in which case it must not be cached.
func (c *Column[T]) cellStyle(ctx CellContext) (*excelize.Style, bool) {
	style := c.baseStyle(ctx.Header)
	fonts := c.FontStyle
	if fonts == nil {
		fonts = DefaultFontStyle
	}
	if font := fonts.Font(ctx); font != nil {
		style.Font = font
	}
	if c.CustomStyle != nil {
		c.CustomStyle.ProcessStyle(ctx, style)
	}
	return style, c.FontStyle != nil || c.CustomStyle != nil
}

type styleKey struct {
	column int
	header bool
}

// styleCache registers styles with the workbook once per column and row kind.
type styleCache struct {
	f   *excelize.File
	ids map[styleKey]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[styleKey]int)}
}

func (sc *styleCache) styleID(key styleKey, resolve func() (*excelize.Style, bool)) (int, error) {
	if id, ok := sc.ids[key]; ok {
		return id, nil
	}
	style, dynamic := resolve()
	id, err := sc.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("creating style: %w", err)
	}
	if !dynamic {
		sc.ids[key] = id
	}
	return id, nil
}
