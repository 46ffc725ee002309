package excelmap

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// placeholderSheet replaces the default "Sheet1" of a new workbook until the
// first sheet is appended, so that "Sheet1" stays available as a name.
const placeholderSheet = "_excelmap_"

// SheetSource is a data collection bound to its schema, see Schema.With.
type SheetSource interface {
	appendTo(e *Exporter, sheetName string) (string, error)
}

func (d *Dataset[T]) appendTo(e *Exporter, sheetName string) (string, error) {
	if d == nil {
		return "", fmt.Errorf("dataset is nil")
	}
	meta, err := NewSheetBuilder(d.schema, d.data, e.file).
		SheetName(sheetName).
		FreezeHeader(e.freezeHeader).
		AutoFilter(e.autoFilter).
		Build()
	if err != nil {
		return "", err
	}
	if err := NewSheetCreator(meta).WithLogger(e.logger).CreateSheet(); err != nil {
		return meta.SheetName(), err
	}
	return meta.SheetName(), nil
}

// Exporter appends sheets to one workbook. The first error is kept and every
// later call becomes a no-op returning it. An Exporter is not safe for
// concurrent use.
type Exporter struct {
	file         *excelize.File
	logger       zerolog.Logger
	freezeHeader bool
	autoFilter   bool
	placeholder  bool
	sheets       []string
	err          error
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithWorkbook appends to an existing workbook instead of a new one.
func WithWorkbook(f *excelize.File) ExporterOption {
	return func(e *Exporter) {
		e.file = f
	}
}

// WithLogger sets the logger for per sheet debug output.
func WithLogger(l zerolog.Logger) ExporterOption {
	return func(e *Exporter) {
		e.logger = l
	}
}

// WithFreezeHeader freezes the header row of every appended sheet.
func WithFreezeHeader() ExporterOption {
	return func(e *Exporter) {
		e.freezeHeader = true
	}
}

// WithAutoFilter adds an auto filter over every appended sheet.
func WithAutoFilter() ExporterOption {
	return func(e *Exporter) {
		e.autoFilter = true
	}
}

// NewExporter creates an exporter writing into a new workbook unless
// WithWorkbook is given.
func NewExporter(opts ...ExporterOption) *Exporter {
	e := &Exporter{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.file == nil {
		e.file = excelize.NewFile()
		if err := e.file.SetSheetName("Sheet1", placeholderSheet); err != nil {
			e.err = fmt.Errorf("preparing workbook: %w", err)
			return e
		}
		e.placeholder = true
	}
	return e
}

// AppendSheet renders src into a new sheet. The optional name replaces the
// schema's default sheet name.
func (e *Exporter) AppendSheet(src SheetSource, sheetName ...string) *Exporter {
	if e.err != nil {
		return e
	}
	if src == nil {
		e.err = fmt.Errorf("appending sheet: source is nil")
		return e
	}
	var name string
	if len(sheetName) > 0 {
		name = sheetName[0]
	}
	created, err := src.appendTo(e, name)
	if err != nil {
		if created != "" {
			e.err = fmt.Errorf("appending sheet %q: %w", created, err)
		} else {
			e.err = fmt.Errorf("appending sheet: %w", err)
		}
		return e
	}
	e.sheets = append(e.sheets, created)
	if e.placeholder {
		if err := e.dropPlaceholder(); err != nil {
			e.err = err
			return e
		}
	}
	return e
}

func (e *Exporter) dropPlaceholder() error {
	idx, err := e.file.GetSheetIndex(e.sheets[0])
	if err != nil {
		return fmt.Errorf("activating sheet: %w", err)
	}
	e.file.SetActiveSheet(idx)
	if err := e.file.DeleteSheet(placeholderSheet); err != nil {
		return fmt.Errorf("removing placeholder sheet: %w", err)
	}
	e.placeholder = false
	return nil
}

// Err returns the first error met by AppendSheet.
func (e *Exporter) Err() error { return e.err }

// Sheets returns the names of the sheets appended so far.
func (e *Exporter) Sheets() []string {
	out := make([]string, len(e.sheets))
	copy(out, e.sheets)
	return out
}

// Workbook returns the underlying workbook.
func (e *Exporter) Workbook() *excelize.File { return e.file }

func (e *Exporter) ready() error {
	if e.err != nil {
		return e.err
	}
	if len(e.sheets) == 0 {
		return ErrNoSheets
	}
	return nil
}

// WriteTo writes the workbook to w.
func (e *Exporter) WriteTo(w io.Writer) (int64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	n, err := e.file.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("writing workbook: %w", err)
	}
	return n, nil
}

// Bytes returns the workbook as an in-memory byte slice.
func (e *Exporter) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := e.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveAs writes the workbook to a file.
func (e *Exporter) SaveAs(path string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.file.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// Close releases the workbook's temporary resources.
func (e *Exporter) Close() error {
	return e.file.Close()
}
