package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/locvowork/excelmapper/internal/logger"
	"github.com/locvowork/excelmapper/pkg/excelmap"
)

// EmployeeService lists employees and moves them between the database and workbooks.
type EmployeeService interface {
	List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error)
	Export(ctx context.Context, w io.Writer, req ExportRequest) error
	Import(ctx context.Context, r io.Reader, req ImportRequest) (*ImportResult, error)
}

// ExportRequest selects the employees to export and the shape of the workbook.
type ExportRequest struct {
	Filter      domain.EmployeeFilter
	SheetName   string
	WithSummary bool
}

// ImportRequest controls how an uploaded workbook is read.
type ImportRequest struct {
	Sheet  string
	Match  excelmap.MatchType
	DryRun bool
}

// ImportResult reports what an import read and wrote.
type ImportResult struct {
	Rows      int               `json:"rows"`
	Saved     int               `json:"saved"`
	DryRun    bool              `json:"dry_run"`
	Employees []domain.Employee `json:"employees,omitempty"`
}

// Options configures the employee service.
type Options struct {
	// SheetName is the default tab name of exports.
	SheetName string
	// Overrides adjusts the employee schema, see excelmap.LoadOverrides.
	Overrides *excelmap.OverrideFile
}

type employeeService struct {
	repo     domain.EmployeeRepository
	schema   *excelmap.Schema[domain.Employee]
	summary  *excelmap.Schema[domain.GenderSummary]
	validate *validator.Validate
	sheet    string
}

// NewEmployeeService builds the employee and summary schemas once and applies overrides.
func NewEmployeeService(repo domain.EmployeeRepository, opts Options) (EmployeeService, error) {
	schema, err := domain.NewEmployeeSchema()
	if err != nil {
		return nil, fmt.Errorf("building employee schema: %w", err)
	}
	schema, err = schema.Override(opts.Overrides.For(schema.TypeName()))
	if err != nil {
		return nil, fmt.Errorf("applying employee overrides: %w", err)
	}
	summary, err := domain.NewSummarySchema()
	if err != nil {
		return nil, fmt.Errorf("building summary schema: %w", err)
	}
	summary, err = summary.Override(opts.Overrides.For(summary.TypeName()))
	if err != nil {
		return nil, fmt.Errorf("applying summary overrides: %w", err)
	}

	sheet := opts.SheetName
	if sheet == "" {
		sheet = domain.EmployeeSheetName
	}
	return &employeeService{
		repo:     repo,
		schema:   schema,
		summary:  summary,
		validate: validator.New(),
		sheet:    sheet,
	}, nil
}

func (s *employeeService) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	return s.repo.List(ctx, filter)
}

func (s *employeeService) Export(ctx context.Context, w io.Writer, req ExportRequest) error {
	start := time.Now()
	employees, err := s.repo.List(ctx, req.Filter)
	if err != nil {
		return fmt.Errorf("listing employees: %w", err)
	}

	sheet := req.SheetName
	if sheet == "" {
		sheet = s.sheet
	}
	e := excelmap.NewExporter(
		excelmap.WithLogger(logger.FromContext(ctx)),
		excelmap.WithFreezeHeader(),
		excelmap.WithAutoFilter(),
	)
	defer e.Close()

	e.AppendSheet(s.schema.With(employees), sheet)
	if req.WithSummary {
		e.AppendSheet(s.summary.With(domain.SummarizeByGender(employees)), domain.SummarySheetName)
	}
	if _, err := e.WriteTo(w); err != nil {
		return fmt.Errorf("exporting employees: %w", err)
	}

	logger.InfoLog(ctx, "exported %d employees to sheets %v in %v", len(employees), e.Sheets(), time.Since(start))
	return nil
}

func (s *employeeService) Import(ctx context.Context, r io.Reader, req ImportRequest) (*ImportResult, error) {
	opts := []excelmap.ImportOption{
		excelmap.WithMatchType(req.Match),
		excelmap.WithValidator(s.validate),
		excelmap.WithImportLogger(logger.FromContext(ctx)),
	}
	if req.Sheet != "" {
		opts = append(opts, excelmap.FromSheet(req.Sheet))
	}
	employees, err := excelmap.Import(r, s.schema, opts...)
	if err != nil {
		return nil, fmt.Errorf("reading employees: %w", err)
	}

	res := &ImportResult{Rows: len(employees), DryRun: req.DryRun}
	if req.DryRun {
		res.Employees = employees
		return res, nil
	}
	unique := dedupeByEmpNo(employees)
	if dropped := len(employees) - len(unique); dropped > 0 {
		logger.WarnLog(ctx, "workbook repeats %d employee numbers, keeping the last row of each", dropped)
	}
	saved, err := s.repo.Upsert(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("saving employees: %w", err)
	}
	res.Saved = saved

	logger.InfoLog(ctx, "imported %d employees, %d rows written", len(employees), saved)
	return res, nil
}

// dedupeByEmpNo keeps one employee per number. The last row wins and takes
// the place of the first occurrence.
func dedupeByEmpNo(employees []domain.Employee) []domain.Employee {
	seen := make(map[int]int, len(employees))
	out := make([]domain.Employee, 0, len(employees))
	for _, e := range employees {
		if i, ok := seen[e.EmpNo]; ok {
			out[i] = e
			continue
		}
		seen[e.EmpNo] = len(out)
		out = append(out, e)
	}
	return out
}
