package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/locvowork/excelmapper/pkg/excelmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeRepo struct {
	employees []domain.Employee
	filters   []domain.EmployeeFilter
	upserted  []domain.Employee
	err       error
}

func (r *fakeRepo) List(_ context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	r.filters = append(r.filters, filter)
	return r.employees, r.err
}

func (r *fakeRepo) Upsert(_ context.Context, employees []domain.Employee) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	// same rule as ON CONFLICT DO UPDATE in PostgreSQL
	seen := map[int]bool{}
	for _, e := range employees {
		if seen[e.EmpNo] {
			return 0, fmt.Errorf("employee %d affected twice", e.EmpNo)
		}
		seen[e.EmpNo] = true
	}
	r.upserted = append(r.upserted, employees...)
	return len(employees), nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func staff() []domain.Employee {
	return []domain.Employee{
		{EmpNo: 10001, BirthDate: day(1953, 9, 2), FirstName: "Georgi", LastName: "Facello", Gender: "M", HireDate: day(1986, 6, 26)},
		{EmpNo: 10002, BirthDate: day(1964, 6, 2), FirstName: "Bezalel", LastName: "Simmel", Gender: "F", HireDate: day(1985, 11, 21)},
	}
}

func newService(t *testing.T, repo domain.EmployeeRepository, opts Options) EmployeeService {
	t.Helper()
	svc, err := NewEmployeeService(repo, opts)
	require.NoError(t, err)
	return svc
}

func TestExportAndImport(t *testing.T) {
	repo := &fakeRepo{employees: staff()}
	svc := newService(t, repo, Options{})
	ctx := context.Background()

	var buf bytes.Buffer
	filter := domain.EmployeeFilter{Gender: "M", Limit: 10}
	require.NoError(t, svc.Export(ctx, &buf, ExportRequest{Filter: filter, WithSummary: true}))
	assert.Equal(t, []domain.EmployeeFilter{filter}, repo.filters)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{domain.EmployeeSheetName, domain.SummarySheetName}, f.GetSheetList())

	summary, err := f.GetRows(domain.SummarySheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Gender", "Employees", "First Hire", "Last Hire"},
		{"F", "1", "1985-11-21", "1985-11-21"},
		{"M", "1", "1986-06-26", "1986-06-26"},
	}, summary)

	res, err := svc.Import(ctx, bytes.NewReader(buf.Bytes()), ImportRequest{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Rows: 2, Saved: 2}, res)
	assert.Equal(t, staff(), repo.upserted)
}

func TestExportSheetName(t *testing.T) {
	svc := newService(t, &fakeRepo{employees: staff()}, Options{SheetName: "Staff"})

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf, ExportRequest{}))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Staff"}, f.GetSheetList())

	buf.Reset()
	require.NoError(t, svc.Export(context.Background(), &buf, ExportRequest{SheetName: "Hires 2024"}))
	f2, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f2.Close()
	assert.Equal(t, []string{"Hires 2024"}, f2.GetSheetList())
}

func TestImportDryRun(t *testing.T) {
	src := &fakeRepo{employees: staff()}
	var buf bytes.Buffer
	require.NoError(t, newService(t, src, Options{}).Export(context.Background(), &buf, ExportRequest{}))

	repo := &fakeRepo{}
	res, err := newService(t, repo, Options{}).Import(context.Background(), &buf, ImportRequest{DryRun: true, Sheet: domain.EmployeeSheetName})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, 2, res.Rows)
	assert.Zero(t, res.Saved)
	assert.Equal(t, staff(), res.Employees)
	assert.Empty(t, repo.upserted)
}

func TestImportValidation(t *testing.T) {
	bad := staff()
	bad[1].Gender = "X"
	var buf bytes.Buffer
	require.NoError(t, newService(t, &fakeRepo{employees: bad}, Options{}).Export(context.Background(), &buf, ExportRequest{}))

	repo := &fakeRepo{}
	_, err := newService(t, repo, Options{}).Import(context.Background(), &buf, ImportRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, excelmap.ErrMapping)
	var me *excelmap.MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 3, me.Row)
	assert.Empty(t, repo.upserted)
}

func TestImportByPosition(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"id", "given", "family", "sex", "born", "hired"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{10005, "Kyoichi", "Maliniak", "M", "1955-01-21", "1989-09-12"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	data := buf.Bytes()

	svc := newService(t, &fakeRepo{}, Options{})
	_, err = svc.Import(context.Background(), bytes.NewReader(data), ImportRequest{DryRun: true})
	assert.ErrorIs(t, err, excelmap.ErrLookup)

	res, err := svc.Import(context.Background(), bytes.NewReader(data), ImportRequest{DryRun: true, Match: excelmap.MatchByPosition})
	require.NoError(t, err)
	assert.Equal(t, []domain.Employee{{
		EmpNo: 10005, FirstName: "Kyoichi", LastName: "Maliniak", Gender: "M",
		BirthDate: day(1955, 1, 21), HireDate: day(1989, 9, 12),
	}}, res.Employees)
}

func TestServiceOverrides(t *testing.T) {
	of, err := excelmap.LoadOverridesFromString(`
schemas:
  Employee:
    columns:
      first_name:
        name: Given Name
      hire_date:
        pattern: dd/MM/yyyy
`)
	require.NoError(t, err)
	svc := newService(t, &fakeRepo{employees: staff()}, Options{Overrides: of})

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf, ExportRequest{}))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(domain.EmployeeSheetName)
	require.NoError(t, err)
	assert.Equal(t, "Given Name", rows[0][1])
	assert.Equal(t, "26/06/1986", rows[1][5])

	_, err = NewEmployeeService(&fakeRepo{}, Options{Overrides: &excelmap.OverrideFile{Schemas: map[string]excelmap.SchemaOverride{
		"Employee": {Columns: map[string]excelmap.ColumnOverride{"salary": {Name: "Salary"}}},
	}}})
	assert.ErrorIs(t, err, excelmap.ErrConfig)
}

func TestRepositoryErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newService(t, &fakeRepo{err: boom}, Options{})

	err := svc.Export(context.Background(), &bytes.Buffer{}, ExportRequest{})
	assert.ErrorIs(t, err, boom)

	_, err = svc.List(context.Background(), domain.EmployeeFilter{})
	assert.ErrorIs(t, err, boom)

	var buf bytes.Buffer
	require.NoError(t, newService(t, &fakeRepo{employees: staff()}, Options{}).Export(context.Background(), &buf, ExportRequest{}))
	_, err = svc.Import(context.Background(), &buf, ImportRequest{})
	assert.ErrorIs(t, err, boom)
}

func TestImportDuplicateEmployees(t *testing.T) {
	rows := append(staff(), staff()[0])
	rows[2].LastName = "Facello-Smith"
	var buf bytes.Buffer
	require.NoError(t, newService(t, &fakeRepo{employees: rows}, Options{}).Export(context.Background(), &buf, ExportRequest{}))

	repo := &fakeRepo{}
	res, err := newService(t, repo, Options{}).Import(context.Background(), &buf, ImportRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Saved)

	want := staff()
	want[0].LastName = "Facello-Smith"
	assert.Equal(t, want, repo.upserted)
}
