package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/locvowork/excelmapper/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	employees []domain.Employee
	upserted  int
}

func (r *memRepo) List(context.Context, domain.EmployeeFilter) ([]domain.Employee, error) {
	return r.employees, nil
}

func (r *memRepo) Upsert(_ context.Context, employees []domain.Employee) (int, error) {
	r.upserted += len(employees)
	return len(employees), nil
}

func factoryFor(t *testing.T, repo *memRepo) serviceFactory {
	return func(context.Context) (service.EmployeeService, func() error, error) {
		svc, err := service.NewEmployeeService(repo, service.Options{})
		require.NoError(t, err)
		return svc, func() error { return nil }, nil
	}
}

func execute(t *testing.T, open serviceFactory, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(open)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportThenDryRunImport(t *testing.T) {
	hired := time.Date(1986, 6, 26, 0, 0, 0, 0, time.UTC)
	repo := &memRepo{employees: []domain.Employee{
		{EmpNo: 10001, FirstName: "Georgi", LastName: "Facello", Gender: "M", BirthDate: time.Date(1953, 9, 2, 0, 0, 0, 0, time.UTC), HireDate: hired},
	}}
	path := filepath.Join(t.TempDir(), "staff.xlsx")

	out, err := execute(t, factoryFor(t, repo), "export", "--out", path, "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err = execute(t, factoryFor(t, repo), "import", path, "--dry-run")
	require.NoError(t, err)
	var res service.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, repo.employees, res.Employees)
	assert.Zero(t, repo.upserted)

	out, err = execute(t, factoryFor(t, repo), "import", path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 1, repo.upserted)
}

func TestCommandErrors(t *testing.T) {
	repo := &memRepo{}
	_, err := execute(t, factoryFor(t, repo), "import", "missing.xlsx")
	assert.Error(t, err)

	_, err = execute(t, factoryFor(t, repo), "import", "missing.xlsx", "--match", "fuzzy")
	assert.Error(t, err)

	_, err = execute(t, factoryFor(t, repo), "export", "--hired-from", "yesterday")
	assert.Error(t, err)

	boom := errors.New("database unavailable")
	failing := func(context.Context) (service.EmployeeService, func() error, error) { return nil, nil, boom }
	_, err = execute(t, failing, "export", "--out", filepath.Join(t.TempDir(), "x.xlsx"))
	assert.ErrorIs(t, err, boom)
}

func TestColumnsCommand(t *testing.T) {
	overrides := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(overrides, []byte(`
schemas:
  Employee:
    columns:
      first_name:
        name: Given Name
`), 0o644))

	out, err := execute(t, nil, "columns", "--overrides", overrides)
	require.NoError(t, err)

	var cols []columnInfo
	require.NoError(t, json.Unmarshal([]byte(out), &cols))
	require.Len(t, cols, 6)
	assert.Equal(t, "emp_no", cols[0].Field)
	require.NotNil(t, cols[0].Position)
	assert.Equal(t, 0, *cols[0].Position)
	assert.True(t, cols[0].Required)
	assert.Equal(t, "Given Name", cols[1].Header)
	assert.Equal(t, "yyyy-MM-dd", cols[5].Pattern)
}
