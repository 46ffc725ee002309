package database

import (
	"context"
	"testing"

	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	upserted []domain.Employee
}

func (r *recordingRepo) List(context.Context, domain.EmployeeFilter) ([]domain.Employee, error) {
	return r.upserted, nil
}

func (r *recordingRepo) Upsert(_ context.Context, employees []domain.Employee) (int, error) {
	r.upserted = append(r.upserted, employees...)
	return len(employees), nil
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "app", Password: "secret", DBName: "employees", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=employees sslmode=disable", cfg.DSN())
}

func TestSeederGenerate(t *testing.T) {
	a := NewDataSeeder(nil, nil, 42).Generate(25)
	b := NewDataSeeder(nil, nil, 42).Generate(25)
	require.Len(t, a, 25)
	assert.Equal(t, a, b)

	for i, e := range a {
		assert.Equal(t, firstEmpNo+i, e.EmpNo)
		assert.Contains(t, []string{domain.GenderMale, domain.GenderFemale}, e.Gender)
		assert.True(t, e.HireDate.After(e.BirthDate))
		assert.NotEmpty(t, e.FirstName)
	}
}

func TestSeederSeedData(t *testing.T) {
	repo := &recordingRepo{}
	got, err := NewDataSeeder(nil, repo, 1).SeedData(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, got, repo.upserted)
}

func TestGetPresetCount(t *testing.T) {
	assert.Equal(t, 20, GetPresetCount(PresetSmall))
	assert.Equal(t, 500, GetPresetCount("unknown"))
}
