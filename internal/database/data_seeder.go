package database

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/locvowork/excelmapper/internal/domain"
)

const firstEmpNo = 10001

var (
	firstNames = []string{"Georgi", "Bezalel", "Parto", "Chirstian", "Kyoichi", "Anneke", "Tzvetan", "Saniya", "Sumant", "Duangkaew"}
	lastNames  = []string{"Facello", "Simmel", "Bamford", "Koblick", "Maliniak", "Preusig", "Zielinski", "Kalloufi", "Peac", "Piveteau"}
)

// DataSeeder fills the employees table with generated rows.
type DataSeeder struct {
	db   *sql.DB
	repo domain.EmployeeRepository
	rnd  *rand.Rand
}

func NewDataSeeder(db *sql.DB, repo domain.EmployeeRepository, seed int64) *DataSeeder {
	return &DataSeeder{db: db, repo: repo, rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns count employees numbered from 10001 with random names and dates.
func (ds *DataSeeder) Generate(count int) []domain.Employee {
	employees := make([]domain.Employee, count)
	for i := range employees {
		birth := time.Date(1952+ds.rnd.Intn(14), time.Month(1+ds.rnd.Intn(12)), 1+ds.rnd.Intn(28), 0, 0, 0, 0, time.UTC)
		hire := time.Date(1985+ds.rnd.Intn(15), time.Month(1+ds.rnd.Intn(12)), 1+ds.rnd.Intn(28), 0, 0, 0, 0, time.UTC)
		gender := domain.GenderMale
		if ds.rnd.Intn(2) == 0 {
			gender = domain.GenderFemale
		}
		employees[i] = domain.Employee{
			EmpNo:     firstEmpNo + i,
			BirthDate: birth,
			FirstName: firstNames[ds.rnd.Intn(len(firstNames))],
			LastName:  lastNames[ds.rnd.Intn(len(lastNames))],
			Gender:    gender,
			HireDate:  hire,
		}
	}
	return employees
}

// SeedData generates and upserts count employees.
func (ds *DataSeeder) SeedData(ctx context.Context, count int) ([]domain.Employee, error) {
	employees := ds.Generate(count)
	if _, err := ds.repo.Upsert(ctx, employees); err != nil {
		return nil, fmt.Errorf("failed to insert employees: %w", err)
	}
	return employees, nil
}

func (ds *DataSeeder) ClearData(ctx context.Context) error {
	if _, err := ds.db.ExecContext(ctx, "DELETE FROM employees"); err != nil {
		return fmt.Errorf("failed to delete employees: %w", err)
	}
	return nil
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
	PresetXLarge SeedPreset = "xlarge"
)

// GetPresetCount returns the number of employees for a preset
func GetPresetCount(preset SeedPreset) int {
	switch preset {
	case PresetSmall:
		return 20
	case PresetMedium:
		return 500
	case PresetLarge:
		return 10000
	case PresetXLarge:
		return 100000
	default:
		return 500
	}
}
