package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/locvowork/excelmapper/internal/repository/builder"
)

const (
	employeeTable = "employees"
	// DefaultBatchSize keeps an upsert of six columns well below the
	// 65535 bind parameter limit of PostgreSQL.
	DefaultBatchSize = 1000
)

var employeeColumns = []string{"emp_no", "birth_date", "first_name", "last_name", "gender", "hire_date"}

type employeeRepository struct {
	db        *sql.DB
	batchSize int
}

// NewEmployeeRepository creates a new instance of EmployeeRepository.
// A batchSize <= 0 uses DefaultBatchSize.
func NewEmployeeRepository(db *sql.DB, batchSize int) domain.EmployeeRepository {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &employeeRepository{db: db, batchSize: batchSize}
}

func listQuery(filter domain.EmployeeFilter) *builder.SQLBuilder {
	b := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeeTable)
	if filter.Gender != "" {
		b.Where("gender = ?", filter.Gender)
	}
	if !filter.HiredFrom.IsZero() {
		b.Where("hire_date >= ?", filter.HiredFrom)
	}
	if !filter.HiredTo.IsZero() {
		b.Where("hire_date <= ?", filter.HiredTo)
	}
	if len(filter.EmpNos) > 0 {
		b.Where("emp_no = ANY(?)", pq.Array(filter.EmpNos))
	}
	b.OrderBy("emp_no ASC")
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}
	return b
}

func upsertQuery(batch []domain.Employee) *builder.SQLBuilder {
	b := builder.NewSQLBuilder().Insert(employeeTable, employeeColumns...)
	for _, e := range batch {
		b.Values(e.EmpNo, e.BirthDate, e.FirstName, e.LastName, e.Gender, e.HireDate)
	}
	return b.OnConflict("emp_no").DoUpdate(employeeColumns[1:]...)
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	query, args, err := listQuery(filter).BuildSafe()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.EmpNo, &e.BirthDate, &e.FirstName, &e.LastName, &e.Gender, &e.HireDate); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// Upsert writes all employees in one transaction, batchSize rows per statement.
func (r *employeeRepository) Upsert(ctx context.Context, employees []domain.Employee) (int, error) {
	if len(employees) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	written := 0
	for start := 0; start < len(employees); start += r.batchSize {
		end := start + r.batchSize
		if end > len(employees) {
			end = len(employees)
		}
		query, args, err := upsertQuery(employees[start:end]).BuildSafe()
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("upserting employees %d-%d: %w", start, end-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting upserted rows: %w", err)
		}
		written += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing employees: %w", err)
	}
	return written, nil
}
