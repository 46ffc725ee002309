package domain

import (
	"context"
	"time"
)

// EmployeeFilter defines criteria for listing employees
type EmployeeFilter struct {
	Limit     int
	Offset    int
	Gender    string
	HiredFrom time.Time
	HiredTo   time.Time
	EmpNos    []int
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	// Upsert inserts employees or updates them by emp_no and returns the number of rows written.
	Upsert(ctx context.Context, employees []Employee) (int, error)
}
