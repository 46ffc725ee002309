package domain

import (
	"sort"
	"time"
)

const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Employee represents the employees table
type Employee struct {
	EmpNo     int       `json:"emp_no" db:"emp_no" validate:"required,gt=0"`
	BirthDate time.Time `json:"birth_date" db:"birth_date"`
	FirstName string    `json:"first_name" db:"first_name" validate:"required,max=14"`
	LastName  string    `json:"last_name" db:"last_name" validate:"max=16"`
	Gender    string    `json:"gender" db:"gender" validate:"omitempty,oneof=M F"`
	HireDate  time.Time `json:"hire_date" db:"hire_date" validate:"required"`
}

// GenderSummary is one row of the per gender headcount sheet.
type GenderSummary struct {
	Gender    string    `json:"gender" excel:"name:Gender,width:12"`
	Count     int       `json:"count" excel:"name:Employees,type:numeric,width:14"`
	FirstHire time.Time `json:"first_hire" excel:"name:First Hire,type:date,pattern:yyyy-MM-dd"`
	LastHire  time.Time `json:"last_hire" excel:"name:Last Hire,type:date,pattern:yyyy-MM-dd"`
}

// SummarizeByGender counts employees per gender, ordered by gender code.
func SummarizeByGender(employees []Employee) []GenderSummary {
	index := make(map[string]int)
	var out []GenderSummary
	for _, e := range employees {
		i, ok := index[e.Gender]
		if !ok {
			i = len(out)
			index[e.Gender] = i
			out = append(out, GenderSummary{Gender: e.Gender, FirstHire: e.HireDate, LastHire: e.HireDate})
		}
		s := &out[i]
		s.Count++
		if e.HireDate.Before(s.FirstHire) {
			s.FirstHire = e.HireDate
		}
		if e.HireDate.After(s.LastHire) {
			s.LastHire = e.HireDate
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gender < out[j].Gender })
	return out
}
