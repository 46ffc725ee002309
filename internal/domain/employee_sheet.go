package domain

import (
	"time"

	"github.com/locvowork/excelmapper/pkg/excelmap"
	"github.com/xuri/excelize/v2"
)

// EmployeeSheetName is the default tab name of the employee export.
const EmployeeSheetName = "Employees"

// SummarySheetName is the tab name of the per gender headcount.
const SummarySheetName = "Summary"

var genderColors = map[string]excelmap.Color{
	GenderMale:   excelmap.ColorPaleBlue,
	GenderFemale: excelmap.ColorRose,
}

// highlightGender fills gender cells with a color per gender.
var highlightGender = excelmap.CellStyleFunc(func(ctx excelmap.CellContext, style *excelize.Style) {
	if ctx.Header {
		return
	}
	gender, _ := ctx.Value.(string)
	if color, ok := genderColors[gender]; ok {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{string(color)}}
	}
})

// NewEmployeeSchema describes how an Employee maps to a worksheet row.
func NewEmployeeSchema() (*excelmap.Schema[Employee], error) {
	return excelmap.NewSchema(
		excelmap.Field("emp_no",
			func(e *Employee) int { return e.EmpNo },
			func(e *Employee, v int) { e.EmpNo = v }).
			Name("Employee No").
			Type(excelmap.CellTypeNumeric).
			Width(14).
			Position(0).
			HeaderColor(excelmap.ColorGrey25).
			Required(),
		excelmap.Field("first_name",
			func(e *Employee) string { return e.FirstName },
			func(e *Employee, v string) { e.FirstName = v }).
			Name("First Name").
			Align(excelmap.HAlignLeft).
			HeaderColor(excelmap.ColorGrey25).
			Required(),
		excelmap.Field("last_name",
			func(e *Employee) string { return e.LastName },
			func(e *Employee, v string) { e.LastName = v }).
			Name("Last Name").
			Align(excelmap.HAlignLeft).
			HeaderColor(excelmap.ColorGrey25),
		excelmap.Field("gender",
			func(e *Employee) string { return e.Gender },
			func(e *Employee, v string) { e.Gender = v }).
			Name("Gender").
			Width(10).
			HeaderColor(excelmap.ColorGrey25).
			Style(highlightGender),
		excelmap.Field("birth_date",
			func(e *Employee) time.Time { return e.BirthDate },
			func(e *Employee, v time.Time) { e.BirthDate = v }).
			Name("Birth Date").
			Type(excelmap.CellTypeDate).
			Pattern("yyyy-MM-dd").
			HeaderColor(excelmap.ColorGrey25),
		excelmap.Field("hire_date",
			func(e *Employee) time.Time { return e.HireDate },
			func(e *Employee, v time.Time) { e.HireDate = v }).
			Name("Hire Date").
			Type(excelmap.CellTypeDate).
			Pattern("yyyy-MM-dd").
			HeaderColor(excelmap.ColorGrey25).
			Required(),
	)
}

// NewSummarySchema describes the GenderSummary sheet through its excel tags.
func NewSummarySchema() (*excelmap.Schema[GenderSummary], error) {
	return excelmap.SchemaFromStruct[GenderSummary]()
}
