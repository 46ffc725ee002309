package domain

import (
	"bytes"
	"testing"
	"time"

	"github.com/locvowork/excelmapper/pkg/excelmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleEmployees() []Employee {
	return []Employee{
		{EmpNo: 10001, BirthDate: date(1953, 9, 2), FirstName: "Georgi", LastName: "Facello", Gender: GenderMale, HireDate: date(1986, 6, 26)},
		{EmpNo: 10002, BirthDate: date(1964, 6, 2), FirstName: "Bezalel", LastName: "Simmel", Gender: GenderFemale, HireDate: date(1985, 11, 21)},
		{EmpNo: 10003, BirthDate: date(1959, 12, 3), FirstName: "Parto", LastName: "Bamford", Gender: GenderMale, HireDate: date(1986, 8, 28)},
	}
}

func TestEmployeeSheetRoundTrip(t *testing.T) {
	s, err := NewEmployeeSchema()
	require.NoError(t, err)

	data := sampleEmployees()
	b, err := excelmap.NewExporter().AppendSheet(s.With(data), EmployeeSheetName).Bytes()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(EmployeeSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Employee No", "First Name", "Last Name", "Gender", "Birth Date", "Hire Date"}, rows[0])
	assert.Equal(t, []string{"10001", "Georgi", "Facello", "M", "1953-09-02", "1986-06-26"}, rows[1])

	got, err := excelmap.ReadSheet(f, s)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestEmployeeSheetGenderHighlight(t *testing.T) {
	s, err := NewEmployeeSchema()
	require.NoError(t, err)

	e := excelmap.NewExporter().AppendSheet(s.With(sampleEmployees()), EmployeeSheetName)
	require.NoError(t, e.Err())
	f := e.Workbook()

	fill := func(cell string) []string {
		id, err := f.GetCellStyle(EmployeeSheetName, cell)
		require.NoError(t, err)
		st, err := f.GetStyle(id)
		require.NoError(t, err)
		return st.Fill.Color
	}
	require.Len(t, fill("D2"), 1)
	assert.Contains(t, fill("D2")[0], string(excelmap.ColorPaleBlue))
	require.Len(t, fill("D3"), 1)
	assert.Contains(t, fill("D3")[0], string(excelmap.ColorRose))
	assert.Empty(t, fill("C2"))
}

func TestSummarizeByGender(t *testing.T) {
	got := SummarizeByGender(sampleEmployees())
	assert.Equal(t, []GenderSummary{
		{Gender: GenderFemale, Count: 1, FirstHire: date(1985, 11, 21), LastHire: date(1985, 11, 21)},
		{Gender: GenderMale, Count: 2, FirstHire: date(1986, 6, 26), LastHire: date(1986, 8, 28)},
	}, got)
	assert.Empty(t, SummarizeByGender(nil))
}

func TestSummarySchema(t *testing.T) {
	s, err := NewSummarySchema()
	require.NoError(t, err)

	cols := s.Columns()
	require.Len(t, cols, 4)
	assert.Equal(t, "Employees", cols[1].Name)
	assert.Equal(t, excelmap.CellTypeNumeric, cols[1].Type)
	assert.Equal(t, excelmap.CellTypeDate, cols[2].Type)
}
