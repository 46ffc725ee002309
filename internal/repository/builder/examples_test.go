package builder_test

import (
	"fmt"

	"github.com/locvowork/excelmapper/internal/repository/builder"
)

func Example_select() {
	sql, args := builder.NewSQLBuilder().
		Select("emp_no", "first_name", "last_name").
		From("employees").
		Where("gender = ?", "M").
		Where("emp_no > ?", 10010).
		OrderBy("emp_no ASC").
		Limit(5).
		Build()

	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT emp_no, first_name, last_name FROM employees WHERE gender = $1 AND emp_no > $2 ORDER BY emp_no ASC LIMIT 5
	// Args: [M 10010]
}

func Example_upsert() {
	sql, args := builder.NewSQLBuilder().
		Insert("employees", "emp_no", "first_name").
		Values(10001, "Georgi").
		Values(10002, "Bezalel").
		OnConflict("emp_no").
		DoUpdate("first_name").
		Build()

	fmt.Println("SQL:", sql)
	fmt.Printf("Number of args: %d\n", len(args))

	// Output:
	// SQL: INSERT INTO employees (emp_no, first_name) VALUES ($1, $2), ($3, $4) ON CONFLICT (emp_no) DO UPDATE SET first_name = EXCLUDED.first_name
	// Number of args: 4
}
