// Command excelmap exports employees to a workbook and imports them back
// from the command line.
package main

import (
	"context"
	"os"

	"github.com/locvowork/excelmapper/internal/bootstrap"
	"github.com/locvowork/excelmapper/internal/service"
)

func main() {
	if err := newRootCmd(connect).Execute(); err != nil {
		os.Exit(1)
	}
}

// connect wires the employee service against the configured database.
func connect(ctx context.Context) (service.EmployeeService, func() error, error) {
	app := bootstrap.NewApp()
	if err := app.InitializeCore(ctx); err != nil {
		app.Close()
		return nil, nil, err
	}
	return app.Service, app.Close, nil
}
