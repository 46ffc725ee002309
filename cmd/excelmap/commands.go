package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/locvowork/excelmapper/internal/service"
	"github.com/locvowork/excelmapper/pkg/excelmap"
	"github.com/spf13/cobra"
)

// serviceFactory opens the employee service and returns its release func.
type serviceFactory func(ctx context.Context) (service.EmployeeService, func() error, error)

func newRootCmd(open serviceFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "excelmap",
		Short:        "Move employees between the database and Excel workbooks",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newExportCmd(open), newImportCmd(open), newColumnsCmd())
	return rootCmd
}

func newExportCmd(open serviceFactory) *cobra.Command {
	var (
		out       string
		sheet     string
		gender    string
		limit     int
		summary   bool
		hiredFrom string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write employees to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.EmployeeFilter{Gender: gender, Limit: limit}
			if hiredFrom != "" {
				t, err := time.Parse("2006-01-02", hiredFrom)
				if err != nil {
					return fmt.Errorf("invalid --hired-from %q: %w", hiredFrom, err)
				}
				filter.HiredFrom = t
			}

			svc, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			req := service.ExportRequest{Filter: filter, SheetName: sheet, WithSummary: summary}
			if err := svc.Export(cmd.Context(), f, req); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "employees.xlsx", "Output workbook path")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (default from EXPORT_SHEET_NAME)")
	cmd.Flags().StringVar(&gender, "gender", "", "Only export this gender (M or F)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of employees, 0 for all")
	cmd.Flags().StringVar(&hiredFrom, "hired-from", "", "Only export employees hired on or after this date (yyyy-mm-dd)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Append a per-gender summary sheet")
	return cmd
}

func newImportCmd(open serviceFactory) *cobra.Command {
	var (
		match  string
		sheet  string
		dryRun bool
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "import [input.xlsx]",
		Short: "Read employees from an xlsx workbook and upsert them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := excelmap.ParseMatchType(match)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("file not found: %s", args[0])
			}
			defer f.Close()

			svc, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			res, err := svc.Import(cmd.Context(), f, service.ImportRequest{Sheet: sheet, Match: mt, DryRun: dryRun})
			if err != nil {
				return err
			}
			return writeJSON(cmd, res, pretty)
		},
	}
	cmd.Flags().StringVar(&match, "match", "name", "Column matching: name or position")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate without saving")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

type columnInfo struct {
	Field    string `json:"field"`
	Header   string `json:"header"`
	Type     string `json:"type"`
	Pattern  string `json:"pattern,omitempty"`
	Width    int    `json:"width"`
	Position *int   `json:"position,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// newColumnsCmd prints the employee columns after overrides, which is what
// an import expects to find in the header row.
func newColumnsCmd() *cobra.Command {
	var overrides string
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Show the employee sheet columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := domain.NewEmployeeSchema()
			if err != nil {
				return err
			}
			if overrides != "" {
				of, err := excelmap.LoadOverrides(overrides)
				if err != nil {
					return err
				}
				if schema, err = schema.Override(of.For(schema.TypeName())); err != nil {
					return err
				}
			}

			var cols []columnInfo
			for _, c := range schema.Columns() {
				info := columnInfo{
					Field:    c.Field,
					Header:   c.Name,
					Type:     c.Type.String(),
					Pattern:  c.DatePattern,
					Width:    c.Width,
					Required: c.Required,
				}
				if c.Position != excelmap.NoPosition {
					pos := c.Position
					info.Position = &pos
				}
				cols = append(cols, info)
			}
			return writeJSON(cmd, cols, true)
		},
	}
	cmd.Flags().StringVar(&overrides, "overrides", os.Getenv("SCHEMA_OVERRIDES_PATH"), "YAML schema overrides file")
	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}, pretty bool) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
