package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/locvowork/excelmapper/internal/bootstrap"
	"github.com/locvowork/excelmapper/internal/database"
	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/locvowork/excelmapper/internal/logger"
	"github.com/locvowork/excelmapper/pkg/excelmap"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large, xlarge")
	count := flag.Int("count", 0, "Number of employees (overrides preset)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated employees")
	xlsx := flag.String("xlsx", "", "Also write the seeded employees to this workbook")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt of clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("🚀 Employee Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	fmt.Println("📡 Initializing application...")
	app := bootstrap.NewApp()
	if err := app.InitializeCore(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application", err)
		log.Fatal(err)
	}
	defer app.Close()

	seeder := database.NewDataSeeder(app.DB, app.Repository, *seed)

	// Execute action
	switch *action {
	case "seed":
		performSeed(ctx, seeder, *preset, *count, *xlsx)

	case "clear":
		performClear(ctx, seeder, *yes)

	default:
		fmt.Printf("❌ Unknown action: %s\n", *action)
		flag.PrintDefaults()
		return
	}

	fmt.Println("\n✅ Done!")
}

func performSeed(ctx context.Context, seeder *database.DataSeeder, preset string, count int, xlsx string) {
	if count <= 0 {
		count = database.GetPresetCount(database.SeedPreset(preset))
		fmt.Printf("📊 Using preset: %s (%d employees)\n", preset, count)
	} else {
		fmt.Printf("📊 Using custom count: %d employees\n", count)
	}

	start := time.Now()
	employees, err := seeder.SeedData(ctx, count)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	logger.InfoLog(ctx, "Seeded %d employees in %v", len(employees), time.Since(start))

	if xlsx != "" {
		if err := writeWorkbook(employees, xlsx); err != nil {
			log.Fatalf("❌ Writing workbook failed: %v", err)
		}
		fmt.Printf("📄 Workbook written to %s\n", xlsx)
	}
}

// writeWorkbook saves the seeded rows next to a per-gender summary, a ready
// made sample for the import endpoint.
func writeWorkbook(employees []domain.Employee, path string) error {
	schema, err := domain.NewEmployeeSchema()
	if err != nil {
		return err
	}
	summary, err := domain.NewSummarySchema()
	if err != nil {
		return err
	}

	e := excelmap.NewExporter(excelmap.WithFreezeHeader(), excelmap.WithAutoFilter())
	defer e.Close()
	return e.AppendSheet(schema.With(employees), domain.EmployeeSheetName).
		AppendSheet(summary.With(domain.SummarizeByGender(employees)), domain.SummarySheetName).
		SaveAs(path)
}

func performClear(ctx context.Context, seeder *database.DataSeeder, yes bool) {
	if !yes {
		fmt.Println("⚠️  This will delete all employees!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("❌ Clear failed: %v", err)
	}
}
