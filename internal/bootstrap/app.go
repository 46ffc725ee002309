package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/excelmapper/internal/config"
	"github.com/locvowork/excelmapper/internal/database"
	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/locvowork/excelmapper/internal/handler"
	"github.com/locvowork/excelmapper/internal/logger"
	"github.com/locvowork/excelmapper/internal/repository"
	"github.com/locvowork/excelmapper/internal/service"
	"github.com/locvowork/excelmapper/pkg/excelmap"
)

type App struct {
	Echo       *echo.Echo
	DB         *sql.DB
	Repository domain.EmployeeRepository
	Service    service.EmployeeService
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// InitializeCore loads the configuration, logging, database and employee
// service. The seeder and the CLI stop here, the HTTP server continues in Initialize.
func (a *App) InitializeCore(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize database connection
	dbConfig := database.Config{
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	}

	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	opts := service.Options{SheetName: cfg.EXPORT_SHEET_NAME}
	if cfg.SCHEMA_OVERRIDES_PATH != "" {
		of, err := excelmap.LoadOverrides(cfg.SCHEMA_OVERRIDES_PATH)
		if err != nil {
			return fmt.Errorf("failed to load schema overrides: %w", err)
		}
		opts.Overrides = of
		logger.InfoLog(ctx, "Schema overrides loaded from %s", cfg.SCHEMA_OVERRIDES_PATH)
	}

	// Initialize dependencies
	a.Repository = repository.NewEmployeeRepository(db, cfg.IMPORT_BATCH_SIZE)
	a.Service, err = service.NewEmployeeService(a.Repository, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize employee service: %w", err)
	}
	return nil
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.InitializeCore(ctx); err != nil {
		return err
	}

	empHandler := handler.NewEmployeeHandler(a.Service, config.DefaultEnvConfig.MAX_UPLOAD_BYTES)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(empHandler)

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
	a.Echo.Use(requestLogger)
}

// requestLogger puts a logger tagged with the method and route into the request context.
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := logger.WithLogger(req.Context(), map[string]interface{}{
			"method": req.Method,
			"path":   c.Path(),
		})
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func (a *App) RegisterRoutes(empHandler *handler.EmployeeHandler) {
	a.Echo.GET("/healthz", empHandler.HealthHandler)

	employees := a.Echo.Group("/employees")
	employees.GET("", empHandler.ListHandler)
	employees.GET("/export", empHandler.ExportHandler)
	employees.POST("/import", empHandler.ImportHandler, empHandler.UploadLimit())
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func (a *App) Run() error {
	defer a.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
