package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/inventory_workbook/internal/config"
	"github.com/locvowork/inventory_workbook/internal/database"
	"github.com/locvowork/inventory_workbook/internal/handler"
	"github.com/locvowork/inventory_workbook/internal/logger"
	"github.com/locvowork/inventory_workbook/internal/repository"
	"github.com/locvowork/inventory_workbook/internal/service"
	"github.com/locvowork/inventory_workbook/pkg/invexcel"
)

type App struct {
	Echo *echo.Echo
	DB   *sql.DB
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	// Initialize logging
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize database connection
	dbConfig := database.Config{
		Host:            config.DefaultEnvConfig.DB_HOST,
		Port:            config.DefaultEnvConfig.DB_PORT,
		User:            config.DefaultEnvConfig.DB_USER,
		Password:        config.DefaultEnvConfig.DB_PASSWORD,
		DBName:          config.DefaultEnvConfig.DB_NAME,
		SSLMode:         config.DefaultEnvConfig.DB_SSL_MODE,
		MaxOpenConns:    config.DefaultEnvConfig.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    config.DefaultEnvConfig.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: config.DefaultEnvConfig.DB_CONN_MAX_LIFETIME,
	}

	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	// Load report definition
	def, err := LoadReportDefinition()
	if err != nil {
		return fmt.Errorf("failed to load report definition: %w", err)
	}

	// Initialize dependencies
	invRepo := repository.NewInventoryRepository(db)
	reportSvc := service.NewReportService(invRepo,
		invexcel.WithLogger(logger.Get()),
		invexcel.WithTableStyle(config.DefaultEnvConfig.TABLE_STYLE),
	)
	wbHandler := handler.NewWorkbookHandler(reportSvc, def)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(wbHandler)

	return nil
}

// LoadReportDefinition reads the configured YAML definition, falling back to
// the built-in default report when no path is set.
func LoadReportDefinition() (*invexcel.ReportDefinition, error) {
	path := config.DefaultEnvConfig.REPORT_DEFINITION_PATH
	if path == "" {
		return service.DefaultDefinition(), nil
	}
	return invexcel.LoadDefinition(path)
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(wbHandler *handler.WorkbookHandler) {
	a.Echo.GET("/health", wbHandler.HealthHandler)

	exportGroup := a.Echo.Group("/export")
	exportGroup.GET("/workbook", wbHandler.ExportHandler)
}

func (a *App) Run() error {
	defer a.DB.Close()
	return a.Echo.Start(":" + strconv.Itoa(config.DefaultEnvConfig.SERVER_PORT))
}
