package main

import (
	"context"
	"flag"

	"github.com/locvowork/inventory_workbook/internal/config"
	"github.com/locvowork/inventory_workbook/internal/database"
	"github.com/locvowork/inventory_workbook/internal/logger"
	"github.com/locvowork/inventory_workbook/internal/repository"
	"github.com/locvowork/inventory_workbook/internal/service"
	"github.com/locvowork/inventory_workbook/pkg/invexcel"
)

func main() {
	definitionPath := flag.String("definition", "", "Path to a YAML report definition (overrides REPORT_DEFINITION_PATH)")
	output := flag.String("output", "", "Output path template, {} expands to today's date (overrides OUTPUT_PATH_TEMPLATE)")
	flag.Parse()

	ctx := context.Background()

	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		panic(err)
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
		logger.ErrorLog(ctx, "Failed to initialize database: %v", err)
		panic(err)
	}
	defer db.Close()
	logger.InfoLog(ctx, "Database connection established successfully")

	// Resolve the report definition
	defPath := config.DefaultEnvConfig.REPORT_DEFINITION_PATH
	if *definitionPath != "" {
		defPath = *definitionPath
	}

	var def *invexcel.ReportDefinition
	if defPath == "" {
		def = service.DefaultDefinition()
	} else {
		def, err = invexcel.LoadDefinition(defPath)
		if err != nil {
			logger.ErrorLog(ctx, "Failed to load report definition: %v", err)
			panic(err)
		}
	}

	pathTemplate := config.DefaultEnvConfig.OUTPUT_PATH_TEMPLATE
	if *output != "" {
		pathTemplate = *output
	}

	svc := service.NewReportService(repository.NewInventoryRepository(db),
		invexcel.WithLogger(logger.Get()),
		invexcel.WithTableStyle(config.DefaultEnvConfig.TABLE_STYLE),
	)

	if err := svc.ExportReport(ctx, def, pathTemplate); err != nil {
		logger.ErrorLog(ctx, "Failed to export report: %v", err)
		panic(err)
	}
}
