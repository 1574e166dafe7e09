package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fujioka8700/Eitan/internal/config"
	"github.com/fujioka8700/Eitan/internal/importer"
	"github.com/fujioka8700/Eitan/internal/repository/postgres"
)

func main() {
	var (
		filePath     = flag.String("file", "", "path to the Excel or CSV word list")
		sheetName    = flag.String("sheet", "Sheet1", "Excel sheet name")
		defaultLevel = flag.String("level", "中1", "level for rows without one")
		keepHeader   = flag.Bool("keep-header", false, "treat the first row as data")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *filePath == "" {
		logger.Fatal("Missing required -file flag")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		logger.Fatal("Failed to open database connection", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	importCfg := importer.Config{
		FilePath:     *filePath,
		SheetName:    *sheetName,
		DefaultLevel: *defaultLevel,
		SkipHeader:   !*keepHeader,
	}

	result, err := importer.Import(postgres.NewWordRepo(db), importCfg)
	if err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}

	logger.Info("Import finished",
		zap.Int("processed", result.TotalProcessed),
		zap.Int("saved", result.Saved),
		zap.Int("skipped", result.Skipped),
	)
	for _, e := range result.Errors {
		logger.Warn("Import row error", zap.String("detail", e))
	}
}
