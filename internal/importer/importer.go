// Package importer loads word lists from Excel or CSV files into the
// words table.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// WordSaver persists one word. Existing english/level pairs are
// overwritten, so re-importing a corrected list is safe.
type WordSaver interface {
	SaveWord(word domain.Word) error
}

// Config defines one import run. Rows hold english in the first
// column, japanese in the second and an optional level in the third;
// rows without a level fall back to DefaultLevel.
type Config struct {
	FilePath     string
	SheetName    string
	DefaultLevel string
	SkipHeader   bool
}

// DefaultConfig returns the stock import settings
func DefaultConfig() Config {
	return Config{
		SheetName:    "Sheet1",
		DefaultLevel: domain.LevelChuu1,
		SkipHeader:   true,
	}
}

// Result summarizes an import run
type Result struct {
	TotalProcessed int
	Saved          int
	Skipped        int
	Errors         []string
}

// Import reads the configured file and saves every valid row
func Import(saver WordSaver, cfg Config) (*Result, error) {
	if !domain.ValidLevel(cfg.DefaultLevel) {
		return nil, fmt.Errorf("unknown default level: %s", cfg.DefaultLevel)
	}

	ext := strings.ToLower(filepath.Ext(cfg.FilePath))
	if ext == ".csv" {
		return importFromCSV(saver, cfg)
	}
	return importFromExcel(saver, cfg)
}

func importFromExcel(saver WordSaver, cfg Config) (*Result, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		if i == 0 && cfg.SkipHeader {
			continue
		}
		processRow(saver, cfg, row, i+1, result)
	}
	return result, nil
}

func importFromCSV(saver WordSaver, cfg Config) (*Result, error) {
	file, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	result := &Result{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum == 1 && cfg.SkipHeader {
			continue
		}
		processRow(saver, cfg, row, rowNum, result)
	}
	return result, nil
}

// processRow validates and saves one row, recording the outcome
func processRow(saver WordSaver, cfg Config, row []string, rowNum int, result *Result) {
	result.TotalProcessed++

	word, err := rowToWord(row, cfg.DefaultLevel)
	if err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
		return
	}

	if err := saver.SaveWord(word); err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
		return
	}
	result.Saved++
}

func rowToWord(row []string, defaultLevel string) (domain.Word, error) {
	var english, japanese, level string
	if len(row) > 0 {
		english = strings.TrimSpace(row[0])
	}
	if len(row) > 1 {
		japanese = strings.TrimSpace(row[1])
	}
	if len(row) > 2 {
		level = strings.TrimSpace(row[2])
	}

	if english == "" {
		return domain.Word{}, fmt.Errorf("english is empty")
	}
	if japanese == "" {
		return domain.Word{}, fmt.Errorf("japanese is empty")
	}
	if level == "" {
		level = defaultLevel
	}
	if !domain.ValidLevel(level) || level == domain.LevelAll {
		return domain.Word{}, fmt.Errorf("unknown level: %s", level)
	}

	return domain.Word{
		English:  english,
		Japanese: japanese,
		Level:    level,
	}, nil
}
