package cli

import (
	"flag"
	"fmt"

	"github.com/finze-app/finze-backend/internal/importer"
	"github.com/finze-app/finze-backend/internal/infrastructure/config"
	"github.com/finze-app/finze-backend/internal/infrastructure/logging"
	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
)

// ImportFlags holds the CLI flags for the import command.
type ImportFlags struct {
	File    string
	Sheet   string
	Verbose bool
}

// ParseImportFlags parses command line flags for the import command.
func ParseImportFlags() *ImportFlags {
	flags := &ImportFlags{}
	flag.StringVar(&flags.File, "file", "", "Path to the .xlsx workbook to import")
	flag.StringVar(&flags.Sheet, "sheet", "", "Sheet name (default: first sheet)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunImport imports a spreadsheet of expenses into the manual collection.
func RunImport(cfg *config.Config, flags *ImportFlags) error {
	if flags.File == "" {
		return fmt.Errorf("-file is required")
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "import")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	imp := importer.New(store, logger)
	result, err := imp.ImportFile(flags.File, flags.Sheet)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d expenses (%d rows skipped)\n", result.Imported, result.Skipped)
	return nil
}
