package main

import (
	"fmt"
	"os"

	"github.com/finze-app/finze-backend/internal/cli"
	"github.com/finze-app/finze-backend/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseImportFlags()
	cfg := config.LoadOrEnv()

	if err := cli.RunImport(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
