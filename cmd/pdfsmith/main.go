package main

import (
	"fmt"
	"os"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/db"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// baseDir returns the directory holding the database, config file, and
// document directories. PDFSMITH_HOME overrides the working directory.
func baseDir() string {
	if dir := os.Getenv("PDFSMITH_HOME"); dir != "" {
		return dir
	}
	return "."
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

func main() {
	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	dir := baseDir()

	database, err := db.Init(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create document directories: %v\n", err)
		os.Exit(1)
	}

	app := newCLIApp(database, cfg)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
