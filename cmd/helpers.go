package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ziadkadry99/pdfeditor/internal/audit"
	"github.com/ziadkadry99/pdfeditor/internal/config"
	"github.com/ziadkadry99/pdfeditor/internal/db"
	"github.com/ziadkadry99/pdfeditor/internal/logging"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `pdfeditor init` to create a config file", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg; --verbose forces debug.
func newLogger(cfg *config.Config) *slog.Logger {
	lc := cfg.Log
	if verbose {
		lc.Level = "debug"
	}
	return logging.NewLogger(lc)
}

// openDatabase opens the SQLite database under the data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// cliActor is the audit actor id for commands run from this process.
func cliActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}

func cliEntry(action audit.Action, scope audit.Scope, filename, summary string) audit.Entry {
	return audit.Entry{
		ActorType: audit.ActorCLI,
		ActorID:   cliActor(),
		Action:    action,
		Scope:     scope,
		Filename:  filename,
		Summary:   summary,
	}
}
