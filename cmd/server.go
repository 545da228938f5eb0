package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfeditor/internal/server"
	"github.com/ziadkadry99/pdfeditor/internal/storage"
)

var (
	serverAddr       string
	maintenanceEvery time.Duration
	auditRetention   time.Duration
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the pdfeditor web application",
	Long:  `Starts the web application with login, upload, slicing, the live page viewer and the saved-file library.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverAddr != "" {
			cfg.Addr = serverAddr
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger := newLogger(cfg)

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		storeCfg := cfg.Storage
		storeCfg.Dir = cfg.Dir(storeCfg.Dir)
		backend, err := storage.New(ctx, storeCfg)
		if err != nil {
			return fmt.Errorf("creating library storage: %w", err)
		}

		srv := server.New(cfg, database, backend, logger)
		if err := srv.Workspace().Ensure(); err != nil {
			return fmt.Errorf("creating work folders: %w", err)
		}

		go srv.RunMaintenance(ctx, maintenanceEvery, auditRetention)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "pdfeditor server %s starting on %s\n", Version, cfg.Addr)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DBPath())
		fmt.Fprintf(os.Stderr, "  Library: %s\n", backend.Name())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().StringVar(&serverAddr, "addr", "", "listen address (overrides config)")
	serverCmd.Flags().DurationVar(&maintenanceEvery, "maintenance-interval", time.Hour, "how often expired sessions and old audit entries are removed")
	serverCmd.Flags().DurationVar(&auditRetention, "audit-retention", 90*24*time.Hour, "how long audit entries are kept (0 keeps them forever)")
	rootCmd.AddCommand(serverCmd)
}
