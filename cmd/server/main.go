package main

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
	"go.uber.org/zap"

	"supplydash/internal/api"
	"supplydash/internal/config"
	"supplydash/internal/engine"
	"supplydash/internal/logging"
	"supplydash/internal/render"
	"supplydash/internal/session"
)

var (
	// Global flags
	dataPath string
	verbose  bool

	// serve flags
	addr string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Supply chain dashboard",
	Long: `Loads a supply chain dataset (CSV or XLSX) once and serves an interactive
dashboard: revenue, units delivered and defect KPIs, inspection stock,
a stock pivot table, cost by route and units by transportation mode,
all filtered by product type and location.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dataPath != "" {
			cfg.Data.Path = dataPath
		}
		logger, err = logging.New(cfg.Log.Level, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset path (.csv or .xlsx); defaults to SUPPLY_DATA_PATH or supply.csv next to the binary")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().StringVar(&addr, "addr", "", "listen address; defaults to SUPPLY_ADDR or :8080")
	}

	rootCmd.AddCommand(serveCmd, summaryCmd, filtersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadTable is the single startup load; a LoadError ends the process.
func loadTable() (*engine.Table, error) {
	t, err := engine.LoadTable(cfg.Data.Path, logger)
	if err != nil {
		var le *engine.LoadError
		if errors.As(err, &le) {
			logger.Error("Dataset could not be loaded", zap.String("path", le.Path), zap.Error(le.Err))
		}
		return nil, err
	}
	return t, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr != "" {
		cfg.Server.Addr = addr
	}

	// 1. Load the dataset before accepting traffic
	t0 := time.Now()
	table, err := loadTable()
	if err != nil {
		return err
	}

	templates, err := render.NewTemplates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	// 2. Wire sessions and routes
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager(table, cfg.Session.TTL, logger)
	go sessions.Run(ctx, cfg.Session.ReapInterval)

	h := api.NewHandler(table, sessions, templates, logger)
	e := api.NewServer(h, logger, cfg.Server.CORSEnabled)

	// 3. Start Server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server ready",
			zap.String("addr", cfg.Server.Addr),
			zap.Int("rows", table.NumRows()),
			zap.Duration("startup", time.Since(t0)))
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 4. Wait for a signal, then drain
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
