// Package serve implements the serve command, the long-running HTTP API.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sightline/sightline/internal/archive"
	"github.com/sightline/sightline/internal/browser"
	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/internal/database"
	"github.com/sightline/sightline/internal/engine"
	"github.com/sightline/sightline/internal/scanner"
	"github.com/sightline/sightline/internal/server"
	"github.com/sightline/sightline/internal/suggest"
	"github.com/sightline/sightline/pkg/logger"
	"github.com/sightline/sightline/pkg/pathutil"
)

var configFile string

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Sightline HTTP API server",
		Long: `Run the Sightline HTTP API server.

The server exposes:
- POST /api/scans         scan a page and store the result
- GET  /api/scans         list stored scans
- GET  /api/scans/{id}    fetch one stored scan
- POST /api/suggestions   suggest a fix for an accessibility issue
- GET  /healthz           liveness probe

Scans are persisted when database.url is configured; without it the
server still scans but returns 503 for the stored-scan routes. Page
snapshots are archived when archive.enabled is set.`,
		Example: `  # Run with a config file
  sightline serve --config sightline.yaml

  # Run with JSON logs for log shippers
  sightline --log-format json serve --config sightline.yaml`,
		RunE: runServe,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file (required)")

	cmd.MarkFlagRequired("config")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()

	path, err := pathutil.ValidateConfigPath(configFile)
	if err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("Loaded configuration", "config", path)

	// The signal context drives everything: shutdown, template watching
	// and in-flight scans all stop when it ends.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store server.ScanStore
	if cfg.Database.URL != "" {
		db, err := database.ConnectWithLogger(ctx, cfg.Database.URL, log)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		store = db
	} else {
		log.Warn("No database configured, scans will not be persisted")
	}

	launcher := browser.NewLauncherWithLogger(cfg.Browser, log)

	runner, err := engine.NewBrowserRunnerWithLogger(cfg.Engine.ScriptPath, log)
	if err != nil {
		return fmt.Errorf("loading rule engine: %w", err)
	}

	orchestrator, err := scanner.NewOrchestratorWithLogger(launcher, runner, cfg.Engine, log)
	if err != nil {
		return fmt.Errorf("building scanner: %w", err)
	}

	archiveStore, err := archive.New(ctx, cfg.Archive, log)
	if err != nil {
		return fmt.Errorf("building archive store: %w", err)
	}
	if archiveStore != nil {
		orchestrator.SetArchiver(archiveStore)
	}

	httpClient := &http.Client{
		Timeout:   60 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	suggestEngine, err := suggest.FromConfig(ctx, cfg.Suggest, httpClient, log)
	if err != nil {
		return fmt.Errorf("building suggestion engine: %w", err)
	}

	srv := server.New(orchestrator, suggestEngine, store, cfg.Server.ScanTimeout.Std(), log)

	return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout.Std())
}

// Run executes the serve command with the provided arguments.
func Run(args []string) error {
	cmd := NewServeCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
