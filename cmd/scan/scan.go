// Package scan implements the scan command, a one-shot page audit.
package scan

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sightline/sightline/internal/archive"
	"github.com/sightline/sightline/internal/browser"
	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/internal/engine"
	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/internal/scanner"
	"github.com/sightline/sightline/internal/ui"
	"github.com/sightline/sightline/pkg/logger"
	"github.com/sightline/sightline/pkg/pathutil"
)

var (
	configFile string
	format     string
	outputFile string
	timeout    time.Duration
)

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Scan a single page and print its accessibility report",
		Long: `Scan a single page and print its accessibility report.

The page is loaded in a headless browser, checked against the configured
rule engine, enriched and scored. The result is printed as styled text
or JSON; nothing is persisted. Snapshots are still archived when
archive.enabled is set in the config.`,
		Example: `  # Scan a page
  sightline scan https://example.com --config sightline.yaml

  # Machine-readable output
  sightline scan https://example.com --config sightline.yaml --format json

  # Write the report to a file
  sightline scan https://example.com --config sightline.yaml --output report.json --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file (required)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall scan timeout (defaults to server.scan_timeout)")

	cmd.MarkFlagRequired("config")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	rawURL := args[0]
	log := logger.GetGlobalLogger()

	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q, want table or json", format)
	}

	path, err := pathutil.ValidateConfigPath(configFile)
	if err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := scanner.ValidateScanURL(rawURL); err != nil {
		return err
	}

	ctx := context.Background()

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

	// Progress goes to the logger on stderr so stdout stays parseable.
	orchestrator.SetProgressFunc(func(phase, message string) {
		log.Info("Scan progress", "phase", phase, "message", message)
	})

	scanTimeout := timeout
	if scanTimeout <= 0 {
		scanTimeout = cfg.Server.ScanTimeout.Std()
	}
	scanCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	result, err := orchestrator.Scan(scanCtx, rawURL)
	if err != nil {
		return err
	}

	record := models.NewScanRecord(rawURL, scanner.RegistrableDomain(rawURL), "", result)

	var out string
	switch format {
	case "json":
		out, err = ui.RenderJSON(record)
		if err != nil {
			return err
		}
	default:
		out = ui.RenderScanResult(rawURL, result)
	}

	return writeOutput(out)
}

func writeOutput(out string) error {
	if outputFile == "" {
		fmt.Print(out) //nolint:forbidigo // Command output belongs on stdout.
		return nil
	}

	path, err := pathutil.ValidateOutputPath(outputFile)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.WriteFile(path, []byte(out), 0600); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Run executes the scan command with the provided arguments.
func Run(args []string) error {
	cmd := NewScanCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
