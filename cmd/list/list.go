// Package list implements the list command for viewing stored scans.
package list

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/internal/database"
	"github.com/sightline/sightline/internal/ui"
	"github.com/sightline/sightline/pkg/logger"
	"github.com/sightline/sightline/pkg/pathutil"
)

var (
	configFile string
	domain     string
	limit      int
	format     string
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored scans",
		Long: `List scans stored by the server, newest first.

Requires database.url in the config file.`,
		Example: `  # Latest scans across all domains
  sightline list --config sightline.yaml

  # Scans of one domain
  sightline list --config sightline.yaml --domain example.com

  # More history, machine readable
  sightline list --config sightline.yaml --limit 50 --format json`,
		RunE: runList,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file (required)")
	cmd.Flags().StringVar(&domain, "domain", "", "Filter by registrable domain")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of scans to show")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json)")

	cmd.MarkFlagRequired("config")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
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
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required to list scans")
	}

	ctx := context.Background()

	db, err := database.ConnectWithLogger(ctx, cfg.Database.URL, log)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	records, err := db.ListScans(ctx, domain, limit)
	if err != nil {
		return fmt.Errorf("listing scans: %w", err)
	}

	if format == "json" {
		out, err := ui.RenderJSON(records)
		if err != nil {
			return err
		}
		fmt.Print(out) //nolint:forbidigo // Command output belongs on stdout.
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No scans found.") //nolint:forbidigo // Command output belongs on stdout.
		return nil
	}

	out, err := ui.RenderScanList(records)
	if err != nil {
		return err
	}
	fmt.Print(out) //nolint:forbidigo // Command output belongs on stdout.
	return nil
}

// Run executes the list command with the provided arguments.
func Run(args []string) error {
	cmd := NewListCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
