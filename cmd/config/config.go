// Package config implements the config command for validating and
// generating Sightline configuration files.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/pkg/pathutil"
)

var (
	configFile string
	outputFile string
	force      bool
)

// NewConfigCommand creates the config command with its subcommands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate or generate configuration",
	}

	validate := &cobra.Command{
		Use:     "validate",
		Short:   "Validate a configuration file",
		Example: `  sightline config validate --config sightline.yaml`,
		RunE:    runValidate,
	}
	validate.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file to validate (required)")
	validate.MarkFlagRequired("config")

	initCmd := &cobra.Command{
		Use:     "init",
		Short:   "Write a starter configuration file",
		Example: `  sightline config init --output sightline.yaml`,
		RunE:    runInit,
	}
	initCmd.Flags().StringVarP(&outputFile, "output", "o", "sightline.yaml", "Where to write the starter config")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(validate, initCmd)

	return cmd
}

//nolint:forbidigo // Command output belongs on stdout.
func runValidate(cmd *cobra.Command, args []string) error {
	path, err := pathutil.ValidateConfigPath(configFile)
	if err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}

	fmt.Printf("🔍 Validating configuration: %s\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	printSummary(cfg)

	fmt.Println("\n✅ Configuration is valid!")
	return nil
}

//nolint:forbidigo // Command output belongs on stdout.
func printSummary(cfg *config.Config) {
	fmt.Printf("   Server:   %s (scan timeout %s)\n", cfg.Server.Addr, cfg.Server.ScanTimeout.Std())

	if cfg.Database.URL != "" {
		fmt.Println("   Database: configured")
	} else {
		fmt.Println("   Database: not configured, scans will not be persisted")
	}

	fmt.Printf("   Engine:   bundle %s\n", cfg.Engine.ScriptPath)

	describe := func(p config.ProviderConfig) string {
		if p.Credentialed() {
			return fmt.Sprintf("%s (credentialed)", p.Model)
		}
		return fmt.Sprintf("%s (no key)", p.Model)
	}
	fmt.Printf("   Suggest:  primary %s, secondary %s\n",
		describe(cfg.Suggest.Primary), describe(cfg.Suggest.Secondary))

	switch {
	case !cfg.Archive.Enabled:
		fmt.Println("   Archive:  disabled")
	case cfg.Archive.Backend == "s3":
		fmt.Printf("   Archive:  s3 bucket %s\n", cfg.Archive.S3.Bucket)
	default:
		fmt.Printf("   Archive:  local dir %s\n", cfg.Archive.Local.Dir)
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := pathutil.ValidateOutputPath(outputFile)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	header := []byte("# Sightline configuration.\n# Values like ${SIGHTLINE_DB_URL} are expanded from the environment at load time.\n")
	if err := os.WriteFile(path, append(header, data...), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✅ Wrote starter configuration to %s\n", path) //nolint:forbidigo // Command output belongs on stdout.
	return nil
}

// Run executes the config command with the provided arguments.
func Run(args []string) error {
	cmd := NewConfigCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
