// Package main is the entry point for the Sightline accessibility scanner CLI.
// Sightline drives a headless browser to audit web pages against WCAG rules,
// scores the results, stores them, and suggests fixes for the issues it finds.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sightline/sightline/cmd/config"
	"github.com/sightline/sightline/cmd/list"
	"github.com/sightline/sightline/cmd/scan"
	"github.com/sightline/sightline/cmd/serve"
	"github.com/sightline/sightline/cmd/suggest"
	"github.com/sightline/sightline/pkg/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	var (
		debug       bool
		logFormat   string
		showVersion bool
	)

	globalFlags := flag.NewFlagSet("sightline", flag.ExitOnError)
	globalFlags.BoolVar(&debug, "debug", false, "Enable debug logging")
	globalFlags.StringVar(&logFormat, "log-format", "text", "Log format (text or json)")
	globalFlags.BoolVar(&showVersion, "version", false, "Show version information")

	if err := globalFlags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if showVersion {
		fmt.Printf("sightline version %s (built %s)\n", version, buildTime) //nolint:forbidigo
		os.Exit(0)
	}

	logger.SetupLogger(debug, logFormat)

	args := globalFlags.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "serve":
		if err := serve.Run(commandArgs); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case "scan":
		if err := scan.Run(commandArgs); err != nil {
			logger.Error("scan failed", "error", err)
			os.Exit(1)
		}
	case "suggest":
		if err := suggest.Run(commandArgs); err != nil {
			logger.Error("suggestion failed", "error", err)
			os.Exit(1)
		}
	case "list":
		if err := list.Run(commandArgs); err != nil {
			logger.Error("list failed", "error", err)
			os.Exit(1)
		}
	case "config":
		if err := config.Run(commandArgs); err != nil {
			logger.Error("config command failed", "error", err)
			os.Exit(1)
		}
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	//nolint:forbidigo
	fmt.Println(`🔍 Sightline Accessibility Scanner

Usage:
  sightline [global flags] <command> [command flags]

Commands:
  serve     Run the HTTP API server
  scan      Scan a single page and print its accessibility report
  suggest   Suggest a fix for an accessibility issue
  list      List stored scans
  config    Validate or generate configuration
  help      Show this help message

Global Flags:
  --debug         Enable debug logging
  --log-format    Log format (text or json) (default: text)
  --version       Show version information

Examples:
  sightline serve --config sightline.yaml
  sightline scan https://example.com --config sightline.yaml
  sightline suggest --html-file page.html --code WCAG2AA.Principle1.Guideline1_1.1_1_1.H37 --message "Img element missing an alt attribute."
  sightline list --config sightline.yaml --domain example.com --limit 10
  sightline config validate --config sightline.yaml

Use "sightline <command> --help" for more information about a command.`)
}
