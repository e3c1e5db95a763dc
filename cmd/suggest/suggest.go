// Package suggest implements the suggest command, a one-shot fix suggestion.
package suggest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/internal/suggest"
	"github.com/sightline/sightline/internal/ui"
	"github.com/sightline/sightline/pkg/logger"
	"github.com/sightline/sightline/pkg/pathutil"
)

var (
	configFile  string
	htmlFile    string
	code        string
	issueType   string
	message     string
	selector    string
	contextHTML string
	format      string
)

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a fix for an accessibility issue",
		Long: `Suggest a fix for an accessibility issue found on a page.

The issue and the page HTML are handed to the suggestion chain: the
primary AI provider first, then the secondary, then the rule templates,
and finally a generic advisory. Without a config file no provider has
credentials, so suggestions come from the deterministic fallbacks.`,
		Example: `  # Suggest from the rule templates only (no config, no AI)
  sightline suggest --html-file page.html \
    --code WCAG2AA.Principle1.Guideline1_1.1_1_1.H37 \
    --message "Img element missing an alt attribute."

  # Use the configured AI providers
  sightline suggest --config sightline.yaml --html-file page.html \
    --code WCAG2AA.Principle1.Guideline1_4.1_4_3.G18 \
    --type error \
    --message "This element has insufficient contrast." \
    --selector "#main > p"`,
		RunE: runSuggest,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&htmlFile, "html-file", "", "Path to the page HTML (required)")
	cmd.Flags().StringVar(&code, "code", "", "Rule code of the issue")
	cmd.Flags().StringVar(&issueType, "type", models.IssueTypeError, "Issue type (error, warning, notice)")
	cmd.Flags().StringVar(&message, "message", "", "Issue message (required)")
	cmd.Flags().StringVar(&selector, "selector", "", "CSS selector of the offending node")
	cmd.Flags().StringVar(&contextHTML, "context", "", "HTML fragment surrounding the offending node")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json)")

	cmd.MarkFlagRequired("html-file")
	cmd.MarkFlagRequired("message")

	return cmd
}

func runSuggest(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()

	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q, want text or json", format)
	}
	if !models.IsValidIssueType(issueType) {
		return fmt.Errorf("invalid issue type %q, want one of %s",
			issueType, strings.Join(models.ValidIssueTypes(), ", "))
	}

	cfg := config.Default()
	if configFile != "" {
		path, err := pathutil.ValidateConfigPath(configFile)
		if err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	html, err := os.ReadFile(htmlFile) //nolint:gosec // Path comes from the operator.
	if err != nil {
		return fmt.Errorf("reading html file: %w", err)
	}

	issue := models.Issue{
		Code:     code,
		Type:     issueType,
		Message:  message,
		Selector: selector,
		Context:  contextHTML,
	}

	ctx := context.Background()

	httpClient := &http.Client{
		Timeout:   60 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	engine, err := suggest.FromConfig(ctx, cfg.Suggest, httpClient, log)
	if err != nil {
		return fmt.Errorf("building suggestion engine: %w", err)
	}

	suggestion, err := engine.Suggest(ctx, issue, string(html))
	if err != nil {
		return err
	}

	var out string
	switch format {
	case "json":
		out, err = ui.RenderJSON(suggestion)
		if err != nil {
			return err
		}
	default:
		out = ui.RenderSuggestion(suggestion)
	}

	fmt.Print(out) //nolint:forbidigo // Command output belongs on stdout.
	return nil
}

// Run executes the suggest command with the provided arguments.
func Run(args []string) error {
	cmd := NewSuggestCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
