package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sightline/sightline/internal/browser"
	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/pkg/logger"
)

// engineGlobal is the window property the injected bundle installs
// itself under. The bundle's run() accepts an options object and
// resolves to the evaluation result.
const engineGlobal = "__sightline_engine"

// runnerOptions is the options object handed to the in-page runner.
type runnerOptions struct {
	RuleSets        []string `json:"ruleSets"`
	IncludeWarnings bool     `json:"includeWarnings"`
	IncludeNotices  bool     `json:"includeNotices"`
}

// rawIssue is an issue as the in-page runner reports it. Type arrives
// as a numeric code (1=error, 2=warning, 3=notice) from some engines
// and as a string from others.
type rawIssue struct {
	Type     any    `json:"type"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Context  string `json:"context"`
	Selector string `json:"selector"`
	Runner   string `json:"runner"`
}

type rawResult struct {
	DocumentTitle string     `json:"documentTitle"`
	PageURL       string     `json:"pageUrl"`
	Issues        []rawIssue `json:"issues"`
}

// BrowserRunner injects the engine bundle into a live page and runs it.
type BrowserRunner struct {
	logger logger.Logger
	script string
}

// NewBrowserRunner loads the engine bundle from scriptPath.
func NewBrowserRunner(scriptPath string) (*BrowserRunner, error) {
	return NewBrowserRunnerWithLogger(scriptPath, logger.GetGlobalLogger())
}

// NewBrowserRunnerWithLogger loads the engine bundle with a custom logger.
func NewBrowserRunnerWithLogger(scriptPath string, log logger.Logger) (*BrowserRunner, error) {
	if scriptPath == "" {
		return nil, fmt.Errorf("engine script path not configured")
	}
	script, err := os.ReadFile(scriptPath) //nolint:gosec // Path is from trusted source (config file)
	if err != nil {
		return nil, fmt.Errorf("reading engine bundle: %w", err)
	}
	return &BrowserRunner{script: string(script), logger: log}, nil
}

// Run executes the configured actions, injects the bundle and collects
// normalized issues. All failures wrap the underlying cause; the caller
// classifies them.
func (r *BrowserRunner) Run(ctx context.Context, session browser.Session, opts Options) (*Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	for _, action := range opts.Actions {
		r.logger.Debug("Running pre-analysis action", "action", action.Spec)
		if err := action.Run(ctx, session); err != nil {
			return nil, fmt.Errorf("running action %q: %w", action.Spec, err)
		}
	}

	if opts.SettleWait > 0 {
		if err := sleepCtx(ctx, opts.SettleWait); err != nil {
			return nil, err
		}
	}

	if err := session.Evaluate(ctx, r.script, nil); err != nil {
		return nil, fmt.Errorf("injecting engine bundle: %w", err)
	}

	var installed bool
	probe := fmt.Sprintf("typeof window.%s === 'object'", engineGlobal)
	if err := session.Evaluate(ctx, probe, &installed); err != nil {
		return nil, fmt.Errorf("probing engine bundle: %w", err)
	}
	if !installed {
		return nil, fmt.Errorf("engine bundle did not install window.%s", engineGlobal)
	}

	encoded, err := json.Marshal(runnerOptions{
		RuleSets:        opts.RuleSets,
		IncludeWarnings: opts.IncludeWarnings,
		IncludeNotices:  opts.IncludeNotices,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding runner options: %w", err)
	}

	var raw rawResult
	invoke := fmt.Sprintf("window.%s.run(%s)", engineGlobal, encoded)
	if err := session.Evaluate(ctx, invoke, &raw); err != nil {
		return nil, fmt.Errorf("running accessibility checks: %w", err)
	}

	result := &Result{
		DocumentTitle: raw.DocumentTitle,
		PageURL:       raw.PageURL,
		Issues:        make([]models.Issue, 0, len(raw.Issues)),
	}

	for _, ri := range raw.Issues {
		issue := models.Issue{
			Code:     ri.Code,
			Type:     models.NormalizeIssueType(fmt.Sprint(ri.Type)),
			Message:  ri.Message,
			Context:  ri.Context,
			Selector: ri.Selector,
			Runner:   ri.Runner,
		}
		// The bundle is expected to honor the include flags itself;
		// filtering again keeps the contract independent of the bundle.
		if issue.Type == models.IssueTypeWarning && !opts.IncludeWarnings {
			continue
		}
		if issue.Type == models.IssueTypeNotice && !opts.IncludeNotices {
			continue
		}
		result.Issues = append(result.Issues, issue)
	}

	if result.DocumentTitle == "" {
		if title, terr := session.Title(ctx); terr == nil {
			result.DocumentTitle = title
		}
	}
	if result.PageURL == "" {
		if location, lerr := session.Location(ctx); lerr == nil {
			result.PageURL = location
		}
	}

	r.logger.Debug("Engine run complete",
		"issues", len(result.Issues),
		"rule_sets", opts.RuleSets,
	)

	return result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
