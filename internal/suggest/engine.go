package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/pkg/logger"
)

var tracer = otel.Tracer("sightline/internal/suggest")

// ErrInvalidInput reports a suggestion request missing its issue or html.
var ErrInvalidInput = errors.New("invalid suggestion input")

// outcome tags the result of one provider attempt.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeRateLimited
	outcomeFailed
	outcomeUnavailable
)

func (o outcome) String() string {
	switch o {
	case outcomeOK:
		return "ok"
	case outcomeRateLimited:
		return "rate_limited"
	case outcomeFailed:
		return "failed"
	case outcomeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

type attemptResult struct {
	err     error
	text    string
	outcome outcome
}

// genericAdvisories are the last-resort suggestions, keyed by issue type.
var genericAdvisories = map[string]string{
	models.IssueTypeError:   "This is a failure against WCAG 2.1 AA. Review the flagged element against the success criterion named in the issue code and correct the markup; retest the page afterwards.",
	models.IssueTypeWarning: "This needs human review: automated checks could not decide conclusively. Inspect the flagged element against the referenced guideline and fix it if the concern applies.",
	models.IssueTypeNotice:  "This is an advisory. Verify the flagged aspect of the page manually; no change may be needed if the current behavior is intentional and accessible.",
}

// Engine runs the fix-suggestion fallback chain: primary AI, then rule
// templates or the secondary AI depending on how the primary failed,
// then the generic advisory. It never returns a hard failure for a
// valid request.
type Engine struct {
	logger     logger.Logger
	primary    Provider
	secondary  Provider
	templates  *TemplateStore
	maxContext int
}

// NewEngine creates a suggestion engine. Either provider may be nil,
// meaning that stage is unavailable.
func NewEngine(primary, secondary Provider, templates *TemplateStore, maxContext int) *Engine {
	return NewEngineWithLogger(primary, secondary, templates, maxContext, logger.GetGlobalLogger())
}

// NewEngineWithLogger creates a suggestion engine with a custom logger.
func NewEngineWithLogger(primary, secondary Provider, templates *TemplateStore, maxContext int, log logger.Logger) *Engine {
	if templates == nil {
		templates = NewTemplateStoreWithLogger(log)
	}
	return &Engine{
		logger:     log,
		primary:    primary,
		secondary:  secondary,
		templates:  templates,
		maxContext: maxContext,
	}
}

// Suggest produces remediation guidance for one issue found in html.
func (e *Engine) Suggest(ctx context.Context, issue models.Issue, html string) (*models.FixSuggestion, error) {
	ctx, span := tracer.Start(ctx, "suggest.Suggest")
	defer span.End()
	span.SetAttributes(attribute.String("issue.code", issue.Code))

	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("%w: html is required", ErrInvalidInput)
	}
	if issue.Code == "" && issue.Message == "" {
		return nil, fmt.Errorf("%w: issue is required", ErrInvalidInput)
	}

	log := e.logger.With("issue_code", issue.Code)
	prompt := BuildPrompt(issue, html, e.maxContext)

	suggestion := e.run(ctx, log, issue, prompt)
	span.SetAttributes(attribute.String("suggestion.provider", suggestion.Provider))
	return suggestion, nil
}

func (e *Engine) run(ctx context.Context, log logger.Logger, issue models.Issue, prompt string) *models.FixSuggestion {
	primary := e.attempt(ctx, e.primary, prompt)
	switch primary.outcome {
	case outcomeOK:
		log.Debug("Primary provider succeeded", "provider", providerName(e.primary))
		return fix(issue, primary.text, models.SuggestionSourcePrimaryAI)

	case outcomeRateLimited:
		// Rate limiting prefers the free deterministic path: a template
		// hit returns immediately and the secondary is never called.
		log.Warn("Primary provider rate limited, trying rule templates", "provider", providerName(e.primary))
		if text, ok := e.templates.Match(issue); ok {
			return fix(issue, text, models.SuggestionSourceTemplate)
		}

	case outcomeUnavailable:
		log.Debug("Primary provider unavailable", "provider", providerName(e.primary))

	case outcomeFailed:
		log.Warn("Primary provider failed", "provider", providerName(e.primary), "error", primary.err)
	}

	secondary := e.attempt(ctx, e.secondary, prompt)
	switch secondary.outcome {
	case outcomeOK:
		log.Debug("Secondary provider succeeded", "provider", providerName(e.secondary))
		return fix(issue, secondary.text, models.SuggestionSourceSecondaryAI)
	case outcomeRateLimited, outcomeFailed:
		log.Warn("Secondary provider failed", "provider", providerName(e.secondary), "outcome", secondary.outcome.String(), "error", secondary.err)
	case outcomeUnavailable:
		log.Debug("Secondary provider unavailable", "provider", providerName(e.secondary))
	}

	if text, ok := e.templates.Match(issue); ok {
		log.Debug("Rule template matched")
		return fix(issue, text, models.SuggestionSourceTemplate)
	}

	log.Info("Suggestion chain exhausted, using generic advisory", "issue_type", issue.Type)
	return fix(issue, genericAdvisory(issue.Type), models.SuggestionSourceGeneric)
}

// attempt calls one provider and tags the result.
func (e *Engine) attempt(ctx context.Context, p Provider, prompt string) attemptResult {
	if p == nil {
		return attemptResult{outcome: outcomeUnavailable, err: ErrUnavailable}
	}

	text, err := p.Suggest(ctx, prompt)
	switch {
	case err == nil:
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return attemptResult{outcome: outcomeFailed, err: ErrNoResponse}
		}
		return attemptResult{outcome: outcomeOK, text: trimmed}
	case errors.Is(err, ErrRateLimited):
		return attemptResult{outcome: outcomeRateLimited, err: err}
	case errors.Is(err, ErrUnavailable):
		return attemptResult{outcome: outcomeUnavailable, err: err}
	default:
		return attemptResult{outcome: outcomeFailed, err: err}
	}
}

func fix(issue models.Issue, text, provider string) *models.FixSuggestion {
	return &models.FixSuggestion{
		RuleCode: issue.Code,
		Text:     text,
		Provider: provider,
	}
}

// providerName names a chain stage for logs, tolerating nil stages.
func providerName(p Provider) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}

// genericAdvisory returns the last-resort text for an issue type. The
// normalizer folds unknown types to notice, so this always succeeds.
func genericAdvisory(issueType string) string {
	return genericAdvisories[models.NormalizeIssueType(issueType)]
}

// FromConfig assembles the full chain from configuration: Gemini as
// the primary provider, OpenAI as the secondary, file templates layered
// over the built-ins. When watching is enabled the templates file is
// hot-reloaded until ctx ends.
func FromConfig(ctx context.Context, cfg config.SuggestConfig, client *http.Client, log logger.Logger) (*Engine, error) {
	templates := NewTemplateStoreWithLogger(log)
	if cfg.TemplatesPath != "" {
		if err := templates.LoadFile(cfg.TemplatesPath); err != nil {
			return nil, fmt.Errorf("loading suggestion templates: %w", err)
		}
		if cfg.WatchTemplates {
			if err := templates.Watch(ctx, cfg.TemplatesPath); err != nil {
				return nil, fmt.Errorf("watching suggestion templates: %w", err)
			}
		}
	}

	primary := NewGeminiProviderWithLogger(cfg.Primary, client, log)
	secondary := NewOpenAIProviderWithLogger(cfg.Secondary, client, log)
	return NewEngineWithLogger(primary, secondary, templates, cfg.PromptMaxContext, log), nil
}
