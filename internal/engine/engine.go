// Package engine invokes the accessibility rule engine inside a page.
package engine

import (
	"context"
	"time"

	"github.com/sightline/sightline/internal/browser"
	"github.com/sightline/sightline/internal/models"
)

// Rule sets the engine recognizes. Structural rules always run; the
// semantic set adds ARIA and form-control checks and is only worth the
// cost on pages with interactive elements.
const (
	RuleSetStructural = "structural-rules"
	RuleSetSemantic   = "semantic-rules"
)

// Options configure one engine evaluation.
type Options struct {
	// RuleSets selects which rule groups run.
	RuleSets []string

	// Actions are scripted interactions run against the page before
	// analysis, in order.
	Actions []Action

	// SettleWait pauses after actions so late DOM mutations finish.
	SettleWait time.Duration

	// Timeout bounds the whole evaluation. Zero means no bound.
	Timeout time.Duration

	IncludeWarnings bool
	IncludeNotices  bool
}

// Result is the output of one evaluation.
type Result struct {
	DocumentTitle string
	PageURL       string
	Issues        []models.Issue
}

// Runner evaluates accessibility rules against a live browser session.
type Runner interface {
	Run(ctx context.Context, session browser.Session, opts Options) (*Result, error)
}
