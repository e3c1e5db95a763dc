// Package scanner runs accessibility scans end to end.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/net/publicsuffix"

	"github.com/sightline/sightline/internal/browser"
	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/internal/engine"
	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/pkg/logger"
)

var tracer = otel.Tracer("sightline/internal/scanner")

// Browser opens one disposable session per scan.
type Browser interface {
	Open(ctx context.Context) (browser.Session, error)
}

// Engine runs accessibility checks against a live session.
type Engine interface {
	Run(ctx context.Context, session browser.Session, opts engine.Options) (*engine.Result, error)
}

// Archiver stores rendered page snapshots for later inspection.
type Archiver interface {
	Store(ctx context.Context, key string, html []byte) error
}

// ProgressFunc receives phase transitions as a scan advances.
type ProgressFunc func(phase, message string)

// Orchestrator runs one scan at a time through the full pipeline:
// open browser, navigate, detect forms, run the engine, enrich, score.
// It is safe for concurrent use; each Scan call is independent.
type Orchestrator struct {
	logger    logger.Logger
	browser   Browser
	engine    Engine
	archiver  Archiver
	progress  ProgressFunc
	actions   []engine.Action
	engineCfg config.EngineConfig
}

// NewOrchestrator creates an orchestrator using the global logger.
func NewOrchestrator(b Browser, e Engine, cfg config.EngineConfig) (*Orchestrator, error) {
	return NewOrchestratorWithLogger(b, e, cfg, logger.GetGlobalLogger())
}

// NewOrchestratorWithLogger creates an orchestrator with a custom logger.
func NewOrchestratorWithLogger(b Browser, e Engine, cfg config.EngineConfig, log logger.Logger) (*Orchestrator, error) {
	actions, err := engine.ParseActions(cfg.Actions)
	if err != nil {
		return nil, fmt.Errorf("parsing engine actions: %w", err)
	}
	return &Orchestrator{
		logger:    log,
		browser:   b,
		engine:    e,
		actions:   actions,
		engineCfg: cfg,
	}, nil
}

// SetArchiver stores page snapshots after successful scans. Archive
// failures are logged, never fatal.
func (o *Orchestrator) SetArchiver(a Archiver) {
	o.archiver = a
}

// SetProgressFunc registers a callback for phase transitions.
func (o *Orchestrator) SetProgressFunc(fn ProgressFunc) {
	o.progress = fn
}

// Scan evaluates one URL and returns its result. A failed scan returns
// a *ScanError; no partial result is ever emitted. The browser session
// is released before Scan returns on every path.
func (o *Orchestrator) Scan(ctx context.Context, rawURL string) (*models.ScanResult, error) {
	ctx, span := tracer.Start(ctx, "scanner.Scan")
	defer span.End()
	span.SetAttributes(attribute.String("scan.url", rawURL))

	runID := uuid.New().String()
	log := o.logger.With("url", rawURL, "run_id", runID)

	result, err := o.run(ctx, rawURL, runID, log)
	if err != nil {
		span.RecordError(err)
		o.setPhase(models.PhaseFailed, err.Error())
		log.Error("Scan failed", "kind", string(KindOf(err)), "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("scan.score", result.Score),
		attribute.Int("scan.issues", len(result.Issues)),
		attribute.Bool("scan.has_form", result.HasForm),
	)
	o.setPhase(models.PhaseComplete, fmt.Sprintf("score %d", result.Score))
	log.Info("Scan complete",
		"score", result.Score,
		"issues", len(result.Issues),
		"has_form", result.HasForm,
		"duration", result.Duration().Round(time.Millisecond),
	)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, rawURL, runID string, log logger.Logger) (*models.ScanResult, error) {
	started := time.Now()

	if err := ValidateScanURL(rawURL); err != nil {
		return nil, err
	}

	o.setPhase(models.PhaseBrowserOpening, "launching browser")
	session, err := o.browser.Open(ctx)
	if err != nil {
		return nil, NewScanError(KindEngineFailure, fmt.Errorf("opening browser: %w", err))
	}

	// The session must be released exactly once on every path out of
	// this function, including panics in downstream collaborators.
	var closeOnce sync.Once
	closeSession := func() {
		closeOnce.Do(func() {
			if cerr := session.Close(); cerr != nil {
				log.Warn("Browser close failed", "error", cerr)
			}
		})
	}
	defer closeSession()

	o.setPhase(models.PhaseNavigating, "loading page")
	navTimeout := o.engineCfg.NavigationTimeout.Std()
	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	pageURL, err := session.Navigate(navCtx, rawURL)
	cancel()
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, NewScanError(KindInternal, fmt.Errorf("scan canceled during navigation: %w", err))
		case errors.Is(err, context.DeadlineExceeded):
			return nil, NewScanError(KindNavigationTimeout, fmt.Errorf("page did not load within %s: %w", navTimeout, err))
		default:
			return nil, NewScanError(KindNavigationError, fmt.Errorf("loading page: %w", err))
		}
	}

	o.setPhase(models.PhaseDetecting, "detecting page structure")
	html, err := session.HTML(ctx)
	if err != nil {
		return nil, NewScanError(KindEngineFailure, fmt.Errorf("reading page source: %w", err))
	}
	hasForm := HasFormElements(html)
	log.Debug("Structure detection complete", "has_form", hasForm, "html_bytes", len(html))

	o.setPhase(models.PhaseTesting, "running accessibility checks")
	ruleSets := []string{engine.RuleSetStructural}
	if hasForm {
		ruleSets = append(ruleSets, engine.RuleSetSemantic)
	}
	engineResult, err := o.engine.Run(ctx, session, engine.Options{
		RuleSets:        ruleSets,
		Actions:         o.actions,
		SettleWait:      o.engineCfg.SettleWait.Std(),
		Timeout:         o.engineCfg.RunTimeout.Std(),
		IncludeWarnings: o.engineCfg.IncludeWarnings,
		IncludeNotices:  o.engineCfg.IncludeNotices,
	})
	if err != nil {
		return nil, NewScanError(KindEngineFailure, fmt.Errorf("running engine: %w", err))
	}

	o.setPhase(models.PhaseEnriching, "enriching issues")
	issues := EnrichIssues(engineResult.Issues, hasForm)

	o.setPhase(models.PhaseScoring, "calculating score")
	score := Score(issues)

	if o.archiver != nil {
		if aerr := o.archiver.Store(ctx, runID, []byte(html)); aerr != nil {
			log.Warn("Snapshot archive failed", "error", aerr)
		} else {
			log.Debug("Snapshot archived", "key", runID)
		}
	}

	result := &models.ScanResult{
		StartTime:     started,
		EndTime:       time.Now(),
		DocumentTitle: engineResult.DocumentTitle,
		PageURL:       engineResult.PageURL,
		Issues:        issues,
		Score:         score,
		HasForm:       hasForm,
	}
	if result.PageURL == "" {
		result.PageURL = pageURL
	}
	return result, nil
}

func (o *Orchestrator) setPhase(phase, message string) {
	if o.progress != nil {
		o.progress(phase, message)
	}
	o.logger.Debug("Scan phase", "phase", phase, "message", message)
}

// ValidateScanURL rejects URLs a scan cannot use. Rejection happens
// before any collaborator is touched.
func ValidateScanURL(rawURL string) error {
	if rawURL == "" {
		return NewScanErrorf(KindInvalidInput, "url is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return NewScanError(KindInvalidInput, fmt.Errorf("invalid url: %w", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NewScanErrorf(KindInvalidInput, "url scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return NewScanErrorf(KindInvalidInput, "url host is required")
	}
	return nil
}

// RegistrableDomain returns the eTLD+1 the scanned page belongs to,
// falling back to the bare hostname when the public suffix list cannot
// resolve it (localhost, raw IPs).
func RegistrableDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
