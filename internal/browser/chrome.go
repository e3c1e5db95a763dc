package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/pkg/logger"
)

// Launcher starts disposable Chrome sessions.
type Launcher struct {
	logger logger.Logger
	cfg    config.BrowserConfig
}

// NewLauncher creates a launcher using the global logger.
func NewLauncher(cfg config.BrowserConfig) *Launcher {
	return NewLauncherWithLogger(cfg, logger.GetGlobalLogger())
}

// NewLauncherWithLogger creates a launcher with a custom logger.
func NewLauncherWithLogger(cfg config.BrowserConfig, log logger.Logger) *Launcher {
	return &Launcher{cfg: cfg, logger: log}
}

// Open spawns a browser process and returns a session bound to it.
// The caller owns the session and must Close it.
func (l *Launcher) Open(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
	)
	if l.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ExecPath))
	}
	if l.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	debugf := func(format string, args ...any) {
		l.logger.Debug(fmt.Sprintf(format, args...))
	}
	errorf := func(format string, args ...any) {
		l.logger.Warn(fmt.Sprintf(format, args...))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(debugf),
		chromedp.WithErrorf(errorf),
	)

	// Running an empty task list forces the browser process to start so
	// startup failures surface here instead of on first use.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	l.logger.Debug("Browser started", "headless", l.cfg.Headless)

	return &chromeSession{
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		logger:      l.logger,
	}, nil
}

// chromeSession drives one Chrome tab through chromedp.
type chromeSession struct {
	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	logger      logger.Logger
	closeOnce   sync.Once
	closeErr    error
}

// run executes chromedp actions against the session's tab, honoring the
// caller's deadline and cancellation.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		// Report the caller's context error so timeouts classify correctly.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Navigate loads url and returns the final location after redirects.
func (s *chromeSession) Navigate(ctx context.Context, url string) (string, error) {
	var location string
	err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.Location(&location),
	)
	if err != nil {
		return "", err
	}
	return location, nil
}

// Title returns the document title of the current page.
func (s *chromeSession) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// Location returns the current page URL.
func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// HTML returns the serialized HTML of the current page.
func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Evaluate runs a JavaScript expression, awaiting promises.
func (s *chromeSession) Evaluate(ctx context.Context, expr string, out any) error {
	awaitPromise := func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}
	return s.run(ctx, chromedp.Evaluate(expr, out, awaitPromise))
}

// Click dispatches a click on the first element matching the selector.
func (s *chromeSession) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// SetValue sets the value of the first element matching the selector.
func (s *chromeSession) SetValue(ctx context.Context, selector, value string) error {
	return s.run(ctx, chromedp.SetValue(selector, value, chromedp.ByQuery))
}

// WaitVisible blocks until an element matching the selector is visible.
func (s *chromeSession) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Close terminates the browser process exactly once.
func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		// chromedp.Cancel waits for the browser to exit cleanly; the
		// cancel funcs then release the contexts either way.
		s.closeErr = chromedp.Cancel(s.ctx)
		s.tabCancel()
		s.allocCancel()
		s.logger.Debug("Browser closed")
	})
	return s.closeErr
}
