package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sightline/sightline/internal/browser"
	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/internal/engine"
	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/pkg/logger"
)

type mockSession struct {
	navigateFunc func(ctx context.Context, url string) (string, error)
	htmlFunc     func(ctx context.Context) (string, error)
	titleFunc    func(ctx context.Context) (string, error)
	closeCalls   int
	closeErr     error
}

func (m *mockSession) Navigate(ctx context.Context, url string) (string, error) {
	if m.navigateFunc != nil {
		return m.navigateFunc(ctx, url)
	}
	return url, nil
}

func (m *mockSession) Title(ctx context.Context) (string, error) {
	if m.titleFunc != nil {
		return m.titleFunc(ctx)
	}
	return "Test Page", nil
}

func (m *mockSession) Location(context.Context) (string, error) { return "", nil }

func (m *mockSession) HTML(ctx context.Context) (string, error) {
	if m.htmlFunc != nil {
		return m.htmlFunc(ctx)
	}
	return "<html><body><p>hello</p></body></html>", nil
}

func (m *mockSession) Evaluate(context.Context, string, any) error { return nil }
func (m *mockSession) Click(context.Context, string) error        { return nil }
func (m *mockSession) SetValue(context.Context, string, string) error {
	return nil
}
func (m *mockSession) WaitVisible(context.Context, string) error { return nil }

func (m *mockSession) Close() error {
	m.closeCalls++
	return m.closeErr
}

type mockBrowser struct {
	session   *mockSession
	openErr   error
	openCalls int
}

func (m *mockBrowser) Open(context.Context) (browser.Session, error) {
	m.openCalls++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.session, nil
}

type mockEngine struct {
	result   *engine.Result
	runErr   error
	gotOpts  engine.Options
	runCalls int
}

func (m *mockEngine) Run(_ context.Context, _ browser.Session, opts engine.Options) (*engine.Result, error) {
	m.runCalls++
	m.gotOpts = opts
	if m.runErr != nil {
		return nil, m.runErr
	}
	return m.result, nil
}

type mockArchiver struct {
	err   error
	keys  []string
	blobs [][]byte
}

func (m *mockArchiver) Store(_ context.Context, key string, html []byte) error {
	m.keys = append(m.keys, key)
	m.blobs = append(m.blobs, html)
	return m.err
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		NavigationTimeout: config.Duration(100 * time.Millisecond),
		RunTimeout:        config.Duration(100 * time.Millisecond),
		SettleWait:        config.Duration(time.Millisecond),
		IncludeWarnings:   true,
		IncludeNotices:    true,
	}
}

func newTestOrchestrator(t *testing.T, b Browser, e Engine, cfg config.EngineConfig) (*Orchestrator, *logger.MockLogger) {
	t.Helper()
	log := logger.NewMockLogger()
	o, err := NewOrchestratorWithLogger(b, e, cfg, log)
	require.NoError(t, err)
	return o, log
}

func TestScanSuccess(t *testing.T) {
	session := &mockSession{
		navigateFunc: func(_ context.Context, _ string) (string, error) {
			return "https://example.com/landing", nil
		},
		htmlFunc: func(context.Context) (string, error) {
			return "<html><body><form><input name=\"q\"></form></body></html>", nil
		},
	}
	b := &mockBrowser{session: session}
	e := &mockEngine{result: &engine.Result{
		DocumentTitle: "Example",
		PageURL:       "https://example.com/landing",
		Issues: []models.Issue{
			{Code: "e1", Type: models.IssueTypeError, Message: "Missing alt attribute"},
			{Code: "e2", Type: models.IssueTypeError, Message: "Empty heading"},
			{Code: "w1", Type: models.IssueTypeWarning, Message: "Low contrast suspected"},
		},
	}}

	var phases []string
	o, log := newTestOrchestrator(t, b, e, testEngineConfig())
	o.SetProgressFunc(func(phase, _ string) { phases = append(phases, phase) })
	archiver := &mockArchiver{}
	o.SetArchiver(archiver)

	result, err := o.Scan(context.Background(), "https://example.com")
	require.NoError(t, err)

	// Form page with no form-related issues gains the synthetic notice,
	// so the score covers 2 errors, 1 warning and 1 notice.
	assert.Equal(t, 93, result.Score)
	require.Len(t, result.Issues, 4)
	assert.Equal(t, FormDetectedCode, result.Issues[3].Code)
	assert.True(t, result.HasForm)
	assert.Equal(t, "Example", result.DocumentTitle)
	assert.Equal(t, "https://example.com/landing", result.PageURL)
	assert.False(t, result.EndTime.Before(result.StartTime))

	assert.Equal(t, []string{
		models.PhaseBrowserOpening,
		models.PhaseNavigating,
		models.PhaseDetecting,
		models.PhaseTesting,
		models.PhaseEnriching,
		models.PhaseScoring,
		models.PhaseComplete,
	}, phases)

	assert.Equal(t, 1, session.closeCalls)
	assert.Equal(t, []string{engine.RuleSetStructural, engine.RuleSetSemantic}, e.gotOpts.RuleSets)
	assert.True(t, e.gotOpts.IncludeWarnings)
	assert.True(t, e.gotOpts.IncludeNotices)

	require.Len(t, archiver.keys, 1)
	assert.Contains(t, string(archiver.blobs[0]), "<form>")
	assert.True(t, log.HasMessage("INFO", "Scan complete"), log.String())
}

func TestScanNoFormSkipsSemanticRules(t *testing.T) {
	session := &mockSession{}
	b := &mockBrowser{session: session}
	e := &mockEngine{result: &engine.Result{Issues: nil}}

	o, _ := newTestOrchestrator(t, b, e, testEngineConfig())
	result, err := o.Scan(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.False(t, result.HasForm)
	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.Issues)
	assert.Equal(t, []string{engine.RuleSetStructural}, e.gotOpts.RuleSets)
	assert.Equal(t, 1, session.closeCalls)
}

func TestScanInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty url", url: ""},
		{name: "no scheme", url: "example.com"},
		{name: "bad scheme", url: "ftp://example.com"},
		{name: "no host", url: "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBrowser{session: &mockSession{}}
			e := &mockEngine{}
			o, _ := newTestOrchestrator(t, b, e, testEngineConfig())

			_, err := o.Scan(context.Background(), tt.url)
			require.Error(t, err)
			assert.True(t, IsInvalidInput(err), "got kind %s", KindOf(err))

			// Rejected before any collaborator runs.
			assert.Zero(t, b.openCalls)
			assert.Zero(t, e.runCalls)
		})
	}
}

func TestScanBrowserOpenFailure(t *testing.T) {
	b := &mockBrowser{openErr: errors.New("no chrome binary")}
	e := &mockEngine{}
	o, _ := newTestOrchestrator(t, b, e, testEngineConfig())

	_, err := o.Scan(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, IsEngineFailure(err))
	assert.Zero(t, e.runCalls)
}

func TestScanNavigationTimeout(t *testing.T) {
	session := &mockSession{
		navigateFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	b := &mockBrowser{session: session}
	e := &mockEngine{}

	cfg := testEngineConfig()
	cfg.NavigationTimeout = config.Duration(10 * time.Millisecond)

	var phases []string
	o, _ := newTestOrchestrator(t, b, e, cfg)
	o.SetProgressFunc(func(phase, _ string) { phases = append(phases, phase) })

	_, err := o.Scan(context.Background(), "https://slow.example.com")
	require.Error(t, err)
	assert.True(t, IsNavigationTimeout(err), "got kind %s", KindOf(err))

	assert.Equal(t, 1, session.closeCalls)
	assert.Zero(t, e.runCalls)
	assert.Equal(t, models.PhaseFailed, phases[len(phases)-1])
}

func TestScanNavigationError(t *testing.T) {
	session := &mockSession{
		navigateFunc: func(context.Context, string) (string, error) {
			return "", errors.New("net::ERR_NAME_NOT_RESOLVED")
		},
	}
	b := &mockBrowser{session: session}
	o, _ := newTestOrchestrator(t, b, &mockEngine{}, testEngineConfig())

	_, err := o.Scan(context.Background(), "https://nxdomain.example.com")
	require.Error(t, err)
	assert.True(t, IsNavigationError(err))
	assert.Equal(t, 1, session.closeCalls)
}

func TestScanCanceledByCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &mockSession{
		navigateFunc: func(navCtx context.Context, _ string) (string, error) {
			cancel()
			<-navCtx.Done()
			return "", navCtx.Err()
		},
	}
	b := &mockBrowser{session: session}
	o, _ := newTestOrchestrator(t, b, &mockEngine{}, testEngineConfig())

	_, err := o.Scan(ctx, "https://example.com")
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, 1, session.closeCalls)
}

func TestScanHTMLReadFailure(t *testing.T) {
	session := &mockSession{
		htmlFunc: func(context.Context) (string, error) {
			return "", errors.New("target crashed")
		},
	}
	b := &mockBrowser{session: session}
	o, _ := newTestOrchestrator(t, b, &mockEngine{}, testEngineConfig())

	_, err := o.Scan(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, IsEngineFailure(err))
	assert.Equal(t, 1, session.closeCalls)
}

func TestScanEngineFailure(t *testing.T) {
	session := &mockSession{}
	b := &mockBrowser{session: session}
	e := &mockEngine{runErr: errors.New("bundle blew up")}
	o, log := newTestOrchestrator(t, b, e, testEngineConfig())

	_, err := o.Scan(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, IsEngineFailure(err))
	assert.Equal(t, 1, session.closeCalls)
	assert.True(t, log.HasMessage("ERROR", "Scan failed"), log.String())
}

func TestScanArchiveFailureIsNotFatal(t *testing.T) {
	session := &mockSession{}
	b := &mockBrowser{session: session}
	e := &mockEngine{result: &engine.Result{}}

	o, log := newTestOrchestrator(t, b, e, testEngineConfig())
	o.SetArchiver(&mockArchiver{err: errors.New("bucket gone")})

	result, err := o.Scan(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	assert.True(t, log.HasMessageContaining("WARN", "archive"), log.String())
}

func TestScanEngineOptionsFromConfig(t *testing.T) {
	cfg := config.EngineConfig{
		Actions:           []string{"click element #go", "pause 5"},
		NavigationTimeout: config.Duration(time.Second),
		RunTimeout:        config.Duration(2 * time.Second),
		SettleWait:        config.Duration(30 * time.Millisecond),
		IncludeWarnings:   false,
		IncludeNotices:    false,
	}

	session := &mockSession{}
	e := &mockEngine{result: &engine.Result{}}
	o, _ := newTestOrchestrator(t, &mockBrowser{session: session}, e, cfg)

	_, err := o.Scan(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Len(t, e.gotOpts.Actions, 2)
	assert.Equal(t, 30*time.Millisecond, e.gotOpts.SettleWait)
	assert.Equal(t, 2*time.Second, e.gotOpts.Timeout)
	assert.False(t, e.gotOpts.IncludeWarnings)
	assert.False(t, e.gotOpts.IncludeNotices)
}

func TestNewOrchestratorRejectsBadActions(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Actions = []string{"dance wildly"}

	_, err := NewOrchestratorWithLogger(&mockBrowser{}, &mockEngine{}, cfg, logger.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized action")
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "simple", url: "https://example.com/contact", want: "example.com"},
		{name: "subdomain collapses", url: "https://shop.example.com/", want: "example.com"},
		{name: "multi-label suffix", url: "https://news.bbc.co.uk/sport", want: "bbc.co.uk"},
		{name: "uppercase host", url: "https://WWW.Example.COM", want: "example.com"},
		{name: "port stripped", url: "http://example.com:8080/x", want: "example.com"},
		{name: "localhost falls back to host", url: "http://localhost:3000/", want: "localhost"},
		{name: "ip falls back to host", url: "http://127.0.0.1/", want: "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RegistrableDomain(tt.url))
		})
	}
}
