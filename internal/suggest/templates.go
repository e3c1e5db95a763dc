package suggest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/pkg/logger"
)

// Template is one deterministic remediation, matched against an issue's
// message by case-insensitive keyword search.
type Template struct {
	Name     string   `yaml:"name"`
	Fix      string   `yaml:"fix"`
	Keywords []string `yaml:"keywords"`
}

// defaultTemplates cover the rule families that dominate real-world
// scans. Custom templates loaded from a file are matched first.
var defaultTemplates = []Template{
	{
		Name:     "alt-text",
		Keywords: []string{"alt attribute", "alt text"},
		Fix:      "Add an alt attribute to the image describing its purpose, e.g. <img src=\"...\" alt=\"Search\">. Use alt=\"\" only for purely decorative images.",
	},
	{
		Name:     "form-label",
		Keywords: []string{"label", "form field"},
		Fix:      "Associate every form control with a visible label: give the control an id and point a <label for=\"...\"> at it, or wrap the control in its <label> element.",
	},
	{
		Name:     "color-contrast",
		Keywords: []string{"contrast"},
		Fix:      "Increase the contrast between text and its background to at least 4.5:1 for normal text (3:1 for large text), by darkening the foreground or lightening the background.",
	},
	{
		Name:     "page-title",
		Keywords: []string{"document title", "title element"},
		Fix:      "Give the document a descriptive <title> element inside <head> that names the page and the site.",
	},
	{
		Name:     "link-text",
		Keywords: []string{"link text", "anchor element"},
		Fix:      "Write link text that describes the destination on its own; replace phrases like \"click here\" with the name of the target page or action.",
	},
}

// templatesFile is the on-disk format: a single top-level list.
type templatesFile struct {
	Templates []Template `yaml:"templates"`
}

// TemplateStore matches issues against remediation templates. Custom
// templates can be loaded from a YAML file and hot-reloaded; reads and
// reloads are safe to interleave.
type TemplateStore struct {
	logger logger.Logger
	mu     sync.RWMutex
	custom []Template
}

// NewTemplateStore creates a store with the built-in templates.
func NewTemplateStore() *TemplateStore {
	return NewTemplateStoreWithLogger(logger.GetGlobalLogger())
}

// NewTemplateStoreWithLogger creates a store with a custom logger.
func NewTemplateStoreWithLogger(log logger.Logger) *TemplateStore {
	return &TemplateStore{logger: log}
}

// LoadFile replaces the custom template set from a YAML file. Custom
// templates extend the built-ins and take precedence over them.
func (s *TemplateStore) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted source (config file)
	if err != nil {
		return fmt.Errorf("reading templates file: %w", err)
	}

	var parsed templatesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parsing templates YAML: %w", err)
	}

	for i, tmpl := range parsed.Templates {
		if tmpl.Name == "" {
			return fmt.Errorf("template %d: name is required", i)
		}
		if tmpl.Fix == "" {
			return fmt.Errorf("template %q: fix is required", tmpl.Name)
		}
		if len(tmpl.Keywords) == 0 {
			return fmt.Errorf("template %q: at least one keyword is required", tmpl.Name)
		}
	}

	s.mu.Lock()
	s.custom = parsed.Templates
	s.mu.Unlock()

	s.logger.Info("Loaded suggestion templates", "path", path, "count", len(parsed.Templates))
	return nil
}

// Match returns the fix text of the first template whose keywords
// appear in the issue's message.
func (s *TemplateStore) Match(issue models.Issue) (string, bool) {
	message := strings.ToLower(issue.Message)
	if message == "" {
		return "", false
	}

	s.mu.RLock()
	custom := s.custom
	s.mu.RUnlock()

	for _, set := range [][]Template{custom, defaultTemplates} {
		for _, tmpl := range set {
			for _, keyword := range tmpl.Keywords {
				if strings.Contains(message, strings.ToLower(keyword)) {
					return tmpl.Fix, true
				}
			}
		}
	}
	return "", false
}

// Watch reloads the templates file whenever it changes, until ctx is
// done. Events are debounced because editors fire several per save.
func (s *TemplateStore) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating template watcher: %w", err)
	}

	// Watch the directory, not the file: editors that rename-and-replace
	// would otherwise drop the watch on first save.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	base := filepath.Base(path)
	go func() {
		defer func() { _ = watcher.Close() }()

		var timer *time.Timer
		const debounce = 300 * time.Millisecond

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if err := s.LoadFile(path); err != nil {
						s.logger.Error("Template reload failed", "path", path, "error", err)
					}
				})
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("Template watcher error", "error", werr)
			}
		}
	}()

	return nil
}
