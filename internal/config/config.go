// Package config provides configuration loading and validation for Sightline.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML can carry values like "90s" or "2m".
// Bare integers are read as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case int:
		*d = Duration(time.Duration(v) * time.Second)
		return nil
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration value: %v", raw)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete Sightline configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Browser  BrowserConfig  `yaml:"browser"`
	Engine   EngineConfig   `yaml:"engine"`
	Suggest  SuggestConfig  `yaml:"suggest"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ScanTimeout     Duration `yaml:"scan_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig controls the Postgres connection.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// BrowserConfig controls the headless browser.
type BrowserConfig struct {
	// ExecPath overrides the Chrome binary location. Empty means autodetect.
	ExecPath  string `yaml:"exec_path,omitempty"`
	Headless  bool   `yaml:"headless"`
	NoSandbox bool   `yaml:"no_sandbox"`
}

// EngineConfig controls the accessibility rule engine.
type EngineConfig struct {
	// ScriptPath is the engine bundle injected into scanned pages.
	ScriptPath string `yaml:"script_path"`

	// Actions run against the page before analysis, e.g.
	// "click element #accept-cookies" or "wait for element .app to be visible".
	Actions []string `yaml:"actions,omitempty"`

	NavigationTimeout Duration `yaml:"navigation_timeout"`
	RunTimeout        Duration `yaml:"run_timeout"`
	SettleWait        Duration `yaml:"settle_wait"`

	IncludeWarnings bool `yaml:"include_warnings"`
	IncludeNotices  bool `yaml:"include_notices"`
}

// ProviderConfig holds credentials and limits for one AI provider.
type ProviderConfig struct {
	APIKey            string   `yaml:"api_key,omitempty"`
	Model             string   `yaml:"model,omitempty"`
	BaseURL           string   `yaml:"base_url,omitempty"`
	Timeout           Duration `yaml:"timeout"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

// Credentialed reports whether the provider has an API key configured.
func (p ProviderConfig) Credentialed() bool {
	return p.APIKey != ""
}

// SuggestConfig controls the fix-suggestion chain.
type SuggestConfig struct {
	Primary   ProviderConfig `yaml:"primary"`
	Secondary ProviderConfig `yaml:"secondary"`

	// TemplatesPath points at a YAML file of rule templates that
	// extends the built-in set. Empty means built-ins only.
	TemplatesPath string `yaml:"templates_path,omitempty"`

	// WatchTemplates reloads the templates file when it changes.
	WatchTemplates bool `yaml:"watch_templates"`

	// PromptMaxContext caps the HTML context bytes embedded in prompts.
	PromptMaxContext int `yaml:"prompt_max_context"`
}

// ArchiveConfig controls page snapshot archiving.
type ArchiveConfig struct {
	S3      S3Config    `yaml:"s3"`
	Local   LocalConfig `yaml:"local"`
	Backend string      `yaml:"backend,omitempty"`
	Enabled bool        `yaml:"enabled"`
}

// S3Config locates the snapshot bucket.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
}

// LocalConfig locates the snapshot directory.
type LocalConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns a configuration with sensible defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ScanTimeout:     Duration(150 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Browser: BrowserConfig{
			Headless: true,
		},
		Engine: EngineConfig{
			NavigationTimeout: Duration(60 * time.Second),
			RunTimeout:        Duration(60 * time.Second),
			SettleWait:        Duration(500 * time.Millisecond),
			IncludeWarnings:   true,
			IncludeNotices:    true,
		},
		Suggest: SuggestConfig{
			Primary: ProviderConfig{
				Model:             "gemini-2.0-flash",
				Timeout:           Duration(30 * time.Second),
				RequestsPerMinute: 60,
			},
			Secondary: ProviderConfig{
				Model:             "gpt-4o-mini",
				Timeout:           Duration(30 * time.Second),
				RequestsPerMinute: 60,
			},
			PromptMaxContext: 2048,
		},
		Archive: ArchiveConfig{
			Backend: "local",
		},
	}
}

// Load reads, expands and parses a YAML configuration file.
// Environment references like ${SIGHTLINE_DB_URL} are expanded before
// parsing so secrets can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted source (config file)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate ensures the configuration is internally consistent. Sections
// only some commands need (database, providers) are checked by their
// consumers, not here.
func (c *Config) Validate() error {
	if c.Server.ScanTimeout.Std() <= 0 {
		return fmt.Errorf("server.scan_timeout must be positive")
	}
	if c.Engine.NavigationTimeout.Std() <= 0 {
		return fmt.Errorf("engine.navigation_timeout must be positive")
	}
	if c.Engine.RunTimeout.Std() <= 0 {
		return fmt.Errorf("engine.run_timeout must be positive")
	}
	if c.Engine.SettleWait.Std() < 0 {
		return fmt.Errorf("engine.settle_wait must not be negative")
	}
	if c.Suggest.PromptMaxContext <= 0 {
		return fmt.Errorf("suggest.prompt_max_context must be positive")
	}
	if c.Suggest.Primary.RequestsPerMinute < 0 || c.Suggest.Secondary.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative")
	}

	if c.Archive.Enabled {
		switch c.Archive.Backend {
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return fmt.Errorf("archive.s3.bucket is required when backend is s3")
			}
		case "local":
			if c.Archive.Local.Dir == "" {
				return fmt.Errorf("archive.local.dir is required when backend is local")
			}
		default:
			return fmt.Errorf("archive.backend must be s3 or local, got %q", c.Archive.Backend)
		}
	}

	return nil
}
