package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Capture modes
const (
	ModeAPI     = "api"
	ModeBrowser = "browser"
)

// Fit policies for post-processing
const (
	FitCover   = "cover"
	FitContain = "contain"
	FitFill    = "fill"
	FitInside  = "inside"
	FitOutside = "outside"
)

// Config holds all configuration options for the panorama grabber
type Config struct {
	// Upstream API settings
	API APIConfig `yaml:"api" json:"api"`

	// Default capture parameters, overridable per coordinate
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// Browser capture settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds Street View Static API settings
type APIConfig struct {
	Key      string        `yaml:"key" json:"key"`
	EmbedKey string        `yaml:"embed_key" json:"embed_key"`
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// CaptureConfig holds the global capture defaults
type CaptureConfig struct {
	Mode    string  `yaml:"mode" json:"mode"`
	Width   int     `yaml:"width" json:"width"`
	Height  int     `yaml:"height" json:"height"`
	Scale   float64 `yaml:"scale" json:"scale"` // 0 means no hint
	Heading float64 `yaml:"heading" json:"heading"`
	Pitch   float64 `yaml:"pitch" json:"pitch"`
	FOV     float64 `yaml:"fov" json:"fov"`
	Radius  int     `yaml:"radius" json:"radius"`
	Source  string  `yaml:"source" json:"source"`
	Fit     string  `yaml:"fit" json:"fit"`
	Count   int     `yaml:"count" json:"count"`
}

// BrowserConfig holds rendered-capture settings
type BrowserConfig struct {
	NavTimeout   time.Duration `yaml:"nav_timeout" json:"nav_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay" json:"settle_delay"`
	ReadyTimeout time.Duration `yaml:"ready_timeout" json:"ready_timeout"`
	Headless     bool          `yaml:"headless" json:"headless"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory         string `yaml:"directory" json:"directory"`
	Prefix            string `yaml:"prefix" json:"prefix"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
	WriteManifest     bool   `yaml:"write_manifest" json:"write_manifest"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://maps.googleapis.com",
			Timeout: 30 * time.Second,
		},
		Capture: CaptureConfig{
			Mode:    ModeAPI,
			Width:   640,
			Height:  640,
			Scale:   0,
			Heading: 0,
			Pitch:   0,
			FOV:     90,
			Radius:  50,
			Source:  "outdoor",
			Fit:     FitCover,
			Count:   1,
		},
		Browser: BrowserConfig{
			NavTimeout:   60 * time.Second,
			SettleDelay:  5 * time.Second,
			ReadyTimeout: 10 * time.Second,
			Headless:     true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			MaxRetries:        3,
			RetryDelay:        2 * time.Second,
		},
		Output: OutputConfig{
			Directory:     "./panoramas",
			Prefix:        "pano_",
			WriteManifest: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration: defaults, then config file,
// then environment, then command-line flags, in increasing precedence.
func Load(path string, flags map[string]interface{}) (*Config, error) {
	// Best-effort .env loading; absence is not an error
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.applyFlags(flags)

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".streetgrab.yaml",
		".streetgrab.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "streetgrab", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".streetgrab.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if key := os.Getenv("STREETGRAB_API_KEY"); key != "" {
		c.API.Key = key
	} else if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		c.API.Key = key
	}
	if key := os.Getenv("STREETGRAB_EMBED_KEY"); key != "" {
		c.API.EmbedKey = key
	}
	if base := os.Getenv("STREETGRAB_API_BASE_URL"); base != "" {
		c.API.BaseURL = base
	}
	if mode := os.Getenv("STREETGRAB_MODE"); mode != "" {
		c.Capture.Mode = strings.ToLower(mode)
	}
	if outputDir := os.Getenv("STREETGRAB_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if rpm := os.Getenv("STREETGRAB_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if logLevel := os.Getenv("STREETGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// applyFlags merges command-line flag overrides into the config
func (c *Config) applyFlags(flags map[string]interface{}) {
	for name, value := range flags {
		switch name {
		case "mode":
			c.Capture.Mode = strings.ToLower(value.(string))
		case "width":
			c.Capture.Width = value.(int)
		case "height":
			c.Capture.Height = value.(int)
		case "scale":
			c.Capture.Scale = value.(float64)
		case "heading":
			c.Capture.Heading = value.(float64)
		case "pitch":
			c.Capture.Pitch = value.(float64)
		case "fov":
			c.Capture.FOV = value.(float64)
		case "radius":
			c.Capture.Radius = value.(int)
		case "source":
			c.Capture.Source = value.(string)
		case "fit":
			c.Capture.Fit = strings.ToLower(value.(string))
		case "count":
			c.Capture.Count = value.(int)
		case "out":
			c.Output.Directory = value.(string)
		case "prefix":
			c.Output.Prefix = value.(string)
		case "rate-limit":
			c.RateLimit.RequestsPerMinute = value.(int)
		case "api-key":
			c.API.Key = value.(string)
		case "log-level":
			c.Logging.Level = value.(string)
		}
	}
}

// Validate checks if the configuration is valid. Validation failures are
// fatal and must be reported before any acquisition attempt begins.
func (c *Config) Validate() error {
	var errs []error

	switch c.Capture.Mode {
	case ModeAPI, ModeBrowser:
	default:
		errs = append(errs, fmt.Errorf("unknown capture mode %q", c.Capture.Mode))
	}

	switch c.Capture.Fit {
	case FitCover, FitContain, FitFill, FitInside, FitOutside:
	default:
		errs = append(errs, fmt.Errorf("unknown fit policy %q", c.Capture.Fit))
	}

	if c.Capture.Count <= 0 {
		errs = append(errs, errors.New("count must be positive"))
	}
	if c.Capture.Width < 0 || c.Capture.Height < 0 {
		errs = append(errs, errors.New("width and height must not be negative"))
	}
	if c.Capture.FOV <= 0 || c.Capture.FOV > 120 {
		errs = append(errs, errors.New("fov must be in (0, 120]"))
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if len(errs) > 0 {
		var msgs []string
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	return nil
}
