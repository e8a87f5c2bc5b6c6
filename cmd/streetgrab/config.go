package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"streetgrab/pkg/config"
	"streetgrab/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage streetgrab configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'streetgrab.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

Sensitive values like API keys will be masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "streetgrab.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# streetgrab configuration file
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with STREETGRAB_
# For example: STREETGRAB_API_KEY, STREETGRAB_OUTPUT_DIR

# Street View Static API settings
api:
  # API key (required for api mode)
  # Prefer 'streetgrab auth login' over storing the key in this file
  key: ""

  # Separate key for the Maps Embed API used by the browser backend
  # Leave empty to reuse the API key
  embed_key: ""

  # Upstream base URL, only changed for testing
  base_url: "https://maps.googleapis.com"

  # Request timeout
  timeout: 30s

# Default capture parameters, overridable per coordinate
capture:
  # Capture backend: api or browser
  mode: "api"

  # Requested output size in pixels
  width: 640
  height: 640

  # Scale hint: 0 selects automatically, 1 forces unscaled, any other
  # value selects high-density capture
  scale: 0

  # Camera orientation
  heading: 0
  pitch: 0

  # Horizontal field of view in degrees, range (0, 120]
  fov: 90

  # Imagery search radius in meters
  radius: 50

  # Imagery source: default or outdoor
  source: "outdoor"

  # Fit policy when the captured image size differs from the request:
  # cover, contain, fill, inside, outside
  fit: "cover"

  # Number of panoramas to capture per run
  count: 1

# Browser backend settings
browser:
  # Navigation timeout per attempt
  nav_timeout: 60s

  # Delay after navigation before the screenshot
  settle_delay: 5s

  # How long to wait for the viewer canvas
  ready_timeout: 10s

  # Run the browser headless
  headless: true

# Rate limiting configuration
rate_limit:
  # Metadata requests per minute
  requests_per_minute: 60

  # Maximum number of retry attempts for transport failures
  max_retries: 3

  # Initial backoff before retrying
  retry_delay: 2s

# Output settings
output:
  # Directory for captured panoramas
  directory: "./panoramas"

  # File name prefix for panoramas
  prefix: "pano_"

  # Overwrite files already present in the output directory
  overwrite_existing: false

  # Write a manifest.json run record next to the panoramas
  write_manifest: true

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'streetgrab auth login' to store your API key")
	fmt.Println("2. Run 'streetgrab config validate' to check the configuration")
	fmt.Println("3. Start capturing with 'streetgrab fetch <coordinates-file>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	if displayCfg.API.Key != "" {
		displayCfg.API.Key = maskKey(displayCfg.API.Key)
	}
	if displayCfg.API.EmbedKey != "" {
		displayCfg.API.EmbedKey = maskKey(displayCfg.API.EmbedKey)
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (STREETGRAB_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"streetgrab.yaml",
			"streetgrab.yml",
			".streetgrab.yaml",
			".streetgrab.yml",
			filepath.Join(os.Getenv("HOME"), ".streetgrab.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "streetgrab", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	if err := cfg.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if cfg.Capture.Mode == config.ModeAPI && cfg.API.Key == "" {
		warnings = append(warnings, "API key not configured, run 'streetgrab auth login'")
	}

	// Check paths
	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if cfg.RateLimit.RequestsPerMinute < 1 || cfg.RateLimit.RequestsPerMinute > 120 {
		errors = append(errors, "requests_per_minute must be between 1 and 120")
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Capture mode: %s\n", cfg.Capture.Mode)
	fmt.Printf("  Requested size: %dx%d\n", cfg.Capture.Width, cfg.Capture.Height)
	fmt.Printf("  Fit policy: %s\n", cfg.Capture.Fit)
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
