package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"streetgrab/pkg/auth"
	"streetgrab/pkg/browser"
	"streetgrab/pkg/capture"
	"streetgrab/pkg/config"
	"streetgrab/pkg/geo"
	"streetgrab/pkg/logger"
	"streetgrab/pkg/manifest"
	"streetgrab/pkg/ratelimit"
	"streetgrab/pkg/retry"
	"streetgrab/pkg/sampler"
	"streetgrab/pkg/storage"
	"streetgrab/pkg/streetview"
	"streetgrab/pkg/ui"
)

var (
	// Fetch command flags
	fetchCount   int
	fetchOut     string
	fetchMode    string
	fetchWidth   int
	fetchHeight  int
	fetchScale   float64
	fetchHeading float64
	fetchPitch   float64
	fetchFOV     float64
	fetchRadius  int
	fetchSource  string
	fetchFit     string
	fetchPrefix  string
	fetchAPIKey  string
	fetchLimit   int
	profileName  string
	overwrite    bool
	noManifest   bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <coordinates-file>",
	Short: "Capture panoramas for randomly sampled coordinates",
	Long: `Capture panoramas for coordinates sampled from a candidate file.

The file holds the candidate pool as either a JSON array of objects with
"lat" and "lng" fields or a CSV with lat,lng columns. Candidates are
visited in a uniformly random order without replacement until the target
count is reached or the pool runs out. Failed candidates are skipped and
the run moves on to the next one.

The api mode needs a Street View Static API key, provided through:
  - Stored credentials (use 'streetgrab auth login' to store)
  - The STREETGRAB_API_KEY or GOOGLE_MAPS_API_KEY environment variable
  - The --api-key flag or configuration file`,
	Example: `  # Capture one panorama from a candidate pool
  streetgrab fetch coords.json

  # Capture 25 panoramas at 1280x720 into a specific directory
  streetgrab fetch coords.csv --count 25 --width 1280 --height 720 --out ./panos

  # Use the headless browser backend with a longer field of view
  streetgrab fetch coords.json --mode browser --fov 110

  # Letterbox instead of cropping when the upstream size differs
  streetgrab fetch coords.json --fit contain`,
	Args: cobra.ExactArgs(1),
	Run:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVarP(&fetchCount, "count", "n", 1, "number of panoramas to capture")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "output directory for panoramas")
	fetchCmd.Flags().StringVarP(&fetchMode, "mode", "m", "", "capture backend (api or browser)")
	fetchCmd.Flags().IntVar(&fetchWidth, "width", 0, "requested width in pixels")
	fetchCmd.Flags().IntVar(&fetchHeight, "height", 0, "requested height in pixels")
	fetchCmd.Flags().Float64Var(&fetchScale, "scale", 0, "scale hint (0 selects automatically)")
	fetchCmd.Flags().Float64Var(&fetchHeading, "heading", 0, "camera heading in degrees")
	fetchCmd.Flags().Float64Var(&fetchPitch, "pitch", 0, "camera pitch in degrees")
	fetchCmd.Flags().Float64Var(&fetchFOV, "fov", 0, "horizontal field of view in degrees")
	fetchCmd.Flags().IntVar(&fetchRadius, "radius", 0, "imagery search radius in meters")
	fetchCmd.Flags().StringVar(&fetchSource, "source", "", "imagery source (default or outdoor)")
	fetchCmd.Flags().StringVar(&fetchFit, "fit", "", "fit policy (cover, contain, fill, inside, outside)")
	fetchCmd.Flags().StringVar(&fetchPrefix, "prefix", "", "output file name prefix")
	fetchCmd.Flags().StringVar(&fetchAPIKey, "api-key", "", "Street View Static API key")
	fetchCmd.Flags().IntVar(&fetchLimit, "rate-limit", 0, "metadata requests per minute")
	fetchCmd.Flags().StringVarP(&profileName, "profile", "p", "", "use a specific stored credential profile")
	fetchCmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing panoramas")
	fetchCmd.Flags().BoolVar(&noManifest, "no-manifest", false, "skip writing the run manifest")
}

func runFetch(cmd *cobra.Command, args []string) {
	path := strings.TrimSpace(args[0])

	// Build flags map from command line
	flags := make(map[string]interface{})
	if fetchCount != 1 {
		flags["count"] = fetchCount
	}
	if fetchOut != "" {
		flags["out"] = fetchOut
	}
	if fetchMode != "" {
		flags["mode"] = fetchMode
	}
	if fetchWidth != 0 {
		flags["width"] = fetchWidth
	}
	if fetchHeight != 0 {
		flags["height"] = fetchHeight
	}
	if fetchScale != 0 {
		flags["scale"] = fetchScale
	}
	if cmd.Flags().Changed("heading") {
		flags["heading"] = fetchHeading
	}
	if cmd.Flags().Changed("pitch") {
		flags["pitch"] = fetchPitch
	}
	if fetchFOV != 0 {
		flags["fov"] = fetchFOV
	}
	if fetchRadius != 0 {
		flags["radius"] = fetchRadius
	}
	if fetchSource != "" {
		flags["source"] = fetchSource
	}
	if fetchFit != "" {
		flags["fit"] = fetchFit
	}
	if fetchPrefix != "" {
		flags["prefix"] = fetchPrefix
	}
	if fetchAPIKey != "" {
		flags["api-key"] = fetchAPIKey
	}
	if fetchLimit != 0 {
		flags["rate-limit"] = fetchLimit
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if overwrite {
		cfg.Output.OverwriteExisting = true
	}
	if noManifest {
		cfg.Output.WriteManifest = false
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Invalid configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("streetgrab starting")

	// Resolve the API key through the credential chain when the config
	// does not already carry one
	if cfg.API.Key == "" || profileName != "" {
		if creds := resolveCredentials(profileName); creds != nil {
			cfg.API.Key = creds.APIKey
			if cfg.API.EmbedKey == "" {
				cfg.API.EmbedKey = creds.EmbedKey
			}
			logger.WithField("profile", creds.Name).Info("Using stored credentials")
		}
	}

	if cfg.Capture.Mode == config.ModeAPI && cfg.API.Key == "" {
		logger.GetLogger().Error("Missing API key")
		ui.PrintError("Missing Street View API key", "")
		fmt.Println("\nTo store a key securely, run:")
		fmt.Println("  streetgrab auth login")
		fmt.Println("\nYou can also set an environment variable:")
		fmt.Println("  export STREETGRAB_API_KEY=your_api_key")
		os.Exit(1)
	}

	// Load the candidate pool
	coords, err := geo.LoadFile(path)
	if err != nil {
		ui.PrintError("Failed to load coordinates", err.Error())
		os.Exit(1)
	}
	ui.PrintInfo("Candidate pool", fmt.Sprintf("%d coordinates", len(coords)))
	ui.PrintInfo("Target", fmt.Sprintf("%d panoramas via %s backend", cfg.Capture.Count, cfg.Capture.Mode))

	// Output sink
	store, err := storage.NewManager(cfg.Output.Directory, cfg.Output.OverwriteExisting)
	if err != nil {
		ui.PrintError("Failed to prepare output directory", err.Error())
		os.Exit(1)
	}

	strategy := buildStrategy(cfg)

	tracker := ui.NewStatusTracker(cfg.Capture.Count)
	opts := []sampler.Option{
		sampler.WithProgress(func(captured bool) {
			if captured {
				tracker.IncrementCaptured()
			} else {
				tracker.IncrementSkipped()
			}
			tracker.PrintProgress()
		}),
	}

	// A populated output directory without --overwrite would collide on
	// the first write, so later runs continue the numbering instead
	if base := store.NextIndex(cfg.Output.Prefix); base > 0 && !cfg.Output.OverwriteExisting {
		logger.WithField("base", base).Info("Output directory already populated, continuing numbering")
		prefix := cfg.Output.Prefix
		opts = append(opts, sampler.WithNamer(func(index int) string {
			return fmt.Sprintf("%s%d", prefix, base+index)
		}))
	}

	s := sampler.New(strategy, &cfg.Capture, store, cfg.Output.Prefix, opts...)

	startedAt := time.Now()
	outputs, runErr := s.Run(cmd.Context(), coords, cfg.Capture.Count)
	finishedAt := time.Now()
	tracker.FinishProgress()

	// A shortfall still leaves the captured panoramas on disk, so record
	// and report before deciding the exit code
	var shortfall *sampler.ErrShortfall
	isShortfall := stderrors.As(runErr, &shortfall)

	if cfg.Output.WriteManifest {
		manifestPath, err := writeManifest(cfg, strategy.Name(), outputs, isShortfall, startedAt, finishedAt)
		if err != nil {
			logger.WithError(err).Warn("Failed to write manifest")
			ui.PrintWarning("Failed to write manifest", err.Error())
		} else {
			ui.PrintInfo("Manifest", manifestPath)
		}
	}

	for _, out := range outputs {
		logger.WithFields(map[string]interface{}{
			"identity": out.Identity,
			"path":     out.Path,
		}).Debug("panorama written")
	}

	switch {
	case runErr == nil:
		ui.PrintSuccess(fmt.Sprintf("Captured %d/%d panoramas to %s", len(outputs), cfg.Capture.Count, store.Dir()))
	case isShortfall:
		logger.WithFields(map[string]interface{}{
			"got":  shortfall.Got,
			"want": shortfall.Want,
		}).Warn("candidate pool exhausted before reaching target")
		ui.PrintWarning("Pool exhausted", fmt.Sprintf("captured %d of %d requested panoramas", shortfall.Got, shortfall.Want))
		os.Exit(1)
	default:
		logger.WithError(runErr).Error("Acquisition failed")
		ui.PrintError("Acquisition failed", runErr.Error())
		os.Exit(1)
	}
}

// buildStrategy wires the capture backend selected by the configuration
func buildStrategy(cfg *config.Config) capture.Strategy {
	log := logger.GetLogger()

	if cfg.Capture.Mode == config.ModeBrowser {
		return browser.NewCapturer(cfg.API.EmbedKey, cfg.Browser, log)
	}

	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)

	retryCfg := retry.DefaultConfig()
	if cfg.RateLimit.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.RateLimit.MaxRetries
	}
	if cfg.RateLimit.RetryDelay > 0 {
		retryCfg.Backoff = &retry.ExponentialBackoff{
			BaseDelay:    cfg.RateLimit.RetryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		}
	}

	client := streetview.NewClient(cfg.API.Key, cfg.API.Timeout, log,
		streetview.WithBaseURL(cfg.API.BaseURL),
		streetview.WithLimiter(limiter),
		streetview.WithRetry(retryCfg),
	)
	return streetview.NewCapturer(client, log)
}

// resolveCredentials looks up stored credentials, returning nil when none
// are available so the caller can fall back to config and flags
func resolveCredentials(name string) *auth.Credentials {
	manager, err := auth.NewManager()
	if err != nil {
		logger.WithError(err).Debug("credential manager unavailable")
		return nil
	}

	creds, err := manager.Retrieve(name)
	if err != nil {
		if name != "" {
			ui.PrintError("Profile not found", name)
			os.Exit(1)
		}
		return nil
	}
	return creds
}

func writeManifest(cfg *config.Config, backend string, outputs []sampler.Output, shortfall bool, startedAt, finishedAt time.Time) (string, error) {
	entries := make([]manifest.Entry, 0, len(outputs))
	for _, out := range outputs {
		entries = append(entries, manifest.Entry{
			Identity: out.Identity,
			File:     out.Path,
			Lat:      out.Coordinate.Lat,
			Lng:      out.Coordinate.Lng,
			Bytes:    out.Bytes,
		})
	}

	m := &manifest.Manifest{
		Backend:    backend,
		Requested:  cfg.Capture.Count,
		Produced:   len(outputs),
		Shortfall:  shortfall,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Entries:    entries,
	}

	mgr := manifest.NewManager(cfg.Output.Directory)
	if err := mgr.Write(m); err != nil {
		return "", err
	}
	return mgr.Path(), nil
}
