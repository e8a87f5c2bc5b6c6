package integration

import (
	"testing"
	"time"

	"streetgrab/pkg/config"
	"streetgrab/pkg/logger"
	"streetgrab/pkg/ratelimit"
	"streetgrab/pkg/retry"
	"streetgrab/pkg/streetview"
)

// TestHelper provides common test utilities
type TestHelper struct {
	t            *testing.T
	mockServer   *MockStreetViewServer
	tempDir      string
	cleanupFuncs []func()
}

// NewTestHelper creates a new test helper
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{
		t:            t,
		tempDir:      t.TempDir(),
		cleanupFuncs: []func(){},
	}
}

// SetupMockServer initializes the mock Street View server
func (h *TestHelper) SetupMockServer() *MockStreetViewServer {
	h.mockServer = NewMockStreetViewServer()
	h.AddCleanup(h.mockServer.Close)
	return h.mockServer
}

// GetTempDir returns the temporary directory for test files
func (h *TestHelper) GetTempDir() string {
	return h.tempDir
}

// AddCleanup adds a cleanup function to be called when the test ends
func (h *TestHelper) AddCleanup(fn func()) {
	h.cleanupFuncs = append(h.cleanupFuncs, fn)
}

// Cleanup runs all cleanup functions
func (h *TestHelper) Cleanup() {
	for i := len(h.cleanupFuncs) - 1; i >= 0; i-- {
		h.cleanupFuncs[i]()
	}
}

// CreateTestLogger creates a test logger
func (h *TestHelper) CreateTestLogger() logger.Logger {
	return logger.NewTestLogger()
}

// CreateTestConfig creates a configuration wired to the mock server
func (h *TestHelper) CreateTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.API.Key = "TESTKEY"
	cfg.API.Timeout = 5 * time.Second
	if h.mockServer != nil {
		cfg.API.BaseURL = h.mockServer.GetURL()
	}
	cfg.Output.Directory = h.tempDir
	cfg.Logging.Level = "error"
	return cfg
}

// CreateTestClient builds a Street View client against the mock server
func (h *TestHelper) CreateTestClient(cfg *config.Config, log logger.Logger) *streetview.Client {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.RateLimit.MaxRetries
	retryCfg.Backoff = &retry.ConstantBackoff{Delay: time.Millisecond}
	retryCfg.Logger = log

	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)

	return streetview.NewClient(cfg.API.Key, cfg.API.Timeout, log,
		streetview.WithBaseURL(cfg.API.BaseURL),
		streetview.WithLimiter(limiter),
		streetview.WithRetry(retryCfg),
	)
}
