// Package browser implements the rendered capture backend: a headless
// Chrome tab navigates to the panorama viewer and a single JPEG still of
// the viewport is taken.
package browser

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"streetgrab/pkg/capture"
	"streetgrab/pkg/config"
	"streetgrab/pkg/errors"
	"streetgrab/pkg/geo"
	"streetgrab/pkg/logger"
)

// jpegQuality is the CDP screenshot encode quality
const jpegQuality = 90

// Capturer renders the panorama viewer in a headless browser and
// screenshots it. It implements capture.Strategy. Each attempt gets its
// own browser context, torn down on every exit path.
type Capturer struct {
	embedKey string
	cfg      config.BrowserConfig
	logger   logger.Logger
}

// NewCapturer creates the rendered capture strategy. An empty embedKey
// selects the interactive map path with consent handling.
func NewCapturer(embedKey string, cfg config.BrowserConfig, log logger.Logger) *Capturer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Capturer{embedKey: embedKey, cfg: cfg, logger: log}
}

// Name identifies the backend in logs and the run manifest
func (c *Capturer) Name() string { return "browser" }

// Capture navigates to the viewer and returns a JPEG of the viewport.
// The viewport matches the requested output pixels at 1:1 device scale,
// so no client-side resize is needed when the fit already matches.
func (c *Capturer) Capture(ctx context.Context, coord geo.Coordinate, params capture.Params) ([]byte, error) {
	target, direct := c.target(coord, params)

	width, height := params.Requested.Width, params.Requested.Height
	if width <= 0 || height <= 0 {
		width, height = capture.MaxLogicalDimension, capture.MaxLogicalDimension
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, c.cfg.NavTimeout)
	defer cancelRun()

	c.logger.DebugWithFields("navigating to viewer", map[string]interface{}{
		"lat":    coord.Lat,
		"lng":    coord.Lng,
		"direct": direct,
		"width":  width,
		"height": height,
	})

	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(width), int64(height), chromedp.EmulateScale(1)),
		chromedp.Navigate(target),
	)
	if err != nil {
		return nil, c.classify(err, "navigation failed")
	}

	if !direct {
		// The interactive map view has no documented ready signal. Dismiss
		// the consent dialog if one appears, give the renderer a fixed
		// settle delay, then probe readiness but capture regardless.
		dismissConsent(runCtx, c.logger)
	}

	if err := chromedp.Run(runCtx, chromedp.Sleep(c.cfg.SettleDelay)); err != nil {
		return nil, c.classify(err, "settle delay interrupted")
	}

	if !direct {
		c.waitForViewer(runCtx)
	}

	var shot []byte
	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var shotErr error
		shot, shotErr = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(jpegQuality).
			Do(ctx)
		return shotErr
	}))
	if err != nil {
		return nil, c.classify(err, "screenshot failed")
	}

	return shot, nil
}

// target picks the navigation URL. direct means the embed viewer, which
// needs no consent handling or readiness probing.
func (c *Capturer) target(coord geo.Coordinate, params capture.Params) (url string, direct bool) {
	if c.embedKey != "" {
		return EmbedURL(c.embedKey, coord.Lat, coord.Lng, params.Heading, params.Pitch, params.FOV), true
	}
	return PanoURL(coord.Lat, coord.Lng, params.Heading, params.Pitch, params.FOV), false
}

// waitForViewer waits for the panorama canvas within a bounded timeout.
// Detection failure is tolerated; the settle delay is the real readiness
// guarantee.
func (c *Capturer) waitForViewer(ctx context.Context) {
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ReadyTimeout)
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitReady(`canvas`, chromedp.ByQuery)); err != nil {
		c.logger.WithError(err).Debug("viewer readiness probe timed out, capturing anyway")
	}
}

// classify maps chromedp failures onto the pipeline taxonomy: deadline
// expiry is a render timeout, anything else a transport failure.
func (c *Capturer) classify(err error, msg string) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Newf(errors.ErrorTypeRenderTimeout, "%s: %v", msg, err)
	}
	return errors.Newf(errors.ErrorTypeTransport, "%s: %v", msg, err)
}

func (c *Capturer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-gpu", false),
	)
	return opts
}

// DefaultBrowserConfig mirrors the config defaults for callers that
// construct the capturer directly
func DefaultBrowserConfig() config.BrowserConfig {
	return config.BrowserConfig{
		NavTimeout:   60 * time.Second,
		SettleDelay:  5 * time.Second,
		ReadyTimeout: 10 * time.Second,
		Headless:     true,
	}
}
