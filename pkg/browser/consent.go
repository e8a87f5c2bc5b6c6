package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"streetgrab/pkg/logger"
)

// consentProbe is one attempt at dismissing the cookie/consent overlay.
// Upstream markup and language vary, so each probe is independent and
// best-effort: its failure is swallowed and the next probe runs.
type consentProbe struct {
	desc     string
	selector string
	opts     chromedp.QueryOption
}

// consentProbes is the fixed ordered list of dismissal candidates.
// Order matters: the stable button id goes first, language variants after.
var consentProbes = []consentProbe{
	{desc: "accept button id", selector: `#L2AGLb`, opts: chromedp.ByID},
	{desc: "consent form button", selector: `form[action*="consent"] button`, opts: chromedp.ByQuery},
	{desc: "accept all (en)", selector: `//button[contains(., "Accept all")]`, opts: chromedp.BySearch},
	{desc: "agree (en)", selector: `//button[contains(., "I agree")]`, opts: chromedp.BySearch},
	{desc: "accept all (de)", selector: `//button[contains(., "Alle akzeptieren")]`, opts: chromedp.BySearch},
	{desc: "accept all (fr)", selector: `//button[contains(., "Tout accepter")]`, opts: chromedp.BySearch},
	{desc: "accept all (es)", selector: `//button[contains(., "Aceptar todo")]`, opts: chromedp.BySearch},
	{desc: "accept all (nl)", selector: `//button[contains(., "Alles accepteren")]`, opts: chromedp.BySearch},
	{desc: "generic aria label", selector: `button[aria-label*="Accept"]`, opts: chromedp.ByQuery},
}

// probeTimeout bounds each individual probe, not the whole sweep
const probeTimeout = 2 * time.Second

// dismissConsent walks the probe list and stops at the first successful
// click. Never returns an error: a page without a consent overlay is the
// common case.
func dismissConsent(ctx context.Context, log logger.Logger) {
	for _, probe := range consentProbes {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := chromedp.Run(probeCtx, chromedp.Click(probe.selector, probe.opts))
		cancel()

		if err == nil {
			log.WithField("probe", probe.desc).Debug("consent overlay dismissed")
			return
		}
		if ctx.Err() != nil {
			return
		}
	}

	log.Debug("no consent overlay matched, continuing")
}
