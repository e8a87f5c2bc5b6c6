package browser

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetgrab/pkg/capture"
	"streetgrab/pkg/config"
	"streetgrab/pkg/geo"
)

func TestEmbedURL(t *testing.T) {
	raw := EmbedURL("EMBEDKEY", 48.8584, 2.2945, 120, -5, 90)

	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "www.google.com", u.Host)
	assert.Equal(t, "/maps/embed/v1/streetview", u.Path)
	q := u.Query()
	assert.Equal(t, "EMBEDKEY", q.Get("key"))
	assert.Equal(t, "48.8584,2.2945", q.Get("location"))
	assert.Equal(t, "120", q.Get("heading"))
	assert.Equal(t, "-5", q.Get("pitch"))
	assert.Equal(t, "90", q.Get("fov"))
}

func TestPanoURL(t *testing.T) {
	raw := PanoURL(51.5007292, -0.1246254, 270, 10, 75)

	assert.Contains(t, raw, "https://www.google.com/maps/@51.5007292,-0.1246254,3a")
	assert.Contains(t, raw, "75y")
	assert.Contains(t, raw, "270h")
	// tilt is 90 at the horizon plus the pitch offset
	assert.Contains(t, raw, "100t")
	assert.Contains(t, raw, "!3m1!1e1")
}

func TestTargetSelection(t *testing.T) {
	coord := geo.Coordinate{Lat: 1, Lng: 2}
	params := capture.Params{Heading: 0, Pitch: 0, FOV: 90}

	withKey := NewCapturer("EMBEDKEY", DefaultBrowserConfig(), nil)
	target, direct := withKey.target(coord, params)
	assert.True(t, direct)
	assert.Contains(t, target, "/maps/embed/v1/streetview")

	withoutKey := NewCapturer("", DefaultBrowserConfig(), nil)
	target, direct = withoutKey.target(coord, params)
	assert.False(t, direct)
	assert.Contains(t, target, "/maps/@")
}

func TestConsentProbesOrdering(t *testing.T) {
	// The stable button id must be probed before the language variants,
	// and every probe needs a selector.
	require.NotEmpty(t, consentProbes)
	assert.Equal(t, "#L2AGLb", consentProbes[0].selector)
	for _, probe := range consentProbes {
		assert.NotEmpty(t, probe.selector, "probe %q missing selector", probe.desc)
		assert.NotEmpty(t, probe.desc)
	}
}

func TestNameAndConfig(t *testing.T) {
	c := NewCapturer("", config.BrowserConfig{Headless: true}, nil)
	assert.Equal(t, "browser", c.Name())
}
