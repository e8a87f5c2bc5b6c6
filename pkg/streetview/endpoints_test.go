package streetview

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetgrab/pkg/capture"
)

func TestMetadataURL(t *testing.T) {
	raw := MetadataURL(DefaultBaseURL, 48.8584, 2.2945, 50, "outdoor", "KEY")

	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, MetadataEndpoint, u.Path)
	q := u.Query()
	assert.Equal(t, "48.8584,2.2945", q.Get("location"))
	assert.Equal(t, "50", q.Get("radius"))
	assert.Equal(t, "outdoor", q.Get("source"))
	assert.Equal(t, "KEY", q.Get("key"))
}

func TestMetadataURLOmitsEmptyOptionals(t *testing.T) {
	raw := MetadataURL(DefaultBaseURL, 1, 2, 0, "", "KEY")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.False(t, q.Has("radius"))
	assert.False(t, q.Has("source"))
}

func TestImageURL(t *testing.T) {
	raw := ImageURL(DefaultBaseURL, -33.8568, 151.2153, ImageParams{
		Logical: capture.Size{Width: 640, Height: 360},
		Scale:   2,
		FOV:     90,
		Pitch:   -5,
		Heading: 270,
		Radius:  50,
		Source:  "outdoor",
	}, "KEY")

	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, ImageEndpoint, u.Path)
	q := u.Query()
	assert.Equal(t, "-33.8568,151.2153", q.Get("location"))
	assert.Equal(t, "640x360", q.Get("size"))
	assert.Equal(t, "2", q.Get("scale"))
	assert.Equal(t, "90", q.Get("fov"))
	assert.Equal(t, "-5", q.Get("pitch"))
	assert.Equal(t, "270", q.Get("heading"))
	assert.Equal(t, "50", q.Get("radius"))
	assert.Equal(t, "outdoor", q.Get("source"))
}

func TestFormatLocationNoExponent(t *testing.T) {
	loc := formatLocation(0.0000001, -179.9999999)
	assert.False(t, strings.ContainsAny(loc, "eE"), "location must not use exponent notation: %s", loc)
}
