package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetgrab/pkg/config"
	"streetgrab/pkg/geo"
)

func testCaptureConfig() *config.CaptureConfig {
	return &config.CaptureConfig{
		Mode:    config.ModeAPI,
		Width:   1024,
		Height:  768,
		Scale:   0,
		Heading: 10,
		Pitch:   5,
		FOV:     90,
		Radius:  50,
		Source:  "outdoor",
		Fit:     config.FitCover,
	}
}

func TestResolveParamsDefaults(t *testing.T) {
	p := ResolveParams(testCaptureConfig(), geo.Coordinate{Lat: 1, Lng: 2})

	assert.Equal(t, 10.0, p.Heading)
	assert.Equal(t, 5.0, p.Pitch)
	assert.Equal(t, 90.0, p.FOV)
	assert.Equal(t, 50, p.Radius)
	assert.Equal(t, "outdoor", p.Source)
	assert.Equal(t, Size{Width: 1024, Height: 768}, p.Requested)
	assert.Nil(t, p.ScaleHint)
	assert.Equal(t, config.FitCover, p.Fit)
}

func TestResolveParamsOverrides(t *testing.T) {
	heading, pitch, fov := 270.0, -10.0, 120.0
	w, h := 1920, 1080

	p := ResolveParams(testCaptureConfig(), geo.Coordinate{
		Lat:     1,
		Lng:     2,
		Heading: &heading,
		Pitch:   &pitch,
		FOV:     &fov,
		Width:   &w,
		Height:  &h,
	})

	assert.Equal(t, 270.0, p.Heading)
	assert.Equal(t, -10.0, p.Pitch)
	assert.Equal(t, 120.0, p.FOV)
	assert.Equal(t, Size{Width: 1920, Height: 1080}, p.Requested)
}

func TestResolveParamsScaleHint(t *testing.T) {
	cfg := testCaptureConfig()
	cfg.Scale = 1

	p := ResolveParams(cfg, geo.Coordinate{Lat: 1, Lng: 2})
	require.NotNil(t, p.ScaleHint)
	assert.Equal(t, 1.0, *p.ScaleHint)
}

func TestSizeIsPositive(t *testing.T) {
	assert.True(t, Size{Width: 1, Height: 1}.IsPositive())
	assert.False(t, Size{Width: 0, Height: 100}.IsPositive())
	assert.False(t, Size{Width: 100, Height: -1}.IsPositive())
}
