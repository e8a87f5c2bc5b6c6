// Package capture defines the parameters and strategy contract shared by
// the two acquisition backends.
package capture

import (
	"streetgrab/pkg/config"
	"streetgrab/pkg/geo"
)

// Size is a pixel dimension pair. It is used both for the caller's
// requested output size and for the upstream API's logical size.
type Size struct {
	Width  int
	Height int
}

// IsPositive reports whether both dimensions are usable
func (s Size) IsPositive() bool {
	return s.Width > 0 && s.Height > 0
}

// Params is the resolved configuration for one acquisition attempt.
// It merges the global capture defaults with the per-coordinate
// overrides and is never mutated after construction.
type Params struct {
	Heading   float64
	Pitch     float64
	FOV       float64
	Radius    int
	Source    string
	Requested Size
	ScaleHint *float64
	Fit       string
}

// ResolveParams builds a fresh Params for one candidate, applying the
// coordinate's overrides on top of the configured defaults. A configured
// scale of zero means no hint.
func ResolveParams(cfg *config.CaptureConfig, coord geo.Coordinate) Params {
	p := Params{
		Heading:   cfg.Heading,
		Pitch:     cfg.Pitch,
		FOV:       cfg.FOV,
		Radius:    cfg.Radius,
		Source:    cfg.Source,
		Requested: Size{Width: cfg.Width, Height: cfg.Height},
		Fit:       cfg.Fit,
	}

	if cfg.Scale != 0 {
		hint := cfg.Scale
		p.ScaleHint = &hint
	}

	if coord.Heading != nil {
		p.Heading = *coord.Heading
	}
	if coord.Pitch != nil {
		p.Pitch = *coord.Pitch
	}
	if coord.FOV != nil {
		p.FOV = *coord.FOV
	}
	if coord.Width != nil {
		p.Requested.Width = *coord.Width
	}
	if coord.Height != nil {
		p.Requested.Height = *coord.Height
	}

	return p
}
