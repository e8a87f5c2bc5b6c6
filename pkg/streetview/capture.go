package streetview

import (
	"context"

	"streetgrab/pkg/capture"
	"streetgrab/pkg/errors"
	"streetgrab/pkg/geo"
	"streetgrab/pkg/logger"
)

// Capturer acquires one panorama through the Static API. It implements
// capture.Strategy. The metadata check runs first so an unavailable
// location never triggers a billed image request.
type Capturer struct {
	client *Client
	logger logger.Logger
}

// NewCapturer creates the remote-API capture strategy
func NewCapturer(client *Client, log logger.Logger) *Capturer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Capturer{client: client, logger: log}
}

// Name identifies the backend in logs and the run manifest
func (c *Capturer) Name() string { return "api" }

// Capture fetches the panorama for one coordinate. The returned bytes
// are exactly what the upstream produced; resizing to the caller's
// requested dimensions is the post-processor's job.
func (c *Capturer) Capture(ctx context.Context, coord geo.Coordinate, params capture.Params) ([]byte, error) {
	meta, err := c.client.Metadata(ctx, coord.Lat, coord.Lng, params.Radius, params.Source)
	if err != nil {
		return nil, err
	}

	if !meta.Available() {
		return nil, errors.Newf(errors.ErrorTypeUnavailable,
			"no imagery at %v,%v (status %s)", coord.Lat, coord.Lng, meta.Status)
	}

	scale, logical := capture.Resolve(params.Requested, params.ScaleHint)

	c.logger.DebugWithFields("fetching panorama", map[string]interface{}{
		"lat":            coord.Lat,
		"lng":            coord.Lng,
		"scale":          scale,
		"logical_width":  logical.Width,
		"logical_height": logical.Height,
	})

	return c.client.Image(ctx, coord.Lat, coord.Lng, ImageParams{
		Logical: logical,
		Scale:   scale,
		FOV:     params.FOV,
		Pitch:   params.Pitch,
		Heading: params.Heading,
		Radius:  params.Radius,
		Source:  params.Source,
	})
}
