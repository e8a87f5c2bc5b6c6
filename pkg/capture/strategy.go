package capture

import (
	"context"

	"streetgrab/pkg/geo"
)

// Strategy produces raw image bytes for one coordinate, or fails.
// Exactly two implementations exist: the Street View Static API fetch
// and the rendered-browser screenshot. The implementation is selected
// by run-time configuration.
type Strategy interface {
	Capture(ctx context.Context, coord geo.Coordinate, params Params) ([]byte, error)

	// Name identifies the backend in logs and the run manifest
	Name() string
}
