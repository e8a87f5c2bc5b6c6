package geo

import (
	"streetgrab/pkg/errors"
)

// Coordinate is one candidate location for an acquisition run.
// Optional fields override the global capture defaults for this
// coordinate only; nil means "use the default". Coordinates are
// immutable once parsed.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	Heading *float64 `json:"heading,omitempty"`
	Pitch   *float64 `json:"pitch,omitempty"`
	FOV     *float64 `json:"fov,omitempty"`
	Width   *int     `json:"width,omitempty"`
	Height  *int     `json:"height,omitempty"`
}

// Validate checks the coordinate is within geographic range.
// Out-of-range coordinates are rejected before any network call.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return errors.Newf(errors.ErrorTypeInvalidCoordinate, "latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return errors.Newf(errors.ErrorTypeInvalidCoordinate, "longitude %v out of range [-180, 180]", c.Lng)
	}
	return nil
}
