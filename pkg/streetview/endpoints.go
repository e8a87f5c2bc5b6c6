package streetview

import (
	"fmt"
	"net/url"
	"strconv"

	"streetgrab/pkg/capture"
)

const (
	// DefaultBaseURL is the base URL for the Street View Static API
	DefaultBaseURL = "https://maps.googleapis.com"

	// MetadataEndpoint reports imagery availability for a location.
	// Metadata requests are not billed, so they are issued first.
	MetadataEndpoint = "/maps/api/streetview/metadata"

	// ImageEndpoint returns the panorama raster
	ImageEndpoint = "/maps/api/streetview"

	// StatusOK is the only metadata status that means imagery exists
	StatusOK = "OK"
)

func formatLocation(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

// MetadataURL constructs the availability-check URL for a coordinate
func MetadataURL(baseURL string, lat, lng float64, radius int, source, key string) string {
	params := url.Values{}
	params.Set("location", formatLocation(lat, lng))
	if radius > 0 {
		params.Set("radius", strconv.Itoa(radius))
	}
	if source != "" {
		params.Set("source", source)
	}
	params.Set("key", key)

	return fmt.Sprintf("%s%s?%s", baseURL, MetadataEndpoint, params.Encode())
}

// ImageParams carries everything the image endpoint needs beyond the location
type ImageParams struct {
	Logical capture.Size
	Scale   int
	FOV     float64
	Pitch   float64
	Heading float64
	Radius  int
	Source  string
}

// ImageURL constructs the billed image-fetch URL. Size is the logical
// size already resolved against the API cap, not the caller's requested
// output size.
func ImageURL(baseURL string, lat, lng float64, p ImageParams, key string) string {
	params := url.Values{}
	params.Set("location", formatLocation(lat, lng))
	params.Set("size", fmt.Sprintf("%dx%d", p.Logical.Width, p.Logical.Height))
	params.Set("scale", strconv.Itoa(p.Scale))
	params.Set("fov", strconv.FormatFloat(p.FOV, 'f', -1, 64))
	params.Set("pitch", strconv.FormatFloat(p.Pitch, 'f', -1, 64))
	params.Set("heading", strconv.FormatFloat(p.Heading, 'f', -1, 64))
	if p.Radius > 0 {
		params.Set("radius", strconv.Itoa(p.Radius))
	}
	if p.Source != "" {
		params.Set("source", p.Source)
	}
	params.Set("key", key)

	return fmt.Sprintf("%s%s?%s", baseURL, ImageEndpoint, params.Encode())
}
