package browser

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	embedBaseURL = "https://www.google.com/maps/embed/v1/streetview"
	mapsBaseURL  = "https://www.google.com/maps"
)

// EmbedURL builds the direct embed-viewer URL. The embed viewer loads the
// panorama straight away with no consent dialog, so it is preferred when
// an embed key is available.
func EmbedURL(embedKey string, lat, lng, heading, pitch, fov float64) string {
	params := url.Values{}
	params.Set("key", embedKey)
	params.Set("location", fmt.Sprintf("%s,%s",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lng, 'f', -1, 64)))
	params.Set("heading", strconv.FormatFloat(heading, 'f', -1, 64))
	params.Set("pitch", strconv.FormatFloat(pitch, 'f', -1, 64))
	params.Set("fov", strconv.FormatFloat(fov, 'f', -1, 64))

	return fmt.Sprintf("%s?%s", embedBaseURL, params.Encode())
}

// PanoURL builds the interactive map panorama URL used when no embed key
// is configured. The tilt component is 90 at the horizon, so the pitch
// offset is applied on top of that.
func PanoURL(lat, lng, heading, pitch, fov float64) string {
	return fmt.Sprintf("%s/@%s,%s,3a,%sy,%sh,%st/data=!3m1!1e1",
		mapsBaseURL,
		strconv.FormatFloat(lat, 'f', 7, 64),
		strconv.FormatFloat(lng, 'f', 7, 64),
		strconv.FormatFloat(fov, 'f', -1, 64),
		strconv.FormatFloat(heading, 'f', -1, 64),
		strconv.FormatFloat(90+pitch, 'f', -1, 64),
	)
}
