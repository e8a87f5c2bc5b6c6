package streetview

// MetadataResponse is the JSON body of the metadata endpoint. Only the
// status field drives the pipeline; the rest is recorded for logging.
type MetadataResponse struct {
	Status    string `json:"status"`
	Copyright string `json:"copyright,omitempty"`
	Date      string `json:"date,omitempty"`
	PanoID    string `json:"pano_id,omitempty"`
	Location  struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location,omitempty"`
}

// Available reports whether the upstream has imagery for the queried location
func (m *MetadataResponse) Available() bool {
	return m.Status == StatusOK
}
