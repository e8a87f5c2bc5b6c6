package geo

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadFile reads a candidate list from disk. JSON files must contain an
// array of coordinate objects; anything else is parsed as CSV with
// lat,lng in the first two columns. A malformed file or an empty list is
// a fatal configuration error for the run.
func LoadFile(path string) ([]Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coordinate file: %w", err)
	}
	defer f.Close()

	var coords []Coordinate
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		coords, err = parseJSON(f)
	default:
		coords, err = parseCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(coords) == 0 {
		return nil, fmt.Errorf("coordinate file %s contains no entries", path)
	}

	return coords, nil
}

func parseJSON(r io.Reader) ([]Coordinate, error) {
	var coords []Coordinate
	dec := json.NewDecoder(r)
	if err := dec.Decode(&coords); err != nil {
		return nil, err
	}
	return coords, nil
}

// parseCSV reads lat,lng rows. A header line is skipped when the first
// field is not numeric.
func parseCSV(r io.Reader) ([]Coordinate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var coords []Coordinate
	for i, record := range records {
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected at least lat,lng", i+1)
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if latErr != nil || lngErr != nil {
			if i == 0 {
				continue // header line
			}
			return nil, fmt.Errorf("line %d: invalid lat/lng", i+1)
		}

		coords = append(coords, Coordinate{Lat: lat, Lng: lng})
	}

	return coords, nil
}
