package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"streetgrab/pkg/streetview"
)

// MockStreetViewServer simulates the Street View Static API endpoints
// with realistic behavior
type MockStreetViewServer struct {
	server        *httptest.Server
	metadataCalls int32
	imageCalls    int32

	mu          sync.RWMutex
	unavailable map[string]bool          // locations that report ZERO_RESULTS
	errorCodes  map[string]int           // locations that fail the image fetch
	delays      map[string]time.Duration // simulated response delays
	imageSize   image.Point
}

// NewMockStreetViewServer creates a new mock Street View API server
func NewMockStreetViewServer() *MockStreetViewServer {
	m := &MockStreetViewServer{
		unavailable: make(map[string]bool),
		errorCodes:  make(map[string]int),
		delays:      make(map[string]time.Duration),
		imageSize:   image.Point{X: 640, Y: 640},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(streetview.MetadataEndpoint, m.handleMetadata)
	mux.HandleFunc(streetview.ImageEndpoint, m.handleImage)

	m.server = httptest.NewServer(mux)
	return m
}

// GetURL returns the base URL of the mock server
func (m *MockStreetViewServer) GetURL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockStreetViewServer) Close() {
	m.server.Close()
}

// SetUnavailable makes a location report ZERO_RESULTS
func (m *MockStreetViewServer) SetUnavailable(lat, lng float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable[locationKey(lat, lng)] = true
}

// SetImageError makes the image fetch for a location fail with the given code
func (m *MockStreetViewServer) SetImageError(lat, lng float64, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCodes[locationKey(lat, lng)] = code
}

// SetDelay adds a simulated response delay for a location
func (m *MockStreetViewServer) SetDelay(lat, lng float64, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[locationKey(lat, lng)] = d
}

// SetImageSize controls the pixel size of generated panoramas
func (m *MockStreetViewServer) SetImageSize(w, h int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageSize = image.Point{X: w, Y: h}
}

// MetadataCalls returns the number of metadata requests seen
func (m *MockStreetViewServer) MetadataCalls() int32 {
	return atomic.LoadInt32(&m.metadataCalls)
}

// ImageCalls returns the number of billed image requests seen
func (m *MockStreetViewServer) ImageCalls() int32 {
	return atomic.LoadInt32(&m.imageCalls)
}

func (m *MockStreetViewServer) handleMetadata(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.metadataCalls, 1)

	location := r.URL.Query().Get("location")
	if d := m.getDelay(location); d > 0 {
		time.Sleep(d)
	}

	if r.URL.Query().Get("key") == "" {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(streetview.MetadataResponse{Status: "REQUEST_DENIED"})
		return
	}

	resp := streetview.MetadataResponse{Status: streetview.StatusOK}
	if m.isUnavailable(location) {
		resp.Status = "ZERO_RESULTS"
	} else {
		resp.PanoID = "pano_" + location
		resp.Date = "2024-06"
		resp.Copyright = "© Mock Imagery"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (m *MockStreetViewServer) handleImage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.imageCalls, 1)

	location := r.URL.Query().Get("location")
	if d := m.getDelay(location); d > 0 {
		time.Sleep(d)
	}

	if code := m.getErrorCode(location); code > 0 {
		w.WriteHeader(code)
		return
	}

	// Honor the requested logical size and scale so the bytes match what
	// the real upstream would produce
	size := m.getImageSize()
	if s := r.URL.Query().Get("size"); s != "" {
		if parsed, ok := parseSize(s); ok {
			size = parsed
		}
	}
	scale := 1
	if s := r.URL.Query().Get("scale"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			scale = parsed
		}
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(generateJPEG(size.X*scale, size.Y*scale))
}

func (m *MockStreetViewServer) isUnavailable(location string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unavailable[location]
}

func (m *MockStreetViewServer) getErrorCode(location string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorCodes[location]
}

func (m *MockStreetViewServer) getDelay(location string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.delays[location]
}

func (m *MockStreetViewServer) getImageSize() image.Point {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.imageSize
}

func locationKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

func parseSize(s string) (image.Point, bool) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return image.Point{}, false
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return image.Point{}, false
	}
	return image.Point{X: w, Y: h}, true
}

// generateJPEG renders a flat-color JPEG of the given pixel size
func generateJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: 70, G: 130, B: 180, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		panic(fmt.Sprintf("failed to encode fixture jpeg: %v", err))
	}
	return buf.Bytes()
}
