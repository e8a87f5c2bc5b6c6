package sampler

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetgrab/pkg/capture"
	"streetgrab/pkg/config"
	"streetgrab/pkg/errors"
	"streetgrab/pkg/geo"
)

// stubStrategy records visited coordinates and fails on demand
type stubStrategy struct {
	mu      sync.Mutex
	visited []geo.Coordinate
	failFor func(coord geo.Coordinate) error
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Capture(_ context.Context, coord geo.Coordinate, _ capture.Params) ([]byte, error) {
	s.mu.Lock()
	s.visited = append(s.visited, coord)
	s.mu.Unlock()

	if s.failFor != nil {
		if err := s.failFor(coord); err != nil {
			return nil, err
		}
	}
	return []byte(fmt.Sprintf("img-%v-%v", coord.Lat, coord.Lng)), nil
}

// memorySink collects saved outputs in memory
type memorySink struct {
	mu     sync.Mutex
	saved  map[string][]byte
	failOn string
}

func newMemorySink() *memorySink {
	return &memorySink{saved: make(map[string][]byte)}
}

func (m *memorySink) Save(identity string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && identity == m.failOn {
		return "", stderrors.New("disk full")
	}
	m.saved[identity] = data
	return "/out/" + identity + ".jpg", nil
}

// testConfig returns capture defaults with no post-processing work:
// zero size keeps the pipeline away from image decoding in these tests.
func testConfig() *config.CaptureConfig {
	return &config.CaptureConfig{
		Mode:   config.ModeAPI,
		Width:  0,
		Height: 0,
		FOV:    90,
		Radius: 50,
		Source: "outdoor",
		Fit:    config.FitCover,
	}
}

func candidates(n int) []geo.Coordinate {
	coords := make([]geo.Coordinate, n)
	for i := range coords {
		coords[i] = geo.Coordinate{Lat: float64(i), Lng: float64(i)}
	}
	return coords
}

func newTestSampler(strategy capture.Strategy, sink Sink, seed int64) *Sampler {
	return New(strategy, testConfig(), sink, "pano_",
		WithRand(rand.New(rand.NewSource(seed))))
}

func TestRunAllSucceed(t *testing.T) {
	strategy := &stubStrategy{}
	sink := newMemorySink()
	s := newTestSampler(strategy, sink, 42)

	outputs, err := s.Run(context.Background(), candidates(10), 5)
	require.NoError(t, err)
	require.Len(t, outputs, 5)

	// Identities are assigned in success order
	for i, out := range outputs {
		assert.Equal(t, fmt.Sprintf("pano_%d", i), out.Identity)
		assert.Equal(t, "/out/"+out.Identity+".jpg", out.Path)
		assert.Positive(t, out.Bytes)
	}

	assert.Len(t, sink.saved, 5)
	assert.Len(t, strategy.visited, 5, "run should stop at k successes")
}

func TestRunNeverRevisitsCandidates(t *testing.T) {
	strategy := &stubStrategy{
		failFor: func(coord geo.Coordinate) error {
			// Fail every other candidate so the run has to keep drawing
			if int(coord.Lat)%2 == 0 {
				return errors.New(errors.ErrorTypeUnavailable, "no imagery")
			}
			return nil
		},
	}
	s := newTestSampler(strategy, newMemorySink(), 7)

	outputs, err := s.Run(context.Background(), candidates(20), 20)
	require.Error(t, err)

	seen := make(map[float64]int)
	for _, coord := range strategy.visited {
		seen[coord.Lat]++
	}
	for lat, count := range seen {
		assert.Equal(t, 1, count, "candidate %v visited more than once", lat)
	}

	assert.Len(t, outputs, 10)
}

func TestRunAllFailReportsShortfall(t *testing.T) {
	strategy := &stubStrategy{
		failFor: func(geo.Coordinate) error {
			return errors.NewTransport("down", 0)
		},
	}
	s := newTestSampler(strategy, newMemorySink(), 1)

	outputs, err := s.Run(context.Background(), candidates(8), 3)
	assert.Empty(t, outputs)

	var shortfall *ErrShortfall
	require.True(t, stderrors.As(err, &shortfall))
	assert.Equal(t, 0, shortfall.Got)
	assert.Equal(t, 3, shortfall.Want)
	assert.Len(t, strategy.visited, 8, "whole pool should be exhausted")
}

func TestRunPartialShortfallKeepsOutputs(t *testing.T) {
	strategy := &stubStrategy{
		failFor: func(coord geo.Coordinate) error {
			if coord.Lat >= 2 {
				return errors.New(errors.ErrorTypeUnavailable, "no imagery")
			}
			return nil
		},
	}
	sink := newMemorySink()
	s := newTestSampler(strategy, sink, 3)

	outputs, err := s.Run(context.Background(), candidates(6), 5)

	var shortfall *ErrShortfall
	require.True(t, stderrors.As(err, &shortfall))
	assert.Equal(t, 2, shortfall.Got)
	assert.Equal(t, 5, shortfall.Want)
	assert.Len(t, outputs, 2)
	assert.Len(t, sink.saved, 2, "partial output must survive the shortfall")
}

func TestRunInvalidCoordinateSkippedBeforeNetwork(t *testing.T) {
	strategy := &stubStrategy{}
	s := newTestSampler(strategy, newMemorySink(), 5)

	coords := []geo.Coordinate{
		{Lat: 91, Lng: 0},  // invalid
		{Lat: 0, Lng: 181}, // invalid
		{Lat: 10, Lng: 10},
	}

	outputs, err := s.Run(context.Background(), coords, 3)

	var shortfall *ErrShortfall
	require.True(t, stderrors.As(err, &shortfall))
	assert.Equal(t, 1, shortfall.Got)
	require.Len(t, outputs, 1)
	assert.Equal(t, 10.0, outputs[0].Coordinate.Lat)

	// Only the valid coordinate may reach the capture backend
	require.Len(t, strategy.visited, 1)
	assert.Equal(t, 10.0, strategy.visited[0].Lat)
}

func TestRunPersistFailureIsFatal(t *testing.T) {
	strategy := &stubStrategy{}
	sink := newMemorySink()
	sink.failOn = "pano_1"
	s := newTestSampler(strategy, sink, 9)

	outputs, err := s.Run(context.Background(), candidates(10), 5)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "pool exhausted")
	assert.Contains(t, err.Error(), "persist failed")
	assert.Len(t, outputs, 1, "outputs before the sink failure are kept")
}

func TestRunDeterministicPermutation(t *testing.T) {
	// Same seed, same visiting order
	order := func(seed int64) []float64 {
		strategy := &stubStrategy{}
		s := newTestSampler(strategy, newMemorySink(), seed)
		_, err := s.Run(context.Background(), candidates(12), 12)
		require.NoError(t, err)

		lats := make([]float64, len(strategy.visited))
		for i, c := range strategy.visited {
			lats[i] = c.Lat
		}
		return lats
	}

	assert.Equal(t, order(99), order(99))
}

func TestRunReportsProgressPerAttempt(t *testing.T) {
	strategy := &stubStrategy{
		failFor: func(coord geo.Coordinate) error {
			if int(coord.Lat)%2 == 0 {
				return errors.New(errors.ErrorTypeUnavailable, "no imagery")
			}
			return nil
		},
	}
	var attempts []bool
	s := New(strategy, testConfig(), newMemorySink(), "pano_",
		WithRand(rand.New(rand.NewSource(4))),
		WithProgress(func(captured bool) { attempts = append(attempts, captured) }))

	// Only 4 of the 9 candidates can succeed, so the whole pool is
	// visited and every attempt, skipped ones included, must report
	outputs, err := s.Run(context.Background(), candidates(9), 5)
	require.Error(t, err)

	require.Len(t, attempts, 9)
	captured := 0
	for _, ok := range attempts {
		if ok {
			captured++
		}
	}
	assert.Equal(t, 4, captured)
	assert.Len(t, outputs, captured)
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSampler(&stubStrategy{}, newMemorySink(), 2)
	_, err := s.Run(ctx, candidates(4), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}
