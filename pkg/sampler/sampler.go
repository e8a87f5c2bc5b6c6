// Package sampler drives the acquisition pipeline across a candidate
// pool: randomized visiting order, skip-and-continue failure handling,
// and a batch-level shortfall verdict.
package sampler

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"time"

	"streetgrab/pkg/capture"
	"streetgrab/pkg/config"
	"streetgrab/pkg/geo"
	"streetgrab/pkg/logger"
	"streetgrab/pkg/postprocess"
)

// Rand is the injectable source of sampling randomness.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Sink persists one successful capture and returns the path it wrote
type Sink interface {
	Save(identity string, data []byte) (string, error)
}

// Namer assigns an output identity to the nth success (0-based)
type Namer func(index int) string

// Output records one successful acquisition, in success order
type Output struct {
	Identity   string
	Path       string
	Coordinate geo.Coordinate
	Bytes      int
}

// ErrShortfall reports that the run produced fewer successes than
// requested. It is a batch-level verdict, not fatal to output already
// written.
type ErrShortfall struct {
	Got  int
	Want int
}

func (e *ErrShortfall) Error() string {
	return fmt.Sprintf("candidate pool exhausted: %d of %d captures succeeded", e.Got, e.Want)
}

// errPersist marks a sink failure. Capture failures are skipped; a sink
// that cannot write is fatal for the whole run.
var errPersist = stderrors.New("persist failed")

// Sampler visits a candidate pool without replacement until the target
// success count is reached or the pool runs out
type Sampler struct {
	strategy   capture.Strategy
	cfg        *config.CaptureConfig
	sink       Sink
	namer      Namer
	rng        Rand
	logger     logger.Logger
	onProgress func(captured bool)
}

// Option customizes a Sampler
type Option func(*Sampler)

// WithRand injects a deterministic random source (used by tests)
func WithRand(rng Rand) Option {
	return func(s *Sampler) { s.rng = rng }
}

// WithNamer overrides the output identity function
func WithNamer(namer Namer) Option {
	return func(s *Sampler) { s.namer = namer }
}

// WithProgress registers a callback invoked after every attempt, with
// captured reporting whether the attempt produced an output
func WithProgress(fn func(captured bool)) Option {
	return func(s *Sampler) { s.onProgress = fn }
}

// New creates a Sampler. The default namer is prefix + success index.
func New(strategy capture.Strategy, cfg *config.CaptureConfig, sink Sink, prefix string, opts ...Option) *Sampler {
	s := &Sampler{
		strategy: strategy,
		cfg:      cfg,
		sink:     sink,
		namer: func(index int) string {
			return fmt.Sprintf("%s%d", prefix, index)
		},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the pipeline: a uniformly random permutation of the
// candidates is visited in order, each attempt either producing an output
// or being skipped, until k successes or the pool is exhausted. When the
// pool runs out first, the outputs produced so far are returned together
// with an ErrShortfall.
func (s *Sampler) Run(ctx context.Context, candidates []geo.Coordinate, k int) ([]Output, error) {
	order := s.permutation(len(candidates))
	outputs := make([]Output, 0, k)

	s.logger.InfoWithFields("starting acquisition run", map[string]interface{}{
		"candidates": len(candidates),
		"target":     k,
		"backend":    s.strategy.Name(),
	})

	for _, idx := range order {
		if len(outputs) >= k {
			break
		}
		if err := ctx.Err(); err != nil {
			return outputs, fmt.Errorf("run cancelled: %w", err)
		}

		coord := candidates[idx]
		identity := s.namer(len(outputs))

		out, err := s.attempt(ctx, coord, identity)
		logger.LogCapture(s.strategy.Name(), identity, coord.Lat, coord.Lng, err == nil, err)
		if s.onProgress != nil {
			s.onProgress(err == nil)
		}
		if err != nil {
			if stderrors.Is(err, errPersist) {
				return outputs, err
			}
			continue
		}

		outputs = append(outputs, out)
	}

	if len(outputs) < k {
		return outputs, &ErrShortfall{Got: len(outputs), Want: k}
	}

	s.logger.InfoWithFields("acquisition run complete", map[string]interface{}{
		"successes": len(outputs),
	})

	return outputs, nil
}

// attempt resolves one candidate end to end: validation, capture,
// post-processing, persistence. Validation failures never reach the
// network.
func (s *Sampler) attempt(ctx context.Context, coord geo.Coordinate, identity string) (Output, error) {
	if err := coord.Validate(); err != nil {
		return Output{}, err
	}

	params := capture.ResolveParams(s.cfg, coord)

	raw, err := s.strategy.Capture(ctx, coord, params)
	if err != nil {
		return Output{}, err
	}

	var target *capture.Size
	if params.Requested.IsPositive() {
		target = &params.Requested
	}

	processed, err := postprocess.Process(raw, target, params.Fit)
	if err != nil {
		return Output{}, err
	}

	path, err := s.sink.Save(identity, processed)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %s: %v", errPersist, identity, err)
	}

	return Output{
		Identity:   identity,
		Path:       path,
		Coordinate: coord,
		Bytes:      len(processed),
	}, nil
}

// permutation returns a uniformly random visiting order (Fisher-Yates)
func (s *Sampler) permutation(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
