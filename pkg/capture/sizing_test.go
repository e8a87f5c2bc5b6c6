package capture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func hint(v float64) *float64 { return &v }

func TestResolveNoHint(t *testing.T) {
	tests := []struct {
		name        string
		requested   Size
		wantScale   int
		wantLogical Size
	}{
		{
			name:        "small size keeps scale 1 and exact size",
			requested:   Size{Width: 640, Height: 640},
			wantScale:   1,
			wantLogical: Size{Width: 640, Height: 640},
		},
		{
			name:        "both dimensions under cap",
			requested:   Size{Width: 400, Height: 300},
			wantScale:   1,
			wantLogical: Size{Width: 400, Height: 300},
		},
		{
			name:        "one dimension over cap selects scale 2",
			requested:   Size{Width: 800, Height: 400},
			wantScale:   2,
			wantLogical: Size{Width: 400, Height: 200},
		},
		{
			name:        "4k request",
			requested:   Size{Width: 3840, Height: 2160},
			wantScale:   2,
			wantLogical: Size{Width: 640, Height: 360},
		},
		{
			name:        "odd dimensions floor after division",
			requested:   Size{Width: 641, Height: 333},
			wantScale:   2,
			wantLogical: Size{Width: 320, Height: 166},
		},
		{
			name:        "degenerate zero size floors to 1x1",
			requested:   Size{Width: 0, Height: 0},
			wantScale:   1,
			wantLogical: Size{Width: 1, Height: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, logical := Resolve(tt.requested, nil)
			assert.Equal(t, tt.wantScale, scale)
			assert.Equal(t, tt.wantLogical, logical)
		})
	}
}

func TestResolveWithHint(t *testing.T) {
	tests := []struct {
		name        string
		requested   Size
		hint        *float64
		wantScale   int
		wantLogical Size
	}{
		{
			name:        "hint 1 keeps full logical size then caps",
			requested:   Size{Width: 1920, Height: 1080},
			hint:        hint(1),
			wantScale:   1,
			wantLogical: Size{Width: 640, Height: 360},
		},
		{
			name:        "hint 2",
			requested:   Size{Width: 1280, Height: 1280},
			hint:        hint(2),
			wantScale:   2,
			wantLogical: Size{Width: 640, Height: 640},
		},
		{
			name:        "fractional hint collapses to 2",
			requested:   Size{Width: 640, Height: 640},
			hint:        hint(1.5),
			wantScale:   2,
			wantLogical: Size{Width: 320, Height: 320},
		},
		{
			name:        "hint above 2 collapses to 2",
			requested:   Size{Width: 640, Height: 640},
			hint:        hint(4),
			wantScale:   2,
			wantLogical: Size{Width: 320, Height: 320},
		},
		{
			name:        "NaN hint is ignored",
			requested:   Size{Width: 400, Height: 400},
			hint:        hint(math.NaN()),
			wantScale:   1,
			wantLogical: Size{Width: 400, Height: 400},
		},
		{
			name:        "Inf hint is ignored",
			requested:   Size{Width: 800, Height: 400},
			hint:        hint(math.Inf(1)),
			wantScale:   2,
			wantLogical: Size{Width: 400, Height: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, logical := Resolve(tt.requested, tt.hint)
			assert.Equal(t, tt.wantScale, scale)
			assert.Equal(t, tt.wantLogical, logical)
		})
	}
}

func TestResolveInvariants(t *testing.T) {
	// Logical size never exceeds the cap and never drops below 1,
	// across a sweep of sizes and hints.
	hints := []*float64{nil, hint(1), hint(2), hint(0.5), hint(-3)}
	sizes := []Size{
		{0, 0}, {1, 1}, {639, 641}, {640, 640}, {641, 1},
		{1920, 1080}, {3840, 2160}, {10000, 10}, {7, 9000},
	}

	for _, s := range sizes {
		for _, h := range hints {
			scale, logical := Resolve(s, h)
			assert.Contains(t, []int{1, 2}, scale)
			assert.LessOrEqual(t, logical.Width, MaxLogicalDimension)
			assert.LessOrEqual(t, logical.Height, MaxLogicalDimension)
			assert.GreaterOrEqual(t, logical.Width, 1)
			assert.GreaterOrEqual(t, logical.Height, 1)
		}
	}
}

func TestResolveWithCustomCap(t *testing.T) {
	scale, logical := ResolveWithCap(Size{Width: 1000, Height: 500}, hint(1), 100)
	assert.Equal(t, 1, scale)
	assert.Equal(t, Size{Width: 100, Height: 50}, logical)
}
