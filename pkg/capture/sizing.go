package capture

import "math"

// MaxLogicalDimension is the upstream API's cap on each logical axis
const MaxLogicalDimension = 640

// Resolve converts a requested output size and an optional scale hint into
// the scale factor and logical size that satisfy the upstream API's
// maximum-dimension constraint. It is pure and total: degenerate inputs
// produce a 1x1-floored result rather than an error.
func Resolve(requested Size, scaleHint *float64) (scale int, logical Size) {
	return ResolveWithCap(requested, scaleHint, MaxLogicalDimension)
}

// ResolveWithCap is Resolve with an explicit per-axis cap.
//
// Scale selection: a finite hint is coerced to 1 when exactly 1 and to 2
// for any other value. Without a hint, scale is 2 when either requested
// dimension exceeds the cap, else 1.
func ResolveWithCap(requested Size, scaleHint *float64, cap int) (scale int, logical Size) {
	scale = selectScale(requested, scaleHint, cap)

	logical = Size{
		Width:  int(math.Floor(float64(requested.Width) / float64(scale))),
		Height: int(math.Floor(float64(requested.Height) / float64(scale))),
	}

	// Shrink both axes by the same ratio so aspect is preserved
	if logical.Width > cap || logical.Height > cap {
		ratio := math.Min(
			float64(cap)/float64(logical.Width),
			float64(cap)/float64(logical.Height),
		)
		logical.Width = int(math.Floor(float64(logical.Width) * ratio))
		logical.Height = int(math.Floor(float64(logical.Height) * ratio))
	}

	if logical.Width < 1 {
		logical.Width = 1
	}
	if logical.Height < 1 {
		logical.Height = 1
	}

	return scale, logical
}

func selectScale(requested Size, scaleHint *float64, cap int) int {
	if scaleHint != nil && !math.IsNaN(*scaleHint) && !math.IsInf(*scaleHint, 0) {
		if *scaleHint == 1 {
			return 1
		}
		return 2
	}

	if requested.Width > cap || requested.Height > cap {
		return 2
	}
	return 1
}
