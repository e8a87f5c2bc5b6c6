// Package postprocess reframes raw capture bytes to the caller's exact
// requested dimensions and re-encodes them as JPEG.
package postprocess

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"streetgrab/pkg/capture"
	"streetgrab/pkg/config"
	"streetgrab/pkg/errors"
)

// Quality is the fixed JPEG encode quality for processed output
const Quality = 90

// Process resizes raw image bytes to exactly target using the given fit
// policy. A nil or non-positive target is a no-op: the input is returned
// unchanged. Undecodable input fails with a codec error.
func Process(raw []byte, target *capture.Size, fit string) ([]byte, error) {
	if target == nil || !target.IsPositive() {
		return raw, nil
	}

	// Skip the decode/encode round trip when the bytes already have the
	// requested dimensions, as with a viewport-sized browser capture.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
		if cfg.Width == target.Width && cfg.Height == target.Height {
			return raw, nil
		}
	}

	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeCodec, "undecodable image: %v", err)
	}

	out := apply(src, *target, fit)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(Quality)); err != nil {
		return nil, errors.Newf(errors.ErrorTypeCodec, "jpeg encode failed: %v", err)
	}

	return buf.Bytes(), nil
}

// apply implements the five fit policies. cover and contain always yield
// exactly the target size; fill stretches; inside and outside preserve
// aspect without up- or downscaling respectively.
func apply(src image.Image, target capture.Size, fit string) image.Image {
	w, h := target.Width, target.Height

	switch fit {
	case config.FitContain:
		fitted := imaging.Fit(src, w, h, imaging.Lanczos)
		canvas := imaging.New(w, h, color.NRGBA{0, 0, 0, 255})
		return imaging.PasteCenter(canvas, fitted)

	case config.FitFill:
		return imaging.Resize(src, w, h, imaging.Lanczos)

	case config.FitInside:
		bounds := src.Bounds()
		if bounds.Dx() <= w && bounds.Dy() <= h {
			return src
		}
		return imaging.Fit(src, w, h, imaging.Lanczos)

	case config.FitOutside:
		bounds := src.Bounds()
		ratio := math.Max(
			float64(w)/float64(bounds.Dx()),
			float64(h)/float64(bounds.Dy()),
		)
		if ratio <= 1 {
			return src
		}
		return imaging.Resize(src,
			int(math.Round(float64(bounds.Dx())*ratio)),
			int(math.Round(float64(bounds.Dy())*ratio)),
			imaging.Lanczos)

	default: // cover
		return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
	}
}
