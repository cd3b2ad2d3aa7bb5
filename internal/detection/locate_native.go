//go:build !gocv

package detection

import (
	"image"

	"github.com/ironsheep/perryfier/internal/imaging"
)

// Backend is the name of the compiled-in locator implementation.
const Backend = "native"

// Locate finds the largest dark object in img and fits a circle around it.
//
// # Algorithm
//
//  1. Foreground mask: luminance, 7x7 Gaussian blur, inverted Otsu
//     threshold, one 3x3 erosion (see imaging.ForegroundMask)
//  2. External contours of the mask (see FindExternalContours)
//  3. The contour with the largest enclosed area; the first in raster
//     order wins ties
//  4. Minimal enclosing circle of that contour's boundary pixels
//
// # Errors
//
//   - InvalidImage: img is nil or has no pixels.
//   - NoObjectFound: img is uniform, or its foreground vanishes under erosion.
func Locate(img image.Image) (*Result, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}

	fg := imaging.ForegroundMask(img)
	if fg.Uniform {
		return nil, &DetectionError{Kind: NoObjectFound, Err: errNoContrast}
	}

	best := Largest(FindExternalContours(fg.Mask))
	if best == nil {
		return nil, &DetectionError{Kind: NoObjectFound, Err: errNoContour}
	}

	circle := MinEnclosingCircle(best.Points)

	// The mask is anchored at the origin; map back to source coordinates.
	min := img.Bounds().Min
	return &Result{
		Center: Center{
			X: circle.X + float64(min.X),
			Y: circle.Y + float64(min.Y),
		},
		Radius:    circle.Radius,
		Area:      best.Area,
		Threshold: fg.Threshold,
		Backend:   Backend,
	}, nil
}
