package detection

import (
	"errors"
	"image"

	"github.com/ironsheep/perryfier/internal/imaging"
)

// Center is a point in continuous pixel coordinates.
type Center struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result describes the principal foreground object of an image.
type Result struct {
	// Center is the center of the minimal enclosing circle of the object's
	// outer contour, in the source image's coordinate space.
	Center Center `json:"center"`

	// Radius is the radius of that circle in pixels. Always >= 0.
	Radius float64 `json:"radius"`

	// Area is the area enclosed by the object's outer contour in square pixels.
	Area int `json:"area"`

	// Threshold is the automatically selected binarization cutoff.
	Threshold uint8 `json:"threshold"`

	// Backend names the implementation that produced the result.
	Backend string `json:"backend"`
}

// LocateBytes decodes encoded image bytes and locates the principal object.
//
// Parameters:
//   - data: Encoded image bytes in any format imaging.Decode accepts.
//
// Returns:
//   - *Result: The enclosing circle of the largest foreground object.
//   - error: A *DetectionError on failure.
//
// # Errors
//
// Undecodable input fails with kind InvalidImage. See Locate for the
// remaining failure modes.
func LocateBytes(data []byte) (*Result, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, &DetectionError{Kind: InvalidImage, Err: err}
	}
	return Locate(img)
}

var (
	errEmptyImage = errors.New("image has no pixels")
	errNoContrast = errors.New("image has a single intensity")
	errNoContour  = errors.New("no foreground contour")
)

func checkImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return &DetectionError{Kind: InvalidImage, Err: errEmptyImage}
	}
	return nil
}
