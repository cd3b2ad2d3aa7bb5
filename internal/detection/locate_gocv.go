//go:build gocv

package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// Backend is the name of the compiled-in locator implementation.
const Backend = "gocv"

// Locate finds the largest dark object in img and fits a circle around it,
// using OpenCV for every stage of the pipeline.
//
// # Errors
//
// The same as the native backend: InvalidImage for an empty image, and
// NoObjectFound for a uniform image or an empty mask.
//
// Requires OpenCV and building with -tags gocv. Contour areas come from
// gocv.ContourArea (polygon area through the boundary pixel centers), so they
// are slightly smaller than the pixel counts reported by the native backend.
func Locate(img image.Image) (*Result, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, &DetectionError{Kind: InvalidImage, Err: err}
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(7, 7), 0, 0, gocv.BorderDefault)

	// Otsu on a single intensity would mark the whole frame as foreground.
	minVal, maxVal, _, _ := gocv.MinMaxLoc(blurred)
	if minVal == maxVal {
		return nil, &DetectionError{Kind: NoObjectFound, Err: errNoContrast}
	}

	mask := gocv.NewMat()
	defer mask.Close()
	level := gocv.Threshold(blurred, &mask, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	eroded := gocv.NewMat()
	defer eroded.Close()
	gocv.Erode(mask, &eroded, kernel)

	contours := gocv.FindContours(eroded, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	best := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if best < 0 || area > bestArea {
			best = i
			bestArea = area
		}
	}
	if best < 0 {
		return nil, &DetectionError{Kind: NoObjectFound, Err: errNoContour}
	}

	x, y, radius := gocv.MinEnclosingCircle(contours.At(best))

	min := img.Bounds().Min
	return &Result{
		Center: Center{
			X: float64(x) + float64(min.X),
			Y: float64(y) + float64(min.Y),
		},
		Radius:    float64(radius),
		Area:      int(bestArea),
		Threshold: uint8(level),
		Backend:   Backend,
	}, nil
}
