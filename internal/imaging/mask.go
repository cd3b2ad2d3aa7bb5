package imaging

import (
	"encoding/base64"
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
)

// BlurKernelSize is the side length of the Gaussian kernel applied before
// thresholding. It is fixed; the pipeline is tuned for a subject photographed
// against a light, plain background.
const BlurKernelSize = 7

// gaussian7 is the 7-tap Gaussian for sigma derived from the kernel size
// (0.3*((7-1)*0.5-1)+0.8 = 1.4), scaled to integers. Applied separably it
// gives the 7x7 kernel.
var gaussian7 = []float64{2, 7, 14, 18, 14, 7, 2}

// Foreground is the binarized subject mask of an image.
type Foreground struct {
	// Mask marks foreground pixels with 255 and background with 0.
	// Its bounds start at (0,0) regardless of the source bounds.
	Mask *image.Gray

	// Threshold is the Otsu cutoff; blurred pixels at or below it are foreground.
	Threshold uint8

	// Uniform is true when the image has a single intensity, in which case
	// Mask holds no foreground.
	Uniform bool
}

// ForegroundMask converts img into a binary subject mask.
//
// Parameters:
//   - img: Source image of any bounds. Alpha is ignored.
//
// Returns:
//   - *Foreground: The mask, the Otsu cutoff, and whether img was uniform.
//
// # Algorithm
//
//  1. Drop alpha and convert to 8-bit luminance (ITU-R BT.601 weights)
//  2. Gaussian blur with a 7x7 kernel, edges replicated
//  3. Otsu threshold selection over the blurred histogram
//  4. Inverted binarization: pixels darker than or equal to the cutoff become
//     foreground
//  5. One erosion pass with a 3x3 square element to break thin bridges
//     between neighboring blobs
func ForegroundMask(img image.Image) *Foreground {
	blurred := GaussianBlur(Grayscale(img))

	level, ok := OtsuThreshold(blurred)
	if !ok {
		return &Foreground{
			Mask:    image.NewGray(blurred.Bounds()),
			Uniform: true,
		}
	}

	return &Foreground{
		Mask:      Erode(BinarizeInverse(blurred, level)),
		Threshold: level,
	}
}

// Grayscale converts img to 8-bit luminance. Alpha is discarded: a pixel's
// stored color is used as if it were opaque.
func Grayscale(img image.Image) *image.Gray {
	src := imaging.Clone(img)
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xFF
	}
	return redChannel(effect.GrayscaleWithWeights(src, 0.299, 0.587, 0.114))
}

// GaussianBlur smooths gray with the fixed 7x7 Gaussian kernel.
func GaussianBlur(gray *image.Gray) *image.Gray {
	if gray.Bounds().Empty() {
		return image.NewGray(gray.Bounds())
	}

	k := convolution.NewKernel(len(gaussian7), 1)
	copy(k.Matrix, gaussian7)
	row := k.Normalized()

	opts := convolution.Options{Bias: 0, Wrap: false, KeepAlpha: true}
	blurred := convolution.Convolve(gray, row, &opts)
	blurred = convolution.Convolve(blurred, row.Transposed(), &opts)

	return redChannel(blurred)
}

// OtsuThreshold picks the intensity that maximizes the between-class variance
// of gray's histogram.
//
// Returns:
//   - level: The cutoff; pixels at or below it form the darker class.
//   - ok: False when the image has fewer than two distinct intensities.
func OtsuThreshold(gray *image.Gray) (level uint8, ok bool) {
	bins := histogram.NewRGBAHistogram(gray).R.Bins

	total := 0
	occupied := 0
	sum := 0.0
	for i, n := range bins {
		if n > 0 {
			occupied++
		}
		total += n
		sum += float64(i * n)
	}
	if occupied < 2 {
		return 0, false
	}

	var (
		weightB  float64
		sumB     float64
		maxSigma float64
	)
	for i, n := range bins {
		weightB += float64(n)
		if weightB == 0 {
			continue
		}
		weightF := float64(total) - weightB
		if weightF == 0 {
			break
		}

		sumB += float64(i * n)
		meanB := sumB / weightB
		meanF := (sum - sumB) / weightF

		sigma := weightB * weightF * (meanB - meanF) * (meanB - meanF)
		if sigma > maxSigma {
			maxSigma = sigma
			level = uint8(i)
		}
	}

	return level, true
}

// BinarizeInverse marks pixels at or below level as foreground (255) and all
// others as background (0).
func BinarizeInverse(gray *image.Gray, level uint8) *image.Gray {
	bounds := gray.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if gray.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y <= level {
				dst.Pix[y*dst.Stride+x] = 0xFF
			}
		}
	}
	return dst
}

// Erode shrinks the foreground of a binary mask by one pixel using a 3x3
// square element. Pixels beyond the edge repeat the nearest edge pixel.
func Erode(mask *image.Gray) *image.Gray {
	if mask.Bounds().Empty() {
		return image.NewGray(mask.Bounds())
	}
	return redChannel(effect.Erode(mask, 1))
}

// redChannel copies the red channel of a gray-valued RGBA raster into a Gray
// raster anchored at the origin.
func redChannel(src *image.RGBA) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < bounds.Dx(); x++ {
			dst.Pix[di+x] = src.Pix[si+x*4]
		}
	}
	return dst
}

// MaskResult contains a foreground mask encoded as base64 PNG.
type MaskResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Threshold is the Otsu cutoff used for binarization.
	Threshold int `json:"threshold"`

	// Uniform reports an image without contrast (empty mask).
	Uniform bool `json:"uniform"`

	// ImageBase64 is the mask as base64 PNG: foreground white, background black.
	ImageBase64 string `json:"image_base64"`

	MimeType string `json:"mime_type"`
}

// ForegroundMaskImage runs ForegroundMask and encodes the mask for display.
func ForegroundMaskImage(img image.Image) (*MaskResult, error) {
	fg := ForegroundMask(img)

	data, err := EncodePNG(fg.Mask)
	if err != nil {
		return nil, err
	}

	bounds := fg.Mask.Bounds()
	return &MaskResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Threshold:   int(fg.Threshold),
		Uniform:     fg.Uniform,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}
