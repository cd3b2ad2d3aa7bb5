package overlay

import (
	"image"
	"log"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/perryfier/internal/assets"
	"github.com/ironsheep/perryfier/internal/detection"
	imgproc "github.com/ironsheep/perryfier/internal/imaging"
)

const (
	// Coverage is the minimum share of the image width or height the scaled
	// sprite spans, whichever needs the larger scale.
	Coverage = 0.3

	// Lift moves the sprite up by this multiple of the detected radius, so it
	// sits on top of the object rather than over its middle.
	Lift = 0.75
)

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ScaleFactor returns the uniform factor that makes a sprite span at least
// Coverage of an image's width or height:
//
//	max(0.3*width/sprite.Width, 0.3*height/sprite.Height)
//
// The same factor applies to both sprite axes.
func ScaleFactor(width, height int, sprite Size) float64 {
	fw := Coverage * float64(width) / float64(sprite.Width)
	fh := Coverage * float64(height) / float64(sprite.Height)
	return math.Max(fw, fh)
}

// ScaledSize multiplies both sprite dimensions by factor and floors them.
func ScaledSize(factor float64, sprite Size) Size {
	return Size{
		Width:  int(math.Floor(factor * float64(sprite.Width))),
		Height: int(math.Floor(factor * float64(sprite.Height))),
	}
}

// Placement returns the top-left corner for a sprite of the given scaled size:
// centered on the detected object, then lifted by Lift*radius. Both
// coordinates are floored. The point may lie outside the image.
func Placement(det *detection.Result, scaled Size) image.Point {
	x := det.Center.X - float64(scaled.Width)/2
	y := det.Center.Y - float64(scaled.Height)/2 - Lift*det.Radius
	return image.Pt(int(math.Floor(x)), int(math.Floor(y)))
}

// Composed is the result of placing a sprite onto a photo.
type Composed struct {
	// Image is a new raster; the source image is never modified.
	Image *image.NRGBA

	// Placement is the sprite's top-left corner in Image coordinates.
	Placement image.Point

	// SpriteSize is the scaled sprite size. Zero in either dimension means
	// nothing was pasted.
	SpriteSize Size

	// Factor is the scale factor applied to the sprite.
	Factor float64

	// Detection is the located object the sprite was placed on.
	Detection *detection.Result
}

// Width returns the composed image width.
func (c *Composed) Width() int { return c.Image.Bounds().Dx() }

// Height returns the composed image height.
func (c *Composed) Height() int { return c.Image.Bounds().Dy() }

// PNG encodes the composed image.
func (c *Composed) PNG() ([]byte, error) {
	return imgproc.EncodePNG(c.Image)
}

// Compose locates the principal object in the encoded image src and pastes
// sprite onto a copy of it.
//
// Parameters:
//   - src: Encoded photo bytes. Never modified.
//   - sprite: The overlay, scaled per call.
//
// Returns:
//   - *Composed: The new raster with placement details.
//   - error: A *detection.DetectionError on failure.
//
// # Errors
//
// Undecodable bytes fail with detection.ErrInvalidImage; an image without a
// detectable object fails with detection.ErrNoObjectFound. There is no partial
// result.
func Compose(src []byte, sprite *Sprite) (*Composed, error) {
	img, det, err := decodeAndLocate(src)
	if err != nil {
		return nil, err
	}
	return Paste(img, det, sprite), nil
}

// Paste scales sprite for img and alpha-blends it at the placement derived
// from det.
//
// Parameters:
//   - img: Destination photo. Never modified; the result is a copy.
//   - det: Located object in img's coordinate space.
//   - sprite: Overlay with straight (non-premultiplied) alpha.
//
// Returns:
//   - *Composed: Always non-nil. SpriteSize is zero when the sprite scaled
//     to nothing, in which case Image is an unchanged copy of img.
//
// # Blending
//
// Parts of the sprite outside img are clipped. Fully transparent sprite
// pixels leave img untouched and fully opaque ones replace it.
func Paste(img image.Image, det *detection.Result, sprite *Sprite) *Composed {
	bounds := img.Bounds()
	factor := ScaleFactor(bounds.Dx(), bounds.Dy(), sprite.Size())
	scaled := ScaledSize(factor, sprite.Size())
	pos := Placement(det, scaled)

	out := &Composed{
		Placement:  pos.Sub(bounds.Min),
		SpriteSize: scaled,
		Factor:     factor,
		Detection:  det,
	}

	if scaled.Width <= 0 || scaled.Height <= 0 {
		out.Image = imaging.Clone(img)
		return out
	}

	hat := imaging.Resize(sprite.Image, scaled.Width, scaled.Height, imaging.CatmullRom)
	out.Image = imaging.Overlay(img, hat, pos, 1.0)
	return out
}

func decodeAndLocate(src []byte) (image.Image, *detection.Result, error) {
	img, err := imgproc.Decode(src)
	if err != nil {
		return nil, nil, &detection.DetectionError{Kind: detection.InvalidImage, Err: err}
	}

	det, err := detection.Locate(img)
	if err != nil {
		return nil, nil, err
	}
	return img, det, nil
}

// Compositor composes photos with a sprite read from an asset loader.
//
// The sprite is loaded on every call, so a Compositor holds no decoded state
// and is safe for concurrent use if its Loader is.
type Compositor struct {
	// Assets resolves the sprite.
	Assets assets.Loader

	// SpriteName is the sprite's asset name; empty means assets.DefaultSprite.
	SpriteName string

	// Logger receives debug output; nil disables it.
	Logger *log.Logger
}

// Compose locates the object in src, loads the sprite, and pastes it.
//
// Detection runs first, so an undecodable or blank photo is reported as a
// *detection.DetectionError even when the sprite is also unavailable. Sprite
// failures are reported as *assets.ResourceError.
func (c *Compositor) Compose(src []byte) (*Composed, error) {
	img, det, err := decodeAndLocate(src)
	if err != nil {
		return nil, err
	}
	c.debugf("Object found at (%.1f, %.1f), radius %.1f", det.Center.X, det.Center.Y, det.Radius)

	name := c.SpriteName
	if name == "" {
		name = assets.DefaultSprite
	}
	sprite, err := LoadSprite(c.Assets, name)
	if err != nil {
		return nil, err
	}

	out := Paste(img, det, sprite)
	c.debugf("Target sprite size %dx%d at (%d, %d)",
		out.SpriteSize.Width, out.SpriteSize.Height, out.Placement.X, out.Placement.Y)
	return out, nil
}

func (c *Compositor) debugf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
