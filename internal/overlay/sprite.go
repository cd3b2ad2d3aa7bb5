package overlay

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/perryfier/internal/assets"
	imgproc "github.com/ironsheep/perryfier/internal/imaging"
)

// Sprite is a decoded overlay image with its own alpha channel.
// Sprites are never modified after loading.
type Sprite struct {
	// Name is the asset name the sprite was loaded from.
	Name string

	// Image holds non-premultiplied pixels anchored at the origin.
	Image *image.NRGBA
}

// Size returns the sprite's intrinsic dimensions.
func (s *Sprite) Size() Size {
	b := s.Image.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// NewSprite wraps an in-memory image as a sprite. The image is copied.
func NewSprite(name string, img image.Image) (*Sprite, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &assets.ResourceError{Name: name, Err: errors.New("sprite has no pixels")}
	}
	return &Sprite{Name: name, Image: imaging.Clone(img)}, nil
}

// LoadSprite reads and decodes the named sprite through l.
//
// Parameters:
//   - l: Asset loader resolving name.
//   - name: Slash-separated asset name, e.g. res/img/perryhat.png.
//
// Returns:
//   - *Sprite: The decoded sprite.
//   - error: A *assets.ResourceError if the asset is missing, unreadable, or
//     not a decodable image.
func LoadSprite(l assets.Loader, name string) (*Sprite, error) {
	data, err := assets.ReadAll(l, name)
	if err != nil {
		return nil, err
	}

	img, err := imgproc.Decode(data)
	if err != nil {
		return nil, &assets.ResourceError{Name: name, Err: err}
	}

	return NewSprite(name, img)
}
