// Package imaging provides the raster operations the bot is built on.
//
// It decodes and encodes images, caches decoded files for the tool server, and
// turns photographs into binary foreground masks for object location.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Rasters produced here (grayscale, blurred, and mask images) always have
// bounds starting at (0,0), even when the source image does not.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless and never modifies its input, so they can be called concurrently.
//
// # Foreground Masks
//
// ForegroundMask assumes a dark subject against a lighter background. The
// pipeline is fixed: luminance, a 7x7 Gaussian blur, an Otsu threshold with
// inverted binarization, and a single 3x3 erosion. An image with a single
// intensity has no threshold and yields an empty mask marked Uniform.
//
// # Performance Considerations
//
// Cached images remain in memory until evicted. Long-running processes that
// load many distinct files should Evict paths they no longer need.
package imaging
