// Package detection locates the principal foreground object in a photo.
//
// Locate reduces an image to a binary foreground mask (see
// imaging.ForegroundMask), extracts the external contours of that mask, keeps
// the one enclosing the largest area, and fits a minimal enclosing circle to
// it. The circle's center and radius estimate where the object is and how big
// it is. The detector finds "the largest dark blob"; it does not classify.
//
// # Backends
//
// The default build uses a pure Go pipeline built on bild. Building with
// -tags gocv switches Locate to OpenCV through gocv; the Backend constant
// names the compiled-in implementation.
//
// # Contour Topology
//
// Foreground pixels are 8-connected and background pixels 4-connected. Only
// external contours are reported: holes are filled, and blobs nested inside
// a hole are part of the enclosing region.
//
// # Coordinate System
//
// Results are in the source image's coordinate space:
//   - Origin at the top-left corner of the image bounds
//   - X increases rightward, Y increases downward
//   - Circle centers are continuous; pixel (x, y) has its center at (x, y)
//
// # Errors
//
// Failures are returned as *DetectionError. Use errors.Is with
// ErrInvalidImage (undecodable or empty input) or ErrNoObjectFound (no
// contrast, or no foreground left after erosion).
//
// # Limitations
//
// The blur size and threshold method are fixed. They suit a dark subject on a
// light, uncluttered background; low-contrast or busy photos may pick the
// wrong region.
package detection
