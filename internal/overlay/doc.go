// Package overlay places a decorative sprite on the principal object of a photo.
//
// Compose runs the object locator, scales the sprite by a single factor so it
// spans at least 30% of the image width or height, centers it on the detected
// object, lifts it by three quarters of the object's radius, and alpha-blends
// it onto a copy of the photo. ScaleFactor, ScaledSize and Placement expose
// each step as a pure function.
//
// The sprite keeps its aspect ratio up to the floor of each scaled dimension.
// Placement may fall partly or wholly outside the photo; the sprite is
// clipped to the canvas.
package overlay
