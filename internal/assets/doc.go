// Package assets resolves bundled resources such as the overlay sprite.
//
// Resources are read through the Loader capability. Three strategies exist and
// one is chosen once at startup:
//
//   - Embedded: resources compiled into the binary (the default)
//   - Dir: loose files below a root directory
//   - Archive: entries inside a zip archive (a packaged plugin bundle)
//
// All strategies address resources by slash-separated relative names, for
// example "res/img/perryhat.png".
//
// # Error Handling
//
// A resource that is missing, unreadable, or inside a corrupt archive is
// reported as a *ResourceError, which matches ErrResource under errors.Is.
package assets
