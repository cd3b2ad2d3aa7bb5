package detection

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an object could not be located.
type ErrorKind string

const (
	// InvalidImage means the input bytes could not be decoded as an image.
	InvalidImage ErrorKind = "invalid_image"

	// NoObjectFound means the image decoded but yielded no foreground contour.
	NoObjectFound ErrorKind = "no_object_found"
)

// Sentinels for errors.Is. A *DetectionError matches the sentinel of its Kind.
var (
	ErrInvalidImage  = &DetectionError{Kind: InvalidImage}
	ErrNoObjectFound = &DetectionError{Kind: NoObjectFound}
)

// DetectionError is returned by Locate and LocateBytes.
type DetectionError struct {
	Kind ErrorKind

	// Err is the underlying cause, if any.
	Err error
}

func (e *DetectionError) Error() string {
	var msg string
	switch e.Kind {
	case InvalidImage:
		msg = "invalid image"
	case NoObjectFound:
		msg = "no object found"
	default:
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DetectionError) Unwrap() error { return e.Err }

// Is reports whether target is a *DetectionError of the same kind.
func (e *DetectionError) Is(target error) bool {
	t, ok := target.(*DetectionError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the DetectionError kind found in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var de *DetectionError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
