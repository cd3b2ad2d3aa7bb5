package assets

import (
	"archive/zip"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// DefaultSprite is the name of the bundled hat sprite.
const DefaultSprite = "res/img/perryhat.png"

//go:embed res
var bundled embed.FS

// ErrResource matches every *ResourceError under errors.Is.
var ErrResource = errors.New("resource unavailable")

// ResourceError reports a resource that could not be opened or read.
type ResourceError struct {
	// Name is the resource name that was requested.
	Name string

	// Err is the underlying cause.
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %q: %v", e.Name, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrResource.
func (e *ResourceError) Is(target error) bool { return target == ErrResource }

// Loader opens named resources as byte streams.
//
// Callers must close the returned reader.
type Loader interface {
	Open(name string) (io.ReadCloser, error)
}

// Source selects a Loader strategy.
type Source string

const (
	SourceEmbedded Source = "embedded"
	SourceDir      Source = "dir"
	SourceArchive  Source = "archive"
)

// fsLoader serves resources from any fs.FS.
type fsLoader struct {
	fsys fs.FS
}

func (l *fsLoader) Open(name string) (io.ReadCloser, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, &ResourceError{Name: name, Err: err}
	}
	return f, nil
}

// Embedded returns a Loader over the resources compiled into the binary.
func Embedded() Loader {
	return &fsLoader{fsys: bundled}
}

// NewDirLoader returns a Loader that reads loose files below root.
func NewDirLoader(root string) Loader {
	return &fsLoader{fsys: os.DirFS(root)}
}

// ArchiveLoader reads resources from the entries of a zip archive.
type ArchiveLoader struct {
	fsLoader
	closer io.Closer
}

// OpenArchive opens the zip archive at path. The archive stays open until
// Close is called.
func OpenArchive(path string) (*ArchiveLoader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ResourceError{Name: path, Err: err}
	}
	return &ArchiveLoader{fsLoader: fsLoader{fsys: rc}, closer: rc}, nil
}

// NewArchiveLoader reads a zip archive of the given size from r.
func NewArchiveLoader(r io.ReaderAt, size int64) (*ArchiveLoader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &ResourceError{Name: "archive", Err: err}
	}
	return &ArchiveLoader{fsLoader: fsLoader{fsys: zr}}, nil
}

// Close releases the underlying archive file, if any.
func (l *ArchiveLoader) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Open builds the Loader for the configured source. The returned close
// function must be called on shutdown; it is never nil.
func Open(source Source, path string) (Loader, func() error, error) {
	noop := func() error { return nil }

	switch source {
	case SourceEmbedded, "":
		return Embedded(), noop, nil
	case SourceDir:
		if path == "" {
			return nil, noop, fmt.Errorf("asset source %q requires a path", source)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, noop, fmt.Errorf("asset directory: %w", err)
		}
		if !info.IsDir() {
			return nil, noop, fmt.Errorf("asset directory %s is not a directory", path)
		}
		return NewDirLoader(path), noop, nil
	case SourceArchive:
		if path == "" {
			return nil, noop, fmt.Errorf("asset source %q requires a path", source)
		}
		l, err := OpenArchive(path)
		if err != nil {
			return nil, noop, err
		}
		return l, l.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown asset source: %s", source)
	}
}

// ReadAll opens name through l and returns its full contents.
func ReadAll(l Loader, name string) ([]byte, error) {
	rc, err := l.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &ResourceError{Name: name, Err: err}
	}
	return data, nil
}
