package main

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log"
)

// Sentinel errors for the failure modes the engine reports to the renderer.
var (
	ErrNoImagesFound     = errors.New("no image files found")
	ErrNotFound          = errors.New("file not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// DecodeError wraps a codec failure for a specific image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// classifyLoadError maps filesystem errors onto the engine's taxonomy and
// wraps everything else as a DecodeError. A nil error passes through.
func classifyLoadError(path string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	case errors.Is(err, image.ErrFormat):
		// Extension looked right but no registered codec recognizes the
		// content.
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	default:
		var de *DecodeError
		if errors.As(err, &de) {
			return err
		}
		return &DecodeError{Path: path, Err: err}
	}
}

var debugMode bool

func debugLog(format string, args ...interface{}) {
	if debugMode {
		log.Printf("Debug: "+format, args...)
	}
}

// debugAssert reports a broken internal invariant (a CacheInconsistency).
// It panics under -debug so bugs fail loudly during development; in normal
// runs the session keeps going.
func debugAssert(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	if debugMode {
		panic(fmt.Sprintf("cache inconsistency: "+format, args...))
	}
	log.Printf("Error: cache inconsistency: "+format, args...)
}
