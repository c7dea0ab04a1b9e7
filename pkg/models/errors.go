package models

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by LoadError through errors.Is.
var (
	ErrFileUnreadable = errors.New("file unreadable")
	ErrInvalidFormat  = errors.New("invalid file format")
)

// ErrorKind classifies a failed load.
type ErrorKind int

const (
	// FileUnreadable means the path is missing or cannot be read.
	FileUnreadable ErrorKind = iota + 1
	// InvalidFormat means a structured file (glTF) could not be decoded.
	InvalidFormat
)

func (k ErrorKind) String() string {
	switch k {
	case FileUnreadable:
		return "file unreadable"
	case InvalidFormat:
		return "invalid format"
	default:
		return "unknown"
	}
}

// LoadError is returned when a whole file cannot be turned into a Scene.
// Per-line and per-triangle problems never produce a LoadError.
type LoadError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrFileUnreadable:
		return e.Kind == FileUnreadable
	case ErrInvalidFormat:
		return e.Kind == InvalidFormat
	}
	return false
}
