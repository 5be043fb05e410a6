// Package docstore is the client side of the remote document store. Documents
// are JSON objects addressed by slash-separated paths such as
// users/{userID}/habits/{habitID}; a document's parent is the path without its
// last segment.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when no document exists at the path.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidPath is returned for empty paths or segments containing '/'.
	ErrInvalidPath = errors.New("invalid document path")
)

// Document is the raw JSON body of a stored document.
type Document []byte

// Entry is a child document returned by Children.
type Entry struct {
	Key string
	Doc Document
}

// Store is a document store with tree path semantics.
type Store interface {
	// Get returns the document at path or ErrNotFound.
	Get(ctx context.Context, path Path) (Document, error)
	// Set creates or replaces the document at path.
	Set(ctx context.Context, path Path, doc Document) error
	// Delete removes the document at path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path Path) error
	// Children returns the direct children of parent ordered by key.
	Children(ctx context.Context, parent Path) ([]Entry, error)
	// GenerateID returns a new key that is unique under parent.
	GenerateID(ctx context.Context, parent Path) (string, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Path addresses a document.
type Path string

// Join builds a path from segments.
func Join(segments ...string) (Path, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: no segments", ErrInvalidPath)
	}
	for _, s := range segments {
		if err := validSegment(s); err != nil {
			return "", err
		}
	}
	return Path(strings.Join(segments, "/")), nil
}

// Child returns the path of key below p.
func (p Path) Child(key string) (Path, error) {
	if err := validSegment(key); err != nil {
		return "", err
	}
	if p == "" {
		return Path(key), nil
	}
	return p + "/" + Path(key), nil
}

// Parent returns the path without its last segment, or "" for a root document.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Base returns the last segment of the path.
func (p Path) Base() string {
	i := strings.LastIndexByte(string(p), '/')
	return string(p[i+1:])
}

// Segments splits the path.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), "/")
}

func (p Path) String() string { return string(p) }

// Validate checks every segment of p.
func (p Path) Validate() error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for _, s := range p.Segments() {
		if err := validSegment(s); err != nil {
			return err
		}
	}
	return nil
}

func validSegment(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty segment", ErrInvalidPath)
	}
	if strings.ContainsRune(s, '/') {
		return fmt.Errorf("%w: segment %q contains '/'", ErrInvalidPath, s)
	}
	return nil
}
