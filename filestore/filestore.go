// Package filestore provides an abstraction for file storage operations.
//
// It defines a FileStore interface implemented by the storage backends
// (MinIO, AWS S3, local filesystem, memory). Backends report a missing object
// as an errx error with CodeFileNotFound so callers can tell "absent" apart
// from a backend fault.
package filestore

import (
	"context"
	"io"
	"strings"
	"time"
)

// FileStore defines the interface for file storage operations.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Put stores the content of reader at path, replacing any previous object.
	// size may be -1 when unknown.
	Put(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (*FileInfo, error)

	// Get reads the whole object at path.
	Get(ctx context.Context, path string) ([]byte, *FileInfo, error)

	// Stream opens the object at path for reading.
	// The caller is responsible for closing File.Content.
	Stream(ctx context.Context, path string) (*File, error)

	// Exists checks if an object exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the objects whose path starts with prefix, sorted by path.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// File represents a stored file with its content and metadata.
type File struct {
	Content io.ReadCloser
	Info    FileInfo
}

// FileInfo contains metadata about a stored file.
type FileInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Join builds an object path from segments using "/" regardless of OS.
func Join(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "/")
}

// ValidPath reports whether path is a relative object key without "." or ".." segments.
func ValidPath(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
