// Package intake implements the file operations exposed to clients:
// uploading a file into a group, downloading it back, reading the group's
// metadata manifest and listing the group's files.
package intake

import (
	"time"

	"github.com/rise-and-shine/filedepot/filestore"
	"github.com/rise-and-shine/filedepot/manifest"
	"github.com/rise-and-shine/filedepot/observability/logger"
)

const uploadSuccessMessage = "File uploaded and registered successfully"

// Service runs the intake operations against one FileStore.
type Service struct {
	fs        filestore.FileStore
	manifests *manifest.Store
	logger    logger.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.logger = l.Named("intake")
	}
}

// WithClock overrides the clock used for upload timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service. manifests must be backed by the same FileStore.
func New(fs filestore.FileStore, manifests *manifest.Store, opts ...Option) *Service {
	s := &Service{
		fs:        fs,
		manifests: manifests,
		logger:    logger.Named("intake"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
