// Package manifest keeps one metadata manifest per file group in a FileStore.
//
// Registering a file is a read-merge-write of the whole manifest document:
// the stored document is fetched, parsed, reconciled with the new file and
// written back with a single Put. Without a Locker two concurrent
// registrations for the same group can overwrite each other.
package manifest

import (
	"bytes"
	"context"
	"strings"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/filedepot/crate"
	"github.com/rise-and-shine/filedepot/filestore"
	"github.com/rise-and-shine/filedepot/meta"
	"github.com/rise-and-shine/filedepot/observability/logger"
)

// DocumentName is the object name of a manifest inside its group.
const DocumentName = crate.MetadataID

// CodeManifestNotFound is returned when a group has no manifest yet.
const CodeManifestNotFound = "MANIFEST_NOT_FOUND"

// ManifestKey returns the object key of the group's manifest.
func ManifestKey(group string) string {
	return filestore.Join(group, DocumentName)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger logger.Logger
	locker Locker
}

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSerializedWrites makes RegisterFile calls for the same group run one at
// a time within this process. It does not coordinate separate processes
// sharing a bucket, see WithLocker for that.
func WithSerializedWrites() Option {
	return WithLocker(newKeyedMutex())
}

// WithLocker makes RegisterFile hold l for the group during the
// read-merge-write.
func WithLocker(l Locker) Option {
	return func(o *options) {
		o.locker = l
	}
}

// Store reads and updates group manifests.
type Store struct {
	fs      filestore.FileStore
	baseURI string
	logger  logger.Logger
	locker  Locker
}

// New creates a Store. baseURI is the prefix group URIs are built on,
// typically "{endpoint}/{bucket}".
func New(fs filestore.FileStore, baseURI string, opts ...Option) *Store {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		fs:      fs,
		baseURI: baseURI,
		logger:  logger.Named("manifest"),
		locker:  o.locker,
	}
	if o.logger != nil {
		s.logger = o.logger.Named("manifest")
	}
	return s
}

// Group returns the crate.Group for a group id.
func (s *Store) Group(id string) crate.Group {
	return crate.NewGroup(s.baseURI, id)
}

// RegisterFile merges file into the group's manifest, creating the manifest
// on the first upload, and returns the manifest as written.
//
// A stored manifest that cannot be parsed is reported with
// crate.CodeMalformedManifest and left as it is.
func (s *Store) RegisterFile(ctx context.Context, group string, file crate.FileMetadata) (*crate.Manifest, error) {
	if err := validateGroup(group); err != nil {
		return nil, err
	}

	ctx = meta.With(ctx, meta.GroupID, group)
	ctx = meta.With(ctx, meta.FileID, file.FileID)
	log := s.logger.WithContext(ctx)

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, group)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		defer unlock()
	}

	existing, err := s.load(ctx, group)
	if err != nil && !errx.IsCodeIn(err, CodeManifestNotFound) {
		if errx.IsCodeIn(err, crate.CodeMalformedManifest) {
			log.Warnx(err)
		}
		return nil, errx.Wrap(err)
	}

	updated, err := crate.Reconcile(existing, s.Group(group), file)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	data, err := crate.Serialize(updated)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if err = ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}

	_, err = s.fs.Put(ctx, ManifestKey(group), bytes.NewReader(data), int64(len(data)), filestore.ContentTypeJSONLD)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	log.With(
		"created", existing == nil,
		"files", len(updated.Files),
		"authors", len(updated.Authors),
	).Debug("manifest written")

	return updated, nil
}

// GetManifest returns the parsed manifest of the group.
func (s *Store) GetManifest(ctx context.Context, group string) (*crate.Manifest, error) {
	if err := validateGroup(group); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, group)
	return m, errx.Wrap(err)
}

// GetDocument returns the stored manifest document after checking that it parses.
func (s *Store) GetDocument(ctx context.Context, group string) ([]byte, error) {
	if err := validateGroup(group); err != nil {
		return nil, err
	}
	data, err := s.read(ctx, group)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if _, err = crate.Parse(data); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"group": group}))
	}
	return data, nil
}

func (s *Store) load(ctx context.Context, group string) (*crate.Manifest, error) {
	data, err := s.read(ctx, group)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	m, err := crate.Parse(data)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"group": group}))
	}
	return m, nil
}

func (s *Store) read(ctx context.Context, group string) ([]byte, error) {
	data, _, err := s.fs.Get(ctx, ManifestKey(group))
	if filestore.IsNotFound(err) {
		return nil, errx.New(
			"no metadata found for this group",
			errx.WithCode(CodeManifestNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"group": group}),
		)
	}
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return data, nil
}

func validateGroup(group string) error {
	if strings.TrimSpace(group) == "" || strings.Contains(group, "/") || !filestore.ValidPath(group) {
		return errx.New(
			"invalid group id",
			errx.WithCode(crate.CodeInvalidMetadata),
			errx.WithType(errx.T_Validation),
			errx.WithFields(errx.M{"group": "must be a single non-empty path segment"}),
		)
	}
	return nil
}
