package intake

import (
	"context"
	"strings"

	"github.com/code19m/errx"
	"github.com/samber/lo"

	"github.com/rise-and-shine/filedepot/filestore"
	"github.com/rise-and-shine/filedepot/manifest"
	"github.com/rise-and-shine/filedepot/val"
)

// healthKey is probed to check that the storage backend answers.
const healthKey = ".health"

// DownloadInput names a stored object.
type DownloadInput struct {
	Group string `params:"group" validate:"required,path_segment"`
	File  string `params:"file"  validate:"required,path_segment"`
}

// Download opens the stored object for streaming. The caller closes the content.
func (s *Service) Download(ctx context.Context, in *DownloadInput) (*filestore.File, error) {
	if err := val.ValidateSchema(in); err != nil {
		return nil, errx.Wrap(err)
	}
	f, err := s.fs.Stream(ctx, filestore.Join(in.Group, in.File))
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return f, nil
}

// MetadataInput names a group.
type MetadataInput struct {
	Group string `params:"group" validate:"required,path_segment"`
}

// Metadata returns the group's manifest document as stored.
func (s *Service) Metadata(ctx context.Context, in *MetadataInput) ([]byte, error) {
	if err := val.ValidateSchema(in); err != nil {
		return nil, errx.Wrap(err)
	}
	doc, err := s.manifests.GetDocument(ctx, in.Group)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return doc, nil
}

// ListFilesInput names a group.
type ListFilesInput struct {
	Group string `params:"group" validate:"required,path_segment"`
}

// ListFilesResult lists the objects of a group.
type ListFilesResult struct {
	Group string               `json:"group"`
	Files []filestore.FileInfo `json:"files"`
}

// ListFiles returns the group's stored objects without its manifest.
func (s *Service) ListFiles(ctx context.Context, in *ListFilesInput) (*ListFilesResult, error) {
	if err := val.ValidateSchema(in); err != nil {
		return nil, errx.Wrap(err)
	}

	items, err := s.fs.List(ctx, in.Group+"/")
	if err != nil {
		return nil, errx.Wrap(err)
	}

	key := manifest.ManifestKey(in.Group)
	files := lo.Filter(items, func(fi filestore.FileInfo, _ int) bool {
		return fi.Path != key && !strings.HasSuffix(fi.Path, "/")
	})

	return &ListFilesResult{Group: in.Group, Files: files}, nil
}

// HealthInput is empty.
type HealthInput struct{}

// HealthResult reports the service state.
type HealthResult struct {
	Status string `json:"status"`
}

// Health checks that the storage backend is reachable.
func (s *Service) Health(ctx context.Context, _ *HealthInput) (*HealthResult, error) {
	if _, err := s.fs.Exists(ctx, healthKey); err != nil {
		return nil, errx.Wrap(err)
	}
	return &HealthResult{Status: "ok"}, nil
}
