package crate

import (
	"slices"
	"strings"

	"github.com/code19m/errx"
)

// FileMetadata describes one uploaded file as it is registered in a manifest.
type FileMetadata struct {
	FileID         string
	FileName       string
	EncodingFormat string
	Description    string
	Version        int
	UploadedAt     string
	Author         *Author
	ContentSize    int64
	License        string
	CapturedAt     string
}

// Author is the uploader of a file.
type Author struct {
	ID   string
	Name string
}

// Reconcile returns a new manifest with meta merged into existing.
// A nil existing manifest starts a new one for the group.
//
// The existing manifest is never modified. A file already present is replaced
// in place and its version never goes down. Authors are added once and kept.
func Reconcile(existing *Manifest, group Group, meta FileMetadata) (*Manifest, error) {
	if err := validateInput(group, meta); err != nil {
		return nil, err
	}

	var m *Manifest
	if existing == nil {
		m = newManifest(group, meta)
	} else {
		m = existing.Clone()
		m.Normalize()
	}

	entry := FileEntry{
		Identifier:     group.FileURI(meta.FileID),
		Name:           meta.FileName,
		EncodingFormat: meta.EncodingFormat,
		Description:    meta.Description,
		DatePublished:  meta.UploadedAt,
		ContentSize:    meta.ContentSize,
		License:        meta.License,
		DateCreated:    meta.CapturedAt,
	}

	if meta.Author != nil && meta.Author.ID != "" {
		upsertAuthor(m, *meta.Author)
		entry.Author = meta.Author.ID
	}

	i, found := searchFile(m.Files, entry.Identifier)
	if found {
		entry.Version = max(meta.Version, m.Files[i].Version+1)
		m.Files[i] = entry
	} else {
		entry.Version = max(meta.Version, 1)
		m.Files = slices.Insert(m.Files, i, entry)
	}

	return m, nil
}

func validateInput(group Group, meta FileMetadata) error {
	fields := errx.M{}
	if strings.TrimSpace(group.ID) == "" {
		fields["group"] = "required"
	}
	if strings.TrimSpace(meta.FileID) == "" {
		fields["file_id"] = "required"
	}
	if strings.TrimSpace(meta.FileName) == "" {
		fields["file_name"] = "required"
	}
	if len(fields) > 0 {
		return invalidMetadata(fields)
	}
	return nil
}

func newManifest(group Group, meta FileMetadata) *Manifest {
	return &Manifest{
		Root: Root{
			Identifier:    group.ID,
			Name:          "Group " + group.ID,
			Description:   "RO-Crate for file group " + group.ID,
			Version:       max(meta.Version, 1),
			URL:           group.URI,
			DatePublished: meta.UploadedAt,
		},
	}
}

// upsertAuthor adds a, or refreshes the name of the existing entry when a
// non-empty name is given.
func upsertAuthor(m *Manifest, a Author) {
	i, found := searchAuthor(m.Authors, a.ID)
	if found {
		if a.Name != "" {
			m.Authors[i].Name = a.Name
		}
		return
	}
	m.Authors = slices.Insert(m.Authors, i, AuthorEntry{Identifier: a.ID, Name: a.Name})
}
