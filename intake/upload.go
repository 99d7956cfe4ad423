package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/code19m/errx"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/rise-and-shine/filedepot/crate"
	"github.com/rise-and-shine/filedepot/filestore"
	"github.com/rise-and-shine/filedepot/manifest"
	"github.com/rise-and-shine/filedepot/meta"
	"github.com/rise-and-shine/filedepot/val"
)

// sniffLen is how much of the upload is read to detect its media type.
const sniffLen = 3072

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,16}$`)

// UploadInput is one uploaded file with its descriptive fields.
type UploadInput struct {
	Content      io.Reader `json:"-"             validate:"required"`
	OriginalName string    `json:"original_name" validate:"required,max=255"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`

	// FileID is generated when empty.
	FileID      string `json:"file_id"     validate:"omitempty,path_segment,max=128"`
	Group       string `json:"group"       validate:"required,path_segment,max=128"`
	Description string `json:"description"`
	CreatorID   string `json:"creator"`
	CreatorName string `json:"creator_name"`
	License     string `json:"license"`
	CapturedAt  string `json:"captured_at"`
	Version     int    `json:"version"     validate:"gte=0"`
}

// UploadResult describes the stored object and its manifest entry.
type UploadResult struct {
	Message      string       `json:"message"`
	FileID       string       `json:"file_id"`
	FilePath     string       `json:"file_path"`
	FileURI      string       `json:"file_uri"`
	OriginalName string       `json:"file_originalname"`
	FileName     string       `json:"file_filename"`
	Metadata     FileMetadata `json:"file_metadata"`
}

// FileMetadata is the manifest entry of a file as returned to clients.
type FileMetadata struct {
	Identifier     string `json:"identifier"`
	Name           string `json:"name"`
	EncodingFormat string `json:"encoding_format"`
	Description    string `json:"description,omitempty"`
	Version        int    `json:"version"`
	DatePublished  string `json:"date_published"`
	Author         string `json:"author,omitempty"`
	ContentSize    int64  `json:"content_size,omitempty"`
	License        string `json:"license,omitempty"`
	DateCreated    string `json:"date_created,omitempty"`
}

// Upload stores the file content at "{group}/{file_id}{ext}" and registers
// the file in the group's manifest. A key naming the manifest itself is
// rejected.
//
// The object is written before the manifest. If registration fails the
// object stays in place and the error is returned.
func (s *Service) Upload(ctx context.Context, in *UploadInput) (*UploadResult, error) {
	if err := val.ValidateSchema(in); err != nil {
		return nil, errx.Wrap(err)
	}

	fileID := in.FileID
	if fileID == "" {
		fileID = uuid.NewString()
	}

	ctx = meta.With(ctx, meta.GroupID, in.Group)
	ctx = meta.With(ctx, meta.FileID, fileID)
	log := s.logger.WithContext(ctx)

	content, contentType, ext, err := sniff(in.Content, in.ContentType, in.OriginalName)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	fileName := fileID + ext
	key := filestore.Join(in.Group, fileName)
	if strings.EqualFold(key, manifest.ManifestKey(in.Group)) {
		return nil, errx.New(
			"file name is reserved for the group manifest",
			errx.WithCode(val.CodeValidationFailed),
			errx.WithType(errx.T_Validation),
			errx.WithFields(errx.M{"file_id": "Must not name the group manifest"}),
			errx.WithDetails(errx.D{"file_path": key}),
		)
	}

	info, err := s.fs.Put(ctx, key, content, in.Size, contentType)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	fm := crate.FileMetadata{
		FileID:         fileID,
		FileName:       in.OriginalName,
		EncodingFormat: contentType,
		Description:    in.Description,
		Version:        in.Version,
		UploadedAt:     s.now().UTC().Format(time.RFC3339),
		ContentSize:    info.Size,
		License:        in.License,
		CapturedAt:     in.CapturedAt,
	}
	if in.CreatorID != "" {
		name := in.CreatorName
		if name == "" {
			name = in.CreatorID
		}
		fm.Author = &crate.Author{ID: in.CreatorID, Name: name}
	}

	m, err := s.manifests.RegisterFile(ctx, in.Group, fm)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"stored_object": key}))
	}

	group := s.manifests.Group(in.Group)
	entry, _ := m.File(group.FileURI(fileID))

	log.With(
		"file_path", key,
		"content_type", contentType,
		"size", info.Size,
		"version", entry.Version,
	).Info("file uploaded")

	return &UploadResult{
		Message:      uploadSuccessMessage,
		FileID:       fileID,
		FilePath:     key,
		FileURI:      entry.Identifier,
		OriginalName: in.OriginalName,
		FileName:     fileName,
		Metadata:     toFileMetadata(entry),
	}, nil
}

// sniff fills in the content type when the client sent none and picks the
// stored extension. The returned reader yields the complete content.
func sniff(r io.Reader, contentType, originalName string) (io.Reader, string, string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !extPattern.MatchString(ext) {
		ext = ""
	}

	if contentType != "" && contentType != filestore.ContentTypeOctetStream && ext != "" {
		return r, contentType, ext, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", "", errx.Wrap(err, errx.WithType(errx.T_Validation))
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if contentType == "" || contentType == filestore.ContentTypeOctetStream {
		contentType = mt.String()
	}
	if ext == "" {
		ext = mt.Extension()
	}

	return io.MultiReader(bytes.NewReader(head), r), contentType, ext, nil
}

func toFileMetadata(e crate.FileEntry) FileMetadata {
	return FileMetadata{
		Identifier:     e.Identifier,
		Name:           e.Name,
		EncodingFormat: e.EncodingFormat,
		Description:    e.Description,
		Version:        e.Version,
		DatePublished:  e.DatePublished,
		Author:         e.Author,
		ContentSize:    e.ContentSize,
		License:        e.License,
		DateCreated:    e.DateCreated,
	}
}
