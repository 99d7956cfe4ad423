// Package localfs provides a local filesystem implementation of the filestore.FileStore interface.
package localfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/code19m/errx"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rise-and-shine/filedepot/filestore"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	tmpPattern = ".upload-*"
	tmpPrefix  = ".upload-"

	// typePrefix names the sidecar holding an object's content type.
	typePrefix = ".type-"
)

// Config defines the configuration options for the local backend.
type Config struct {
	// BasePath is the root directory for all groups.
	BasePath string `yaml:"base_path" validate:"required" default:"/files"`
}

// Store implements filestore.FileStore on a directory tree.
// Objects are written to a temp file and renamed into place, so readers never
// observe a partial object. The content type given to Put is kept in a hidden
// sidecar file next to the object.
type Store struct {
	root string
}

// New creates the root directory if needed and returns a Store rooted there.
func New(cfg Config) (*Store, error) {
	root, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err = os.MkdirAll(root, dirPerm); err != nil {
		return nil, filestore.BackendFault(err, "mkdir", root)
	}
	return &Store{root: root}, nil
}

// Root returns the absolute base directory.
func (s *Store) Root() string {
	return s.root
}

// Put writes reader to path, creating parent directories on demand.
func (s *Store) Put(
	ctx context.Context,
	path string,
	reader io.Reader,
	_ int64,
	contentType string,
) (*filestore.FileInfo, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err = ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}

	dir := filepath.Dir(full)
	if err = os.MkdirAll(dir, dirPerm); err != nil {
		return nil, filestore.BackendFault(err, "mkdir", path)
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return nil, filestore.BackendFault(err, "create", path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, reader)
	if err != nil {
		_ = tmp.Close()
		return nil, filestore.BackendFault(err, "write", path)
	}
	if err = tmp.Close(); err != nil {
		return nil, filestore.BackendFault(err, "close", path)
	}
	if err = os.Chmod(tmp.Name(), filePerm); err != nil {
		return nil, filestore.BackendFault(err, "chmod", path)
	}
	if err = os.Rename(tmp.Name(), full); err != nil {
		return nil, filestore.BackendFault(err, "rename", path)
	}
	if err = writeContentType(full, contentType); err != nil {
		return nil, filestore.BackendFault(err, "write content type", path)
	}

	st, err := os.Stat(full)
	if err != nil {
		return nil, filestore.BackendFault(err, "stat", path)
	}

	return &filestore.FileInfo{
		Path:         path,
		Size:         size,
		ContentType:  contentType,
		LastModified: st.ModTime(),
	}, nil
}

// Get reads the whole file at path.
func (s *Store) Get(ctx context.Context, path string) ([]byte, *filestore.FileInfo, error) {
	f, err := s.Stream(ctx, path)
	if err != nil {
		return nil, nil, errx.Wrap(err)
	}
	defer func() { _ = f.Content.Close() }()

	data, err := io.ReadAll(f.Content)
	if err != nil {
		return nil, nil, filestore.BackendFault(err, "read", path)
	}
	return data, &f.Info, nil
}

// Stream opens the file at path. Objects stored without a content type get
// one sniffed from the file head.
func (s *Store) Stream(ctx context.Context, path string) (*filestore.File, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err = ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, wrapFSError(err, "open", path)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, filestore.BackendFault(err, "stat", path)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, filestore.NotFound(path)
	}

	contentType := readContentType(full)
	if contentType == "" {
		contentType = filestore.ContentTypeOctetStream
		if mt, err := mimetype.DetectFile(full); err == nil {
			contentType = mt.String()
		}
	}

	return &filestore.File{
		Content: f,
		Info: filestore.FileInfo{
			Path:         path,
			Size:         st.Size(),
			ContentType:  contentType,
			LastModified: st.ModTime(),
		},
	}, nil
}

// Exists checks if a regular file exists at path.
func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, errx.Wrap(err)
	}

	st, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, filestore.BackendFault(err, "stat", path)
	}
	return !st.IsDir(), nil
}

// List walks the tree below prefix. Temp files of in-flight writes and
// content type sidecars are skipped.
func (s *Store) List(ctx context.Context, prefix string) ([]filestore.FileInfo, error) {
	start := s.root
	if dir := prefixDir(prefix); dir != "" {
		resolved, err := s.resolve(dir)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		start = resolved
	}

	var out []filestore.FileInfo
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tmpPrefix) || strings.HasPrefix(d.Name(), typePrefix) {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, filestore.FileInfo{
			Path:         key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, filestore.BackendFault(err, "list", prefix)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func typePath(full string) string {
	return filepath.Join(filepath.Dir(full), typePrefix+filepath.Base(full))
}

// writeContentType records contentType for the object at full. An empty type
// drops any earlier record.
func writeContentType(full, contentType string) error {
	if contentType == "" {
		err := os.Remove(typePath(full))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.WriteFile(typePath(full), []byte(contentType), filePerm)
}

func readContentType(full string) string {
	data, err := os.ReadFile(typePath(full))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// resolve maps an object key to an absolute path inside root.
func (s *Store) resolve(path string) (string, error) {
	if !filestore.ValidPath(path) {
		return "", filestore.InvalidPath(path)
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", filestore.InvalidPath(path)
	}
	return full, nil
}

// prefixDir returns the directory part of a list prefix ("g1/ab" -> "g1").
func prefixDir(prefix string) string {
	i := strings.LastIndex(prefix, "/")
	if i <= 0 {
		return ""
	}
	return prefix[:i]
}

func wrapFSError(err error, op, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return filestore.NotFound(path)
	}
	return filestore.BackendFault(err, op, path)
}
