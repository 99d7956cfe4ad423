// Package memfs provides an in-memory implementation of the filestore.FileStore interface.
//
// It backs the "memory" storage type for local runs and serves as the store
// double in tests.
package memfs

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // etag only
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filedepot/filestore"
)

type object struct {
	data []byte
	info filestore.FileInfo
}

// Store keeps objects in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		objects: make(map[string]object),
		now:     time.Now,
	}
}

func (s *Store) Put(
	ctx context.Context,
	path string,
	reader io.Reader,
	_ int64,
	contentType string,
) (*filestore.FileInfo, error) {
	if !filestore.ValidPath(path) {
		return nil, filestore.InvalidPath(path)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err = ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}

	sum := md5.Sum(data) //nolint:gosec // etag only
	info := filestore.FileInfo{
		Path:         path,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: s.now(),
	}

	s.mu.Lock()
	s.objects[path] = object{data: data, info: info}
	s.mu.Unlock()

	return &info, nil
}

func (s *Store) Get(ctx context.Context, path string) ([]byte, *filestore.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errx.Wrap(err)
	}

	s.mu.RLock()
	obj, ok := s.objects[path]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, filestore.NotFound(path)
	}

	info := obj.info
	return bytes.Clone(obj.data), &info, nil
}

func (s *Store) Stream(ctx context.Context, path string) (*filestore.File, error) {
	data, info, err := s.Get(ctx, path)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return &filestore.File{
		Content: io.NopCloser(bytes.NewReader(data)),
		Info:    *info,
	}, nil
}

func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]filestore.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]filestore.FileInfo, 0)
	for k, obj := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, obj.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
