// Package miniowr provides a MinIO implementation of the filestore.FileStore interface.
package miniowr

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rise-and-shine/filedepot/filestore"
)

const (
	codeNoSuchKey    = "NoSuchKey"
	codeNotFound     = "NotFound"
	codeNoSuchBucket = "NoSuchBucket"
)

// Client implements the filestore.FileStore interface using MinIO.
type Client struct {
	client *minio.Client
	bucket string
}

// New creates a new MinIO filestore client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	endpoint, secure := SplitEndpoint(cfg.Endpoint, cfg.UseSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"endpoint": endpoint}))
	}

	if cfg.CreateBucket {
		exists, err := client.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			return nil, filestore.BackendFault(err, "bucket_exists", cfg.Bucket)
		}
		if !exists {
			err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region})
			if err != nil {
				return nil, filestore.BackendFault(err, "make_bucket", cfg.Bucket)
			}
		}
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Put uploads reader to path. Unknown sizes are buffered so the upload is a single PUT.
func (c *Client) Put(
	ctx context.Context,
	path string,
	reader io.Reader,
	size int64,
	contentType string,
) (*filestore.FileInfo, error) {
	if size < 0 {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		reader = bytes.NewReader(data)
		size = int64(len(data))
	}

	info, err := c.client.PutObject(ctx, c.bucket, path, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, filestore.BackendFault(err, "put", path)
	}

	return &filestore.FileInfo{
		Path:         path,
		Size:         info.Size,
		ContentType:  contentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// Get reads the whole object at path.
func (c *Client) Get(ctx context.Context, path string) ([]byte, *filestore.FileInfo, error) {
	f, err := c.Stream(ctx, path)
	if err != nil {
		return nil, nil, errx.Wrap(err)
	}
	defer func() { _ = f.Content.Close() }()

	data, err := io.ReadAll(f.Content)
	if err != nil {
		return nil, nil, wrapMinioError(err, "get", path)
	}
	return data, &f.Info, nil
}

// Stream opens the object at path. GetObject is lazy, so Stat is used to surface a missing key.
func (c *Client) Stream(ctx context.Context, path string) (*filestore.File, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapMinioError(err, "get", path)
	}

	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, wrapMinioError(err, "stat", path)
	}

	return &filestore.File{
		Content: obj,
		Info:    toFileInfo(stat),
	}, nil
}

// Exists checks if an object exists at the specified path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, filestore.BackendFault(err, "stat", path)
	}
	return true, nil
}

// List returns the objects under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]filestore.FileInfo, error) {
	var out []filestore.FileInfo
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, filestore.BackendFault(obj.Err, "list", prefix)
		}
		out = append(out, toFileInfo(obj))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// IsNotFound reports whether a MinIO error means the object is absent.
func IsNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case codeNoSuchKey, codeNotFound:
		return true
	default:
		return false
	}
}

// SplitEndpoint strips a URL scheme from endpoint. minio-go wants a bare host.
func SplitEndpoint(endpoint string, useSSL bool) (string, bool) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, useSSL
	}
	return u.Host, u.Scheme == "https"
}

func wrapMinioError(err error, op, path string) error {
	if IsNotFound(err) {
		return filestore.NotFound(path)
	}
	if minio.ToErrorResponse(err).Code == codeNoSuchBucket {
		return errx.Wrap(filestore.BackendFault(err, op, path), errx.WithDetails(errx.D{"reason": "bucket missing"}))
	}
	return filestore.BackendFault(err, op, path)
}

func toFileInfo(obj minio.ObjectInfo) filestore.FileInfo {
	return filestore.FileInfo{
		Path:         obj.Key,
		Size:         obj.Size,
		ContentType:  obj.ContentType,
		ETag:         obj.ETag,
		LastModified: obj.LastModified,
	}
}
