// Package s3wr provides an AWS SDK v2 implementation of the filestore.FileStore interface.
//
// It targets AWS S3 and S3-compatible vendors (Cloudian, Ceph, MinIO) through a
// custom endpoint with path-style addressing.
package s3wr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/code19m/errx"
	"github.com/rise-and-shine/filedepot/filestore"
)

// Config defines the configuration options for the S3 client.
type Config struct {
	// Endpoint is an optional custom endpoint URL (e.g. "https://s3.vendor.example").
	Endpoint string `yaml:"endpoint"`

	// AccessKey is the access key id.
	AccessKey string `yaml:"access_key" validate:"required"`

	// SecretKey is the secret access key.
	SecretKey string `yaml:"secret_key" validate:"required" mask:"true"`

	// Region is the signing region.
	Region string `yaml:"region" validate:"required"`

	// Bucket is the bucket holding all groups.
	Bucket string `yaml:"bucket" validate:"required"`
}

// Client implements the filestore.FileStore interface using the AWS SDK.
type Client struct {
	client *s3.Client
	bucket string
}

// New creates a new S3 filestore client with static credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads reader to path. The body is buffered so the SDK can sign a seekable payload.
func (c *Client) Put(
	ctx context.Context,
	path string,
	reader io.Reader,
	_ int64,
	contentType string,
) (*filestore.FileInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	out, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, filestore.BackendFault(err, "put", path)
	}

	return &filestore.FileInfo{
		Path:        path,
		Size:        int64(len(data)),
		ContentType: contentType,
		ETag:        aws.ToString(out.ETag),
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
		return nil, nil, filestore.BackendFault(err, "get", path)
	}
	return data, &f.Info, nil
}

// Stream opens the object at path.
func (c *Client) Stream(ctx context.Context, path string) (*filestore.File, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, wrapS3Error(err, "get", path)
	}

	return &filestore.File{
		Content: out.Body,
		Info: filestore.FileInfo{
			Path:         path,
			Size:         aws.ToInt64(out.ContentLength),
			ContentType:  aws.ToString(out.ContentType),
			ETag:         aws.ToString(out.ETag),
			LastModified: aws.ToTime(out.LastModified),
		},
	}, nil
}

// Exists checks if an object exists at the specified path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, filestore.BackendFault(err, "head", path)
	}
	return true, nil
}

// List returns the objects under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]filestore.FileInfo, error) {
	var out []filestore.FileInfo

	p := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, filestore.BackendFault(err, "list", prefix)
		}
		for _, obj := range page.Contents {
			out = append(out, filestore.FileInfo{
				Path:         aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				ETag:         aws.ToString(obj.ETag),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// IsNotFound reports whether an SDK error means the object is absent.
// GetObject returns NoSuchKey, HeadObject returns a bare NotFound.
func IsNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

func wrapS3Error(err error, op, path string) error {
	if IsNotFound(err) {
		return filestore.NotFound(path)
	}
	return filestore.BackendFault(err, op, path)
}
