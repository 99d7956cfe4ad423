// Package backend selects and builds the filestore.FileStore implementation
// named in the storage configuration.
package backend

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filedepot/filestore"
	"github.com/rise-and-shine/filedepot/filestore/localfs"
	"github.com/rise-and-shine/filedepot/filestore/memfs"
	"github.com/rise-and-shine/filedepot/filestore/miniowr"
	"github.com/rise-and-shine/filedepot/filestore/s3wr"
)

// Storage types.
const (
	TypeLocal  = "local"
	TypeRemote = "remote"
	TypeMemory = "memory"
)

// Remote drivers.
const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

const codeInvalidStorageConfig = "INVALID_STORAGE_CONFIG"

// Config selects the storage backend.
type Config struct {
	// Type is one of "local", "remote" or "memory".
	Type string `yaml:"type" validate:"oneof=local remote memory" default:"remote"`

	// Local configures the filesystem backend. Used when Type is "local".
	Local localfs.Config `yaml:"local"`

	// Remote configures the object store backend. Used when Type is "remote".
	Remote RemoteConfig `yaml:"remote"`
}

// RemoteConfig holds the connection settings shared by both remote drivers.
type RemoteConfig struct {
	// Driver is "minio" (minio-go) or "s3" (aws-sdk-go-v2).
	Driver string `yaml:"driver" validate:"oneof=minio s3" default:"minio"`

	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key" mask:"true"`
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket" default:"no-bucket-name"`
	UseSSL       bool   `yaml:"use_ssl"`
	CreateBucket bool   `yaml:"create_bucket"`
}

// Validate checks the fields required by the selected type.
func (c Config) Validate() error {
	var missing []string
	switch c.Type {
	case TypeLocal:
		if c.Local.BasePath == "" {
			missing = append(missing, "local.base_path")
		}
	case TypeRemote:
		r := c.Remote
		if r.AccessKey == "" {
			missing = append(missing, "remote.access_key")
		}
		if r.SecretKey == "" {
			missing = append(missing, "remote.secret_key")
		}
		if r.Bucket == "" {
			missing = append(missing, "remote.bucket")
		}
		if r.Driver == DriverMinio && r.Endpoint == "" {
			missing = append(missing, "remote.endpoint")
		}
		if r.Driver == DriverS3 && r.Region == "" {
			missing = append(missing, "remote.region")
		}
	case TypeMemory:
	default:
		return errx.New(
			"unknown storage type",
			errx.WithCode(codeInvalidStorageConfig),
			errx.WithDetails(errx.D{"type": c.Type}),
		)
	}

	if len(missing) > 0 {
		return errx.New(
			"missing required storage settings",
			errx.WithCode(codeInvalidStorageConfig),
			errx.WithDetails(errx.D{"missing": missing}),
		)
	}
	return nil
}

// BaseURI returns the URI that group URIs are built on:
// "{endpoint}/{bucket}" for remote storage, "file://{base_path}" for local.
func (c Config) BaseURI() string {
	switch c.Type {
	case TypeRemote:
		endpoint := strings.TrimSuffix(c.Remote.Endpoint, "/")
		if endpoint != "" && !strings.Contains(endpoint, "://") {
			scheme := "http"
			if c.Remote.UseSSL {
				scheme = "https"
			}
			endpoint = scheme + "://" + endpoint
		}
		if endpoint == "" {
			endpoint = "s3:/"
		}
		return endpoint + "/" + c.Remote.Bucket
	case TypeLocal:
		abs, err := filepath.Abs(c.Local.BasePath)
		if err != nil {
			abs = c.Local.BasePath
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	default:
		return "memory://filedepot"
	}
}

// New builds the configured FileStore.
func New(ctx context.Context, cfg Config) (filestore.FileStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errx.Wrap(err)
	}

	switch cfg.Type {
	case TypeLocal:
		s, err := localfs.New(cfg.Local)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return s, nil

	case TypeMemory:
		return memfs.New(), nil

	default:
		return newRemote(ctx, cfg.Remote)
	}
}

func newRemote(ctx context.Context, r RemoteConfig) (filestore.FileStore, error) {
	if r.Driver == DriverS3 {
		s, err := s3wr.New(ctx, s3wr.Config{
			Endpoint:  r.Endpoint,
			AccessKey: r.AccessKey,
			SecretKey: r.SecretKey,
			Region:    r.Region,
			Bucket:    r.Bucket,
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return s, nil
	}

	s, err := miniowr.New(ctx, miniowr.Config{
		Endpoint:     r.Endpoint,
		AccessKey:    r.AccessKey,
		SecretKey:    r.SecretKey,
		Region:       r.Region,
		Bucket:       r.Bucket,
		UseSSL:       r.UseSSL,
		CreateBucket: r.CreateBucket,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return s, nil
}
