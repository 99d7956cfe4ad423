package app

import (
	"strings"

	"github.com/rise-and-shine/filedepot/filestore/backend"
	"github.com/rise-and-shine/filedepot/http/server"
	"github.com/rise-and-shine/filedepot/observability/logger"
	"github.com/rise-and-shine/filedepot/observability/tracing"
	"github.com/rise-and-shine/filedepot/rediswr"
)

// Manifest lock modes.
const (
	LockNone  = "none"
	LockLocal = "local"
	LockRedis = "redis"
)

// Config is the root configuration of the service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Server   server.Config  `yaml:"server"`
	Logger   logger.Config  `yaml:"logger"`
	Tracing  tracing.Config `yaml:"tracing"`
	Storage  backend.Config `yaml:"storage"`
	Manifest ManifestConfig `yaml:"manifest"`
}

// ServiceConfig identifies the running service in logs and spans.
type ServiceConfig struct {
	Name    string `yaml:"name"    default:"filedepot"`
	Version string `yaml:"version" default:"dev"`
}

// ManifestConfig tunes the group manifests.
type ManifestConfig struct {
	// PublicBaseURL overrides the storage-derived base of group and file URIs.
	PublicBaseURL string `yaml:"public_base_url" validate:"omitempty,url"`

	// Lock orders concurrent registrations on the same group: "none" leaves
	// them unordered, "local" orders them within this process and "redis"
	// across replicas sharing the bucket.
	Lock string `yaml:"lock" validate:"oneof=none local redis" default:"none"`

	// Redis configures the lease lock. Used when Lock is "redis".
	Redis rediswr.Config `yaml:"redis"`
}

// BaseURI returns the base that group URIs are built on.
func (c Config) BaseURI() string {
	if c.Manifest.PublicBaseURL != "" {
		return strings.TrimSuffix(c.Manifest.PublicBaseURL, "/")
	}
	return c.Storage.BaseURI()
}
