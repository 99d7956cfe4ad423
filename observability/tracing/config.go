package tracing

import "time"

const (
	reconnectionPeriod = 30 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// Config holds the configuration of the span exporter.
type Config struct {
	// Disable installs a no-op tracer provider. Trace ids then fall back to UUIDs.
	Disable bool `yaml:"disable" default:"false"`

	// SampleRate is the sampled fraction of new traces, from 0.0 to 1.0.
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1" default:"1"`

	// ExporterHost is the OTLP collector host.
	ExporterHost string `yaml:"exporter_host" validate:"required_unless=Disable true"`

	// ExporterPort is the OTLP collector gRPC port.
	ExporterPort int `yaml:"exporter_port" validate:"required_unless=Disable true"`

	// Tags are added as resource attributes to all spans.
	Tags map[string]string `yaml:"tags"`
}
