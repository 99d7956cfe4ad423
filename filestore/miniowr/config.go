package miniowr

// Config defines the configuration options for MinIO client.
type Config struct {
	// Endpoint is the server endpoint, either "host:port" or a full URL.
	// A URL scheme overrides UseSSL.
	Endpoint string `yaml:"endpoint" validate:"required"`

	// AccessKey is the access key for authentication.
	AccessKey string `yaml:"access_key" validate:"required"`

	// SecretKey is the secret key for authentication.
	SecretKey string `yaml:"secret_key" validate:"required" mask:"true"`

	// Region is the bucket region. Optional for MinIO, required by some S3 vendors.
	Region string `yaml:"region"`

	// Bucket is the bucket holding all groups.
	Bucket string `yaml:"bucket" validate:"required"`

	// UseSSL enables HTTPS connection to the server.
	UseSSL bool `yaml:"use_ssl" default:"false"`

	// CreateBucket makes the bucket on startup when it does not exist.
	CreateBucket bool `yaml:"create_bucket" default:"false"`
}
