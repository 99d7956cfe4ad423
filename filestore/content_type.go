package filestore

// Content types the service sets explicitly.
const (
	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeJSON        = "application/json"
	ContentTypeJSONLD      = "application/ld+json"
	ContentTypeText        = "text/plain"
)
