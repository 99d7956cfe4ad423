package miniowr_test

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/filedepot/filestore/miniowr"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no such key", err: minio.ErrorResponse{Code: "NoSuchKey"}, want: true},
		{name: "head not found", err: minio.ErrorResponse{Code: "NotFound"}, want: true},
		{name: "access denied", err: minio.ErrorResponse{Code: "AccessDenied"}, want: false},
		{name: "plain error", err: errors.New("connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, miniowr.IsNotFound(tt.err))
		})
	}
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{name: "bare host keeps flag", endpoint: "localhost:9000", useSSL: false, wantHost: "localhost:9000"},
		{name: "bare host with ssl", endpoint: "minio.local", useSSL: true, wantHost: "minio.local", wantSecure: true},
		{name: "https url", endpoint: "https://s3.example.org", wantHost: "s3.example.org", wantSecure: true},
		{name: "http url overrides flag", endpoint: "http://s3.example.org:8080/", useSSL: true, wantHost: "s3.example.org:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, secure := miniowr.SplitEndpoint(tt.endpoint, tt.useSSL)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}
