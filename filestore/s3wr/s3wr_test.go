package s3wr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filedepot/filestore/s3wr"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no such key", err: &types.NoSuchKey{}, want: true},
		{name: "head not found", err: &types.NotFound{}, want: true},
		{name: "wrapped no such key", err: fmt.Errorf("get: %w", &types.NoSuchKey{}), want: true},
		{name: "no such bucket", err: &types.NoSuchBucket{}, want: false},
		{name: "plain error", err: errors.New("timeout"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s3wr.IsNotFound(tt.err))
		})
	}
}

func TestNew(t *testing.T) {
	c, err := s3wr.New(t.Context(), s3wr.Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Region:    "us-east-1",
		Bucket:    "files",
	})

	require.NoError(t, err)
	assert.NotNil(t, c)
}
