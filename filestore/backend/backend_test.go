package backend_test

import (
	"path/filepath"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filedepot/filestore/backend"
	"github.com/rise-and-shine/filedepot/filestore/localfs"
	"github.com/rise-and-shine/filedepot/filestore/memfs"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     backend.Config
		wantErr bool
	}{
		{
			name: "local ok",
			cfg:  backend.Config{Type: backend.TypeLocal, Local: localfs.Config{BasePath: "/files"}},
		},
		{
			name:    "local without base path",
			cfg:     backend.Config{Type: backend.TypeLocal},
			wantErr: true,
		},
		{
			name: "minio ok",
			cfg: backend.Config{Type: backend.TypeRemote, Remote: backend.RemoteConfig{
				Driver: backend.DriverMinio, Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b",
			}},
		},
		{
			name: "minio without endpoint",
			cfg: backend.Config{Type: backend.TypeRemote, Remote: backend.RemoteConfig{
				Driver: backend.DriverMinio, AccessKey: "a", SecretKey: "s", Bucket: "b",
			}},
			wantErr: true,
		},
		{
			name: "s3 without region",
			cfg: backend.Config{Type: backend.TypeRemote, Remote: backend.RemoteConfig{
				Driver: backend.DriverS3, AccessKey: "a", SecretKey: "s", Bucket: "b",
			}},
			wantErr: true,
		},
		{
			name: "remote without credentials",
			cfg: backend.Config{Type: backend.TypeRemote, Remote: backend.RemoteConfig{
				Driver: backend.DriverMinio, Endpoint: "localhost:9000", Bucket: "b",
			}},
			wantErr: true,
		},
		{name: "memory ok", cfg: backend.Config{Type: backend.TypeMemory}},
		{name: "unknown type", cfg: backend.Config{Type: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errx.IsCodeIn(err, "INVALID_STORAGE_CONFIG"))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBaseURI(t *testing.T) {
	tests := []struct {
		name string
		cfg  backend.Config
		want string
	}{
		{
			name: "remote with scheme",
			cfg: backend.Config{Type: backend.TypeRemote, Remote: backend.RemoteConfig{
				Endpoint: "https://s3.example.org/", Bucket: "vtm",
			}},
			want: "https://s3.example.org/vtm",
		},
		{
			name: "remote bare host with ssl",
			cfg: backend.Config{Type: backend.TypeRemote, Remote: backend.RemoteConfig{
				Endpoint: "minio:9000", Bucket: "vtm", UseSSL: true,
			}},
			want: "https://minio:9000/vtm",
		},
		{
			name: "aws default endpoint",
			cfg:  backend.Config{Type: backend.TypeRemote, Remote: backend.RemoteConfig{Bucket: "vtm"}},
			want: "s3://vtm",
		},
		{
			name: "memory",
			cfg:  backend.Config{Type: backend.TypeMemory},
			want: "memory://filedepot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.BaseURI())
		})
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	local, err := backend.New(t.Context(), backend.Config{
		Type:  backend.TypeLocal,
		Local: localfs.Config{BasePath: filepath.Join(dir, "files")},
	})
	require.NoError(t, err)
	assert.IsType(t, &localfs.Store{}, local)

	mem, err := backend.New(t.Context(), backend.Config{Type: backend.TypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &memfs.Store{}, mem)

	_, err = backend.New(t.Context(), backend.Config{Type: backend.TypeRemote})
	require.Error(t, err)
}
