package mask_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filedepot/mask"
)

type remote struct {
	Endpoint  string `yaml:"endpoint"`
	SecretKey string `yaml:"secret_key" mask:"true"`
}

type storage struct {
	Type   string  `yaml:"type"`
	Remote remote  `yaml:"remote"`
	Backup *remote `yaml:"backup"`
}

type request struct {
	Group   string   `json:"group"`
	Token   string   `json:"token" mask:"TRUE"`
	Tags    []string `json:"tags,omitempty"`
	Payload []byte   `json:"-"`
	hidden  string
}

func keys(m *mask.Map) []string {
	var out []string
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func TestStructToOrdMap(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, mask.StructToOrdMap(nil))
	})

	t.Run("nested config", func(t *testing.T) {
		m := mask.StructToOrdMap(storage{
			Type:   "remote",
			Remote: remote{Endpoint: "minio:9000", SecretKey: "s3cr3t"},
		})

		assert.Equal(t, []string{"type", "remote.endpoint", "remote.secret_key", "backup"}, keys(m))

		v, _ := m.Get("remote.secret_key")
		assert.Equal(t, mask.Masked, v)
		v, _ = m.Get("remote.endpoint")
		assert.Equal(t, "minio:9000", v)
		v, ok := m.Get("backup")
		require.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("request with json tags", func(t *testing.T) {
		m := mask.StructToOrdMap(&request{
			Group:   "g1",
			Token:   "abc",
			Tags:    []string{"x"},
			Payload: []byte("large"),
			hidden:  "h",
		})

		assert.Equal(t, []string{"group", "token", "tags"}, keys(m))
		v, _ := m.Get("token")
		assert.Equal(t, mask.Masked, v)
	})

	t.Run("zero secret stays visible", func(t *testing.T) {
		m := mask.StructToOrdMap(remote{})
		v, _ := m.Get("secret_key")
		assert.Equal(t, "", v)
	})

	t.Run("non-struct value", func(t *testing.T) {
		m := mask.StructToOrdMap(42)
		v, _ := m.Get("")
		assert.Equal(t, 42, v)
	})
}
