package val_test

import (
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filedepot/val"
)

type input struct {
	Group   string `json:"group"   validate:"required,path_segment"`
	FileID  string `json:"file_id" validate:"omitempty,path_segment,max=128"`
	Version int    `form:"version" validate:"gte=0"`
	Kind    string `query:"kind"   validate:"omitempty,oneof=raw derived"`
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name   string
		in     input
		fields map[string]string
	}{
		{
			name: "valid",
			in:   input{Group: "g1", FileID: "8c1e.pdf", Kind: "raw"},
		},
		{
			name:   "missing group",
			in:     input{},
			fields: map[string]string{"group": "This field is required"},
		},
		{
			name: "traversal in ids",
			in:   input{Group: "..", FileID: "../etc"},
			fields: map[string]string{
				"group":   "Must contain only letters, digits, '.', '_' or '-' and start with a letter or digit",
				"file_id": "Must contain only letters, digits, '.', '_' or '-' and start with a letter or digit",
			},
		},
		{
			name: "form and query tag names",
			in:   input{Group: "g1", Version: -1, Kind: "zip"},
			fields: map[string]string{
				"version": "Must be greater than or equal to 0",
				"kind":    "Must be one of: raw, derived",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := val.ValidateSchema(tt.in)
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errx.IsCodeIn(err, val.CodeValidationFailed))
			assert.Equal(t, errx.T_Validation, errx.GetType(err))
			fields := errx.AsErrorX(err).Fields()
			assert.Len(t, fields, len(tt.fields))
			for k, v := range tt.fields {
				assert.Equal(t, v, fields[k], k)
			}
		})
	}
}

func TestIsPathSegment(t *testing.T) {
	assert.True(t, val.IsPathSegment("vtm-object_01.jpg"))
	assert.False(t, val.IsPathSegment(""))
	assert.False(t, val.IsPathSegment(".hidden"))
	assert.False(t, val.IsPathSegment("a/b"))
	assert.False(t, val.IsPathSegment("a b"))
}
