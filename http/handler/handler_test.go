package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filedepot/crate"
	"github.com/rise-and-shine/filedepot/filestore"
	"github.com/rise-and-shine/filedepot/filestore/memfs"
	"github.com/rise-and-shine/filedepot/http/handler"
	"github.com/rise-and-shine/filedepot/http/server"
	"github.com/rise-and-shine/filedepot/http/server/middleware"
	"github.com/rise-and-shine/filedepot/intake"
	"github.com/rise-and-shine/filedepot/manifest"
	"github.com/rise-and-shine/filedepot/observability/logger"
)

const baseURI = "http://minio:9000/vtm"

type errorBody struct {
	TraceID string `json:"trace_id"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func newServer(t *testing.T, fs filestore.FileStore) *server.HTTPServer {
	t.Helper()
	log, err := logger.New(logger.Config{Disable: true})
	require.NoError(t, err)

	manifests := manifest.New(fs, baseURI, manifest.WithLogger(log))
	svc := intake.New(fs, manifests,
		intake.WithLogger(log),
		intake.WithClock(func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }),
	)

	srv := server.NewHTTPServer(server.Config{Host: "127.0.0.1", Port: 8080}, []server.Middleware{
		middleware.NewRecoveryMW(log),
		middleware.NewMetaInjectMW("filedepot", "test"),
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(false),
	})
	srv.RegisterRouter(handler.New(svc).Register)
	return srv
}

func uploadRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withFile {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="file"; filename="notes.txt"`)
		h.Set("Content-Type", "text/plain")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("hello"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func do(t *testing.T, srv *server.HTTPServer, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := srv.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeError(t *testing.T, raw []byte) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestUpload(t *testing.T) {
	fs := memfs.New()
	srv := newServer(t, fs)

	resp, raw := do(t, srv, uploadRequest(t, map[string]string{
		"uuid":         "f1",
		"group":        "g1",
		"creator":      "u1",
		"creator_name": "Alice",
		"version":      "2",
	}, true))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderTraceID))

	var res intake.UploadResult
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, "f1", res.FileID)
	assert.Equal(t, "g1/f1.txt", res.FilePath)
	assert.Equal(t, "notes.txt", res.OriginalName)
	assert.Equal(t, "f1.txt", res.FileName)
	assert.Equal(t, 2, res.Metadata.Version)
	assert.Equal(t, "u1", res.Metadata.Author)

	ok, err := fs.Exists(t.Context(), "g1/f1.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUploadMediaTypeAlias(t *testing.T) {
	fs := memfs.New()
	srv := newServer(t, fs)

	resp, raw := do(t, srv, uploadRequest(t, map[string]string{
		"uuid":       "f1",
		"media_type": "images",
	}, true))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	ok, err := fs.Exists(t.Context(), manifest.ManifestKey("images"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		withFile bool
		field    string
	}{
		{
			name:   "missing file",
			fields: map[string]string{"group": "g1"},
			field:  "file",
		},
		{
			name:     "bad version",
			fields:   map[string]string{"group": "g1", "version": "two"},
			withFile: true,
			field:    "version",
		},
		{
			name:     "missing group",
			fields:   map[string]string{"uuid": "f1"},
			withFile: true,
			field:    "group",
		},
		{
			name:     "group with separator",
			fields:   map[string]string{"group": "../g1"},
			withFile: true,
			field:    "group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, memfs.New())

			resp, raw := do(t, srv, uploadRequest(t, tt.fields, tt.withFile))
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(raw))

			e := decodeError(t, raw)
			assert.Equal(t, "VALIDATION_FAILED", e.Error.Code)
			assert.Contains(t, e.Error.Fields, tt.field)
			assert.NotEmpty(t, e.TraceID)
		})
	}
}

func TestDownload(t *testing.T) {
	fs := memfs.New()
	srv := newServer(t, fs)

	resp, raw := do(t, srv, uploadRequest(t, map[string]string{"uuid": "f1", "group": "g1"}, true))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = do(t, srv, httptest.NewRequest(fiber.MethodGet, "/download/g1/f1.txt", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "hello", string(raw))
	assert.Equal(t, "text/plain", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="f1.txt"`, resp.Header.Get(fiber.HeaderContentDisposition))

	resp, raw = do(t, srv, httptest.NewRequest(fiber.MethodGet, "/download/g1/missing.txt", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode, string(raw))
	assert.Equal(t, filestore.CodeFileNotFound, decodeError(t, raw).Error.Code)
}

func TestMetadata(t *testing.T) {
	fs := memfs.New()
	srv := newServer(t, fs)

	resp, raw := do(t, srv, httptest.NewRequest(fiber.MethodGet, "/metadata/g1", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode, string(raw))
	assert.Equal(t, manifest.CodeManifestNotFound, decodeError(t, raw).Error.Code)

	resp, raw = do(t, srv, uploadRequest(t, map[string]string{"uuid": "f1", "group": "g1", "creator": "u1"}, true))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = do(t, srv, httptest.NewRequest(fiber.MethodGet, "/metadata/g1", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, filestore.ContentTypeJSONLD, resp.Header.Get(fiber.HeaderContentType))

	m, err := crate.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "g1", m.Root.Identifier)
	require.Len(t, m.Files, 1)
	assert.Equal(t, baseURI+"/g1%f1", m.Files[0].Identifier)
}

func TestListFiles(t *testing.T) {
	fs := memfs.New()
	srv := newServer(t, fs)

	for _, id := range []string{"f1", "f2"} {
		resp, raw := do(t, srv, uploadRequest(t, map[string]string{"uuid": id, "group": "g1"}, true))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	}

	resp, raw := do(t, srv, httptest.NewRequest(fiber.MethodGet, "/files/g1", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var res intake.ListFilesResult
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, "g1", res.Group)

	paths := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"g1/f1.txt", "g1/f2.txt"}, paths)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, memfs.New())

	resp, raw := do(t, srv, httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}

func TestUnknownRoute(t *testing.T) {
	srv := newServer(t, memfs.New())

	resp, raw := do(t, srv, httptest.NewRequest(fiber.MethodGet, "/nope/a/b/c", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode, string(raw))
	assert.Equal(t, "ROUTER_ERROR", decodeError(t, raw).Error.Code)
}
