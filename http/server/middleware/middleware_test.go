package middleware_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filedepot/http/server"
	"github.com/rise-and-shine/filedepot/http/server/middleware"
	"github.com/rise-and-shine/filedepot/meta"
	"github.com/rise-and-shine/filedepot/observability/logger"
)

type response struct {
	TraceID string `json:"trace_id"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Cause   string `json:"cause"`
		Trace   string `json:"trace"`
	} `json:"error"`
}

func newServer(t *testing.T, hideDetails bool) *server.HTTPServer {
	t.Helper()
	log, err := logger.New(logger.Config{Disable: true})
	require.NoError(t, err)

	srv := server.NewHTTPServer(server.Config{Host: "127.0.0.1", Port: 8080}, []server.Middleware{
		middleware.NewErrorHandlerMW(hideDetails),
		middleware.NewLoggerMW(log),
		middleware.NewMetaInjectMW("filedepot", "test"),
		middleware.NewTimeoutMW(time.Second),
		middleware.NewTracingMW(),
		middleware.NewRecoveryMW(log),
	})

	srv.RegisterRouter(func(r fiber.Router) {
		r.Get("/panic", func(*fiber.Ctx) error {
			panic("boom")
		})
		r.Get("/missing", func(*fiber.Ctx) error {
			return errx.New("no such thing", errx.WithType(errx.T_NotFound), errx.WithCode("THING_NOT_FOUND"))
		})
		r.Get("/internal", func(*fiber.Ctx) error {
			return errx.New("disk on fire", errx.WithType(errx.T_Internal), errx.WithCode("DISK_FAULT"))
		})
		r.Get("/meta", func(c *fiber.Ctx) error {
			_, hasDeadline := c.UserContext().Deadline()
			return c.JSON(fiber.Map{
				"trace_id":     meta.Find(c.UserContext(), meta.TraceID),
				"service":      meta.Find(c.UserContext(), meta.ServiceName),
				"has_deadline": hasDeadline,
			})
		})
	})
	return srv
}

func get(t *testing.T, srv *server.HTTPServer, path string) (int, string, []byte) {
	t.Helper()
	resp, err := srv.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get(middleware.HeaderTraceID), raw
}

func TestMetaAndTimeout(t *testing.T) {
	status, traceID, raw := get(t, newServer(t, false), "/meta")
	require.Equal(t, fiber.StatusOK, status)

	var body struct {
		TraceID     string `json:"trace_id"`
		Service     string `json:"service"`
		HasDeadline bool   `json:"has_deadline"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotEmpty(t, traceID)
	assert.Equal(t, traceID, body.TraceID)
	assert.Equal(t, "filedepot", body.Service)
	assert.True(t, body.HasDeadline)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		hideDetails bool
		status      int
		code        string
		message     string
	}{
		{
			name:    "typed error",
			path:    "/missing",
			status:  fiber.StatusNotFound,
			code:    "THING_NOT_FOUND",
			message: "no such thing",
		},
		{
			name:    "internal error with details",
			path:    "/internal",
			status:  fiber.StatusInternalServerError,
			code:    "DISK_FAULT",
			message: "disk on fire",
		},
		{
			name:        "internal error hidden",
			path:        "/internal",
			hideDetails: true,
			status:      fiber.StatusInternalServerError,
			code:        "DISK_FAULT",
			message:     "internal server error",
		},
		{
			name:    "unknown route",
			path:    "/nowhere",
			status:  fiber.StatusNotFound,
			code:    "ROUTER_ERROR",
			message: "Cannot GET /nowhere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, traceID, raw := get(t, newServer(t, tt.hideDetails), tt.path)
			require.Equal(t, tt.status, status, string(raw))

			var body response
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Contains(t, body.Error.Message, tt.message)
			assert.Equal(t, traceID, body.TraceID)
			if tt.hideDetails {
				assert.Empty(t, body.Error.Cause)
				assert.Empty(t, body.Error.Trace)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	status, _, raw := get(t, newServer(t, false), "/panic")
	require.Equal(t, fiber.StatusInternalServerError, status, string(raw))

	var body response
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Contains(t, body.Error.Message, "panic recovered")
	assert.NotEmpty(t, body.TraceID)
}
