package app_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filedepot/app"
	"github.com/rise-and-shine/filedepot/cfgloader"
	"github.com/rise-and-shine/filedepot/filestore/backend"
	"github.com/rise-and-shine/filedepot/observability/logger"
)

func loadTestConfig(t *testing.T) app.Config {
	t.Helper()
	cfg, err := cfgloader.Load[app.Config]("../config/test.yaml", cfgloader.WithSilent())
	require.NoError(t, err)
	return cfg
}

func TestTestConfig(t *testing.T) {
	cfg := loadTestConfig(t)

	assert.Equal(t, "filedepot", cfg.Service.Name)
	assert.Equal(t, backend.TypeMemory, cfg.Storage.Type)
	assert.True(t, cfg.Logger.Disable)
	assert.True(t, cfg.Tracing.Disable)
	assert.Equal(t, "http://minio:9000/vtm", cfg.BaseURI())
	assert.Equal(t, 104857600, cfg.Server.BodyLimit)
}

func TestBaseURIFallsBackToStorage(t *testing.T) {
	cfg := app.Config{Storage: backend.Config{
		Type:   backend.TypeRemote,
		Remote: backend.RemoteConfig{Endpoint: "minio:9000", Bucket: "vtm"},
	}}
	assert.Equal(t, "http://minio:9000/vtm", cfg.BaseURI())
}

func TestNewServesHealth(t *testing.T) {
	cfg := loadTestConfig(t)
	log, err := logger.New(cfg.Logger)
	require.NoError(t, err)

	a, err := app.New(t.Context(), cfg, log)
	require.NoError(t, err)

	resp, err := a.Server().Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}

func TestNewRejectsInvalidStorage(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Storage = backend.Config{Type: backend.TypeRemote}

	log, err := logger.New(logger.Config{Disable: true})
	require.NoError(t, err)

	_, err = app.New(t.Context(), cfg, log)
	assert.Error(t, err)
}

func TestNewWithRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := loadTestConfig(t)
	cfg.Manifest.Lock = app.LockRedis
	cfg.Manifest.Redis.Addrs = mr.Addr()

	log, err := logger.New(logger.Config{Disable: true})
	require.NoError(t, err)

	_, err = app.New(t.Context(), cfg, log)
	require.NoError(t, err)

	cfg.Manifest.Redis.Addrs = ""
	_, err = app.New(t.Context(), cfg, log)
	assert.Error(t, err)
}
