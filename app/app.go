// Package app wires the storage backend, manifest store, intake service and
// HTTP server together.
package app

import (
	"context"
	"io"
	"time"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/filedepot/filestore/backend"
	"github.com/rise-and-shine/filedepot/http/handler"
	"github.com/rise-and-shine/filedepot/http/server"
	"github.com/rise-and-shine/filedepot/http/server/middleware"
	"github.com/rise-and-shine/filedepot/intake"
	"github.com/rise-and-shine/filedepot/manifest"
	"github.com/rise-and-shine/filedepot/observability/logger"
	"github.com/rise-and-shine/filedepot/rediswr"
)

const (
	shutdownTimeout = 15 * time.Second

	codeInvalidConfig = "INVALID_CONFIG"
)

// App is the assembled service.
type App struct {
	cfg     Config
	log     logger.Logger
	server  *server.HTTPServer
	closers []io.Closer
}

// New builds the service from cfg.
func New(ctx context.Context, cfg Config, log logger.Logger) (*App, error) {
	store, err := backend.New(ctx, cfg.Storage)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	var closers []io.Closer

	manifestOpts := []manifest.Option{manifest.WithLogger(log)}
	switch cfg.Manifest.Lock {
	case LockLocal:
		manifestOpts = append(manifestOpts, manifest.WithSerializedWrites())
	case LockRedis:
		if cfg.Manifest.Redis.Addrs == "" {
			return nil, errx.New(
				"manifest.redis.addrs is required for the redis lock",
				errx.WithCode(codeInvalidConfig),
			)
		}
		client := rediswr.New(cfg.Manifest.Redis)
		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errx.Wrap(err, errx.WithDetails(errx.D{"addrs": cfg.Manifest.Redis.Addrs}))
		}
		closers = append(closers, client)
		manifestOpts = append(manifestOpts, manifest.WithLocker(rediswr.NewLocker(client, cfg.Manifest.Redis)))
	}
	manifests := manifest.New(store, cfg.BaseURI(), manifestOpts...)

	svc := intake.New(store, manifests, intake.WithLogger(log))

	srv := server.NewHTTPServer(cfg.Server, []server.Middleware{
		middleware.NewRecoveryMW(log),
		middleware.NewTracingMW(),
		middleware.NewTimeoutMW(cfg.Server.HandleTimeout),
		middleware.NewMetaInjectMW(cfg.Service.Name, cfg.Service.Version),
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(cfg.Server.HideErrorDetails),
	})
	srv.RegisterRouter(handler.New(svc).Register)

	return &App{cfg: cfg, log: log.Named("app"), server: srv, closers: closers}, nil
}

// Server returns the HTTP server.
func (a *App) Server() *server.HTTPServer {
	return a.server
}

// Run serves HTTP until ctx is done, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.With("address", a.cfg.Server.Address()).
			With("storage", a.cfg.Storage.Type).
			With("base_uri", a.cfg.BaseURI()).
			Info("http server started")
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		a.close()
		return errx.Wrap(err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := a.server.Stop(shutdownCtx)
	a.close()
	return errx.Wrap(err)
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warnx(errx.Wrap(err))
		}
	}
}
