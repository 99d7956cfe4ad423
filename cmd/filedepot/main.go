package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rise-and-shine/filedepot/app"
	"github.com/rise-and-shine/filedepot/cfgloader"
	"github.com/rise-and-shine/filedepot/meta"
	"github.com/rise-and-shine/filedepot/observability/logger"
	"github.com/rise-and-shine/filedepot/observability/tracing"
)

func main() {
	cfg := cfgloader.MustLoad[app.Config]()

	meta.SetServiceInfo(cfg.Service.Name, cfg.Service.Version)
	logger.SetGlobal(cfg.Logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracer, err := tracing.InitGlobalTracer(cfg.Tracing)
	if err != nil {
		logger.Fatalx(err)
	}
	defer func() {
		if err := shutdownTracer(); err != nil {
			logger.Warnx(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger.Named("filedepot"))
	if err != nil {
		logger.Fatalx(err)
	}

	if err := a.Run(ctx); err != nil {
		logger.Errorx(err)
	}
}
