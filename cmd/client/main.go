package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/logminer/internal/buildinfo"
	"github.com/dmitrijs2005/logminer/internal/client/cli"
	"github.com/dmitrijs2005/logminer/internal/client/config"
	"github.com/dmitrijs2005/logminer/internal/logging"
	"github.com/dmitrijs2005/logminer/internal/metrics"
	"github.com/spf13/pflag"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(os.Stdout, config.Usage())
			return
		}
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counters := metrics.Nop()
	if cfg.MetricsAddr != "" {
		counters = metrics.New()
		srv := metrics.StartServer(cfg.MetricsAddr)
		go func() {
			if err, ok := <-srv.Notify(); ok {
				logger.Error(ctx, "metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	app, err := cli.NewApp(ctx, cfg, logger, counters)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "client stopped", "error", err)
	}
}
