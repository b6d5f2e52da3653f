// Package main - Entry point for the IRS mortality table server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"irs-mortality/adapters/tablefile"
	"irs-mortality/api"
	"irs-mortality/internal/config"
	"irs-mortality/internal/logging"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Config file (.json, .yaml or .yml)")
	addr := flag.String("addr", "", "Server address (overrides config)")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	watch := flag.Bool("watch", false, "Reload tables when data files change")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dataDir != "" {
		cfg.Data.Directory = *dataDir
	}
	if *watch {
		cfg.Server.WatchData = true
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()
	if *configPath != "" {
		if _, err := os.Stat(*configPath); os.IsNotExist(err) {
			logging.Warn("config file not found, using defaults", zap.String("path", *configPath))
		}
	}

	tables, err := tablefile.Load(cfg.Data.Directory, cfg.Data.Layout, cfg.Calculation.FinalPrecision)
	if err != nil {
		return err
	}

	apiServer := api.NewServer(version, tables)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.WatchData {
		go func() {
			err := tablefile.Watch(ctx, cfg.Data.Directory, cfg.Data.Layout, cfg.Calculation.FinalPrecision, apiServer.SetTables)
			if err != nil {
				logging.Error("data watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: apiServer}
	errCh := make(chan error, 1)
	go func() {
		logging.Info("IRS mortality server starting",
			zap.String("addr", cfg.Server.Addr),
			zap.String("version", version),
			zap.String("data", cfg.Data.Directory))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
