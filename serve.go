package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/handlers"
	"github.com/camden-git/familytreebackend/realtime"
	"github.com/camden-git/familytreebackend/services"
	"github.com/camden-git/familytreebackend/workers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the family tree HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides FAMILYTREE_LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ListenAddr
	}

	alloc, err := family.NewAllocator(cfg.IDStrategy)
	if err != nil {
		return err
	}

	adapter, closeStorage, err := openStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	autosave := workers.NewAutosaveWorker(adapter, cfg.AutosaveDelay, logger)
	autosave.OnError = func(err error) {
		hub.Broadcast(realtime.Event{Type: realtime.SaveFailed, Error: err.Error()})
	}
	defer autosave.Stop()

	engine := family.NewEngine(family.NewStore(nil), alloc)
	svc := services.NewFamilyService(engine, adapter, autosave, hub, logger)
	if err := svc.Load(cfg.SeedOnEmpty); err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.RouterOptions{
		Service:        svc,
		Hub:            hub,
		Log:            logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":        addr,
			"storage":     cfg.Storage,
			"id_strategy": cfg.IDStrategy,
		}).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
