package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"govjobs/harvester-service/internal/api"
	"govjobs/harvester-service/internal/scheduler"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read API and run scheduled sweeps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	// ── Scheduler ───────────────────────────────────────────────────────────
	sched := scheduler.New(a.worker, a.rdb, a.cfg.Schedule, log)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	// ── HTTP server ─────────────────────────────────────────────────────────
	h := api.NewHandler(a.store, a.gate, sched, a.metrics.Handler(), version, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", a.cfg.Port),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// POST /sweeps holds the connection for a whole sweep.
		WriteTimeout: 30 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("version", version), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("stopped")
	return nil
}
