package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkhault/calsync/internal/server"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

// Watch runs the scheduled re-sync and the replication poll loop until
// interrupted.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		r.logger.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	schedule := r.config.Sync.Schedule
	if schedule == "" {
		schedule = "@every 30m"
	}

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		batch := sess.registry.SyncAll(ctx)
		r.logger.Info("scheduled sync finished",
			"succeeded", batch.Succeeded, "failed", batch.Failed)
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	c.Start()
	defer c.Stop()

	r.logger.Info("watch started",
		"schedule", schedule,
		"remote", r.config.Remote.BaseURL,
		"poll_interval", r.config.Remote.PollInterval())

	// Run one sync immediately so a fresh start does not wait a full
	// schedule interval for data.
	batch := sess.registry.SyncAll(ctx)
	r.logger.Info("initial sync finished",
		"succeeded", batch.Succeeded, "failed", batch.Failed)

	// Blocks until ctx is cancelled. With no remote configured only the
	// cron loop runs.
	sess.coord.Poll(ctx, r.config.Remote.PollInterval())
	<-ctx.Done()

	r.logger.Info("watch exiting")
	return nil
}

// Serve hosts the shared record HTTP endpoint.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: server.New(r.logger).Handler(),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		r.logger.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	r.logger.Info("record server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
