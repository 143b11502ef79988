package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/inbox-lab/autoreply/pkg/cli/config"
	httpctrl "github.com/inbox-lab/autoreply/pkg/controller/http"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/service/policy"
	"github.com/inbox-lab/autoreply/pkg/usecase"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var interval time.Duration
	var pipelineCfg pipelineConfig
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("AUTOREPLY_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "Scheduler interval between batch runs (0 disables the scheduler)",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("AUTOREPLY_INTERVAL"),
			Destination: &interval,
		},
	}
	flags = append(flags, pipelineCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the triage daemon: interval scheduler plus ops HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, index, closer, err := pipelineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if err := seedIndex(ctx, index, policyCfg.Loader()); err != nil {
				return err
			}

			guard := &usecase.RunGuard{}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, guard),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "HTTP server failed")
				}
			}()

			if interval > 0 {
				go runScheduler(ctx, uc, guard, interval)
			}

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logging.Default().Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down HTTP server")
			}
			return nil
		},
	}
}

// seedIndex rebuilds an empty index from the policy corpus at startup, so
// a fresh deployment serves retrieval without a manual reindex.
func seedIndex(ctx context.Context, index interfaces.VectorIndex, loader *policy.Loader) error {
	if loader == nil {
		return nil
	}

	stats, err := index.Stats(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to check index before seeding")
	}
	if stats.Exists {
		return nil
	}

	count, err := loader.Reindex(ctx, index)
	if err != nil {
		return goerr.Wrap(err, "failed to seed the vector index")
	}
	logging.Default().Info("Seeded vector index from policy corpus", "fragments", count)
	return nil
}

// runScheduler triggers batch runs at the configured interval. The guard
// keeps scheduled runs and HTTP-triggered runs from overlapping; a tick
// that finds a run active is skipped, not queued.
func runScheduler(ctx context.Context, uc *usecase.UseCases, guard *usecase.RunGuard, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Default().Info("Scheduler started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			logging.Default().Info("Scheduler stopped")
			return

		case <-ticker.C:
			if !guard.TryAcquire() {
				logging.Default().Info("Skipping scheduled run, another run is active")
				continue
			}

			result := uc.RunBatch(ctx, newRunID())
			guard.Release()

			logging.Default().Info("Scheduled run finished",
				"run_id", result.RunID,
				"total", result.TotalEmails,
				"succeeded", result.SuccessfulResponses,
				"failed", result.FailedResponses,
			)
		}
	}
}
