package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"petclinic/internal/router"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := openBackend(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = b.close() }()

			if err := b.migrate(ctx); err != nil {
				return err
			}
			if cfg.Seed {
				if err := b.store.Seed(ctx); err != nil {
					return err
				}
			}

			a, err := b.app(log)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr: cfg.Addr(),
				Handler: router.NewRouter(router.Options{
					Services:       a.services,
					Users:          a.users,
					SecurityEnable: cfg.SecurityEnable,
					Logger:         log,
					Metrics:        a.registry,
				}),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting server", map[string]any{
					"addr":     cfg.Addr(),
					"storage":  cfg.Storage,
					"security": cfg.SecurityEnable,
				})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down", nil)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
