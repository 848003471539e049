package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduplan/seatplan/internal/api"
	"github.com/eduplan/seatplan/internal/config"
	"github.com/eduplan/seatplan/pkg/observability"
	"github.com/eduplan/seatplan/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Settings come from EDUPLAN_* environment variables, the --env-file and the
--config file. With EDUPLAN_SESSION_BACKEND=none every request acts for
EDUPLAN_SESSION_LOCAL_ESTABLISHMENT; otherwise requests need a bearer
session (see 'eduplan session issue').`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if !cmd.Flags().Changed("verbose") {
				c.SetLogLevel(parseLevel(cfg.LogLevel))
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetRequestHooks(hooks)
	defer observability.Reset()

	cache, err := cfg.OpenCache(ctx)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cache, nil, c.Logger)
	runner.Converter = cfg.Converter
	defer runner.Close()

	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := cfg.OpenSessions(ctx, c.Logger)
	if err != nil {
		return err
	}

	opts := []api.Option{api.WithPolicy(cfg.Policy), api.WithLogger(c.Logger)}
	if sessions != nil {
		opts = append(opts, api.WithSessions(sessions))
	} else {
		opts = append(opts, api.WithLocalEstablishment(cfg.Session.LocalEstablishment))
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(runner, st, opts...).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening",
			"addr", cfg.Addr,
			"store", cfg.Store.Backend,
			"cache", cfg.Cache.Backend,
			"sessions", cfg.Session.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
