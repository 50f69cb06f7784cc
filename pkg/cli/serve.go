package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	server "github.com/m-mizutani/shopdesk/pkg/controller/http"
	"github.com/m-mizutani/shopdesk/pkg/service/navigation"
	"github.com/urfave/cli/v3"
)

func cmdServe(g *globalConfig) *cli.Command {
	var addr string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Sources:     cli.EnvVars("SHOPDESK_ADDR"),
			Usage:       "Listen address (default: 127.0.0.1:8080)",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		},
	}

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local gateway",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("starting server",
				"addr", addr,
				"api", g.api,
				"credential", g.credential,
			)

			rt, err := g.setup(ctx, navigation.NewScoped(g.api.LoginPath))
			if err != nil {
				return err
			}
			defer rt.Close()

			// a stale credential only means the gateway starts anonymous
			if err := rt.uc.Session.Restore(ctx); err != nil {
				logger.Warn("stored session was not restored", "error", err)
			}

			httpServer := http.Server{
				Addr: addr,
				Handler: server.New(
					server.WithSession(rt.uc.Session),
					server.WithAPIClient(rt.client),
					server.WithLoginPath(g.api.LoginPath),
				),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				ctxlog.From(ctx).Info("server started", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to serve", goerr.V("addr", addr))
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				ctxlog.From(ctx).Info("shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}
}
