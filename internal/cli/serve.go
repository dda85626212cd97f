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

	"forge3d/internal/catalog"
	"forge3d/internal/generation"
	"forge3d/internal/httpapi"
	"forge3d/internal/viewer"
	"forge3d/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// server is the assembled local API with everything that must be released on exit.
type server struct {
	handler http.Handler
	mgr     *generation.Manager
	stores  *stores
	cancel  context.CancelFunc
}

// newServer wires the stores, the remote client and the job manager into the HTTP mux.
func newServer(ctx context.Context, e *env) (*server, error) {
	s, err := openStores(ctx, e.cfg, e.log)
	if err != nil {
		return nil, err
	}
	base, cancel := context.WithCancel(context.Background())
	client := newClient(e.cfg)
	mgr, err := newManager(base, e.cfg, client, s, e.log)
	if err != nil {
		cancel()
		_ = s.Close()
		return nil, err
	}

	httpapi.SetLogger(e.log)
	httpapi.SetRequestLogLevel(e.cfg.Log.Level)
	httpapi.SetBaseContext(base)
	httpapi.SetMaxBodyBytes(e.cfg.Server.MaxBodyBytes)
	httpapi.SetErrorDismissAfter(e.cfg.Server.ErrorDismissAfter.Std())
	httpapi.SetCORSOptions(e.cfg.Server.CORSEnabled, e.cfg.Server.CORSOrigins, nil, nil)

	bundled := e.cfg.Storage.BundledDir
	mux := httpapi.NewMux(httpapi.Services{
		Jobs:    mgr,
		History: s.history,
		Remote:  client,
		Viewer:  viewer.New(),
		Samples: func() ([]types.Asset, error) { return catalog.LoadDir(bundled) },
	})
	return &server{handler: mux, mgr: mgr, stores: s, cancel: cancel}, nil
}

// Close stops the running job and releases the stores.
func (s *server) Close() error {
	s.cancel()
	s.mgr.Close()
	return s.stores.Close()
}

func newServeCmd(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := newServer(ctx, e)
			if err != nil {
				return err
			}
			defer srv.Close()

			hs := &http.Server{Addr: addr, Handler: srv.handler, ReadHeaderTimeout: 10 * time.Second}
			errc := make(chan error, 1)
			go func() {
				e.log.Info().Str("addr", addr).Str("remote", e.cfg.Remote.BaseURL).Str("models_dir", e.cfg.Storage.ModelsDir).Msg("forge3d listening")
				if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			// Graceful shutdown (Ctrl+C / SIGTERM)
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.cancel()
			if err := hs.Shutdown(sctx); err != nil {
				e.log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (defaults server.addr or FORGE3D_ADDR)")
	return cmd
}
