package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-cropadvice/pkg/model"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web upload form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, cleanup, err := a.newServer(ctx, offline)
			if err != nil {
				return err
			}
			defer cleanup()

			listener, err := net.Listen("tcp", a.cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", a.cfg.Server.Addr, err)
			}
			return serve(ctx, listener, srv.routes(), a.cfg.Server.ShutdownGrace, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&offline, "offline", false, "answer from built-in fixtures instead of the engine")
	return cmd
}

// newServer wires the pipeline for HTTP use. cleanup closes the history
// store when one was opened.
func (a *app) newServer(ctx context.Context, offline bool) (*server, func(), error) {
	cls, err := newClassifier(ctx, a.cfg, offline)
	if err != nil {
		return nil, nil, err
	}
	page, err := newVanilla(a.cfg, vanillaStylesheetOption())
	if err != nil {
		return nil, nil, err
	}
	registry := newRegistry(page)
	if err := requireRenderer(registry, a.cfg.Render.DefaultRenderer); err != nil {
		return nil, nil, err
	}

	store, err := openHistory(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}

	catalogue := model.DefaultCatalogue()
	srv := &server{
		orch: a.newOrchestrator(pipelineOptions{
			classifier: cls,
			registry:   registry,
			history:    store,
			catalogue:  catalogue,
		}),
		page:           page,
		catalogue:      catalogue,
		history:        store,
		logger:         a.logger,
		maxUploadBytes: a.cfg.Server.MaxUploadBytes,
	}
	return srv, cleanup, nil
}

// serve runs handler on listener until ctx ends, then drains in-flight
// requests for at most grace.
func serve(ctx context.Context, listener net.Listener, handler http.Handler, grace time.Duration, logger *zap.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", listener.Addr().String()))
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		logger.Info("shutting down", zap.Duration("grace", grace))
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
