package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/monet-trippy/internal/api"
	"github.com/banshee-data/monet-trippy/internal/db"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the archive, luminance charts and admin routes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.env.Listen
			}
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			h, err := a.handler(d)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, listen, h)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default $TRIPPY_LISTEN)")
	return cmd
}

// handler mounts the archive API and the admin routes on one mux and logs
// each request.
func (a *app) handler(d *db.DB) (http.Handler, error) {
	c, err := a.cache()
	if err != nil {
		return nil, err
	}
	mux := api.NewServer(d, statsFromCache(c)).ServeMux()
	if err := d.AttachAdminRoutes(mux); err != nil {
		return nil, err
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("got request %q", r.URL.Path)
		mux.ServeHTTP(w, r)
	}), nil
}

func serve(ctx context.Context, listen string, h http.Handler) error {
	server := &http.Server{
		Addr:    listen,
		Handler: h,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("HTTP server stopped")
	return nil
}
