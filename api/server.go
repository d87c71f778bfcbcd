package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests. The caller owns signal handling.
func (app *Application) Serve(ctx context.Context, mux *http.ServeMux) error {
	log := app.logger()
	srv := &http.Server{
		Addr:         app.Config.HTTPPort,
		Handler:      app.BuildRoutes(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}
	shutdownErr := make(chan error, 1)

	go func() {
		<-ctx.Done()
		log.Info("shutting down server", "reason", context.Cause(ctx))

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	log.Info("starting server", "addr", app.Config.HTTPPort, "palette", app.Config.PalettePath)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return err
	}

	log.Info("stopped server", "addr", app.Config.HTTPPort)
	return nil
}
