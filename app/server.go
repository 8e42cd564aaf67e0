package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

// serve runs the HTTP server until ctx is cancelled or the process receives
// SIGINT or SIGTERM, then drains in-flight requests.
func (app *application) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         app.config.Port,
		Handler:      app.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.String("addr", srv.Addr), slog.String("env", app.config.Environment))

		var err error
		if app.config.isProduction() {
			err = srv.ListenAndServeTLS(app.config.TLSCertFile, app.config.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		listenErr <- err
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server", slog.String("addr", srv.Addr))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	app.logger.Info("stopped server", slog.String("addr", srv.Addr))

	return nil
}
