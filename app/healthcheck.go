package main

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// healthCheckHandler reports the build and whether the database answers a ping.
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status, dbStatus, code := "available", "available", http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		app.logError(r, err)
		status, dbStatus, code = "unavailable", "unavailable", http.StatusServiceUnavailable
	}

	env := envelope{
		"status": status,
		"system_info": map[string]string{
			"environment": app.config.Environment,
			"version":     app.config.Version,
		},
		"database": map[string]string{
			"driver": app.db.Driver(),
			"status": dbStatus,
		},
	}

	err := app.writeJSON(w, code, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
