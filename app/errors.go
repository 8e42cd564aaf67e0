package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url), slog.String("request_id", requestID(r)))
}

// errorResponse renders the HTML error page. It never goes through render so
// that a broken template cannot recurse back into here.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := app.newTemplateData(r)
	data.Status = status
	data.Message = message

	ts, ok := app.templateCache["error.html"]
	if !ok {
		http.Error(w, message, status)
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		app.logError(r, err)
		http.Error(w, message, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, "you do not have permission to access this resource")
}

func (app *application) csrfFailureResponse(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	app.logger.Info("rejected request", slog.String("reason", reason), slog.String("request_id", requestID(r)))
	app.errorResponse(w, r, http.StatusForbidden, "the form has expired, please go back and try again")
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, "the "+strings.ToUpper(r.Method)+" method is not supported for this resource")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}
