package main

import (
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName      = "powerblog_session"
	sessionUserIDKey = "user_id"

	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

type flashMessage struct {
	Level   string
	Message string
}

func init() {
	gob.Register(flashMessage{})
}

func newSessionStore(cfg *Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.isProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

// session returns the request's session. A cookie that fails verification
// yields a fresh, empty session.
func (app *application) session(r *http.Request) *sessions.Session {
	s, err := app.sessions.Get(r, sessionName)
	if err != nil {
		app.logger.Info("discarding invalid session cookie", slog.String("error", err.Error()))
	}
	return s
}

func (app *application) loginUser(w http.ResponseWriter, r *http.Request, userID int) error {
	s := app.session(r)
	for key := range s.Values {
		delete(s.Values, key)
	}
	s.Values[sessionUserIDKey] = userID

	return s.Save(r, w)
}

func (app *application) logoutUser(w http.ResponseWriter, r *http.Request) error {
	s := app.session(r)
	delete(s.Values, sessionUserIDKey)

	opts := *app.sessions.Options
	opts.MaxAge = -1
	s.Options = &opts

	return s.Save(r, w)
}

func (app *application) sessionUserID(r *http.Request) (int, bool) {
	id, ok := app.session(r).Values[sessionUserIDKey].(int)
	return id, ok && id > 0
}

func (app *application) addFlash(w http.ResponseWriter, r *http.Request, level, message string) error {
	s := app.session(r)
	s.AddFlash(flashMessage{Level: level, Message: message})

	return s.Save(r, w)
}

func (app *application) popFlashes(w http.ResponseWriter, r *http.Request) []flashMessage {
	s := app.session(r)

	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}

	if err := s.Save(r, w); err != nil {
		app.logError(r, err)
	}

	flashes := make([]flashMessage, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(flashMessage); ok {
			flashes = append(flashes, msg)
		}
	}

	return flashes
}
