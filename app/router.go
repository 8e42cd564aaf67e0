package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/luanbartole/powerblog/ui"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	fileServer := http.FileServer(http.FS(ui.Files))
	router.Handler(http.MethodGet, "/static/*filepath", fileServer)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthCheckHandler)

	// posts and comments
	router.HandlerFunc(http.MethodGet, "/", app.homeHandler)
	router.HandlerFunc(http.MethodGet, "/post/:id", app.showPostHandler)
	router.HandlerFunc(http.MethodPost, "/post/:id", app.addCommentHandler)
	router.HandlerFunc(http.MethodGet, "/new-post", app.requireAdmin(app.newPostFormHandler))
	router.HandlerFunc(http.MethodPost, "/new-post", app.requireAdmin(app.newPostHandler))
	router.HandlerFunc(http.MethodGet, "/edit-post/:id", app.requireAdmin(app.editPostFormHandler))
	router.HandlerFunc(http.MethodPost, "/edit-post/:id", app.requireAdmin(app.editPostHandler))
	router.HandlerFunc(http.MethodGet, "/delete/*target", app.deleteDispatcher(
		app.requireAdmin(app.deletePostHandler),
		app.requireCommentOwner(app.deleteCommentHandler),
	))

	// users
	router.HandlerFunc(http.MethodGet, "/register", app.registerFormHandler)
	router.HandlerFunc(http.MethodPost, "/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodGet, "/login", app.loginFormHandler)
	router.HandlerFunc(http.MethodPost, "/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodGet, "/logout", app.logoutUserHandler)

	// static pages
	router.HandlerFunc(http.MethodGet, "/about", app.aboutHandler)
	for _, path := range []string{"/contact.html", "/contact"} {
		router.HandlerFunc(http.MethodGet, path, app.contactFormHandler)
		router.HandlerFunc(http.MethodPost, path, app.contactHandler)
	}

	return app.recoverPanic(app.logRequest(app.rateLimit(app.csrfProtect(app.authenticate(router)))))
}

// deleteDispatcher splits /delete/:id from /delete/comment/:commentId/:postId,
// which the router cannot register side by side, and exposes the segments as
// ordinary route parameters.
func (app *application) deleteDispatcher(deletePost, deleteComment http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := httprouter.ParamsFromContext(r.Context()).ByName("target")
		parts := strings.Split(strings.Trim(target, "/"), "/")

		var (
			params httprouter.Params
			next   http.HandlerFunc
		)

		switch {
		case len(parts) == 1 && parts[0] != "":
			params = httprouter.Params{{Key: "id", Value: parts[0]}}
			next = deletePost
		case len(parts) == 3 && parts[0] == "comment":
			params = httprouter.Params{{Key: "commentId", Value: parts[1]}, {Key: "postId", Value: parts[2]}}
			next = deleteComment
		default:
			app.notFoundResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), httprouter.ParamsKey, params)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
