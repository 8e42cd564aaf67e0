package main

import (
	"context"
	"net/http"

	"github.com/luanbartole/powerblog/internal/blogservice"
	"github.com/luanbartole/powerblog/internal/userservice"
)

type contextKey string

const (
	userContextKey    = contextKey("user")
	commentContextKey = contextKey("comment")
)

func (app *application) createUserContext(r *http.Request, user *userservice.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// getUserContext returns the current identity, AnonymousUser when there is none.
func (app *application) getUserContext(r *http.Request) *userservice.User {
	user, ok := r.Context().Value(userContextKey).(*userservice.User)
	if !ok || user == nil {
		return &userservice.AnonymousUser
	}
	return user
}

func (app *application) createCommentContext(r *http.Request, comment *blogservice.Comment) *http.Request {
	ctx := context.WithValue(r.Context(), commentContextKey, comment)
	return r.WithContext(ctx)
}

func (app *application) getCommentContext(r *http.Request) *blogservice.Comment {
	comment, ok := r.Context().Value(commentContextKey).(*blogservice.Comment)
	if !ok {
		panic("missing comment value in request context")
	}
	return comment
}
