package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/luanbartole/powerblog/internal/common"
	"github.com/luanbartole/powerblog/internal/userservice"
)

const (
	msgDuplicateEmail = "You've already signed up with that email, log in instead!"
	msgUnknownEmail   = "That email does not exist, please try again."
	msgWrongPassword  = "Password incorrect, please try again."
	msgInvalidLogin   = "Invalid email or password."
)

func (app *application) renderUserForm(w http.ResponseWriter, r *http.Request, status int, page string, form any, formErrors map[string]string, flashes ...flashMessage) {
	data := app.newTemplateData(r)
	data.Form = form
	data.Flashes = flashes
	if formErrors != nil {
		data.FormErrors = formErrors
	}

	app.render(w, r, status, page, data)
}

func (app *application) registerFormHandler(w http.ResponseWriter, r *http.Request) {
	app.renderUserForm(w, r, http.StatusOK, "register.html", userservice.RegisterInput{}, nil)
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input := userservice.RegisterInput{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	user, err := app.userService.RegisterUser(r.Context(), input)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.As(err, &validationErr):
			input.Password = ""
			app.renderUserForm(w, r, http.StatusUnprocessableEntity, "register.html", input, validationErr.Errors)
		case errors.Is(err, userservice.ErrDuplicateEmail):
			if err := app.addFlash(w, r, flashError, msgDuplicateEmail); err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
			app.redirect(w, r, "/login")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if err := app.loginUser(w, r, user.ID); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.logger.Info("user registered", slog.Int("user_id", user.ID), slog.String("role", string(user.Role)))

	app.redirect(w, r, "/")
}

func (app *application) loginFormHandler(w http.ResponseWriter, r *http.Request) {
	app.renderUserForm(w, r, http.StatusOK, "login.html", userservice.LoginInput{}, nil)
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input := userservice.LoginInput{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	form := userservice.LoginInput{Email: input.Email}

	user, err := app.userService.AuthenticateUser(r.Context(), input)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.As(err, &validationErr):
			app.renderUserForm(w, r, http.StatusUnprocessableEntity, "login.html", form, validationErr.Errors)
		case errors.Is(err, userservice.ErrNotFound):
			app.renderUserForm(w, r, http.StatusUnauthorized, "login.html", form, nil, app.loginFailure(msgUnknownEmail))
		case errors.Is(err, userservice.ErrAuthenticationFailure):
			app.renderUserForm(w, r, http.StatusUnauthorized, "login.html", form, nil, app.loginFailure(msgWrongPassword))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if err := app.loginUser(w, r, user.ID); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, "/")
}

// loginFailure hides which credential was wrong when generic login errors are configured.
func (app *application) loginFailure(message string) flashMessage {
	if app.config.LoginGenericErrors {
		message = msgInvalidLogin
	}
	return flashMessage{Level: flashError, Message: message}
}

func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.logoutUser(w, r); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, "/")
}
