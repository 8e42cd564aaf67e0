package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/luanbartole/powerblog/internal/blogservice"
	"github.com/luanbartole/powerblog/internal/common"
	"github.com/luanbartole/powerblog/internal/mailservice"
)

const duplicateTitleMessage = "a post with this title already exists"

type contactSender interface {
	SendContactMessage(ctx context.Context, msg mailservice.ContactMessage) error
}

func postPath(id int) string {
	return "/post/" + strconv.Itoa(id)
}

func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.blogService.GetPosts(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	data := app.newTemplateData(r)
	data.Posts = posts

	app.render(w, r, http.StatusOK, "index.html", data)
}

// renderPost renders a post page with its comments and the given comment form state.
func (app *application) renderPost(w http.ResponseWriter, r *http.Request, status int, post *blogservice.Post, form blogservice.CommentInput, formErrors map[string]string) {
	comments, err := app.blogService.GetComments(r.Context(), post.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	data := app.newTemplateData(r)
	data.Post = post
	data.Comments = comments
	data.Form = form
	if formErrors != nil {
		data.FormErrors = formErrors
	}

	app.render(w, r, status, "post.html", data)
}

// loadPost reads the :id parameter and fetches the post, writing a 404 when
// either fails.
func (app *application) loadPost(w http.ResponseWriter, r *http.Request) (*blogservice.Post, bool) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, false
	}

	post, err := app.blogService.GetPost(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}

	return post, true
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.loadPost(w, r)
	if !ok {
		return
	}

	app.renderPost(w, r, http.StatusOK, post, blogservice.CommentInput{}, nil)
}

func (app *application) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.loadPost(w, r)
	if !ok {
		return
	}

	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input := blogservice.CommentInput{Text: r.PostForm.Get("comment_text")}

	var validationErr common.ValidationError
	if err := blogservice.ValidateComment(input); errors.As(err, &validationErr) {
		app.renderPost(w, r, http.StatusUnprocessableEntity, post, input, validationErr.Errors)
		return
	}

	user := app.getUserContext(r)
	if user.IsAnonymous() {
		if err := app.addFlash(w, r, flashInfo, "You need to login or register to comment."); err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		app.redirect(w, r, "/login")
		return
	}

	_, err := app.blogService.AddComment(r.Context(), post, user, input)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrEventPublish):
			app.logError(r, err)
		case errors.Is(err, blogservice.ErrInvalidReference):
			app.notFoundResponse(w, r)
			return
		case errors.As(err, &validationErr):
			app.renderPost(w, r, http.StatusUnprocessableEntity, post, input, validationErr.Errors)
			return
		default:
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	app.redirect(w, r, postPath(post.ID))
}

func readPostInput(r *http.Request) blogservice.PostInput {
	return blogservice.PostInput{
		Title:    r.PostForm.Get("title"),
		Subtitle: r.PostForm.Get("subtitle"),
		ImgURL:   r.PostForm.Get("img_url"),
		Body:     r.PostForm.Get("body"),
	}
}

func (app *application) renderPostForm(w http.ResponseWriter, r *http.Request, status int, post *blogservice.Post, form blogservice.PostInput, formErrors map[string]string) {
	data := app.newTemplateData(r)
	data.Form = form
	data.Post = post
	data.IsEdit = post != nil
	if formErrors != nil {
		data.FormErrors = formErrors
	}

	app.render(w, r, status, "make-post.html", data)
}

func (app *application) newPostFormHandler(w http.ResponseWriter, r *http.Request) {
	app.renderPostForm(w, r, http.StatusOK, nil, blogservice.PostInput{}, nil)
}

func (app *application) newPostHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input := readPostInput(r)
	user := app.getUserContext(r)

	_, err := app.blogService.CreatePost(r.Context(), input, user.ID)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.As(err, &validationErr):
			app.renderPostForm(w, r, http.StatusUnprocessableEntity, nil, input, validationErr.Errors)
		case errors.Is(err, blogservice.ErrDuplicateTitle):
			app.renderPostForm(w, r, http.StatusConflict, nil, input, map[string]string{"title": duplicateTitleMessage})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, "/")
}

func (app *application) editPostFormHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.loadPost(w, r)
	if !ok {
		return
	}

	form := blogservice.PostInput{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}

	app.renderPostForm(w, r, http.StatusOK, post, form, nil)
}

func (app *application) editPostHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.loadPost(w, r)
	if !ok {
		return
	}

	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input := readPostInput(r)

	_, err := app.blogService.UpdatePost(r.Context(), post.ID, input)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.As(err, &validationErr):
			app.renderPostForm(w, r, http.StatusUnprocessableEntity, post, input, validationErr.Errors)
		case errors.Is(err, blogservice.ErrDuplicateTitle):
			app.renderPostForm(w, r, http.StatusConflict, post, input, map[string]string{"title": duplicateTitleMessage})
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, postPath(post.ID))
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.blogService.DeletePost(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, "/")
}

// deleteCommentHandler runs behind requireCommentOwner, which put the comment
// in the request context.
func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	comment := app.getCommentContext(r)

	err := app.blogService.DeleteComment(r.Context(), comment.ID)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, postPath(comment.PostID))
}

func (app *application) aboutHandler(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "about.html", app.newTemplateData(r))
}

func (app *application) contactFormHandler(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	data.Form = mailservice.ContactMessage{}

	app.render(w, r, http.StatusOK, "contact.html", data)
}

// contactHandler relays the message and re-renders the page with the outcome.
// Delivery failures are reported to the visitor, never as a 500.
func (app *application) contactHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	msg := mailservice.ContactMessage{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Message: r.PostForm.Get("message"),
	}

	data := app.newTemplateData(r)

	err := app.mailService.SendContactMessage(r.Context(), msg)
	if err != nil {
		app.logError(r, err)
		data.Form = msg
		data.Flashes = []flashMessage{{Level: flashError, Message: fmt.Sprintf("Failed to send message: %s", err)}}
	} else {
		data.Form = mailservice.ContactMessage{}
		data.Flashes = []flashMessage{{Level: flashSuccess, Message: "Your message was sent successfully!"}}
	}

	app.render(w, r, http.StatusOK, "contact.html", data)
}
