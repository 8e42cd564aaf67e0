package main

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"github.com/luanbartole/powerblog/internal/blogservice"
	"github.com/luanbartole/powerblog/internal/userservice"
	"github.com/luanbartole/powerblog/ui"
)

type templateData struct {
	CurrentYear     int
	CurrentUser     *userservice.User
	IsAuthenticated bool
	IsAdmin         bool
	Flashes         []flashMessage
	CSRFField       template.HTML
	Form            any
	FormErrors      map[string]string
	Post            *blogservice.Post
	Posts           []blogservice.Post
	Comments        []blogservice.Comment
	IsEdit          bool
	Status          int
	Message         string
}

// gravatar returns the avatar URL for an email address.
func gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=100&d=retro&r=g", hex.EncodeToString(sum[:]))
}

// safeHTML marks sanitized post bodies as trusted markup.
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

var functions = template.FuncMap{
	"gravatar": gravatar,
	"safeHTML": safeHTML,
}

func newTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages, err := fs.Glob(ui.Files, "html/pages/*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		patterns := []string{
			"html/base.html",
			"html/partials/*.html",
			page,
		}

		ts, err := template.New(name).Funcs(functions).ParseFS(ui.Files, patterns...)
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}

func (app *application) newTemplateData(r *http.Request) templateData {
	user := app.getUserContext(r)

	return templateData{
		CurrentYear:     time.Now().Year(),
		CurrentUser:     user,
		IsAuthenticated: !user.IsAnonymous(),
		IsAdmin:         user.IsAdmin(),
		CSRFField:       csrf.TemplateField(r),
		FormErrors:      map[string]string{},
	}
}

// render executes page into a buffer first so that a template error becomes a
// clean 500 instead of a half-written response.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data templateData) {
	ts, ok := app.templateCache[page]
	if !ok {
		app.serverErrorResponse(w, r, fmt.Errorf("the template %s does not exist", page))
		return
	}

	data.Flashes = append(app.popFlashes(w, r), data.Flashes...)
	if data.FormErrors == nil {
		data.FormErrors = map[string]string{}
	}

	buf := new(bytes.Buffer)

	err := ts.ExecuteTemplate(buf, "base", data)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
