package echoconsole

import (
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/nav"
	"github.com/trezcool/confadmin/core/user"
)

const layoutTemplate = "layout"

type (
	// renderer executes a page template inside the shared layout.
	renderer struct {
		pages map[string]*template.Template
	}

	// pageData is what every page template receives.
	pageData struct {
		AppName string
		Title   string
		User    user.User
		Menu    nav.Menu
		CSRF    string
		Toasts  []toast
		Content interface{}
	}
)

var templateFuncs = template.FuncMap{
	"date":     core.FormatDate,
	"datetime": core.FormatDateTime,
	"roleName": user.RoleName,
	"humanize": form.Humanize,
	"truncate": core.Truncate,
	"lower":    strings.ToLower,
	"diffLine": diffLineClass,
	"lines":    func(s string) []string { return strings.Split(strings.TrimRight(s, "\n"), "\n") },
	"csrfField": func() string {
		return csrfField
	},
}

// newRenderer parses every page of dir with the shared templates (files starting with "_").
func newRenderer(fsys fs.FS, dir string) (*renderer, error) {
	shared, err := fs.Glob(fsys, path.Join(dir, "_*.gohtml"))
	if err != nil {
		return nil, errors.Wrap(err, "listing shared templates")
	}
	files, err := fs.Glob(fsys, path.Join(dir, "*.gohtml"))
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}

	r := &renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		base := path.Base(file)
		if strings.HasPrefix(base, "_") {
			continue
		}
		name := strings.TrimSuffix(base, ".gohtml")
		patterns := append(append([]string{}, shared...), file)
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys, patterns...)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", name)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, layoutTemplate, data)
}

// render wraps content in the layout data of the request: user, menu, CSRF token and toasts.
func (s *Server) render(ctx echo.Context, code int, name, title string, content interface{}, toasts ...toast) error {
	data := pageData{
		AppName: s.conf.AppName,
		Title:   title,
		Content: content,
		Toasts:  append(s.popFlashes(ctx), toasts...),
	}
	if token, ok := ctx.Get(middleware.DefaultCSRFConfig.ContextKey).(string); ok {
		data.CSRF = token
	}
	if usr, ok := currentUser(ctx); ok {
		data.User = usr
		data.Menu = nav.Console.For(usr.Roles, ctx.Request().URL.Path)
	}
	return ctx.Render(code, name, data)
}

type errorPage struct {
	Code    int
	Message string
}

func (s *Server) renderError(ctx echo.Context, code int, message string) error {
	return s.render(ctx, code, "error", http.StatusText(code), errorPage{Code: code, Message: message})
}

// diffLineClass styles a unified diff line.
func diffLineClass(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
		return "diff-meta"
	case strings.HasPrefix(line, "+"):
		return "diff-add"
	case strings.HasPrefix(line, "-"):
		return "diff-del"
	}
	return ""
}
