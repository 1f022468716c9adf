package echoconsole

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/table"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/services/export"
	"github.com/trezcool/confadmin/storage/cache"
)

type (
	// resource describes the list/create/edit/delete pages of a backend resource.
	resource[T any, F forms.Form] struct {
		Name     string // cache & audit resource
		Path     string
		Title    string
		Singular string
		// Writers may create, update and delete; nil means whoever may open the pages.
		Writers []string
		// Invalidates lists the other cached resources embedding this one.
		Invalidates  []string
		Exportable   bool
		CreateAction string
		CreateLabel  string

		// Filters are the query params forwarded to List.
		Filters    []string
		FilterForm func(ctx context.Context, usr user.User, filters url.Values) ([]form.Field, error)

		List    func(ctx context.Context, filters url.Values) ([]T, error)
		ID      func(T) string
		Label   func(T) string
		Columns []table.Column
		Cells   func(item T, names map[string]string) map[string]table.Cell
		// Names resolves the IDs of related resources shown in cells.
		Names func(ctx context.Context, usr user.User) (map[string]string, error)

		NewForm  func() F
		EditForm func(T) F
		Choices  func(ctx context.Context, usr user.User) (form.Choices, error)

		Create func(ctx context.Context, f F, files []backend.File) (T, error)
		Update func(ctx context.Context, id string, f F, files []backend.File) (T, error) // nil: no edit pages
		Delete func(ctx context.Context, id string) error
	}

	tablePage struct {
		table.Page
		BasePath    string
		CreateURL   string
		CreateLabel string
		ExportURL   string
		Filters     []form.Field
		Empty       string
	}

	formPage struct {
		Action    string
		Fields    []form.Field
		Error     string
		Submit    string
		CancelURL string
		Multipart bool
	}

	confirmPage struct {
		Message   string
		Action    string
		Submit    string
		CancelURL string
	}

	// counter counts the items of a menu entry for the dashboard.
	counter func(ctx context.Context, usr user.User) (int, error)
)

func (r resource[T, F]) canWrite(usr user.User) bool {
	return r.Writers == nil || user.HasAnyRole(usr.Roles, r.Writers)
}

func (r resource[T, F]) filterValues(ctx echo.Context) url.Values {
	v := make(url.Values, len(r.Filters))
	for _, key := range r.Filters {
		if val := ctx.QueryParam(key); val != "" {
			v.Set(key, val)
		}
	}
	return v
}

func (r resource[T, F]) isMultipart() bool {
	_, ok := interface{}(r.NewForm()).(forms.MultipartForm)
	return ok
}

// registerResource mounts the pages of r on g, which is prefixed with r.Path.
func registerResource[T any, F forms.Form](s *Server, g *echo.Group, r resource[T, F]) {
	if r.CreateAction == "" {
		r.CreateAction = audit.ActionCreate
	}
	if r.CreateLabel == "" {
		r.CreateLabel = "New " + r.Singular
	}
	h := &resourceHandler[T, F]{s: s, r: r}

	g.GET("", h.list)
	if r.Exportable {
		g.GET("/export.xlsx", h.export)
	}
	g.GET("/new", h.newPage)
	g.POST("/new", h.create)
	if r.Update != nil {
		g.GET("/:id/edit", h.editPage)
		g.POST("/:id/edit", h.update)
	}
	if r.Delete != nil {
		g.GET("/:id/delete", h.confirmDelete)
		g.POST("/:id/delete", h.delete)
	}

	s.counters[r.Path] = func(ctx context.Context, usr user.User) (int, error) {
		items, err := h.items(ctx, usr, nil)
		return len(items), err
	}
}

type resourceHandler[T any, F forms.Form] struct {
	s *Server
	r resource[T, F]
}

func (h *resourceHandler[T, F]) items(ctx context.Context, usr user.User, filters url.Values) ([]T, error) {
	key := cache.Key(h.r.Name, usr.ID, filters.Encode())
	return cache.Fetch(ctx, h.s.cache, key, func(ctx context.Context) ([]T, error) {
		return h.r.List(ctx, filters)
	})
}

func (h *resourceHandler[T, F]) find(ctx echo.Context) (T, error) {
	usr, _ := currentUser(ctx)
	items, err := h.items(ctx.Request().Context(), usr, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	id := ctx.Param("id")
	for _, item := range items {
		if h.r.ID(item) == id {
			return item, nil
		}
	}
	var zero T
	return zero, errHttpNotFound
}

func (h *resourceHandler[T, F]) table(ctx context.Context, items []T, usr user.User) (table.Table, error) {
	var names map[string]string
	if h.r.Names != nil {
		var err error
		if names, err = h.r.Names(ctx, usr); err != nil {
			return table.Table{}, errors.Wrapf(err, "resolving %s names", h.r.Name)
		}
	}

	t := table.Table{Title: h.r.Title, Columns: h.r.Columns, Rows: make([]table.Row, 0, len(items))}
	writable := h.r.canWrite(usr)
	for _, item := range items {
		id := h.r.ID(item)
		row := table.Row{ID: id, Cells: h.r.Cells(item, names)}
		if writable && h.r.Update != nil {
			row.Actions = append(row.Actions, table.Action{Label: "Edit", URL: h.r.Path + "/" + url.PathEscape(id) + "/edit", Method: http.MethodGet})
		}
		if writable && h.r.Delete != nil {
			row.Actions = append(row.Actions, table.Action{Label: "Delete", URL: h.r.Path + "/" + url.PathEscape(id) + "/delete", Method: http.MethodGet, Danger: true})
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func (h *resourceHandler[T, F]) list(ctx echo.Context) error {
	usr, _ := currentUser(ctx)
	reqCtx := ctx.Request().Context()
	filters := h.r.filterValues(ctx)

	items, err := h.items(reqCtx, usr, filters)
	if err != nil {
		return errors.Wrapf(err, "listing %s", h.r.Name)
	}

	t, err := h.table(reqCtx, items, usr)
	if err != nil {
		return err
	}

	params := table.ParamsFromQuery(ctx.QueryParams())
	params.Filters = filters
	pg := tablePage{
		Page:     t.Apply(params),
		BasePath: h.r.Path,
		Empty:    fmt.Sprintf("No %s yet.", h.r.Title),
	}
	if h.r.canWrite(usr) {
		pg.CreateURL = h.r.Path + "/new"
		pg.CreateLabel = h.r.CreateLabel
	}
	if h.r.Exportable {
		pg.ExportURL = h.r.Path + "/export.xlsx" + params.Query(1)
	}
	if h.r.FilterForm != nil {
		if pg.Filters, err = h.r.FilterForm(reqCtx, usr, filters); err != nil {
			return errors.Wrapf(err, "building %s filters", h.r.Name)
		}
	}
	return h.s.render(ctx, http.StatusOK, "table", h.r.Title, pg)
}

func (h *resourceHandler[T, F]) export(ctx echo.Context) error {
	usr, _ := currentUser(ctx)
	filters := h.r.filterValues(ctx)
	reqCtx := ctx.Request().Context()
	items, err := h.items(reqCtx, usr, filters)
	if err != nil {
		return errors.Wrapf(err, "listing %s", h.r.Name)
	}
	t, err := h.table(reqCtx, items, usr)
	if err != nil {
		return err
	}
	params := table.ParamsFromQuery(ctx.QueryParams())
	return sendXLSX(ctx, h.r.Name, h.r.Title, t, t.Filter(params))
}

func (h *resourceHandler[T, F]) renderForm(ctx echo.Context, code int, action, submit string, f F, errs map[string]string) error {
	usr, _ := currentUser(ctx)
	var choices form.Choices
	if h.r.Choices != nil {
		var err error
		if choices, err = h.r.Choices(ctx.Request().Context(), usr); err != nil {
			return errors.Wrapf(err, "loading %s choices", h.r.Name)
		}
	}
	pg := formPage{
		Action:    action,
		Fields:    form.Describe(f, errs, choices),
		Error:     errs[form.NonFieldKey],
		Submit:    submit,
		CancelURL: h.r.Path,
		Multipart: h.r.isMultipart(),
	}
	var toasts []toast
	if pg.Error != "" {
		toasts = append(toasts, toast{Kind: flashError, Message: pg.Error})
	}
	return h.s.render(ctx, code, "form", submit, pg, toasts...)
}

func (h *resourceHandler[T, F]) guardWrite(ctx echo.Context) error {
	usr, _ := currentUser(ctx)
	if !h.r.canWrite(usr) {
		return errHttpForbidden
	}
	return nil
}

func (h *resourceHandler[T, F]) newPage(ctx echo.Context) error {
	if err := h.guardWrite(ctx); err != nil {
		return err
	}
	return h.renderForm(ctx, http.StatusOK, h.r.Path+"/new", h.r.CreateLabel, h.r.NewForm(), nil)
}

// bind binds and validates the submitted form; the returned files must be closed.
func (h *resourceHandler[T, F]) bind(ctx echo.Context, f F, creating bool) ([]backend.File, func(), map[string]string) {
	noop := func() {}
	if err := ctx.Bind(f); err != nil {
		return nil, noop, map[string]string{form.NonFieldKey: "invalid form submission"}
	}

	errs := form.FieldErrors(f.Validate(h.s.validate), h.s.translator)

	var files []backend.File
	closeFiles := noop
	if mf, ok := interface{}(f).(forms.MultipartForm); ok {
		var present map[string]bool
		var err error
		files, closeFiles, present, err = formFiles(ctx, mf.FileFields())
		if err != nil {
			errs[form.NonFieldKey] = "could not read the uploaded files"
		} else if creating {
			for k, v := range form.FieldErrors(forms.MissingFiles(mf, present), h.s.translator) {
				errs[k] = v
			}
		}
	}
	return files, closeFiles, errs
}

// backendFormErrors turns a failed submission into form errors, or returns err when it is not the user's doing.
func (h *resourceHandler[T, F]) backendFormErrors(err error) (map[string]string, error) {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Status >= http.StatusInternalServerError ||
		apiErr.Status == http.StatusUnauthorized {
		return nil, err
	}
	errs := form.FieldErrors(apiErr, h.s.translator)
	if _, ok := errs[form.NonFieldKey]; !ok {
		errs[form.NonFieldKey] = apiErr.Message
	}
	return errs, nil
}

func (h *resourceHandler[T, F]) create(ctx echo.Context) error {
	if err := h.guardWrite(ctx); err != nil {
		return err
	}
	action := h.r.Path + "/new"

	f := h.r.NewForm()
	files, closeFiles, errs := h.bind(ctx, f, true)
	defer closeFiles()
	if len(errs) > 0 {
		return h.renderForm(ctx, http.StatusUnprocessableEntity, action, h.r.CreateLabel, f, errs)
	}

	reqCtx := ctx.Request().Context()
	item, err := h.r.Create(reqCtx, f, files)
	if err != nil {
		if errs, err = h.backendFormErrors(err); err != nil {
			return errors.Wrapf(err, "creating %s", h.r.Singular)
		}
		return h.renderForm(ctx, http.StatusUnprocessableEntity, action, h.r.CreateLabel, f, errs)
	}

	h.s.cache.Invalidate(reqCtx, append([]string{h.r.Name}, h.r.Invalidates...)...)
	label := h.r.Label(item)
	h.s.auditSvc.Record(reqCtx, actorOf(ctx), h.r.CreateAction, h.r.Name, h.r.ID(item), fmt.Sprintf("%s %s %q", pastTense(h.r.CreateAction), h.r.Singular, label))
	h.s.setFlash(ctx, flashSuccess, fmt.Sprintf("%s %q saved.", capitalize(h.r.Singular), label))
	return ctx.Redirect(http.StatusSeeOther, h.r.Path)
}

func (h *resourceHandler[T, F]) editPage(ctx echo.Context) error {
	if err := h.guardWrite(ctx); err != nil {
		return err
	}
	item, err := h.find(ctx)
	if err != nil {
		return err
	}
	action := h.r.Path + "/" + url.PathEscape(h.r.ID(item)) + "/edit"
	return h.renderForm(ctx, http.StatusOK, action, "Edit "+h.r.Singular, h.r.EditForm(item), nil)
}

func (h *resourceHandler[T, F]) update(ctx echo.Context) error {
	if err := h.guardWrite(ctx); err != nil {
		return err
	}
	before, err := h.find(ctx)
	if err != nil {
		return err
	}
	id := h.r.ID(before)
	action := h.r.Path + "/" + url.PathEscape(id) + "/edit"
	submit := "Edit " + h.r.Singular

	f := h.r.NewForm()
	files, closeFiles, errs := h.bind(ctx, f, false)
	defer closeFiles()
	if len(errs) > 0 {
		return h.renderForm(ctx, http.StatusUnprocessableEntity, action, submit, f, errs)
	}

	reqCtx := ctx.Request().Context()
	after, err := h.r.Update(reqCtx, id, f, files)
	if err != nil {
		if errs, err = h.backendFormErrors(err); err != nil {
			return errors.Wrapf(err, "updating %s", h.r.Singular)
		}
		return h.renderForm(ctx, http.StatusUnprocessableEntity, action, submit, f, errs)
	}

	h.s.cache.Invalidate(reqCtx, append([]string{h.r.Name}, h.r.Invalidates...)...)
	label := h.r.Label(after)
	h.s.auditSvc.RecordUpdate(reqCtx, actorOf(ctx), h.r.Name, id, fmt.Sprintf("updated %s %q", h.r.Singular, label), before, after)
	h.s.setFlash(ctx, flashSuccess, fmt.Sprintf("%s %q saved.", capitalize(h.r.Singular), label))
	return ctx.Redirect(http.StatusSeeOther, h.r.Path)
}

func (h *resourceHandler[T, F]) confirmDelete(ctx echo.Context) error {
	if err := h.guardWrite(ctx); err != nil {
		return err
	}
	item, err := h.find(ctx)
	if err != nil {
		return err
	}
	return h.s.render(ctx, http.StatusOK, "confirm", "Delete "+h.r.Singular, confirmPage{
		Message:   fmt.Sprintf("Delete %s %q? This cannot be undone.", h.r.Singular, h.r.Label(item)),
		Action:    h.r.Path + "/" + url.PathEscape(h.r.ID(item)) + "/delete",
		Submit:    "Delete",
		CancelURL: h.r.Path,
	})
}

func (h *resourceHandler[T, F]) delete(ctx echo.Context) error {
	if err := h.guardWrite(ctx); err != nil {
		return err
	}
	item, err := h.find(ctx)
	if err != nil {
		return err
	}
	id, label := h.r.ID(item), h.r.Label(item)

	reqCtx := ctx.Request().Context()
	if err = h.r.Delete(reqCtx, id); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && apiErr.Status != http.StatusUnauthorized {
			h.s.setFlash(ctx, flashError, apiErr.Message)
			return ctx.Redirect(http.StatusSeeOther, h.r.Path)
		}
		return errors.Wrapf(err, "deleting %s", h.r.Singular)
	}

	h.s.cache.Invalidate(reqCtx, append([]string{h.r.Name}, h.r.Invalidates...)...)
	h.s.auditSvc.Record(reqCtx, actorOf(ctx), audit.ActionDelete, h.r.Name, id, fmt.Sprintf("deleted %s %q", h.r.Singular, label))
	h.s.setFlash(ctx, flashSuccess, fmt.Sprintf("%s %q deleted.", capitalize(h.r.Singular), label))
	return ctx.Redirect(http.StatusSeeOther, h.r.Path)
}

// formFiles opens the uploaded files of fields; present reports which were sent.
func formFiles(ctx echo.Context, fields []forms.FileField) ([]backend.File, func(), map[string]bool, error) {
	var files []backend.File
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	present := make(map[string]bool, len(fields))

	for _, ff := range fields {
		fh, err := ctx.FormFile(ff.Param)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
				continue
			}
			closeAll()
			return nil, func() {}, nil, errors.Wrapf(err, "reading %s", ff.Param)
		}
		if fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, nil, errors.Wrapf(err, "opening %s", ff.Param)
		}
		opened = append(opened, f)
		present[ff.Param] = true
		files = append(files, backend.File{Param: ff.Param, Name: fh.Filename, Reader: f})
	}
	return files, closeAll, present, nil
}

func multipartBody(f forms.MultipartForm, files []backend.File) backend.Multipart {
	body := f.Multipart()
	body.Files = files
	return body
}

func actorOf(ctx echo.Context) audit.Actor {
	usr, _ := currentUser(ctx)
	return audit.Actor{ID: usr.ID, Email: usr.Email}
}

func sendXLSX(ctx echo.Context, name, sheet string, t table.Table, rows []table.Row) error {
	data, err := export.Bytes(sheet, t, rows)
	if err != nil {
		return errors.Wrapf(err, "exporting %s", name)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	return ctx.Blob(http.StatusOK, export.ContentTypeXLSX, data)
}

func pastTense(action string) string {
	switch action {
	case audit.ActionSend:
		return "sent"
	case audit.ActionReview:
		return "reviewed"
	}
	return action + "d"
}

func capitalize(s string) string {
	return form.Humanize(s)
}
