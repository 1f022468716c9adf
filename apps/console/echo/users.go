package echoconsole

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/table"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
)

type usersApi struct {
	s *Server
}

func (s *Server) registerUsers(g *echo.Group) {
	api := &usersApi{s: s}

	g.GET("", api.list)
	g.GET("/export.xlsx", api.export)
	g.GET("/:id/roles", api.rolesPage)
	g.POST("/:id/roles", api.assignRoles)
	g.POST("/:id/status", api.setStatus)
	g.GET("/:id/delete", api.confirmDelete)
	g.POST("/:id/delete", api.delete)
	g.GET("/:id/kyc", api.kycPage)
	g.POST("/:id/kyc", api.decideKYC)

	s.counters["/users"] = func(ctx context.Context, usr user.User) (int, error) {
		users, err := s.users(ctx, usr)
		return len(users), err
	}
}

var userColumns = []table.Column{
	{Key: "name", Label: "Name", Sortable: true, Searchable: true},
	{Key: "email", Label: "Email", Sortable: true, Searchable: true},
	{Key: "phone", Label: "Phone", Searchable: true},
	{Key: "roles", Label: "Roles", Searchable: true},
	{Key: "is_active", Label: "Active", Sortable: true},
	{Key: "kyc", Label: "KYC", Sortable: true},
	{Key: "created_at", Label: "Joined", Sortable: true},
	{Key: "last_login", Label: "Last login", Sortable: true},
}

// queryFilter reads the users filter from the query string.
func queryFilter(ctx echo.Context) user.QueryFilter {
	qf := user.QueryFilter{
		Role: ctx.QueryParam("role"),
		KYC:  ctx.QueryParam("kyc"),
	}
	if active, err := strconv.ParseBool(ctx.QueryParam("is_active")); err == nil {
		qf.IsActive = &active
	}
	qf.Clean()
	return qf
}

func (api *usersApi) table(actor user.User, users []user.User, qf user.QueryFilter) table.Table {
	t := table.Table{Title: "Users", Columns: userColumns, Rows: make([]table.Row, 0, len(users))}
	isAdmin := actor.IsAdmin()

	for _, u := range users {
		if !qf.Match(u) {
			continue
		}
		roles := make([]string, 0, len(u.Roles))
		for _, r := range u.Roles {
			roles = append(roles, user.RoleName(r))
		}
		base := "/users/" + url.PathEscape(u.ID)

		row := table.Row{ID: u.ID, Cells: map[string]table.Cell{
			"name":       table.Text(u.FullName()),
			"email":      table.Text(u.Email),
			"phone":      table.Text(u.Phone),
			"roles":      table.Text(strings.Join(roles, ", ")),
			"is_active":  table.Bool(u.IsActive),
			"kyc":        table.Text(form.Humanize(u.KYCStatus)),
			"created_at": table.Date(u.CreatedAt),
			"last_login": table.DateTime(u.LastLogin),
		}}
		row.Actions = append(row.Actions, table.Action{Label: "KYC", URL: base + "/kyc", Method: http.MethodGet})
		if isAdmin && user.CanManage(actor, u) {
			status := table.Action{Label: "Deactivate", URL: base + "/status?is_active=false", Method: http.MethodPost, Confirm: "Deactivate " + u.Email + "?", Danger: true}
			if !u.IsActive {
				status = table.Action{Label: "Activate", URL: base + "/status?is_active=true", Method: http.MethodPost}
			}
			row.Actions = append(row.Actions,
				table.Action{Label: "Roles", URL: base + "/roles", Method: http.MethodGet},
				status,
				table.Action{Label: "Delete", URL: base + "/delete", Method: http.MethodGet, Danger: true},
			)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (api *usersApi) filterFields(qf user.QueryFilter) []form.Field {
	roleOpts := []form.Option{{Value: "", Label: "All roles", Selected: qf.Role == ""}}
	for _, r := range user.Roles {
		roleOpts = append(roleOpts, form.Option{Value: r.Value, Label: r.Name, Selected: qf.Role == r.Value})
	}
	active := ""
	if qf.IsActive != nil {
		active = strconv.FormatBool(*qf.IsActive)
	}
	kycOpts := []form.Option{{Value: "", Label: "Any KYC", Selected: qf.KYC == ""}}
	for _, st := range user.KYCStatuses {
		kycOpts = append(kycOpts, form.Option{Value: st, Label: form.Humanize(st), Selected: qf.KYC == st})
	}
	return []form.Field{
		{Name: "role", Label: "Role", Input: "select", Value: qf.Role, Options: roleOpts},
		{Name: "is_active", Label: "Status", Input: "select", Value: active, Options: []form.Option{
			{Value: "", Label: "Any status", Selected: active == ""},
			{Value: "true", Label: "Active", Selected: active == "true"},
			{Value: "false", Label: "Inactive", Selected: active == "false"},
		}},
		{Name: "kyc", Label: "KYC", Input: "select", Value: qf.KYC, Options: kycOpts},
	}
}

func filterQuery(qf user.QueryFilter) url.Values {
	v := make(url.Values)
	if qf.Role != "" {
		v.Set("role", qf.Role)
	}
	if qf.IsActive != nil {
		v.Set("is_active", strconv.FormatBool(*qf.IsActive))
	}
	if qf.KYC != "" {
		v.Set("kyc", qf.KYC)
	}
	return v
}

func (api *usersApi) list(ctx echo.Context) error {
	actor, _ := currentUser(ctx)
	users, err := api.s.users(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing users")
	}

	qf := queryFilter(ctx)
	params := table.ParamsFromQuery(ctx.QueryParams())
	params.Filters = filterQuery(qf)
	return api.s.render(ctx, http.StatusOK, "table", "Users", tablePage{
		Page:      api.table(actor, users, qf).Apply(params),
		BasePath:  "/users",
		ExportURL: "/users/export.xlsx" + params.Query(1),
		Filters:   api.filterFields(qf),
		Empty:     "No users match.",
	})
}

func (api *usersApi) export(ctx echo.Context) error {
	actor, _ := currentUser(ctx)
	users, err := api.s.users(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing users")
	}
	t := api.table(actor, users, queryFilter(ctx))
	return sendXLSX(ctx, resUsers, "Users", t, t.Filter(table.ParamsFromQuery(ctx.QueryParams())))
}

// target returns the user of the :id param, requiring the actor to be an admin able to manage them.
func (api *usersApi) target(ctx echo.Context) (user.User, error) {
	actor, _ := currentUser(ctx)
	if !actor.IsAdmin() {
		return user.User{}, errHttpForbidden
	}
	usr, err := api.s.userSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return user.User{}, errHttpNotFound
		}
		return user.User{}, err
	}
	if !user.CanManage(actor, usr) {
		return user.User{}, errHttpForbidden
	}
	return usr, nil
}

func (api *usersApi) renderRoles(ctx echo.Context, code int, target user.User, ra *user.RoleAssignment, errs map[string]string) error {
	actor, _ := currentUser(ctx)
	opts := make([]form.Option, 0, len(user.Roles))
	for _, r := range user.Roles {
		if user.CanAssign(actor.Roles, []string{r.Value}) {
			opts = append(opts, form.Option{Value: r.Value, Label: r.Name})
		}
	}
	pg := formPage{
		Action:    "/users/" + url.PathEscape(target.ID) + "/roles",
		Fields:    form.Describe(ra, errs, form.Choices{"roles": opts}),
		Error:     errs[form.NonFieldKey],
		Submit:    "Save roles",
		CancelURL: "/users",
	}
	return api.s.render(ctx, code, "form", "Roles of "+target.FullName(), pg)
}

func (api *usersApi) rolesPage(ctx echo.Context) error {
	target, err := api.target(ctx)
	if err != nil {
		return err
	}
	return api.renderRoles(ctx, http.StatusOK, target, &user.RoleAssignment{Roles: target.Roles}, nil)
}

func (api *usersApi) assignRoles(ctx echo.Context) error {
	target, err := api.target(ctx)
	if err != nil {
		return err
	}
	ra := new(user.RoleAssignment)
	if err = ctx.Bind(ra); err != nil {
		return api.renderRoles(ctx, http.StatusBadRequest, target, ra, map[string]string{form.NonFieldKey: "invalid form submission"})
	}

	actor, _ := currentUser(ctx)
	reqCtx := ctx.Request().Context()
	usr, err := api.s.userSvc.AssignRoles(reqCtx, actor, target.ID, *ra)
	if err != nil {
		if isFormError(err) {
			return api.renderRoles(ctx, http.StatusUnprocessableEntity, target, ra, form.FieldErrors(err, api.s.translator))
		}
		return errors.Wrap(err, "assigning roles")
	}

	api.s.cache.Invalidate(reqCtx, resUsers, meResource)
	api.s.auditSvc.RecordUpdate(reqCtx, actorOf(ctx), resUsers, usr.ID, "updated roles of "+usr.Email,
		user.RoleAssignment{Roles: target.Roles}, user.RoleAssignment{Roles: usr.Roles})
	api.s.setFlash(ctx, flashSuccess, fmt.Sprintf("Roles of %s saved.", usr.Email))
	return ctx.Redirect(http.StatusSeeOther, "/users")
}

func (api *usersApi) setStatus(ctx echo.Context) error {
	target, err := api.target(ctx)
	if err != nil {
		return err
	}
	isActive, err := strconv.ParseBool(ctx.FormValue("is_active"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "is_active must be true or false")
	}

	actor, _ := currentUser(ctx)
	reqCtx := ctx.Request().Context()
	usr, err := api.s.userSvc.SetActive(reqCtx, actor, target.ID, isActive)
	if err != nil {
		return errors.Wrap(err, "changing user status")
	}

	verb := "deactivated"
	if usr.IsActive {
		verb = "activated"
	}
	api.s.cache.Invalidate(reqCtx, resUsers, meResource)
	api.s.auditSvc.RecordUpdate(reqCtx, actorOf(ctx), resUsers, usr.ID, verb+" "+usr.Email,
		user.StatusChange{IsActive: target.IsActive}, user.StatusChange{IsActive: usr.IsActive})
	api.s.setFlash(ctx, flashSuccess, fmt.Sprintf("%s %s.", usr.Email, verb))
	return ctx.Redirect(http.StatusSeeOther, "/users")
}

func (api *usersApi) confirmDelete(ctx echo.Context) error {
	target, err := api.target(ctx)
	if err != nil {
		return err
	}
	return api.s.render(ctx, http.StatusOK, "confirm", "Delete user", confirmPage{
		Message:   fmt.Sprintf("Delete %s (%s)? This cannot be undone.", target.FullName(), target.Email),
		Action:    "/users/" + url.PathEscape(target.ID) + "/delete",
		Submit:    "Delete",
		CancelURL: "/users",
	})
}

func (api *usersApi) delete(ctx echo.Context) error {
	target, err := api.target(ctx)
	if err != nil {
		return err
	}
	actor, _ := currentUser(ctx)
	reqCtx := ctx.Request().Context()
	if err = api.s.userSvc.Delete(reqCtx, actor, target.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}

	api.s.cache.Invalidate(reqCtx, resUsers, meResource)
	api.s.auditSvc.Record(reqCtx, actorOf(ctx), audit.ActionDelete, resUsers, target.ID, "deleted user "+target.Email)
	api.s.setFlash(ctx, flashSuccess, fmt.Sprintf("%s deleted.", target.Email))
	return ctx.Redirect(http.StatusSeeOther, "/users")
}

// isFormError reports whether err is a validation failure the user can fix.
func isFormError(err error) bool {
	var vErrs validator.ValidationErrors
	var coreErr *core.ValidationError
	return errors.As(err, &vErrs) || errors.As(err, &coreErr)
}
