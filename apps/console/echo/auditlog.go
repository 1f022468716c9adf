package echoconsole

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/table"
)

var auditColumns = []table.Column{
	{Key: "created_at", Label: "When", Sortable: true},
	{Key: "actor", Label: "Actor", Sortable: true, Searchable: true},
	{Key: "action", Label: "Action", Sortable: true},
	{Key: "resource", Label: "Resource", Sortable: true, Searchable: true},
	{Key: "summary", Label: "Summary", Searchable: true},
}

var auditResources = []string{
	resConferences, resTickets, resHotels, resAccommodations, resSponsors, resCompanies,
	resAds, resJobOffers, resBlogs, resNotifications, resUsers, resKYC,
}

type auditPage struct {
	Entry audit.Entry
}

func (s *Server) registerAudit(g *echo.Group) {
	g.GET("", s.auditLog)
	g.GET("/:id", s.auditEntry)
}

func (s *Server) auditLog(ctx echo.Context) error {
	f := new(forms.AuditFilterForm)
	var errs map[string]string
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, f); err != nil {
		f, errs = new(forms.AuditFilterForm), map[string]string{form.NonFieldKey: "invalid filters"}
	} else if err = f.Validate(s.validate); err != nil {
		errs = form.FieldErrors(err, s.translator)
		f = &forms.AuditFilterForm{Resource: f.Resource, Action: f.Action, ActorID: f.ActorID}
	}

	filter := f.Filter()
	filter.Limit = audit.MaxLimit
	entries, err := s.auditSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying audit log")
	}

	t := table.Table{Title: "Audit Log", Columns: auditColumns, Rows: make([]table.Row, 0, len(entries))}
	for _, e := range entries {
		t.Rows = append(t.Rows, table.Row{ID: e.ID, Cells: map[string]table.Cell{
			"created_at": table.DateTime(e.CreatedAt),
			"actor":      table.Text(e.ActorEmail),
			"action":     table.Text(form.Humanize(e.Action)),
			"resource":   table.Text(e.Resource),
			"summary":    {Text: e.Summary, Value: e.Summary, Link: "/audit/" + url.PathEscape(e.ID)},
		}})
	}

	choices := form.Choices{
		"resource": allOption("All resources", auditResources),
		"action":   allOption("All actions", audit.Actions),
	}

	params := table.ParamsFromQuery(ctx.QueryParams())
	params.Filters = f.Values()

	var toasts []toast
	if msg, ok := errs[form.NonFieldKey]; ok {
		toasts = append(toasts, toast{Kind: flashError, Message: msg})
	}
	return s.render(ctx, http.StatusOK, "table", "Audit Log", tablePage{
		Page:     t.Apply(params),
		BasePath: "/audit",
		Filters:  form.Describe(f, errs, choices),
		Empty:    "Nothing recorded yet.",
	}, toasts...)
}

func (s *Server) auditEntry(ctx echo.Context) error {
	entry, err := s.auditSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting audit entry")
	}
	return s.render(ctx, http.StatusOK, "audit_entry", "Audit entry", auditPage{Entry: entry})
}

func allOption(label string, values []string) []form.Option {
	opts := []form.Option{{Value: "", Label: label}}
	for _, v := range values {
		opts = append(opts, form.Option{Value: v, Label: form.Humanize(v)})
	}
	return opts
}
