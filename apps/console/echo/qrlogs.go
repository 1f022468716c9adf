package echoconsole

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/table"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/storage/cache"
)

var scanLogColumns = []table.Column{
	{Key: "scanned_at", Label: "Scanned", Sortable: true},
	{Key: "user", Label: "Attendee", Sortable: true, Searchable: true},
	{Key: "conference", Label: "Conference", Sortable: true, Searchable: true},
	{Key: "ticket", Label: "Ticket", Searchable: true},
	{Key: "gate", Label: "Gate", Sortable: true, Searchable: true},
	{Key: "valid", Label: "Valid", Sortable: true},
}

type qrLogsApi struct {
	s *Server
}

func (s *Server) registerQRLogs(g *echo.Group) {
	api := &qrLogsApi{s: s}
	g.GET("", api.list)
	g.GET("/export.xlsx", api.export)

	s.counters["/qr-logs"] = func(ctx context.Context, usr user.User) (int, error) {
		logs, err := api.logs(ctx, usr, new(forms.ScanLogFilterForm))
		return len(logs), err
	}
}

func (api *qrLogsApi) logs(ctx context.Context, usr user.User, f *forms.ScanLogFilterForm) ([]backend.ScanLog, error) {
	key := cache.Key(resQRLogs, usr.ID, f.Values().Encode())
	return cache.Fetch(ctx, api.s.cache, key, func(ctx context.Context) ([]backend.ScanLog, error) {
		return api.s.backend.ListScanLogs(ctx, f.Filter())
	})
}

// filter binds the filter form; invalid filters are reported and dropped.
func (api *qrLogsApi) filter(ctx echo.Context) (*forms.ScanLogFilterForm, map[string]string) {
	f := new(forms.ScanLogFilterForm)
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, f); err != nil {
		return new(forms.ScanLogFilterForm), map[string]string{form.NonFieldKey: "invalid filters"}
	}
	if err := f.Validate(api.s.validate); err != nil {
		errs := form.FieldErrors(err, api.s.translator)
		return &forms.ScanLogFilterForm{ConferenceID: f.ConferenceID}, errs
	}
	return f, nil
}

func (api *qrLogsApi) table(ctx context.Context, usr user.User, logs []backend.ScanLog) (table.Table, error) {
	names, err := api.s.conferenceNames(ctx, usr)
	if err != nil {
		return table.Table{}, err
	}
	t := table.Table{Title: "QR Logs", Columns: scanLogColumns, Rows: make([]table.Row, 0, len(logs))}
	for _, l := range logs {
		attendee := l.UserName
		if attendee == "" {
			attendee = l.UserID
		}
		t.Rows = append(t.Rows, table.Row{ID: l.ID, Cells: map[string]table.Cell{
			"scanned_at": table.DateTime(l.ScannedAt),
			"user":       table.Text(attendee),
			"conference": table.Text(nameOr(names, l.ConferenceID)),
			"ticket":     table.Text(l.TicketID),
			"gate":       table.Text(l.Gate),
			"valid":      table.Bool(l.Valid),
		}})
	}
	return t, nil
}

func (api *qrLogsApi) list(ctx echo.Context) error {
	usr, _ := currentUser(ctx)
	reqCtx := ctx.Request().Context()

	f, errs := api.filter(ctx)
	logs, err := api.logs(reqCtx, usr, f)
	if err != nil {
		return errors.Wrap(err, "listing qr logs")
	}
	t, err := api.table(reqCtx, usr, logs)
	if err != nil {
		return errors.Wrap(err, "building qr logs table")
	}

	opts, err := api.s.conferenceOptions(reqCtx, usr)
	if err != nil {
		return errors.Wrap(err, "listing conferences")
	}
	opts = append([]form.Option{{Value: "", Label: "All conferences"}}, opts...)

	params := table.ParamsFromQuery(ctx.QueryParams())
	params.Filters = f.Values()

	var toasts []toast
	if msg, ok := errs[form.NonFieldKey]; ok {
		toasts = append(toasts, toast{Kind: flashError, Message: msg})
	}
	return api.s.render(ctx, http.StatusOK, "table", "QR Logs", tablePage{
		Page:      t.Apply(params),
		BasePath:  "/qr-logs",
		ExportURL: "/qr-logs/export.xlsx" + params.Query(1),
		Filters:   form.Describe(f, errs, form.Choices{"conference_id": opts}),
		Empty:     "No scans match.",
	}, toasts...)
}

func (api *qrLogsApi) export(ctx echo.Context) error {
	usr, _ := currentUser(ctx)
	reqCtx := ctx.Request().Context()

	f, _ := api.filter(ctx)
	logs, err := api.logs(reqCtx, usr, f)
	if err != nil {
		return errors.Wrap(err, "listing qr logs")
	}
	t, err := api.table(reqCtx, usr, logs)
	if err != nil {
		return errors.Wrap(err, "building qr logs table")
	}
	return sendXLSX(ctx, resQRLogs, "QR Logs", t, t.Filter(table.ParamsFromQuery(ctx.QueryParams())))
}
