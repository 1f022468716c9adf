package echoconsole

import (
	"context"
	"fmt"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core/table"
	"github.com/trezcool/confadmin/services/backend"
)

func (s *Server) registerEvents(g *echo.Group) {
	registerResource(s, g.Group("/conferences"), resource[backend.Conference, *forms.ConferenceForm]{
		Name:        resConferences,
		Path:        "/conferences",
		Title:       "Conferences",
		Singular:    "conference",
		Writers:     eventStaff,
		Invalidates: []string{resTickets, resAccommodations, resSponsors},

		List: func(ctx context.Context, _ url.Values) ([]backend.Conference, error) {
			return s.backend.ListConferences(ctx)
		},
		ID:    func(c backend.Conference) string { return c.ID },
		Label: func(c backend.Conference) string { return c.Title },
		Columns: []table.Column{
			{Key: "cover", Label: ""},
			{Key: "title", Label: "Title", Sortable: true, Searchable: true},
			{Key: "city", Label: "City", Sortable: true, Searchable: true},
			{Key: "venue", Label: "Venue", Searchable: true},
			{Key: "starts_at", Label: "Starts", Sortable: true},
			{Key: "ends_at", Label: "Ends", Sortable: true},
			{Key: "capacity", Label: "Capacity", Sortable: true},
		},
		Cells: func(c backend.Conference, _ map[string]string) map[string]table.Cell {
			return map[string]table.Cell{
				"cover":     s.imageCell(c.Cover),
				"title":     {Text: c.Title, Value: c.Title, Link: "/tickets?conference_id=" + url.QueryEscape(c.ID)},
				"city":      table.Text(fmt.Sprintf("%s, %s", c.City, c.Country)),
				"venue":     table.Text(c.Venue),
				"starts_at": table.DateTime(c.StartsAt),
				"ends_at":   table.DateTime(c.EndsAt),
				"capacity":  table.Int(c.Capacity),
			}
		},

		NewForm:  func() *forms.ConferenceForm { return new(forms.ConferenceForm) },
		EditForm: forms.NewConferenceForm,
		Create: func(ctx context.Context, f *forms.ConferenceForm, files []backend.File) (backend.Conference, error) {
			return s.backend.CreateConference(ctx, multipartBody(f, files))
		},
		Update: func(ctx context.Context, id string, f *forms.ConferenceForm, files []backend.File) (backend.Conference, error) {
			return s.backend.UpdateConference(ctx, id, multipartBody(f, files))
		},
		Delete: s.backend.DeleteConference,
	})

	registerResource(s, g.Group("/tickets"), resource[backend.Ticket, *forms.TicketForm]{
		Name:       resTickets,
		Path:       "/tickets",
		Title:      "Tickets",
		Singular:   "ticket",
		Writers:    eventStaff,
		Exportable: true,
		Filters:    []string{"conference_id"},
		FilterForm: s.conferenceFilter,

		List: func(ctx context.Context, filters url.Values) ([]backend.Ticket, error) {
			return s.backend.ListTickets(ctx, filters.Get("conference_id"))
		},
		ID:    func(t backend.Ticket) string { return t.ID },
		Label: func(t backend.Ticket) string { return t.Name },
		Columns: []table.Column{
			{Key: "name", Label: "Name", Sortable: true, Searchable: true},
			{Key: "conference", Label: "Conference", Sortable: true, Searchable: true},
			{Key: "price", Label: "Price", Sortable: true},
			{Key: "quantity", Label: "Quantity", Sortable: true},
			{Key: "sold", Label: "Sold", Sortable: true},
			{Key: "sales_end_at", Label: "Sales end", Sortable: true},
		},
		Cells: func(t backend.Ticket, names map[string]string) map[string]table.Cell {
			return map[string]table.Cell{
				"name":         table.Text(t.Name),
				"conference":   table.Text(nameOr(names, t.ConferenceID)),
				"price":        table.Money(t.Price, t.Currency),
				"quantity":     table.Int(t.Quantity),
				"sold":         table.Int(t.Sold),
				"sales_end_at": table.DateTime(t.SalesEndAt),
			}
		},
		Names: s.conferenceNames,

		NewForm:  func() *forms.TicketForm { return new(forms.TicketForm) },
		EditForm: forms.NewTicketForm,
		Choices:  s.conferenceChoices,
		Create: func(ctx context.Context, f *forms.TicketForm, _ []backend.File) (backend.Ticket, error) {
			return s.backend.CreateTicket(ctx, f.Payload())
		},
		Update: func(ctx context.Context, id string, f *forms.TicketForm, _ []backend.File) (backend.Ticket, error) {
			return s.backend.UpdateTicket(ctx, id, f.Payload())
		},
		Delete: s.backend.DeleteTicket,
	})
}

func (s *Server) imageCell(path string) table.Cell {
	if path == "" {
		return table.Cell{}
	}
	return table.Cell{Image: s.backend.StorageURL(path)}
}

// nameOr returns the name of id, or id itself when unknown.
func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
