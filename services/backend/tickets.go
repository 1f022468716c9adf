package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const ticketsPath = "/tickets"

type Ticket struct {
	ID           string    `json:"id"`
	ConferenceID string    `json:"conference_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	Quantity     int       `json:"quantity"`
	Sold         int       `json:"sold"`
	SalesEndAt   time.Time `json:"sales_end_at,omitempty"`
}

// ListTickets lists the tickets of a conference, or all tickets if conferenceID is empty.
func (c *Client) ListTickets(ctx context.Context, conferenceID string) ([]Ticket, error) {
	var query url.Values
	if conferenceID != "" {
		query = url.Values{"conference_id": {conferenceID}}
	}
	return list[Ticket](ctx, c, ticketsPath, query)
}

func (c *Client) CreateTicket(ctx context.Context, body interface{}) (Ticket, error) {
	return send[Ticket](ctx, c, http.MethodPost, ticketsPath, body)
}

func (c *Client) UpdateTicket(ctx context.Context, id string, body interface{}) (Ticket, error) {
	return send[Ticket](ctx, c, http.MethodPut, resourcePath(ticketsPath, id), body)
}

func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(ticketsPath, id))
}
