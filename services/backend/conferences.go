package backend

import (
	"context"
	"net/http"
	"time"
)

const conferencesPath = "/conference"

type Conference struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
	Cover       string    `json:"cover"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Client) ListConferences(ctx context.Context) ([]Conference, error) {
	return list[Conference](ctx, c, conferencesPath, nil)
}

func (c *Client) GetConference(ctx context.Context, id string) (Conference, error) {
	return get[Conference](ctx, c, resourcePath(conferencesPath, id))
}

func (c *Client) CreateConference(ctx context.Context, body Multipart) (Conference, error) {
	return sendMultipart[Conference](ctx, c, http.MethodPost, conferencesPath+"/create", body)
}

func (c *Client) UpdateConference(ctx context.Context, id string, body Multipart) (Conference, error) {
	return sendMultipart[Conference](ctx, c, http.MethodPut, resourcePath(conferencesPath, id), body)
}

func (c *Client) DeleteConference(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(conferencesPath, id))
}
