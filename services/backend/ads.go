package backend

import (
	"context"
	"net/http"
	"time"
)

const adsPath = "/ad"

// Ad placements
const (
	PlacementHome    = "home"
	PlacementSidebar = "sidebar"
	PlacementBanner  = "banner"
)

var AdPlacements = []string{PlacementHome, PlacementSidebar, PlacementBanner}

type Ad struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Placement string    `json:"placement"`
	Image     string    `json:"image"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Client) ListAds(ctx context.Context) ([]Ad, error) {
	return list[Ad](ctx, c, adsPath, nil)
}

func (c *Client) CreateAd(ctx context.Context, body Multipart) (Ad, error) {
	return sendMultipart[Ad](ctx, c, http.MethodPost, adsPath+"/create", body)
}

func (c *Client) UpdateAd(ctx context.Context, id string, body Multipart) (Ad, error) {
	return sendMultipart[Ad](ctx, c, http.MethodPut, resourcePath(adsPath, id), body)
}

func (c *Client) DeleteAd(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(adsPath, id))
}
