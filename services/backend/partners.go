package backend

import (
	"context"
	"net/http"
)

const (
	sponsorsPath  = "/sponsors"
	companiesPath = "/companies"
)

// Sponsor tiers
const (
	TierPlatinum = "platinum"
	TierGold     = "gold"
	TierSilver   = "silver"
	TierBronze   = "bronze"
)

var SponsorTiers = []string{TierPlatinum, TierGold, TierSilver, TierBronze}

type Sponsor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Tier         string `json:"tier"`
	Website      string `json:"website"`
	ConferenceID string `json:"conference_id"`
	Logo         string `json:"logo"`
}

type Company struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsLocal bool   `json:"is_local"`
	TaxID   string `json:"tax_id,omitempty"`
	Country string `json:"country,omitempty"`
	Website string `json:"website,omitempty"`
	Email   string `json:"email,omitempty"`
}

func (c *Client) ListSponsors(ctx context.Context) ([]Sponsor, error) {
	return list[Sponsor](ctx, c, sponsorsPath, nil)
}

func (c *Client) CreateSponsor(ctx context.Context, body Multipart) (Sponsor, error) {
	return sendMultipart[Sponsor](ctx, c, http.MethodPost, sponsorsPath, body)
}

func (c *Client) UpdateSponsor(ctx context.Context, id string, body Multipart) (Sponsor, error) {
	return sendMultipart[Sponsor](ctx, c, http.MethodPut, resourcePath(sponsorsPath, id), body)
}

func (c *Client) DeleteSponsor(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(sponsorsPath, id))
}

func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	return list[Company](ctx, c, companiesPath, nil)
}

func (c *Client) CreateCompany(ctx context.Context, body interface{}) (Company, error) {
	return send[Company](ctx, c, http.MethodPost, companiesPath, body)
}

func (c *Client) UpdateCompany(ctx context.Context, id string, body interface{}) (Company, error) {
	return send[Company](ctx, c, http.MethodPut, resourcePath(companiesPath, id), body)
}

func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(companiesPath, id))
}
