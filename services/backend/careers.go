package backend

import (
	"context"
	"net/http"
	"time"
)

const jobOffersPath = "/job-offers"

// Contract types
const (
	ContractFullTime   = "full_time"
	ContractPartTime   = "part_time"
	ContractInternship = "internship"
	ContractFreelance  = "freelance"
)

var ContractTypes = []string{ContractFullTime, ContractPartTime, ContractInternship, ContractFreelance}

type JobOffer struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CompanyID    string    `json:"company_id"`
	CompanyName  string    `json:"company_name,omitempty"`
	Location     string    `json:"location"`
	ContractType string    `json:"contract_type"`
	Description  string    `json:"description"`
	ClosesAt     time.Time `json:"closes_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Client) ListJobOffers(ctx context.Context) ([]JobOffer, error) {
	return list[JobOffer](ctx, c, jobOffersPath, nil)
}

func (c *Client) CreateJobOffer(ctx context.Context, body interface{}) (JobOffer, error) {
	return send[JobOffer](ctx, c, http.MethodPost, jobOffersPath, body)
}

func (c *Client) UpdateJobOffer(ctx context.Context, id string, body interface{}) (JobOffer, error) {
	return send[JobOffer](ctx, c, http.MethodPut, resourcePath(jobOffersPath, id), body)
}

func (c *Client) DeleteJobOffer(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(jobOffersPath, id))
}
