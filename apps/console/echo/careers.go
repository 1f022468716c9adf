package echoconsole

import (
	"context"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/table"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
)

func (s *Server) registerCareers(g *echo.Group) {
	registerResource(s, g.Group("/job-offers"), resource[backend.JobOffer, *forms.JobOfferForm]{
		Name:     resJobOffers,
		Path:     "/job-offers",
		Title:    "Job Offers",
		Singular: "job offer",
		Writers:  hrStaff,

		List: func(ctx context.Context, _ url.Values) ([]backend.JobOffer, error) {
			return s.backend.ListJobOffers(ctx)
		},
		ID:    func(j backend.JobOffer) string { return j.ID },
		Label: func(j backend.JobOffer) string { return j.Title },
		Columns: []table.Column{
			{Key: "title", Label: "Title", Sortable: true, Searchable: true},
			{Key: "company", Label: "Company", Sortable: true, Searchable: true},
			{Key: "location", Label: "Location", Sortable: true, Searchable: true},
			{Key: "contract_type", Label: "Contract", Sortable: true},
			{Key: "closes_at", Label: "Closes", Sortable: true},
		},
		Cells: func(j backend.JobOffer, names map[string]string) map[string]table.Cell {
			company := j.CompanyName
			if company == "" {
				company = nameOr(names, j.CompanyID)
			}
			return map[string]table.Cell{
				"title":         table.Text(j.Title),
				"company":       table.Text(company),
				"location":      table.Text(j.Location),
				"contract_type": table.Text(form.Humanize(j.ContractType)),
				"closes_at":     table.Date(j.ClosesAt),
			}
		},
		Names: s.companyNames,

		NewForm:  func() *forms.JobOfferForm { return new(forms.JobOfferForm) },
		EditForm: forms.NewJobOfferForm,
		Choices:  s.companyChoices,
		Create: func(ctx context.Context, f *forms.JobOfferForm, _ []backend.File) (backend.JobOffer, error) {
			return s.backend.CreateJobOffer(ctx, f.Payload())
		},
		Update: func(ctx context.Context, id string, f *forms.JobOfferForm, _ []backend.File) (backend.JobOffer, error) {
			return s.backend.UpdateJobOffer(ctx, id, f.Payload())
		},
		Delete: s.backend.DeleteJobOffer,
	})
}

func (s *Server) companyNames(ctx context.Context, usr user.User) (map[string]string, error) {
	companies, err := s.companies(ctx, usr)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (s *Server) companyChoices(ctx context.Context, usr user.User) (form.Choices, error) {
	companies, err := s.companies(ctx, usr)
	if err != nil {
		return nil, err
	}
	opts := make([]form.Option, 0, len(companies))
	for _, c := range companies {
		opts = append(opts, form.Option{Value: c.ID, Label: c.Name})
	}
	return form.Choices{"company_id": opts}, nil
}
