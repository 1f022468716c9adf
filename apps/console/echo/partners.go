package echoconsole

import (
	"context"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/table"
	"github.com/trezcool/confadmin/services/backend"
)

func (s *Server) registerPartners(g *echo.Group) {
	registerResource(s, g.Group("/sponsors"), resource[backend.Sponsor, *forms.SponsorForm]{
		Name:       resSponsors,
		Path:       "/sponsors",
		Title:      "Sponsors",
		Singular:   "sponsor",
		Filters:    []string{"conference_id"},
		FilterForm: s.conferenceFilter,

		List: func(ctx context.Context, filters url.Values) ([]backend.Sponsor, error) {
			items, err := s.backend.ListSponsors(ctx)
			if err != nil {
				return nil, err
			}
			confID := filters.Get("conference_id")
			if confID == "" {
				return items, nil
			}
			out := items[:0]
			for _, sp := range items {
				if sp.ConferenceID == confID {
					out = append(out, sp)
				}
			}
			return out, nil
		},
		ID:    func(sp backend.Sponsor) string { return sp.ID },
		Label: func(sp backend.Sponsor) string { return sp.Name },
		Columns: []table.Column{
			{Key: "logo", Label: ""},
			{Key: "name", Label: "Name", Sortable: true, Searchable: true},
			{Key: "tier", Label: "Tier", Sortable: true, Searchable: true},
			{Key: "conference", Label: "Conference", Sortable: true, Searchable: true},
			{Key: "website", Label: "Website"},
		},
		Cells: func(sp backend.Sponsor, names map[string]string) map[string]table.Cell {
			return map[string]table.Cell{
				"logo":       s.imageCell(sp.Logo),
				"name":       table.Text(sp.Name),
				"tier":       {Text: form.Humanize(sp.Tier), Value: tierRank(sp.Tier)},
				"conference": table.Text(nameOr(names, sp.ConferenceID)),
				"website":    {Text: sp.Website, Value: sp.Website, Link: sp.Website},
			}
		},
		Names: s.conferenceNames,

		NewForm:  func() *forms.SponsorForm { return new(forms.SponsorForm) },
		EditForm: forms.NewSponsorForm,
		Choices:  s.conferenceChoices,
		Create: func(ctx context.Context, f *forms.SponsorForm, files []backend.File) (backend.Sponsor, error) {
			return s.backend.CreateSponsor(ctx, multipartBody(f, files))
		},
		Update: func(ctx context.Context, id string, f *forms.SponsorForm, files []backend.File) (backend.Sponsor, error) {
			return s.backend.UpdateSponsor(ctx, id, multipartBody(f, files))
		},
		Delete: s.backend.DeleteSponsor,
	})

	registerResource(s, g.Group("/companies"), resource[backend.Company, *forms.CompanyForm]{
		Name:        resCompanies,
		Path:        "/companies",
		Title:       "Companies",
		Singular:    "company",
		Invalidates: []string{resJobOffers},

		List: func(ctx context.Context, _ url.Values) ([]backend.Company, error) {
			return s.backend.ListCompanies(ctx)
		},
		ID:    func(c backend.Company) string { return c.ID },
		Label: func(c backend.Company) string { return c.Name },
		Columns: []table.Column{
			{Key: "name", Label: "Name", Sortable: true, Searchable: true},
			{Key: "is_local", Label: "Local", Sortable: true},
			{Key: "tax_id", Label: "Tax ID", Searchable: true},
			{Key: "country", Label: "Country", Sortable: true, Searchable: true},
			{Key: "email", Label: "Email", Searchable: true},
			{Key: "website", Label: "Website"},
		},
		Cells: func(c backend.Company, _ map[string]string) map[string]table.Cell {
			return map[string]table.Cell{
				"name":     table.Text(c.Name),
				"is_local": table.Bool(c.IsLocal),
				"tax_id":   table.Text(c.TaxID),
				"country":  table.Text(c.Country),
				"email":    table.Text(c.Email),
				"website":  {Text: c.Website, Value: c.Website, Link: c.Website},
			}
		},

		NewForm:  func() *forms.CompanyForm { return new(forms.CompanyForm) },
		EditForm: forms.NewCompanyForm,
		Create: func(ctx context.Context, f *forms.CompanyForm, _ []backend.File) (backend.Company, error) {
			return s.backend.CreateCompany(ctx, f.Payload())
		},
		Update: func(ctx context.Context, id string, f *forms.CompanyForm, _ []backend.File) (backend.Company, error) {
			return s.backend.UpdateCompany(ctx, id, f.Payload())
		},
		Delete: s.backend.DeleteCompany,
	})

	registerResource(s, g.Group("/ads"), resource[backend.Ad, *forms.AdForm]{
		Name:     resAds,
		Path:     "/ads",
		Title:    "Ads",
		Singular: "ad",
		Writers:  contentStaff,

		List: func(ctx context.Context, _ url.Values) ([]backend.Ad, error) {
			return s.backend.ListAds(ctx)
		},
		ID:    func(ad backend.Ad) string { return ad.ID },
		Label: func(ad backend.Ad) string { return ad.Title },
		Columns: []table.Column{
			{Key: "image", Label: ""},
			{Key: "title", Label: "Title", Sortable: true, Searchable: true},
			{Key: "placement", Label: "Placement", Sortable: true, Searchable: true},
			{Key: "starts_at", Label: "Starts", Sortable: true},
			{Key: "ends_at", Label: "Ends", Sortable: true},
			{Key: "is_active", Label: "Active", Sortable: true},
		},
		Cells: func(ad backend.Ad, _ map[string]string) map[string]table.Cell {
			return map[string]table.Cell{
				"image":     s.imageCell(ad.Image),
				"title":     {Text: ad.Title, Value: ad.Title, Link: ad.Link},
				"placement": table.Text(form.Humanize(ad.Placement)),
				"starts_at": table.Date(ad.StartsAt),
				"ends_at":   table.Date(ad.EndsAt),
				"is_active": table.Bool(ad.IsActive),
			}
		},

		NewForm:  func() *forms.AdForm { return new(forms.AdForm) },
		EditForm: forms.NewAdForm,
		Create: func(ctx context.Context, f *forms.AdForm, files []backend.File) (backend.Ad, error) {
			return s.backend.CreateAd(ctx, multipartBody(f, files))
		},
		Update: func(ctx context.Context, id string, f *forms.AdForm, files []backend.File) (backend.Ad, error) {
			return s.backend.UpdateAd(ctx, id, multipartBody(f, files))
		},
		Delete: s.backend.DeleteAd,
	})
}

// tierRank sorts sponsors from the highest tier.
func tierRank(tier string) int {
	for i, t := range backend.SponsorTiers {
		if t == tier {
			return i
		}
	}
	return len(backend.SponsorTiers)
}
