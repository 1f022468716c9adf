package echoconsole

import (
	"context"
	"net/url"

	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
	"github.com/trezcool/confadmin/storage/cache"
)

// cached resources
const (
	resConferences    = "conferences"
	resTickets        = "tickets"
	resHotels         = "hotels"
	resAccommodations = "accommodations"
	resSponsors       = "sponsors"
	resCompanies      = "companies"
	resAds            = "ads"
	resJobOffers      = "job-offers"
	resBlogs          = "blogs"
	resNotifications  = "notifications"
	resUsers          = "users"
	resQRLogs         = "qr-logs"
	resKYC            = "kyc"
)

var (
	eventStaff   = []string{user.RoleSuperAdmin, user.RoleAdmin, user.RoleEventManager}
	contentStaff = []string{user.RoleSuperAdmin, user.RoleAdmin, user.RoleContentManager}
	hrStaff      = []string{user.RoleSuperAdmin, user.RoleAdmin, user.RoleHRManager}
)

func (s *Server) conferences(ctx context.Context, usr user.User) ([]backend.Conference, error) {
	return cache.Fetch(ctx, s.cache, cache.Key(resConferences, usr.ID), s.backend.ListConferences)
}

func (s *Server) hotels(ctx context.Context, usr user.User) ([]backend.Hotel, error) {
	return cache.Fetch(ctx, s.cache, cache.Key(resHotels, usr.ID), s.backend.ListHotels)
}

func (s *Server) companies(ctx context.Context, usr user.User) ([]backend.Company, error) {
	return cache.Fetch(ctx, s.cache, cache.Key(resCompanies, usr.ID), s.backend.ListCompanies)
}

func (s *Server) users(ctx context.Context, usr user.User) ([]user.User, error) {
	return cache.Fetch(ctx, s.cache, cache.Key(resUsers, usr.ID), func(ctx context.Context) ([]user.User, error) {
		return s.userSvc.Query(ctx, user.QueryFilter{})
	})
}

func (s *Server) conferenceNames(ctx context.Context, usr user.User) (map[string]string, error) {
	confs, err := s.conferences(ctx, usr)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(confs))
	for _, c := range confs {
		names[c.ID] = c.Title
	}
	return names, nil
}

func (s *Server) conferenceOptions(ctx context.Context, usr user.User) ([]form.Option, error) {
	confs, err := s.conferences(ctx, usr)
	if err != nil {
		return nil, err
	}
	opts := make([]form.Option, 0, len(confs))
	for _, c := range confs {
		opts = append(opts, form.Option{Value: c.ID, Label: c.Title})
	}
	return opts, nil
}

func (s *Server) conferenceChoices(ctx context.Context, usr user.User) (form.Choices, error) {
	opts, err := s.conferenceOptions(ctx, usr)
	if err != nil {
		return nil, err
	}
	return form.Choices{"conference_id": opts}, nil
}

// conferenceFilter is the "by conference" filter of list pages.
func (s *Server) conferenceFilter(ctx context.Context, usr user.User, filters url.Values) ([]form.Field, error) {
	opts, err := s.conferenceOptions(ctx, usr)
	if err != nil {
		return nil, err
	}
	selected := filters.Get("conference_id")
	all := form.Option{Value: "", Label: "All conferences", Selected: selected == ""}
	fieldOpts := []form.Option{all}
	for _, o := range opts {
		o.Selected = o.Value == selected
		fieldOpts = append(fieldOpts, o)
	}
	return []form.Field{{Name: "conference_id", Label: "Conference", Input: "select", Value: selected, Options: fieldOpts}}, nil
}
