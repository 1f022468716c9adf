package echoconsole

import (
	"context"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/table"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
)

func (s *Server) registerHospitality(g *echo.Group) {
	registerResource(s, g.Group("/hotels"), resource[backend.Hotel, *forms.HotelForm]{
		Name:        resHotels,
		Path:        "/hotels",
		Title:       "Hotels",
		Singular:    "hotel",
		Invalidates: []string{resAccommodations},

		List: func(ctx context.Context, _ url.Values) ([]backend.Hotel, error) {
			return s.backend.ListHotels(ctx)
		},
		ID:    func(h backend.Hotel) string { return h.ID },
		Label: func(h backend.Hotel) string { return h.Name },
		Columns: []table.Column{
			{Key: "name", Label: "Name", Sortable: true, Searchable: true},
			{Key: "stars", Label: "Stars", Sortable: true},
			{Key: "city", Label: "City", Sortable: true, Searchable: true},
			{Key: "country", Label: "Country", Sortable: true, Searchable: true},
			{Key: "address", Label: "Address", Searchable: true},
		},
		Cells: func(h backend.Hotel, _ map[string]string) map[string]table.Cell {
			return map[string]table.Cell{
				"name":    table.Text(h.Name),
				"stars":   {Text: strings.Repeat("★", h.Stars), Value: h.Stars},
				"city":    table.Text(h.City),
				"country": table.Text(h.Country),
				"address": table.Text(h.Address),
			}
		},

		NewForm:  func() *forms.HotelForm { return new(forms.HotelForm) },
		EditForm: forms.NewHotelForm,
		Create: func(ctx context.Context, f *forms.HotelForm, _ []backend.File) (backend.Hotel, error) {
			return s.backend.CreateHotel(ctx, f.Payload())
		},
		Update: func(ctx context.Context, id string, f *forms.HotelForm, _ []backend.File) (backend.Hotel, error) {
			return s.backend.UpdateHotel(ctx, id, f.Payload())
		},
		Delete: s.backend.DeleteHotel,
	})

	registerResource(s, g.Group("/accommodations"), resource[backend.Accommodation, *forms.AccommodationForm]{
		Name:       resAccommodations,
		Path:       "/accommodations",
		Title:      "Accommodations",
		Singular:   "accommodation",
		Filters:    []string{"conference_id"},
		FilterForm: s.conferenceFilter,

		List: func(ctx context.Context, filters url.Values) ([]backend.Accommodation, error) {
			items, err := s.backend.ListAccommodations(ctx)
			if err != nil {
				return nil, err
			}
			confID := filters.Get("conference_id")
			if confID == "" {
				return items, nil
			}
			out := items[:0]
			for _, a := range items {
				if a.ConferenceID == confID {
					out = append(out, a)
				}
			}
			return out, nil
		},
		ID:    func(a backend.Accommodation) string { return a.ID },
		Label: func(a backend.Accommodation) string { return a.RoomType + " @ " + a.HotelName },
		Columns: []table.Column{
			{Key: "hotel", Label: "Hotel", Sortable: true, Searchable: true},
			{Key: "conference", Label: "Conference", Sortable: true, Searchable: true},
			{Key: "room_type", Label: "Room type", Sortable: true, Searchable: true},
			{Key: "price", Label: "Price / night", Sortable: true},
			{Key: "available_rooms", Label: "Available rooms", Sortable: true},
		},
		Cells: func(a backend.Accommodation, names map[string]string) map[string]table.Cell {
			hotel := a.HotelName
			if hotel == "" {
				hotel = a.HotelID
			}
			return map[string]table.Cell{
				"hotel":           table.Text(hotel),
				"conference":      table.Text(nameOr(names, a.ConferenceID)),
				"room_type":       table.Text(a.RoomType),
				"price":           table.Money(a.Price, a.Currency),
				"available_rooms": table.Int(a.AvailableRooms),
			}
		},
		Names: s.conferenceNames,

		NewForm:  func() *forms.AccommodationForm { return new(forms.AccommodationForm) },
		EditForm: forms.NewAccommodationForm,
		Choices:  s.accommodationChoices,
		Create: func(ctx context.Context, f *forms.AccommodationForm, _ []backend.File) (backend.Accommodation, error) {
			return s.backend.CreateAccommodation(ctx, f.Payload())
		},
		Update: func(ctx context.Context, id string, f *forms.AccommodationForm, _ []backend.File) (backend.Accommodation, error) {
			return s.backend.UpdateAccommodation(ctx, id, f.Payload())
		},
		Delete: s.backend.DeleteAccommodation,
	})
}

func (s *Server) accommodationChoices(ctx context.Context, usr user.User) (form.Choices, error) {
	choices, err := s.conferenceChoices(ctx, usr)
	if err != nil {
		return nil, err
	}
	hotels, err := s.hotels(ctx, usr)
	if err != nil {
		return nil, err
	}
	opts := make([]form.Option, 0, len(hotels))
	for _, h := range hotels {
		opts = append(opts, form.Option{Value: h.ID, Label: h.Name + " (" + h.City + ")"})
	}
	choices["hotel_id"] = opts
	return choices, nil
}
