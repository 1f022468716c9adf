package backend

import (
	"context"
	"net/http"
)

const (
	hotelsPath         = "/hotels"
	accommodationsPath = "/accommodations"
)

type Hotel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Stars   int    `json:"stars"`
	City    string `json:"city"`
	Country string `json:"country"`
	Address string `json:"address"`
}

type Accommodation struct {
	ID             string  `json:"id"`
	HotelID        string  `json:"hotel_id"`
	HotelName      string  `json:"hotel_name,omitempty"`
	ConferenceID   string  `json:"conference_id"`
	RoomType       string  `json:"room_type"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	AvailableRooms int     `json:"available_rooms"`
}

func (c *Client) ListHotels(ctx context.Context) ([]Hotel, error) {
	return list[Hotel](ctx, c, hotelsPath, nil)
}

func (c *Client) CreateHotel(ctx context.Context, body interface{}) (Hotel, error) {
	return send[Hotel](ctx, c, http.MethodPost, hotelsPath, body)
}

func (c *Client) UpdateHotel(ctx context.Context, id string, body interface{}) (Hotel, error) {
	return send[Hotel](ctx, c, http.MethodPut, resourcePath(hotelsPath, id), body)
}

func (c *Client) DeleteHotel(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(hotelsPath, id))
}

func (c *Client) ListAccommodations(ctx context.Context) ([]Accommodation, error) {
	return list[Accommodation](ctx, c, accommodationsPath, nil)
}

func (c *Client) CreateAccommodation(ctx context.Context, body interface{}) (Accommodation, error) {
	return send[Accommodation](ctx, c, http.MethodPost, accommodationsPath, body)
}

func (c *Client) UpdateAccommodation(ctx context.Context, id string, body interface{}) (Accommodation, error) {
	return send[Accommodation](ctx, c, http.MethodPut, resourcePath(accommodationsPath, id), body)
}

func (c *Client) DeleteAccommodation(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(accommodationsPath, id))
}
