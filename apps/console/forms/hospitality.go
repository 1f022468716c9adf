package forms

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/backend"
)

type HotelForm struct {
	Name    string `form:"name" json:"name" label:"Name" validate:"required,notblank,min=2,max=120"`
	Stars   int    `form:"stars" json:"stars" label:"Stars" validate:"required,min=1,max=5"`
	City    string `form:"city" json:"city" label:"City" validate:"required,max=60"`
	Country string `form:"country" json:"country" label:"Country" validate:"required,max=60"`
	Address string `form:"address" json:"address,omitempty" label:"Address" input:"textarea" validate:"max=255"`
}

var _ JSONForm = (*HotelForm)(nil)

func NewHotelForm(h backend.Hotel) *HotelForm {
	return &HotelForm{Name: h.Name, Stars: h.Stars, City: h.City, Country: h.Country, Address: h.Address}
}

func (f *HotelForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.City = core.CleanString(f.City)
	f.Country = core.CleanString(f.Country)
	f.Address = core.CleanString(f.Address)
	return validate.Struct(f)
}

func (f *HotelForm) Payload() interface{} { return f }

type AccommodationForm struct {
	HotelID        string  `form:"hotel_id" json:"hotel_id" label:"Hotel" input:"select" validate:"required"`
	ConferenceID   string  `form:"conference_id" json:"conference_id" label:"Conference" input:"select" validate:"required"`
	RoomType       string  `form:"room_type" json:"room_type" label:"Room type" validate:"required,notblank,max=60"`
	Price          float64 `form:"price" json:"price" label:"Price per night" validate:"gte=0"`
	Currency       string  `form:"currency" json:"currency" label:"Currency" validate:"required,len=3,alpha"`
	AvailableRooms int     `form:"available_rooms" json:"available_rooms" label:"Available rooms" validate:"gte=0"`
}

var _ JSONForm = (*AccommodationForm)(nil)

func NewAccommodationForm(a backend.Accommodation) *AccommodationForm {
	return &AccommodationForm{
		HotelID:        a.HotelID,
		ConferenceID:   a.ConferenceID,
		RoomType:       a.RoomType,
		Price:          a.Price,
		Currency:       a.Currency,
		AvailableRooms: a.AvailableRooms,
	}
}

func (f *AccommodationForm) Validate(validate *validator.Validate) error {
	f.RoomType = core.CleanString(f.RoomType)
	f.Currency = upper(core.CleanString(f.Currency))
	return validate.Struct(f)
}

func (f *AccommodationForm) Payload() interface{} { return f }
