package forms

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/backend"
)

type AdForm struct {
	Title     string `form:"title" label:"Title" validate:"required,notblank,min=2,max=120"`
	Link      string `form:"link" label:"Link" input:"url" validate:"url_or_empty,max=500"`
	Placement string `form:"placement" label:"Placement" input:"select" options:"home,sidebar,banner" validate:"required,oneof=home sidebar banner"`
	StartsAt  string `form:"starts_at" label:"Starts at" input:"date" validate:"required,datetime=2006-01-02"`
	EndsAt    string `form:"ends_at" label:"Ends at" input:"date" validate:"required,datetime=2006-01-02"`
	Image     string `form:"image" label:"Image" input:"file" accept:"image/*"`
}

var _ MultipartForm = (*AdForm)(nil)

func NewAdForm(ad backend.Ad) *AdForm {
	return &AdForm{
		Title:     ad.Title,
		Link:      ad.Link,
		Placement: ad.Placement,
		StartsAt:  inputDate(ad.StartsAt),
		EndsAt:    inputDate(ad.EndsAt),
	}
}

func (f *AdForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	f.Link = core.CleanString(f.Link)
	f.Placement = core.CleanString(f.Placement, true)
	if err := validate.Struct(f); err != nil {
		return err
	}
	return checkPeriod(DateLayout, f.StartsAt, f.EndsAt, "ends_at")
}

func (f *AdForm) FileFields() []FileField {
	return []FileField{{Param: "image", RequiredOnCreate: true}}
}

func (f *AdForm) Multipart() backend.Multipart {
	return backend.Multipart{Fields: values(
		"title", f.Title,
		"link", f.Link,
		"placement", f.Placement,
		"starts_at", rfc3339(DateLayout, f.StartsAt),
		"ends_at", rfc3339(DateLayout, f.EndsAt),
	)}
}

type ConferenceForm struct {
	Title       string `form:"title" label:"Title" validate:"required,notblank,min=3,max=150"`
	Description string `form:"description" label:"Description" input:"textarea" validate:"max=5000"`
	Venue       string `form:"venue" label:"Venue" validate:"required,max=150"`
	City        string `form:"city" label:"City" validate:"required,max=60"`
	Country     string `form:"country" label:"Country" validate:"required,max=60"`
	StartsAt    string `form:"starts_at" label:"Starts at" input:"datetime" validate:"required,datetime=2006-01-02T15:04"`
	EndsAt      string `form:"ends_at" label:"Ends at" input:"datetime" validate:"required,datetime=2006-01-02T15:04"`
	Capacity    int    `form:"capacity" label:"Capacity" validate:"required,min=1"`
	Cover       string `form:"cover" label:"Cover" input:"file" accept:"image/*"`
}

var _ MultipartForm = (*ConferenceForm)(nil)

func NewConferenceForm(c backend.Conference) *ConferenceForm {
	return &ConferenceForm{
		Title:       c.Title,
		Description: c.Description,
		Venue:       c.Venue,
		City:        c.City,
		Country:     c.Country,
		StartsAt:    inputDateTime(c.StartsAt),
		EndsAt:      inputDateTime(c.EndsAt),
		Capacity:    c.Capacity,
	}
}

func (f *ConferenceForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Venue = core.CleanString(f.Venue)
	f.City = core.CleanString(f.City)
	f.Country = core.CleanString(f.Country)
	if err := validate.Struct(f); err != nil {
		return err
	}
	return checkPeriod(DateTimeLayout, f.StartsAt, f.EndsAt, "ends_at")
}

func (f *ConferenceForm) FileFields() []FileField {
	return []FileField{{Param: "cover", RequiredOnCreate: true}}
}

func (f *ConferenceForm) Multipart() backend.Multipart {
	return backend.Multipart{Fields: values(
		"title", f.Title,
		"description", f.Description,
		"venue", f.Venue,
		"city", f.City,
		"country", f.Country,
		"starts_at", rfc3339(DateTimeLayout, f.StartsAt),
		"ends_at", rfc3339(DateTimeLayout, f.EndsAt),
		"capacity", strconv.Itoa(f.Capacity),
	)}
}

type TicketForm struct {
	ConferenceID string  `form:"conference_id" json:"conference_id" label:"Conference" input:"select" validate:"required"`
	Name         string  `form:"name" json:"name" label:"Name" validate:"required,notblank,min=2,max=80"`
	Description  string  `form:"description" json:"description,omitempty" label:"Description" input:"textarea" validate:"max=500"`
	Price        float64 `form:"price" json:"price" label:"Price" validate:"gte=0"`
	Currency     string  `form:"currency" json:"currency" label:"Currency" validate:"required,len=3,alpha"`
	Quantity     int     `form:"quantity" json:"quantity" label:"Quantity" validate:"required,min=1"`
	SalesEndAt   string  `form:"sales_end_at" json:"-" label:"Sales end at" input:"datetime" validate:"omitempty,datetime=2006-01-02T15:04"`
}

var _ JSONForm = (*TicketForm)(nil)

func NewTicketForm(t backend.Ticket) *TicketForm {
	return &TicketForm{
		ConferenceID: t.ConferenceID,
		Name:         t.Name,
		Description:  t.Description,
		Price:        t.Price,
		Currency:     t.Currency,
		Quantity:     t.Quantity,
		SalesEndAt:   inputDateTime(t.SalesEndAt),
	}
}

func (f *TicketForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Currency = upper(core.CleanString(f.Currency))
	return validate.Struct(f)
}

func (f *TicketForm) Payload() interface{} {
	type payload struct {
		TicketForm
		SalesEndAt string `json:"sales_end_at,omitempty"`
	}
	return payload{TicketForm: *f, SalesEndAt: rfc3339(DateTimeLayout, f.SalesEndAt)}
}
