package forms

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/backend"
)

type BlogForm struct {
	Title     string `form:"title" label:"Title" validate:"required,notblank,min=3,max=200"`
	Category  string `form:"category" label:"Category" input:"select" options:"news,announcement,article" validate:"required,oneof=news announcement article"`
	Body      string `form:"body" label:"Body" input:"textarea" validate:"required,notblank"`
	Published bool   `form:"published" label:"Published"`
	Cover     string `form:"cover" label:"Cover" input:"file" accept:"image/*"`
}

var _ MultipartForm = (*BlogForm)(nil)

func NewBlogForm(b backend.Blog) *BlogForm {
	return &BlogForm{Title: b.Title, Category: b.Category, Body: b.Body, Published: b.Published}
}

func (f *BlogForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	f.Category = core.CleanString(f.Category, true)
	f.Body = strings.TrimSpace(f.Body)
	return validate.Struct(f)
}

func (f *BlogForm) FileFields() []FileField {
	return []FileField{{Param: "cover"}}
}

func (f *BlogForm) Multipart() backend.Multipart {
	return backend.Multipart{Fields: values(
		"title", f.Title,
		"category", f.Category,
		"body", f.Body,
		"published", strconv.FormatBool(f.Published),
	)}
}

// NotificationForm targets explicit users only with the "users" audience.
type NotificationForm struct {
	Title    string   `form:"title" json:"title" label:"Title" validate:"required,notblank,max=100"`
	Message  string   `form:"message" json:"message" label:"Message" input:"textarea" validate:"required,notblank,max=1000"`
	Audience string   `form:"audience" json:"audience" label:"Audience" input:"select" options:"all,attendees,users" validate:"required,oneof=all attendees users"`
	UserIDs  []string `form:"user_ids" json:"user_ids,omitempty" label:"Users" input:"multiselect" validate:"required_if=Audience users"`
}

var _ JSONForm = (*NotificationForm)(nil)

func (f *NotificationForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	f.Message = strings.TrimSpace(f.Message)
	f.Audience = core.CleanString(f.Audience, true)
	ids := f.UserIDs[:0]
	for _, id := range f.UserIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		ids = nil
	}
	f.UserIDs = ids
	return validate.Struct(f)
}

func (f *NotificationForm) Payload() interface{} {
	out := *f
	if out.Audience != backend.AudienceUsers {
		out.UserIDs = nil
	}
	return out
}
