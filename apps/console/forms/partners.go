package forms

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/backend"
)

type SponsorForm struct {
	Name         string `form:"name" label:"Name" validate:"required,notblank,min=2,max=120"`
	Tier         string `form:"tier" label:"Tier" input:"select" options:"platinum,gold,silver,bronze" validate:"required,oneof=platinum gold silver bronze"`
	Website      string `form:"website" label:"Website" input:"url" validate:"url_or_empty,max=255"`
	ConferenceID string `form:"conference_id" label:"Conference" input:"select" validate:"required"`
	Logo         string `form:"logo" label:"Logo" input:"file" accept:"image/*"`
}

var _ MultipartForm = (*SponsorForm)(nil)

func NewSponsorForm(s backend.Sponsor) *SponsorForm {
	return &SponsorForm{Name: s.Name, Tier: s.Tier, Website: s.Website, ConferenceID: s.ConferenceID}
}

func (f *SponsorForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Tier = core.CleanString(f.Tier, true)
	f.Website = core.CleanString(f.Website)
	return validate.Struct(f)
}

func (f *SponsorForm) FileFields() []FileField {
	return []FileField{{Param: "logo", RequiredOnCreate: true}}
}

func (f *SponsorForm) Multipart() backend.Multipart {
	return backend.Multipart{Fields: values(
		"name", f.Name,
		"tier", f.Tier,
		"website", f.Website,
		"conference_id", f.ConferenceID,
	)}
}

// CompanyForm requires a tax ID for local companies and a country for foreign ones.
type CompanyForm struct {
	Name    string `form:"name" json:"name" label:"Name" validate:"required,notblank,min=2,max=120"`
	IsLocal bool   `form:"is_local" json:"is_local" label:"Local company"`
	TaxID   string `form:"tax_id" json:"tax_id,omitempty" label:"Tax ID" validate:"required_if=IsLocal true,max=40"`
	Country string `form:"country" json:"country,omitempty" label:"Country" validate:"required_if=IsLocal false,max=60"`
	Website string `form:"website" json:"website,omitempty" label:"Website" input:"url" validate:"url_or_empty,max=255"`
	Email   string `form:"email" json:"email,omitempty" label:"Email" input:"email" validate:"omitempty,email,max=255"`
}

var _ JSONForm = (*CompanyForm)(nil)

func NewCompanyForm(c backend.Company) *CompanyForm {
	return &CompanyForm{
		Name:    c.Name,
		IsLocal: c.IsLocal,
		TaxID:   c.TaxID,
		Country: c.Country,
		Website: c.Website,
		Email:   c.Email,
	}
}

func (f *CompanyForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.TaxID = core.CleanString(f.TaxID)
	f.Country = core.CleanString(f.Country)
	f.Website = core.CleanString(f.Website)
	f.Email = core.CleanString(f.Email, true)
	return validate.Struct(f)
}

func (f *CompanyForm) Payload() interface{} {
	out := *f
	if out.IsLocal {
		out.Country = ""
	} else {
		out.TaxID = ""
	}
	return out
}
