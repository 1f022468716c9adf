package forms

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/backend"
)

type JobOfferForm struct {
	Title        string `form:"title" json:"title" label:"Title" validate:"required,notblank,min=3,max=150"`
	CompanyID    string `form:"company_id" json:"company_id" label:"Company" input:"select" validate:"required"`
	Location     string `form:"location" json:"location" label:"Location" validate:"required,max=120"`
	ContractType string `form:"contract_type" json:"contract_type" label:"Contract type" input:"select" options:"full_time,part_time,internship,freelance" validate:"required,oneof=full_time part_time internship freelance"`
	Description  string `form:"description" json:"description" label:"Description" input:"textarea" validate:"required,notblank,max=10000"`
	ClosesAt     string `form:"closes_at" json:"-" label:"Closes at" input:"date" validate:"required,datetime=2006-01-02"`
}

var _ JSONForm = (*JobOfferForm)(nil)

func NewJobOfferForm(j backend.JobOffer) *JobOfferForm {
	return &JobOfferForm{
		Title:        j.Title,
		CompanyID:    j.CompanyID,
		Location:     j.Location,
		ContractType: j.ContractType,
		Description:  j.Description,
		ClosesAt:     inputDate(j.ClosesAt),
	}
}

func (f *JobOfferForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	f.Location = core.CleanString(f.Location)
	f.ContractType = core.CleanString(f.ContractType, true)
	f.Description = strings.TrimSpace(f.Description)
	return validate.Struct(f)
}

func (f *JobOfferForm) Payload() interface{} {
	type payload struct {
		JobOfferForm
		ClosesAt string `json:"closes_at"`
	}
	return payload{JobOfferForm: *f, ClosesAt: rfc3339(DateLayout, f.ClosesAt)}
}
