package forms

import (
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/services/backend"
)

// ScanLogFilterForm filters the QR logs page.
type ScanLogFilterForm struct {
	ConferenceID string `query:"conference_id" form:"conference_id" label:"Conference" input:"select"`
	From         string `query:"from" form:"from" label:"From" input:"date" validate:"omitempty,datetime=2006-01-02"`
	To           string `query:"to" form:"to" label:"To" input:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (f *ScanLogFilterForm) Validate(validate *validator.Validate) error {
	if err := validate.Struct(f); err != nil {
		return err
	}
	return checkRange(f.From, f.To, "to")
}

// Filter returns the backend filter; To is inclusive of the whole day.
func (f *ScanLogFilterForm) Filter() backend.ScanLogFilter {
	filter := backend.ScanLogFilter{ConferenceID: f.ConferenceID, From: parseTime(DateLayout, f.From)}
	if f.To != "" {
		filter.To = endOfDay(parseTime(DateLayout, f.To))
	}
	return filter
}

// Values encodes the set filters.
func (f *ScanLogFilterForm) Values() url.Values {
	return filterValues("conference_id", f.ConferenceID, "from", f.From, "to", f.To)
}

// AuditFilterForm filters the audit log page.
type AuditFilterForm struct {
	Resource string `query:"resource" form:"resource" label:"Resource" input:"select"`
	Action   string `query:"action" form:"action" label:"Action" input:"select" options:"create,update,delete,review,send"`
	ActorID  string `query:"actor" form:"actor" label:"Actor ID"`
	From     string `query:"from" form:"from" label:"From" input:"date" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" form:"to" label:"To" input:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (f *AuditFilterForm) Validate(validate *validator.Validate) error {
	f.Resource = core.CleanString(f.Resource, true)
	f.Action = core.CleanString(f.Action, true)
	f.ActorID = core.CleanString(f.ActorID)
	if err := validate.Struct(f); err != nil {
		return err
	}
	return checkRange(f.From, f.To, "to")
}

func (f *AuditFilterForm) Filter() audit.QueryFilter {
	filter := audit.QueryFilter{
		ActorID:  f.ActorID,
		Resource: f.Resource,
		Action:   f.Action,
		From:     parseTime(DateLayout, f.From),
	}
	if f.To != "" {
		filter.To = endOfDay(parseTime(DateLayout, f.To))
	}
	return filter
}

func (f *AuditFilterForm) Values() url.Values {
	return filterValues("resource", f.Resource, "action", f.Action, "actor", f.ActorID, "from", f.From, "to", f.To)
}

// endOfDay returns the last instant of the day starting at day.
func endOfDay(day time.Time) time.Time {
	return day.Add(24*time.Hour - time.Nanosecond)
}

func filterValues(kv ...string) url.Values {
	v := make(url.Values)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			v.Set(kv[i], kv[i+1])
		}
	}
	return v
}
