package forms

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/form"
)

var (
	translator = core.NewTranslator()
	validate   = core.NewValidate(translator)
)

func errorsOf(f Form) map[string]string {
	return form.FieldErrors(f.Validate(validate), translator)
}

func TestHotelForm(t *testing.T) {
	tests := []struct {
		name     string
		form     HotelForm
		wantErrs []string
	}{
		{name: "empty", form: HotelForm{}, wantErrs: []string{"name", "stars", "city", "country"}},
		{name: "blank name", form: HotelForm{Name: "   ", Stars: 3, City: "Goma", Country: "DRC"}, wantErrs: []string{"name"}},
		{name: "short name", form: HotelForm{Name: "H", Stars: 3, City: "Goma", Country: "DRC"}, wantErrs: []string{"name"}},
		{name: "too many stars", form: HotelForm{Name: "Serena", Stars: 6, City: "Goma", Country: "DRC"}, wantErrs: []string{"stars"}},
		{name: "valid", form: HotelForm{Name: " Serena  Hotel ", Stars: 5, City: "Goma", Country: "DRC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := errorsOf(&tt.form)
			var got []string
			for _, fld := range tt.wantErrs {
				if _, ok := errs[fld]; ok {
					got = append(got, fld)
				}
			}
			assert.Equal(t, tt.wantErrs, got)
			assert.Len(t, errs, len(tt.wantErrs))
		})
	}

	f := HotelForm{Name: " Serena  Hotel ", Stars: 5, City: "Goma", Country: "DRC"}
	require.NoError(t, f.Validate(validate))
	assert.Equal(t, "Serena Hotel", f.Name)
}

func TestCompanyForm(t *testing.T) {
	tests := []struct {
		name    string
		form    CompanyForm
		wantErr string
	}{
		{name: "local without tax id", form: CompanyForm{Name: "Acme", IsLocal: true}, wantErr: "tax_id"},
		{name: "foreign without country", form: CompanyForm{Name: "Acme"}, wantErr: "country"},
		{name: "bad website", form: CompanyForm{Name: "Acme", Country: "Kenya", Website: "acme"}, wantErr: "website"},
		{name: "local", form: CompanyForm{Name: "Acme", IsLocal: true, TaxID: "CD-123"}},
		{name: "foreign", form: CompanyForm{Name: "Acme", Country: "Kenya", Website: "https://acme.co.ke"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := errorsOf(&tt.form)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			assert.Contains(t, errs, tt.wantErr)
		})
	}

	t.Run("payload drops the unused field", func(t *testing.T) {
		f := CompanyForm{Name: "Acme", IsLocal: true, TaxID: "CD-123", Country: "DRC"}
		b, err := json.Marshal(f.Payload())
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Acme","is_local":true,"tax_id":"CD-123"}`, string(b))
	})
}

func TestTicketForm(t *testing.T) {
	f := TicketForm{ConferenceID: "c1", Name: "VIP", Price: -1, Currency: "usd", Quantity: 0}
	errs := errorsOf(&f)
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "quantity")
	assert.Equal(t, "USD", f.Currency)

	f = TicketForm{ConferenceID: "c1", Name: "VIP", Price: 0, Currency: "usd", Quantity: 10, SalesEndAt: "2026-11-01T18:30"}
	require.NoError(t, f.Validate(validate))

	b, err := json.Marshal(f.Payload())
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "2026-11-01T18:30:00Z", got["sales_end_at"])
	assert.Equal(t, "USD", got["currency"])
	assert.Equal(t, float64(10), got["quantity"])
}

func TestConferenceForm(t *testing.T) {
	f := ConferenceForm{
		Title: "GoDays", Venue: "Pullman", City: "Kinshasa", Country: "DRC",
		StartsAt: "2026-11-02T09:00", EndsAt: "2026-11-01T18:00", Capacity: 300,
	}
	assert.Equal(t, map[string]string{"ends_at": errEndsBeforeStart}, errorsOf(&f))

	f.EndsAt = "2026-11-03T18:00"
	require.NoError(t, f.Validate(validate))
	mp := f.Multipart()
	assert.Equal(t, "2026-11-02T09:00:00Z", mp.Fields.Get("starts_at"))
	assert.Equal(t, "300", mp.Fields.Get("capacity"))

	assert.NoError(t, MissingFiles(&f, map[string]bool{"cover": true}))
	assert.Contains(t, form.FieldErrors(MissingFiles(&f, nil), nil), "cover")
}

func TestAdForm(t *testing.T) {
	f := AdForm{Title: "Promo", Link: "not a url", Placement: "Footer", StartsAt: "2026-11-01", EndsAt: "2026-11-30"}
	errs := errorsOf(&f)
	assert.Contains(t, errs, "link")
	assert.Contains(t, errs, "placement")

	f = AdForm{Title: "Promo", Placement: " Banner", StartsAt: "2026-11-01", EndsAt: "2026-11-30"}
	require.NoError(t, f.Validate(validate))
	assert.Equal(t, "banner", f.Multipart().Fields.Get("placement"))
	assert.Equal(t, []FileField{{Param: "image", RequiredOnCreate: true}}, f.FileFields())
}

func TestNotificationForm(t *testing.T) {
	f := NotificationForm{Title: "Hi", Message: "Doors open at 9", Audience: "users", UserIDs: []string{" ", ""}}
	assert.Contains(t, errorsOf(&f), "user_ids")

	f = NotificationForm{Title: "Hi", Message: "Doors open at 9", Audience: "all", UserIDs: []string{"u1"}}
	require.NoError(t, f.Validate(validate))
	b, err := json.Marshal(f.Payload())
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Hi","message":"Doors open at 9","audience":"all"}`, string(b))
}

func TestScanLogFilterForm(t *testing.T) {
	f := ScanLogFilterForm{From: "2026-11-02", To: "2026-11-01"}
	assert.Contains(t, errorsOf(&f), "to")

	f = ScanLogFilterForm{ConferenceID: "c1", From: "2026-11-01", To: "2026-11-01"}
	require.NoError(t, f.Validate(validate))
	filter := f.Filter()
	assert.Equal(t, "c1", filter.ConferenceID)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), filter.From)
	assert.Equal(t, time.Date(2026, 11, 1, 23, 59, 59, 999999999, time.UTC), filter.To)

	assert.True(t, (&ScanLogFilterForm{}).Filter().To.IsZero())
}

func TestAuditFilterForm_lastInstantOfDay(t *testing.T) {
	f := AuditFilterForm{From: "2026-11-01", To: "2026-11-01"}
	require.NoError(t, f.Validate(validate))
	qf := f.Filter()

	tests := []struct {
		name  string
		at    time.Time
		match bool
	}{
		{name: "start of day", at: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), match: true},
		{name: "last second", at: time.Date(2026, 11, 1, 23, 59, 59, 0, time.UTC), match: true},
		{name: "fraction of the last second", at: time.Date(2026, 11, 1, 23, 59, 59, 500_000_000, time.UTC), match: true},
		{name: "next day", at: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), match: false},
		{name: "day before", at: time.Date(2026, 10, 31, 23, 59, 59, 999_999_999, time.UTC), match: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, qf.Match(audit.Entry{CreatedAt: tt.at}))
		})
	}
}

func TestDescribe_JobOfferForm(t *testing.T) {
	f := JobOfferForm{ContractType: "internship"}
	fields := form.Describe(&f, map[string]string{"title": "this field is required"}, form.Choices{
		"company_id": {{Value: "co1", Label: "Acme"}},
	})
	byName := make(map[string]form.Field, len(fields))
	for _, fld := range fields {
		byName[fld.Name] = fld
	}

	assert.Equal(t, "this field is required", byName["title"].Error)
	assert.True(t, byName["title"].Required)
	assert.Equal(t, []form.Option{{Value: "co1", Label: "Acme"}}, byName["company_id"].Options)
	assert.Equal(t, "date", byName["closes_at"].Input)
	for _, o := range byName["contract_type"].Options {
		assert.Equal(t, o.Value == "internship", o.Selected, o.Value)
	}
}
