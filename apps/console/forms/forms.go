// Package forms holds the create/update forms of the console: binding, validation & backend payloads.
package forms

import (
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/backend"
)

const (
	DateLayout     = core.DateLayout
	DateTimeLayout = "2006-01-02T15:04" // datetime-local input
)

var (
	errEndsBeforeStart = "must be after the start"
	errFileRequired    = "a file is required"
	errToBeforeFrom    = "must not be before the start"
)

type (
	Form interface {
		Validate(validate *validator.Validate) error
	}

	// JSONForm is submitted as a JSON body.
	JSONForm interface {
		Form
		Payload() interface{}
	}

	// FileField is a file input of a multipart form.
	FileField struct {
		Param            string
		RequiredOnCreate bool
	}

	// MultipartForm is submitted as multipart/form-data with its files.
	MultipartForm interface {
		Form
		Multipart() backend.Multipart
		FileFields() []FileField
	}
)

// MissingFiles returns the field errors of required files absent on creation.
func MissingFiles(f MultipartForm, present map[string]bool) error {
	var flds []core.FieldError
	for _, ff := range f.FileFields() {
		if ff.RequiredOnCreate && !present[ff.Param] {
			flds = append(flds, core.FieldError{Field: ff.Param, Error: errFileRequired})
		}
	}
	if len(flds) == 0 {
		return nil
	}
	return core.NewValidationError(nil, flds...)
}

func parseTime(layout, s string) time.Time {
	t, _ := time.Parse(layout, s)
	return t
}

// rfc3339 converts a date or datetime input value to RFC3339; "" stays "".
func rfc3339(layout, s string) string {
	if s == "" {
		return ""
	}
	return parseTime(layout, s).Format(time.RFC3339)
}

func inputDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

func inputDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateTimeLayout)
}

// checkPeriod reports an error on endField when end is not after start.
func checkPeriod(layout, start, end, endField string) error {
	if start == "" || end == "" {
		return nil
	}
	if !parseTime(layout, end).After(parseTime(layout, start)) {
		return core.NewValidationError(nil, core.FieldError{Field: endField, Error: errEndsBeforeStart})
	}
	return nil
}

// checkRange reports an error on endField when end is before start.
func checkRange(start, end, endField string) error {
	if start == "" || end == "" {
		return nil
	}
	if parseTime(DateLayout, end).Before(parseTime(DateLayout, start)) {
		return core.NewValidationError(nil, core.FieldError{Field: endField, Error: errToBeforeFrom})
	}
	return nil
}

func values(kv ...string) url.Values {
	v := make(url.Values, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func upper(s string) string {
	return strings.ToUpper(s)
}
