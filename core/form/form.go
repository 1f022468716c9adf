// Package form turns tagged form structs into field descriptions for the generic form template.
//
// Recognized struct tags:
//
//	form:"name"         input name (fields without it are skipped)
//	label:"Name"        display label (defaults to the struct field name)
//	input:"textarea"    input kind: text (default), textarea, number, email, url, date,
//	                    datetime, checkbox, select, multiselect, file, password, hidden
//	options:"a,b"       static select options
//	accept:"image/*"    file input accept attribute
//	validate:"required" a "required" rule marks the field required
package form

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
)

// NonFieldKey holds errors not bound to a field.
const NonFieldKey = "_"

type (
	Option struct {
		Value    string
		Label    string
		Selected bool
	}

	Field struct {
		Name     string
		Label    string
		Input    string
		Value    string
		Checked  bool
		Options  []Option
		Accept   string
		Required bool
		Error    string
	}

	// Choices are dynamic select options, by field name.
	Choices map[string][]Option

	fieldErrorer interface {
		FieldErrors() map[string]string
	}
)

// Describe lists the form fields of v (a struct or pointer to struct), filled with v's values,
// errs messages and choices.
func Describe(v interface{}, errs map[string]string, choices Choices) []Field {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()

	fields := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := strings.SplitN(sf.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}

		fld := Field{
			Name:     name,
			Label:    sf.Tag.Get("label"),
			Input:    sf.Tag.Get("input"),
			Accept:   sf.Tag.Get("accept"),
			Required: isRequired(sf.Tag.Get("validate")),
			Error:    errs[name],
		}
		if fld.Label == "" {
			fld.Label = sf.Name
		}
		if fld.Input == "" {
			fld.Input = defaultInput(sf.Type)
		}

		fv := rv.Field(i)
		values := formatValues(fv, fld.Input)
		if len(values) > 0 {
			fld.Value = values[0]
		}
		if fld.Input == "checkbox" {
			fld.Checked = fv.Kind() == reflect.Bool && fv.Bool()
			fld.Value = "true"
		}

		opts := choices[name]
		if opts == nil {
			opts = staticOptions(sf.Tag.Get("options"))
		}
		fld.Options = selectOptions(opts, values)
		fields = append(fields, fld)
	}
	return fields
}

func isRequired(rules string) bool {
	for _, rule := range strings.Split(rules, ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

func defaultInput(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool:
		return "checkbox"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	case reflect.Slice:
		return "multiselect"
	}
	if t == reflect.TypeOf(time.Time{}) {
		return "datetime"
	}
	return "text"
}

func formatValues(fv reflect.Value, input string) []string {
	if t, ok := fv.Interface().(time.Time); ok {
		if t.IsZero() {
			return nil
		}
		if input == "date" {
			return []string{t.Format(core.DateLayout)}
		}
		return []string{t.Format("2006-01-02T15:04")}
	}

	switch fv.Kind() {
	case reflect.String:
		return []string{fv.String()}
	case reflect.Int, reflect.Int64:
		return []string{strconv.FormatInt(fv.Int(), 10)}
	case reflect.Float64:
		return []string{strconv.FormatFloat(fv.Float(), 'f', -1, 64)}
	case reflect.Bool:
		return []string{strconv.FormatBool(fv.Bool())}
	case reflect.Slice:
		values := make([]string, 0, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			values = append(values, fmt.Sprint(fv.Index(i).Interface()))
		}
		return values
	}
	return nil
}

func staticOptions(tag string) []Option {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	opts := make([]Option, 0, len(parts))
	for _, p := range parts {
		opts = append(opts, Option{Value: p, Label: Humanize(p)})
	}
	return opts
}

func selectOptions(opts []Option, values []string) []Option {
	if len(opts) == 0 {
		return nil
	}
	selected := make(map[string]bool, len(values))
	for _, v := range values {
		selected[v] = true
	}
	out := make([]Option, len(opts))
	for i, o := range opts {
		o.Selected = selected[o.Value]
		out[i] = o
	}
	return out
}

// Humanize turns "full_time" into "Full time".
func Humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// FieldErrors maps err to field messages: validator errors are translated,
// core.ValidationError fields and backend field errors are copied.
// Messages not bound to a field are keyed by NonFieldKey.
func FieldErrors(err error, translator ut.Translator) map[string]string {
	errs := make(map[string]string)
	if err == nil {
		return errs
	}

	var vErrs validator.ValidationErrors
	var coreErr *core.ValidationError
	var fe fieldErrorer

	switch {
	case errors.As(err, &vErrs):
		for _, e := range vErrs {
			if translator != nil {
				errs[e.Field()] = e.Translate(translator)
			} else {
				errs[e.Field()] = e.Error()
			}
		}
	case errors.As(err, &coreErr):
		for _, f := range coreErr.Fields {
			errs[f.Field] = f.Error
		}
		if coreErr.Err != nil {
			errs[NonFieldKey] = coreErr.Err.Error()
		}
	case errors.As(err, &fe) && len(fe.FieldErrors()) > 0:
		for k, v := range fe.FieldErrors() {
			errs[k] = v
		}
	default:
		errs[NonFieldKey] = err.Error()
	}
	return errs
}
