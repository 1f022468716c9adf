package form

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/confadmin/core"
)

type sampleForm struct {
	Name      string    `form:"name" label:"Name" validate:"required,min=2"`
	Notes     string    `form:"notes" input:"textarea"`
	Stars     int       `form:"stars" label:"Stars" validate:"omitempty,min=1,max=5"`
	Published bool      `form:"published" label:"Published"`
	Kind      string    `form:"kind" input:"select" options:"full_time,part_time" validate:"required_if=Published true"`
	Tags      []string  `form:"tags" label:"Tags"`
	StartsAt  time.Time `form:"starts_at" input:"date"`
	internal  string
	Skipped   string
}

func TestDescribe(t *testing.T) {
	f := sampleForm{
		Name:      "Serena",
		Stars:     5,
		Published: true,
		Kind:      "part_time",
		Tags:      []string{"b"},
		StartsAt:  time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
		internal:  "x",
	}
	choices := Choices{"tags": {{Value: "a", Label: "A"}, {Value: "b", Label: "B"}}}

	fields := Describe(&f, map[string]string{"name": "too short"}, choices)
	require.Len(t, fields, 7)

	assert.Equal(t, Field{Name: "name", Label: "Name", Input: "text", Value: "Serena", Required: true, Error: "too short"}, fields[0])
	assert.Equal(t, Field{Name: "notes", Label: "Notes", Input: "textarea"}, fields[1])
	assert.Equal(t, Field{Name: "stars", Label: "Stars", Input: "number", Value: "5"}, fields[2])
	assert.Equal(t, Field{Name: "published", Label: "Published", Input: "checkbox", Value: "true", Checked: true}, fields[3])
	assert.Equal(t, []Option{
		{Value: "full_time", Label: "Full time"},
		{Value: "part_time", Label: "Part time", Selected: true},
	}, fields[4].Options)
	assert.False(t, fields[4].Required)
	assert.Equal(t, "multiselect", fields[5].Input)
	assert.Equal(t, []Option{{Value: "a", Label: "A"}, {Value: "b", Label: "B", Selected: true}}, fields[5].Options)
	assert.Equal(t, "2026-05-04", fields[6].Value)

	assert.Nil(t, Describe("nope", nil, nil))
}

func TestFieldErrors(t *testing.T) {
	translator := core.NewTranslator()
	validate := core.NewValidate(translator)

	err := validate.Struct(sampleForm{Stars: 9})
	errs := FieldErrors(errors.Wrap(err, "validating"), translator)
	assert.Equal(t, map[string]string{
		"name":  "this field is required",
		"stars": "stars must be 5 or less",
	}, errs)

	err = core.NewValidationError(errors.New("already accepted"), core.FieldError{Field: "roles", Error: "nope"})
	assert.Equal(t, map[string]string{"roles": "nope", NonFieldKey: "already accepted"}, FieldErrors(err, translator))

	assert.Equal(t, map[string]string{NonFieldKey: "boom"}, FieldErrors(errors.New("boom"), translator))
	assert.Empty(t, FieldErrors(nil, translator))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Full time", Humanize("full_time"))
	assert.Equal(t, "Gold", Humanize("GOLD"))
	assert.Equal(t, "", Humanize(""))
}
