package core

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsShutdown(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "plain", err: NewShutdownError("integrity issue"), want: true},
		{name: "pkg wrapped", err: errors.Wrap(NewShutdownError("integrity issue"), "serving"), want: true},
		{name: "fmt wrapped", err: fmt.Errorf("serving: %w", NewShutdownError("integrity issue")), want: true},
		{name: "other", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsShutdown(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	cause := errors.New("already accepted")
	err := NewValidationError(cause)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "already accepted", err.Error())

	err = NewValidationError(nil, FieldError{Field: "roles", Error: "invalid roles"})
	assert.Equal(t, "roles: invalid roles", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
