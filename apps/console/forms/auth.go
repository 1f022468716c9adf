package forms

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/backend"
)

type LoginForm struct {
	Email    string `form:"email" label:"Email" input:"email" validate:"required,email"`
	Password string `form:"password" label:"Password" input:"password" validate:"required"`
	Next     string `form:"next" input:"hidden"`
}

func (f *LoginForm) Validate(validate *validator.Validate) error {
	f.Email = core.CleanString(f.Email, true)
	return validate.Struct(f)
}

func (f *LoginForm) Credentials() backend.Credentials {
	return backend.Credentials{Email: f.Email, Password: f.Password}
}
