package httpapi

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const minPasswordLength = 8

type validatable interface {
	Validate() error
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate trims the email first so that the format check sees the same
// value the account service stores.
func (r *credentialsRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(minPasswordLength, 0)),
	)
}

// loginRequest does not enforce password rules so that accounts created
// under older rules can still sign in.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.RuneLength(minPasswordLength, 0)),
	)
}
