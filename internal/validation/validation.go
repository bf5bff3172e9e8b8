// Package validation checks request input before any credential work happens.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"session-portal/internal/apperr"
)

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

const (
	MsgCredential       = "Please provide a valid email or username."
	MsgPassword         = "Please provide a password."
	MsgEmail            = "Please provide a valid email."
	MsgUsername         = "Please provide a username with at least 4 characters."
	MsgUsernameNotEmail = "Username cannot be an email."
	MsgPasswordLength   = "Password must be 6 characters or more."
	MsgPasswordTooLong  = "Password must be 72 bytes or fewer."
	MsgMalformedBody    = "Request body must be a JSON object."
)

// LoginInput is the body of POST /api/session.
type LoginInput struct {
	Credential string `json:"credential" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// SignupInput is the body of POST /api/users.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=4,notemail"`
	Password string `json:"password" validate:"required,min=6,pwbytes"`
}

// messages maps "Field.tag" to the client message; "Field" is the fallback.
var messages = map[string]string{
	"Credential":        MsgCredential,
	"Email":             MsgEmail,
	"Username":          MsgUsername,
	"Username.notemail": MsgUsernameNotEmail,
	"Password.pwbytes":  MsgPasswordTooLong,
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notemail", func(fl validator.FieldLevel) bool {
		return v.Var(fl.Field().String(), "email") != nil
	})
	// min/max count runes; bcrypt limits bytes.
	_ = v.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	return &Validator{validate: v}
}

// Login normalizes and validates login input. The credential is trimmed;
// the password is taken verbatim.
func (v *Validator) Login(in *LoginInput) error {
	in.Credential = strings.TrimSpace(in.Credential)
	return v.check(in, map[string]string{"Password": MsgPassword})
}

// Signup normalizes and validates signup input.
func (v *Validator) Signup(in *SignupInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	return v.check(in, map[string]string{"Password": MsgPasswordLength})
}

// Malformed is returned when the body could not be decoded at all.
func Malformed() *apperr.Error {
	return apperr.Validation(MsgMalformedBody)
}

func (v *Validator) check(in any, fallbacks map[string]string) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Internal(err)
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, message(fe.StructField(), fe.Tag(), fallbacks))
	}
	return apperr.Validation(out...)
}

func message(field, tag string, fallbacks map[string]string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := fallbacks[field]; ok {
		return msg
	}
	if msg, ok := messages[field]; ok {
		return msg
	}
	return "Invalid value for " + strings.ToLower(field) + "."
}
