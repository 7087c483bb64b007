// Package forms validates account forms before any request leaves the client.
package forms

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
	"github.com/pkg/errors"
)

const MinPasswordLength = 6

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupForm struct {
	UserName        string `json:"userName" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordForm struct {
	Token           string `json:"token" validate:"notblank"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// FieldError is one user-facing validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every failed rule in field order. It matches
// errors.Is(err, internal/errors.ErrValidation).
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return clienterrors.ErrValidation
}

// Field returns the message for field, if it failed.
func (v ValidationErrors) Field(field string) (string, bool) {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// Validate checks a form struct (or pointer to one). It returns nil or ValidationErrors.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "[forms.Validate] not a form")
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		switch fe.Field() {
		case "email":
			return "Please enter your email address"
		case "userName":
			return "Please enter a username"
		case "confirmPassword":
			return "Please confirm your password"
		case "token":
			return "No reset token found. Please request a new password reset."
		default:
			return "Please enter a password"
		}
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("Password must be at least %s characters long", fe.Param())
	case "eqfield":
		return "Passwords do not match"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

type Strength int

const (
	StrengthNone Strength = iota
	StrengthWeak
	StrengthMedium
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "Weak"
	case StrengthMedium:
		return "Medium"
	case StrengthStrong:
		return "Strong"
	default:
		return ""
	}
}

// PasswordStrength grades by length only: under 6 is weak, under 10 medium.
func PasswordStrength(password string) Strength {
	n := utf8.RuneCountInString(password)
	switch {
	case n == 0:
		return StrengthNone
	case n < MinPasswordLength:
		return StrengthWeak
	case n < 10:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
