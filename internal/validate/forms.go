// Package validate performs gateway-side form validation so obviously bad
// input never reaches the backend. The backend still enforces its own rules;
// these checks only exist to fail fast with field-level messages.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// SignupForm is the input for account creation.
type SignupForm struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,e164"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=LANDLORD TENANT ADMIN"`
}

// LoginForm is the input for authentication.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=LANDLORD TENANT ADMIN"`
}

// PropertyForm is the landlord input for creating or editing a listing.
type PropertyForm struct {
	Title          string  `json:"title" validate:"required"`
	Description    string  `json:"description" validate:"required"`
	Address        string  `json:"address" validate:"required"`
	City           string  `json:"city" validate:"required"`
	Bedrooms       int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms      float64 `json:"bathrooms" validate:"gte=0"`
	Area           float64 `json:"area" validate:"gt=0"`
	Price          float64 `json:"price" validate:"gt=0"`
	Deposit        float64 `json:"deposit" validate:"gte=0"`
	MinLeaseMonths int     `json:"minLeaseMonths" validate:"gte=1"`
	MaxOccupants   int     `json:"maxOccupants" validate:"gte=1"`
}

// FieldErrors maps field names to human-readable validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates any of the form types, returning FieldErrors on failure.
func Struct(form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe)] = message(fe)
	}
	return fields
}

// fieldName lowercases the first rune to match the JSON field names the UI
// sends.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a valid phone number in international format"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "eqfield":
		return "must match the password"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return "is invalid"
	}
}
