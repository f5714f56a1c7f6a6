package validate

import (
	"errors"
	"testing"
)

func validSignup() SignupForm {
	return SignupForm{
		FirstName:       "Ana",
		LastName:        "Silva",
		Email:           "ana@example.com",
		Phone:           "+351912345678",
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
		Role:            "TENANT",
	}
}

func TestSignupFormValid(t *testing.T) {
	if err := Struct(validSignup()); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
}

func TestSignupFormFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SignupForm)
		field  string
	}{
		{"missing first name", func(f *SignupForm) { f.FirstName = "" }, "firstName"},
		{"bad email", func(f *SignupForm) { f.Email = "not-an-email" }, "email"},
		{"bad phone", func(f *SignupForm) { f.Phone = "12345" }, "phone"},
		{"short password", func(f *SignupForm) { f.Password = "short"; f.ConfirmPassword = "short" }, "password"},
		{"password mismatch", func(f *SignupForm) { f.ConfirmPassword = "different" }, "confirmPassword"},
		{"unknown role", func(f *SignupForm) { f.Role = "GUEST" }, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validSignup()
			tt.mutate(&form)

			err := Struct(form)
			if err == nil {
				t.Fatal("expected a validation error")
			}

			var fields FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected FieldErrors, got %T: %v", err, err)
			}
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("expected an error for field %q, got %v", tt.field, fields)
			}
		})
	}
}

func TestLoginForm(t *testing.T) {
	form := LoginForm{Email: "ana@example.com", Password: "secret", Role: "LANDLORD"}
	if err := Struct(form); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	form.Role = ""
	err := Struct(form)
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fields["role"] != "is required" {
		t.Errorf("unexpected message for role: %q", fields["role"])
	}
}

func TestPropertyForm(t *testing.T) {
	form := PropertyForm{
		Title:          "Studio downtown",
		Description:    "Bright studio near the station",
		Address:        "Main St 1",
		City:           "Lisbon",
		Bedrooms:       0,
		Bathrooms:      1,
		Area:           35,
		Price:          850,
		Deposit:        850,
		MinLeaseMonths: 6,
		MaxOccupants:   2,
	}
	if err := Struct(form); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	form.Price = 0
	form.Area = -1
	err := Struct(form)
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fields["price"]; !ok {
		t.Error("expected an error for price")
	}
	if _, ok := fields["area"]; !ok {
		t.Error("expected an error for area")
	}
}
