package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with the form rules used by
// the auth flows. Validation is pure and synchronous; failures are reported
// as a field→message map and never escape as panics.
type Validator struct {
	validate *validator.Validate
}

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	nameRe    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// New creates a validator instance with the custom rules registered.
func New() *Validator {
	validate := validator.New()

	// Report errors under JSON field names so form components can attach
	// them to the right input.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Password: at least 8 chars with lowercase, uppercase and a digit.
	// Special characters strengthen the score but are not required.
	_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		if len(password) < 8 {
			return false
		}
		return lowerRe.MatchString(password) &&
			upperRe.MatchString(password) &&
			digitRe.MatchString(password)
	})

	// Person name: 2-50 characters, letters and whitespace only.
	_ = validate.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return len(name) >= 2 && len(name) <= 50 && nameRe.MatchString(name)
	})

	return &Validator{validate: validate}
}

// LoginRequest is the login form payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the registration form payload.
type RegisterRequest struct {
	FullName        string `json:"full_name" validate:"required,person_name"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	AgreeToTerms    bool   `json:"agree_to_terms" validate:"eq=true"`
}

// ForgotPasswordRequest is the password-recovery form payload.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the password-update form payload.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ProfileUpdateRequest is the profile form payload.
type ProfileUpdateRequest struct {
	FullName  string `json:"full_name" validate:"omitempty,person_name"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// FieldErrors maps a form field name to the first violated rule's message.
// The "root" key carries errors not attached to a specific field.
type FieldErrors map[string]string

// RootField is the key for form-level errors.
const RootField = "root"

// Validate checks a form payload and returns per-field messages. A nil
// return means the payload is valid.
func (v *Validator) Validate(form any) FieldErrors {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{RootField: "Validation failed"}
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := fields[field]; seen {
			continue
		}
		fields[field] = messageFor(field, fe)
	}
	return fields
}

// messageFor renders the user-facing message for a single violation.
func messageFor(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		switch field {
		case "email":
			return "Email is required"
		case "password":
			return "Password is required"
		case "confirm_password":
			return "Please confirm your password"
		case "full_name":
			return "Name is required"
		}
		return field + " is required"
	case "email":
		return "Please enter a valid email address"
	case "password":
		return "Password must be at least 8 characters and contain at least one uppercase letter, one lowercase letter, and one number"
	case "person_name":
		return "Name must be 2-50 characters and contain only letters and spaces"
	case "eqfield":
		return "Passwords don't match"
	case "eq":
		if field == "agree_to_terms" {
			return "You must agree to the terms and conditions"
		}
		return field + " is invalid"
	case "url":
		return "Please enter a valid URL"
	default:
		return field + " is invalid"
	}
}

// IsValidEmail reports whether email passes the email rule.
func (v *Validator) IsValidEmail(email string) bool {
	return v.validate.Var(email, "required,email") == nil
}

// IsValidPassword reports whether password passes the password rule.
func (v *Validator) IsValidPassword(password string) bool {
	return v.validate.Var(password, "required,password") == nil
}
