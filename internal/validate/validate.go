// Package validate wraps go-playground/validator with the form rules used by
// the signup wizard, campaign editor and contact form.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"crowdfund/internal/domain"
)

const MinPasswordLength = 8

var (
	once     sync.Once
	instance *validator.Validate

	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			return jsonName(f.Tag.Get("json"), f.Name)
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return PasswordProblem(fl.Field().String()) == ""
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("signup_role", func(fl validator.FieldLevel) bool {
			role := domain.UserRole(fl.Field().String())
			return role == domain.UserRoleDonor || role.RaisesFunds()
		})
		instance = v
	})
	return instance
}

// PasswordProblem returns a human readable reason the password is too weak,
// or "" when it is acceptable.
func PasswordProblem(pw string) string {
	if len(pw) < MinPasswordLength {
		return "password must be at least 8 characters"
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	switch {
	case !upper:
		return "password must contain an uppercase letter"
	case !lower:
		return "password must contain a lowercase letter"
	case !digit:
		return "password must contain a digit"
	case !symbol:
		return "password must contain a symbol"
	}
	return ""
}

// Struct validates s and converts failures into a *domain.ValidationError.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "password":
		return PasswordProblem(fmt.Sprint(fe.Value()))
	case "phone":
		return "must be 10 to 15 digits"
	case "signup_role":
		return "must be donor, ngo or individual"
	}
	return "is invalid"
}

func jsonName(tag, fallback string) string {
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "" || name == "-" {
		return fallback
	}
	return name
}
