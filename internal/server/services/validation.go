package services

import (
	"regexp"
	"unicode/utf8"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/go-playground/validator/v10"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 100
	minPasswordLen = 6
	maxPasswordLen = 20
)

var (
	emailShape = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)
	hasLetter  = regexp.MustCompile(`[A-Za-z]`)
	hasDigit   = regexp.MustCompile(`[0-9]`)
	hasSymbol  = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	custom := map[string]validator.Func{
		"username": func(fl validator.FieldLevel) bool {
			n := utf8.RuneCountInString(fl.Field().String())
			return n >= minUsernameLen && n <= maxUsernameLen
		},
		"password": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			n := utf8.RuneCountInString(s)
			return n >= minPasswordLen && n <= maxPasswordLen &&
				hasLetter.MatchString(s) && hasDigit.MatchString(s) && hasSymbol.MatchString(s)
		},
		"emailshape": func(fl validator.FieldLevel) bool {
			return emailShape.MatchString(fl.Field().String())
		},
		"role": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseRole(fl.Field().String())
			return ok
		},
	}

	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

type fieldCheck struct {
	value string
	tag   string
	err   error
}

// firstFailure runs checks in order and returns the error of the first one
// that fails.
func firstFailure(checks ...fieldCheck) error {
	for _, c := range checks {
		if err := validate.Var(c.value, c.tag); err != nil {
			return c.err
		}
	}
	return nil
}

// validateRegistration checks everything that needs no storage access.
func validateRegistration(req RegisterRequest) error {
	return firstFailure(
		fieldCheck{req.FullName, "required", common.ErrMissingField},
		fieldCheck{req.UserName, "required", common.ErrMissingField},
		fieldCheck{req.Email, "required", common.ErrMissingField},
		fieldCheck{req.Password, "required", common.ErrMissingField},
		fieldCheck{req.Role, "required", common.ErrMissingField},
		fieldCheck{req.UserName, "username", common.ErrInvalidUsername},
		fieldCheck{req.Password, "password", common.ErrWeakPassword},
		fieldCheck{req.Email, "emailshape", common.ErrInvalidEmail},
	)
}

func validateRole(role string) error {
	return firstFailure(fieldCheck{role, "role", common.ErrInvalidRole})
}

func validateUsername(name string) error {
	return firstFailure(fieldCheck{name, "username", common.ErrInvalidUsername})
}
