package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// appIdentifier matches warehouse schema names: the app id doubles as one.
var appIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,126}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("appid", func(fl validator.FieldLevel) bool {
		return appIdentifier.MatchString(fl.Field().String())
	})
	return v
}

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// IsAppIdentifier reports whether id can be used as an app schema name.
func IsAppIdentifier(id string) bool {
	return appIdentifier.MatchString(id)
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "appid":
		return fmt.Sprintf("%s must be a valid app identifier", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
