package config

import (
	"fmt"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their TOML key
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// StringSet is validated as its sorted members
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if set, ok := field.Interface().(StringSet); ok {
			return set.Values()
		}
		return nil
	}, StringSet{})

	registerCustomValidators(v)
	v.RegisterStructValidation(validateAddresses, Config{})
	return v
}

// registerCustomValidators registers custom validation functions
func registerCustomValidators(v *validator.Validate) {
	// Environment variable names passed through to spawned servers
	if err := v.RegisterValidation("envname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name != "" && !strings.ContainsAny(name, "=\x00")
	}); err != nil {
		panic(fmt.Sprintf("register envname validator: %v", err))
	}
}

// validateAddresses rejects socket addresses without a path.
func validateAddresses(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	for _, f := range []struct {
		name string
		addr Address
	}{
		{"listen", cfg.Listen},
		{"connect", cfg.Connect},
	} {
		if f.addr.Kind() == AddressUnix && f.addr.Path() == "" {
			sl.ReportError(f.addr.Path(), f.name, f.name, "sockaddr", "")
		}
	}
}

// formatValidationError converts validator errors into user-friendly messages.
// It also returns the first offending field.
func formatValidationError(err error) (string, string) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return err.Error(), ""
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, getFieldErrorMessage(fieldError))
	}
	return strings.Join(messages, "; "), validationErrors[0].Field()
}

// getFieldErrorMessage returns a user-friendly error message for a field validation error
func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	value := fe.Value()

	switch fe.Tag() {
	case "envname":
		return fmt.Sprintf("%s must be an environment variable name without '=' or NUL (got: %q)", field, value)
	case "sockaddr":
		return fmt.Sprintf("%s must name a socket path", field)
	default:
		return fmt.Sprintf("%s validation failed: %s (got: %v)", field, fe.Tag(), value)
	}
}
