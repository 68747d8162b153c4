package gtindata

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validationMessage flattens validator errors into one human-readable
// line, field names lowercased to match the wire format.
func validationMessage(err error) string {
	violations, ok := err.(validator.ValidationErrors)
	if !ok || len(violations) == 0 {
		return "invalid input"
	}

	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(v.Field()), tagMessage(v)))
	}
	return strings.Join(parts, "; ")
}

func tagMessage(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", minUnit(v))
	case "max":
		return fmt.Sprintf("must be at most %s", minUnit(v))
	default:
		return "is invalid"
	}
}

func minUnit(v validator.FieldError) string {
	if v.Kind() == reflect.String {
		return v.Param() + " characters"
	}
	return v.Param()
}
