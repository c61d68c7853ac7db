package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError carries per-field validation failures so the error
// middleware can map them to a 400 instead of a generic 5xx.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ValidateRequest validates a request DTO against its `validate` tags.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				fields[ve.Field()] = fmt.Sprintf("failed on '%s' rule", ve.Tag())
			}
		} else {
			fields["request"] = err.Error()
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}
