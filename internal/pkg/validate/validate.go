// Package validate wraps go-playground/validator with field names taken from
// json/query/form tags and human-readable messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

// FieldError is one failed rule, already rendered for a caller.
type FieldError struct {
	Field   string
	Message string
}

// Errors is returned by Struct when one or more rules fail.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validator is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that names fields after their json, query or form tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(tagName)
	return &Validator{v: v}
}

// Struct validates i and returns Errors on rule failures.
func (val *Validator) Struct(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		out = append(out, FieldError{Field: field, Message: message(field, fe)})
	}
	return out
}

// AsValidationError converts Errors into *domain.ValidationError. Any other
// error, including nil, is returned unchanged.
func AsValidationError(err error) error {
	var fe Errors
	if !errors.As(err, &fe) {
		return err
	}
	out := &domain.ValidationError{Violations: make([]domain.FieldViolation, 0, len(fe))}
	for _, e := range fe {
		out.Violations = append(out.Violations, domain.FieldViolation{Field: e.Field, Message: e.Message})
	}
	return out
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "query", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

// message converts a single FieldError into a human-readable message.
func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
