package handler

import (
	"github.com/carbonwallet/leads-service/internal/pkg/validate"
)

// echoValidator wraps the shared validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validate.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator(v *validate.Validator) *echoValidator {
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Rule failures come back as
// *domain.ValidationError so the error handler renders them as 400.
func (ev *echoValidator) Validate(i any) error {
	return validate.AsValidationError(ev.v.Struct(i))
}
