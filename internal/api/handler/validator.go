package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwtdemo/auth-system/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Besides the built-in tags it understands maxbytes=N, a limit on the UTF-8
// encoded length of a string.
func NewValidator() *echoValidator {
	v := validator.New()
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &echoValidator{v: v}
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Validate satisfies the echo.Validator interface. Failures are reported as a
// *domain.ValidationError carrying the first field message.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return domain.NewValidationError(fieldError(ve[0]))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch {
	case fe.Tag() == "email":
		return "Invalid email format"
	case field == "email" && fe.Tag() == "required":
		return "Invalid email format"
	case field == "password" && fe.Tag() == "required":
		return "Password is required"
	case field == "password" && fe.Tag() == "min":
		return fmt.Sprintf("Password must be at least %s characters long", fe.Param())
	case field == "password" && fe.Tag() == "maxbytes":
		return fmt.Sprintf("Password must be at most %s bytes long", fe.Param())
	case fe.Tag() == "required":
		return field + " is required"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
