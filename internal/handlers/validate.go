package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m1z23r/drift/pkg/drift"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate decodes the JSON body into req and checks its validate
// tags. On failure it has already written a 400.
func bindAndValidate(c *drift.Context, req any) bool {
	if err := c.BindJSON(req); err != nil {
		c.BadRequest("invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		c.BadRequest(validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "e164":
		return fmt.Sprintf("%s must be an E.164 phone number", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
