package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct tag validation and flattens the failures into a
// field -> message map suitable for a 422 response body.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"request": err.Error()}
	}

	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "must be provided"
		case "latitude":
			out[field] = "must be a valid latitude"
		case "longitude":
			out[field] = "must be a valid longitude"
		case "max":
			out[field] = "must not exceed " + fe.Param()
		case "min":
			out[field] = "must be at least " + fe.Param()
		case "oneof":
			out[field] = "must be one of: " + fe.Param()
		default:
			out[field] = "is invalid"
		}
	}
	return out
}
