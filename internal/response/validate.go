package response

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseAndValidate decodes the JSON body into v and runs its `validate` tags.
// On failure it has already written the 400 response and the caller should
// return nil so fiber does not overwrite it.
func ParseAndValidate(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		_ = BadRequest(c, "Invalid request body", err.Error())
		return fiber.ErrBadRequest
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = describe(fe)
			}
			first := verrs[0]
			code := "VALIDATION_ERROR"
			if first.Tag() == "required" {
				code = "MISSING_FIELD"
			}
			_ = Error(c, fiber.StatusBadRequest, code, first.Field()+" "+describe(first), fields)
			return fiber.ErrBadRequest
		}
		_ = BadRequest(c, err.Error(), nil)
		return fiber.ErrBadRequest
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
