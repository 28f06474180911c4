package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Punishment action validation
	validate.RegisterValidation("punishment_type", func(fl validator.FieldLevel) bool {
		action := fl.Field().String()
		return action == "mute" || action == "ban"
	})

	// Display color validation (#rrggbb)
	validate.RegisterValidation("hex_color", func(fl validator.FieldLevel) bool {
		color := fl.Field().String()
		if color == "" {
			return true
		}
		return hexColorRe.MatchString(color)
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "punishment_type":
			errors[field] = "Invalid punishment type. Must be: mute or ban"
		case "hex_color":
			errors[field] = "Invalid color. Must be a #rrggbb hex value"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
