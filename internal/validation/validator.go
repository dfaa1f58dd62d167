package validation

import (
	"fmt"
	"regexp"

	validatorv10 "github.com/go-playground/validator/v10"
)

var bdPhone = regexp.MustCompile(`^01[0-9]{9}$`)

// New returns a validator with the storefront's custom rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// bdphone accepts Bangladeshi mobile numbers (01XXXXXXXXX).
	_ = v.RegisterValidation("bdphone", func(fl validatorv10.FieldLevel) bool {
		return bdPhone.MatchString(fl.Field().String())
	})

	return v
}

// Check validates form and returns a field -> message map for the view.
// The map is nil when form is valid.
func Check(v *validatorv10.Validate, form interface{}) map[string]string {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	return validationErrorsToMap(err)
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.Field()] = message(fe)
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "bdphone":
		return "Please enter a valid Bangladeshi phone number (01XXXXXXXXX)"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "eqfield":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("Invalid value (%s)", fe.Tag())
	}
}
