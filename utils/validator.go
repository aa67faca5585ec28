package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations registers custom validation rules
func RegisterCustomValidations(v *validator.Validate) {
	v.RegisterValidation("otpcode", validateOTPCode)
}

// validateOTPCode checks for a 6-digit numeric code
func validateOTPCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func TranslateValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		var messages []string
		for _, fe := range ve {
			field := fe.Field()
			switch fe.Tag() {
			case "required":
				messages = append(messages, field+" is required")
			case "email":
				messages = append(messages, "invalid email format")
			case "min":
				messages = append(messages, field+" must be at least "+fe.Param()+" characters")
			case "max":
				messages = append(messages, field+" must be at most "+fe.Param()+" characters")
			case "numeric":
				messages = append(messages, field+" must contain only numbers")
			case "oneof":
				messages = append(messages, field+" must be one of: "+fe.Param())
			case "otpcode":
				messages = append(messages, field+" must be a 6-digit code")
			default:
				messages = append(messages, field+" is invalid")
			}
		}
		return strings.Join(messages, ", ")
	}
	return err.Error()
}
