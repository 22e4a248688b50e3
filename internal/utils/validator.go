// internal/utils/validator.go
package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("signal_source", validateSignalSource)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateSignalSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "amazon_movers", "reddit_skincare", "google_trends":
		return true
	}
	return false
}
