package model

import (
	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the domain binding rules to gin's validator
// engine. "teeth" checks a TeethMap, "mobile" a 10 digit Indian mobile
// number carried as an int64.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("teeth", validTeeth); err != nil {
		return err
	}
	return v.RegisterValidation("mobile", validMobile)
}

func validTeeth(fl validator.FieldLevel) bool {
	teeth, ok := fl.Field().Interface().(TeethMap)
	if !ok {
		return false
	}
	return teeth.Check() == ""
}

func validMobile(fl validator.FieldLevel) bool {
	mobile := fl.Field().Int()
	return mobile >= 6000000000 && mobile <= 9999999999
}
