package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/markazhub/markaz/core"
)

var (
	statusTag  = "studentstatus"
	statusText = "invalid student status"
)

// InitValidators registers student-specific validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// statusValidation only allows values in AllStatuses.
func statusValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, status := range AllStatuses {
		if val == status {
			return true
		}
	}
	return false
}
