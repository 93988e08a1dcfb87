package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

var (
	levelTag  = "level"
	levelText = "level must be one of BEGINNER, INTERMEDIATE or ADVANCED"

	weekdaysTag  = "weekdays"
	weekdaysText = "attendance days must be a non-empty list of weekdays (sunday to saturday)"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(levelTag, levelValidation)
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(weekdaysTag, weekdaysValidation)
	core.RegisterCustomTranslation(validate, translator, weekdaysTag, weekdaysText)
}

func levelValidation(fl validator.FieldLevel) bool {
	return Level(fl.Field().String()).IsValid()
}

// weekdaysValidation checks for a non-empty list of valid weekday tags
func weekdaysValidation(fl validator.FieldLevel) bool {
	var days []Weekday
	switch v := fl.Field().Interface().(type) {
	case []Weekday:
		days = v
	case Weekdays:
		days = v
	}
	if len(days) == 0 {
		return false
	}
	for _, d := range days {
		if !d.IsValid() {
			return false
		}
	}
	return true
}
