package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

var (
	statusTag  = "attendance_status"
	statusText = "status must be one of PRESENT, ABSENT or EXCUSED"

	duplicateStudentTag  = "unique_student"
	duplicateStudentText = "a student can only appear once per session"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	validate.RegisterStructValidation(recordStructValidation, RecordAttendance{})
	core.RegisterCustomTranslation(validate, translator, duplicateStudentTag, duplicateStudentText)
}

func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}

// recordStructValidation rejects sessions listing the same student twice.
func recordStructValidation(sl validator.StructLevel) {
	ra, ok := sl.Current().Interface().(RecordAttendance)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(ra.Records))
	for _, rec := range ra.Records {
		if rec.StudentID == "" {
			continue
		}
		if seen[rec.StudentID] {
			sl.ReportError(ra.Records, "records", "Records", duplicateStudentTag, "")
			return
		}
		seen[rec.StudentID] = true
	}
}
