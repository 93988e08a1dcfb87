package student

import (
	"time"

	"github.com/trezcool/mahudhurio/core"
)

type Student struct {
	ID            string       `json:"id"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	GuardianEmail string       `json:"guardian_email"`
	BirthDate     *time.Time   `json:"birth_date"`
	CreatedAt     time.Time    `json:"created_at"` // UTC
	UpdatedAt     time.Time    `json:"updated_at"` // UTC
	Enrollments   []Enrollment `json:"enrollments,omitempty"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// ContactEmail is where notices go: the guardian first, then the student.
func (s Student) ContactEmail() string {
	if s.GuardianEmail != "" {
		return s.GuardianEmail
	}
	return s.Email
}

type Enrollment struct {
	StudentID     string    `json:"student_id"`
	CourseLevelID string    `json:"course_level_id"`
	EnrolledAt    time.Time `json:"enrolled_at"` // UTC
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName     string `json:"first_name" validate:"required,notblank,max=100"`
	LastName      string `json:"last_name" validate:"required,notblank,max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,max=30"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	BirthDate     string `json:"birth_date" validate:"omitempty,date_only"`
}

func (ns *NewStudent) clean() {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	ns.BirthDate = core.CleanString(ns.BirthDate)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their current value.
type UpdateStudent struct {
	FirstName     string `json:"first_name" validate:"max=100"`
	LastName      string `json:"last_name" validate:"max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,max=30"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	BirthDate     string `json:"birth_date" validate:"omitempty,date_only"`
}

func (us *UpdateStudent) clean(orig Student) {
	keep := func(val, orig string, lower ...bool) string {
		if v := core.CleanString(val, lower...); v != "" {
			return v
		}
		return orig
	}
	us.FirstName = keep(us.FirstName, orig.FirstName)
	us.LastName = keep(us.LastName, orig.LastName)
	us.Email = keep(us.Email, orig.Email, true /* lower */)
	us.Phone = keep(us.Phone, orig.Phone)
	us.GuardianEmail = keep(us.GuardianEmail, orig.GuardianEmail, true /* lower */)
	us.BirthDate = core.CleanString(us.BirthDate)
}

type QueryFilter struct {
	Search        string `query:"search"`
	CourseLevelID string `query:"course_level_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.CourseLevelID = core.CleanString(qf.CourseLevelID)
}

type NewEnrollment struct {
	CourseLevelID string `json:"course_level_id" validate:"required,notblank"`
}
