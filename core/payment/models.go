package payment

import (
	"strconv"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
)

// Status tokens
const (
	StatusPaid    Status = "PAID"
	StatusPending Status = "PENDING"
	StatusExcused Status = "EXCUSED"
)

type Status string

func (s Status) IsValid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusExcused:
		return true
	}
	return false
}

// Payment is unique per (StudentID, CourseLevelID, Month, Year).
// PaidAt is set iff Status is PAID.
type Payment struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"student_id"`
	CourseID      string     `json:"course_id"`
	CourseLevelID string     `json:"course_level_id"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	Status        Status     `json:"status"`
	Amount        *float64   `json:"amount"`
	Notes         *string    `json:"notes"`
	PaidAt        *time.Time `json:"paid_at"` // UTC
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UpsertPayment creates or overwrites the payment of a student for a month.
type UpsertPayment struct {
	StudentID     string   `json:"student_id" validate:"required,notblank"`
	CourseID      string   `json:"course_id" validate:"required,notblank"`
	CourseLevelID string   `json:"course_level_id" validate:"required,notblank"`
	Month         int      `json:"month" validate:"month"`
	Year          int      `json:"year" validate:"required"`
	Status        Status   `json:"status" validate:"required,payment_status"`
	Amount        *float64 `json:"amount" validate:"omitempty,gte=0"`
	Notes         *string  `json:"notes" validate:"omitempty,max=1000"`
}

func (up *UpsertPayment) clean() {
	up.StudentID = core.CleanString(up.StudentID)
	up.CourseID = core.CleanString(up.CourseID)
	up.CourseLevelID = core.CleanString(up.CourseLevelID)
	up.Status = Status(core.CleanString(string(up.Status)))
	if up.Notes != nil {
		notes := core.CleanString(*up.Notes)
		up.Notes = &notes
	}
}

type BatchEntry struct {
	StudentID string   `json:"student_id"`
	Status    Status   `json:"status"`
	Amount    *float64 `json:"amount"`
	Notes     *string  `json:"notes"`
}

// UpsertBatch records one month of payments for several students of a level.
type UpsertBatch struct {
	CourseLevelID string       `json:"course_level_id" validate:"required,notblank"`
	Month         int          `json:"month" validate:"month"`
	Year          int          `json:"year" validate:"required"`
	Entries       []BatchEntry `json:"entries" validate:"required,min=1"`
}

type BatchFailure struct {
	StudentID string `json:"student_id"`
	Error     string `json:"error"`
}

// BatchResult lists the written payments and the entries that failed.
// Entries are independent: a failure never undoes the others.
type BatchResult struct {
	Payments []Payment      `json:"payments"`
	Failures []BatchFailure `json:"failures"`
}

type Period struct {
	Month int `json:"month" query:"month" validate:"month"`
	Year  int `json:"year" query:"year" validate:"required"`
}

func (p Period) String() string {
	return time.Month(p.Month).String() + " " + strconv.Itoa(p.Year)
}

// ControlRow is one line of a level's monthly control sheet.
// Payment is nil when nothing was recorded for the month yet.
type ControlRow struct {
	StudentID  string    `json:"student_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Payment    *Payment  `json:"payment"`
}

// Pending is a PENDING payment with what is needed to remind the family.
type Pending struct {
	PaymentID     string       `json:"payment_id"`
	StudentID     string       `json:"student_id"`
	StudentName   string       `json:"student_name"`
	Email         string       `json:"email"`
	GuardianEmail string       `json:"guardian_email"`
	CourseName    string       `json:"course_name"`
	Level         course.Level `json:"level"`
	Month         int          `json:"month"`
	Year          int          `json:"year"`
	Amount        *float64     `json:"amount"`
}

func (p Pending) ContactEmail() string {
	if p.GuardianEmail != "" {
		return p.GuardianEmail
	}
	return p.Email
}
