package attendance

import (
	"time"

	"github.com/trezcool/mahudhurio/core"
)

// Status tokens
const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusExcused Status = "EXCUSED"
)

type Status string

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusExcused:
		return true
	}
	return false
}

type Attendance struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	CourseID      string    `json:"course_id"`
	CourseLevelID string    `json:"course_level_id"`
	Date          time.Time `json:"date"` // local midnight of the session day
	Status        Status    `json:"status"`
	Notes         string    `json:"notes"`
	RecordedBy    *string   `json:"recorded_by"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// Eligibility answers whether attendance may be taken for a level on a date.
// AlreadyTaken never blocks: a resubmission replaces the day's records.
type Eligibility struct {
	CanTake      bool   `json:"can_take"`
	Reason       string `json:"reason"`
	AlreadyTaken bool   `json:"already_taken"`
}

// DayWindow is the closed interval [From, To] covering one calendar day.
type DayWindow struct {
	From time.Time
	To   time.Time
}

func NewDayWindow(date time.Time, loc *time.Location) DayWindow {
	from, to := core.DayBounds(date, loc)
	return DayWindow{From: from, To: to}
}

func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

type StudentStatus struct {
	StudentID string `json:"student_id" validate:"required,notblank"`
	Status    Status `json:"status" validate:"required,attendance_status"`
	Notes     string `json:"notes" validate:"max=1000"`
}

// RecordAttendance is one taking session: the full set of statuses for a level on a day.
type RecordAttendance struct {
	CourseLevelID string          `json:"course_level_id" validate:"required,notblank"`
	Date          string          `json:"date" validate:"required,date_only"`
	Records       []StudentStatus `json:"records" validate:"required,min=1,dive"`
}

func (ra *RecordAttendance) clean() {
	ra.CourseLevelID = core.CleanString(ra.CourseLevelID)
	ra.Date = core.CleanString(ra.Date)
	for i := range ra.Records {
		ra.Records[i].StudentID = core.CleanString(ra.Records[i].StudentID)
		ra.Records[i].Status = Status(core.CleanString(string(ra.Records[i].Status)))
		ra.Records[i].Notes = core.CleanString(ra.Records[i].Notes)
	}
}

type RecordResult struct {
	Count int `json:"count"`
}

// UpdateAttendance corrects a single record. A nil Notes keeps the current notes.
type UpdateAttendance struct {
	Status Status  `json:"status" validate:"required,attendance_status"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}
