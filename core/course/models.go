package course

import (
	"time"

	"github.com/trezcool/mahudhurio/core"
)

// Level tokens
const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
)

var Levels = []LevelOption{
	{Name: "Beginner", Value: LevelBeginner},
	{Name: "Intermediate", Value: LevelIntermediate},
	{Name: "Advanced", Value: LevelAdvanced},
}

type Level string

func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Label is the display name, e.g. "Beginner".
func (l Level) Label() string {
	for _, opt := range Levels {
		if opt.Value == l {
			return opt.Name
		}
	}
	return string(l)
}

type LevelOption struct {
	Name  string `json:"name"`
	Value Level  `json:"value"`
}

type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// CourseLevel is one level of a course with its weekly schedule.
// AttendanceDays is never empty and holds no duplicates.
type CourseLevel struct {
	ID             string    `json:"id"`
	CourseID       string    `json:"course_id"`
	CourseName     string    `json:"course_name"` // read only
	Level          Level     `json:"level"`
	AttendanceDays Weekdays  `json:"attendance_days"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// MeetsOn reports whether the level holds a session on day d.
func (cl CourseLevel) MeetsOn(d Weekday) bool {
	return cl.AttendanceDays.Contains(d)
}

// DisplayName is "<course> (<Level>)", e.g. "Swimming (Beginner)".
func (cl CourseLevel) DisplayName() string {
	return cl.CourseName + " (" + cl.Level.Label() + ")"
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

func (nc *NewCourse) clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Blank fields keep their current value.
type UpdateCourse struct {
	Name        string  `json:"name" validate:"max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

func (uc *UpdateCourse) clean(orig Course) {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.Description != nil {
		desc := core.CleanString(*uc.Description)
		uc.Description = &desc
	} else {
		uc.Description = &orig.Description
	}
}

type NewCourseLevel struct {
	Level          Level     `json:"level" validate:"required,level"`
	AttendanceDays []Weekday `json:"attendance_days" validate:"required,weekdays"`
}

func (nl *NewCourseLevel) clean() {
	nl.Level = Level(core.CleanString(string(nl.Level)))
	nl.AttendanceDays = cleanWeekdays(nl.AttendanceDays)
}

// UpdateCourseLevel defines what may change on a CourseLevel.
// A nil AttendanceDays keeps the schedule; an empty one is rejected.
type UpdateCourseLevel struct {
	Level          Level     `json:"level" validate:"omitempty,level"`
	AttendanceDays []Weekday `json:"attendance_days" validate:"omitempty,weekdays"`
}

func (ul *UpdateCourseLevel) clean(orig CourseLevel) {
	if lvl := Level(core.CleanString(string(ul.Level))); lvl != "" {
		ul.Level = lvl
	} else {
		ul.Level = orig.Level
	}
	if ul.AttendanceDays != nil {
		ul.AttendanceDays = cleanWeekdays(ul.AttendanceDays)
	} else {
		ul.AttendanceDays = orig.AttendanceDays
	}
}

func cleanWeekdays(days []Weekday) []Weekday {
	if days == nil {
		return nil
	}
	cleaned := make([]Weekday, 0, len(days))
	for _, d := range days {
		cleaned = append(cleaned, Weekday(core.CleanString(string(d), true /* lower */)))
	}
	return cleaned
}
