package course_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mahudhurio/core/course"
)

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want course.Weekday
	}{
		{time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), course.Sunday},
		{time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), course.Monday},
		{time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC), course.Tuesday},
		{time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), course.Wednesday},
		{time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), course.Thursday},
		{time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC), course.Friday},
		{time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), course.Saturday},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, tt.want, course.WeekdayOf(tt.date))
		})
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    course.Weekday
		wantErr bool
	}{
		{in: "monday", want: course.Monday},
		{in: " Saturday ", want: course.Saturday},
		{in: "SUNDAY", want: course.Sunday},
		{in: "mon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := course.ParseWeekday(tt.in)
			if tt.wantErr {
				assert.Equal(t, course.ErrInvalidWeekday, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekdays(t *testing.T) {
	days := course.Weekdays{course.Wednesday, course.Monday, course.Wednesday}.Normalize()

	assert.Equal(t, course.Weekdays{course.Monday, course.Wednesday}, days)
	assert.Equal(t, "Monday, Wednesday", days.Labels())
	assert.True(t, days.Contains(course.Monday))
	assert.False(t, days.Contains(course.Saturday))
	assert.Equal(t, []string{"monday", "wednesday"}, days.Strings())
	assert.Equal(t, days, course.WeekdaysFromStrings(days.Strings()))
}

func TestLevel(t *testing.T) {
	assert.True(t, course.LevelBeginner.IsValid())
	assert.False(t, course.Level("EXPERT").IsValid())
	assert.Equal(t, "Intermediate", course.LevelIntermediate.Label())

	lvl := course.CourseLevel{CourseName: "Swimming", Level: course.LevelBeginner}
	assert.Equal(t, "Swimming (Beginner)", lvl.DisplayName())
}
