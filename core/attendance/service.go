package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
)

const reasonLevelNotFound = "course level not found"

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("attendance")
	errInvalidDate = errors.New("invalid date")
)

type (
	Repository interface {
		// ReplaceDay deletes every record of the level inside the window then inserts recs,
		// in one transaction. Returns the number of inserted records.
		ReplaceDay(ctx context.Context, courseLevelID string, window DayWindow, recs []Attendance) (int, error)
		QueryDay(ctx context.Context, courseLevelID string, window DayWindow) ([]Attendance, error)
		CountDay(ctx context.Context, courseLevelID string, window DayWindow) (int, error)
		GetAttendance(ctx context.Context, id string) (Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance) (Attendance, error)
	}

	// LevelGetter resolves course levels with their schedule.
	LevelGetter interface {
		GetLevel(ctx context.Context, id string) (course.CourseLevel, error)
	}

	Service struct {
		repo     Repository
		levels   LevelGetter
		validate *validator.Validate
		loc      *time.Location
		logger   core.Logger
	}
)

func NewService(repo Repository, levels LevelGetter, validate *validator.Validate, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		levels:   levels,
		validate: validate,
		loc:      conf.Location(),
		logger:   logger,
	}
}

// ParseDate reads a "YYYY-MM-DD" date in the organisation timezone.
func (svc *Service) ParseDate(s string) (time.Time, error) {
	date, err := core.ParseDate(s, svc.loc)
	if err != nil {
		return time.Time{}, core.NewValidationError(errInvalidDate, core.FieldError{
			Field: "date",
			Error: "date must be in the YYYY-MM-DD format",
		})
	}
	return date, nil
}

// CanTakeAttendance checks the level's schedule for the weekday of `date`.
// Only the calendar components of `date` are used. Existing records never block.
func (svc *Service) CanTakeAttendance(ctx context.Context, courseLevelID string, date time.Time) (Eligibility, error) {
	lvl, err := svc.levels.GetLevel(ctx, courseLevelID)
	if err != nil {
		if errors.Cause(err) == course.ErrLevelNotFound {
			return Eligibility{Reason: reasonLevelNotFound}, nil
		}
		return Eligibility{}, err
	}

	day := core.DateOnly(date, svc.loc)
	wd := course.WeekdayOf(day)
	if !lvl.MeetsOn(wd) {
		return Eligibility{
			Reason: fmt.Sprintf(
				"%s does not meet on %s; attendance days are %s",
				lvl.DisplayName(), wd.Label(), lvl.AttendanceDays.Labels()),
		}, nil
	}

	n, err := svc.repo.CountDay(ctx, lvl.ID, NewDayWindow(day, svc.loc))
	if err != nil {
		return Eligibility{}, err
	}
	if n > 0 {
		return Eligibility{
			CanTake:      true,
			AlreadyTaken: true,
			Reason: fmt.Sprintf(
				"attendance was already taken for %s on %s; submitting again replaces it",
				lvl.DisplayName(), day.Format(core.DateLayout)),
		}, nil
	}
	return Eligibility{CanTake: true}, nil
}

// RecordAttendance replaces the level's records for the session day with `ra.Records`.
// It does not check the level's schedule, so days outside it can be backfilled;
// call CanTakeAttendance first to enforce it. Unknown students fail the whole
// submission with student.ErrNotFound and leave the day untouched.
func (svc *Service) RecordAttendance(ctx context.Context, ra RecordAttendance, recordedBy *string) (RecordResult, error) {
	ra.clean()
	if err := svc.validate.Struct(ra); err != nil {
		return RecordResult{}, err
	}
	date, err := svc.ParseDate(ra.Date)
	if err != nil {
		return RecordResult{}, err
	}

	// the level must exist before anything gets deleted
	lvl, err := svc.levels.GetLevel(ctx, ra.CourseLevelID)
	if err != nil {
		return RecordResult{}, err
	}

	now := time.Now().UTC()
	recs := make([]Attendance, 0, len(ra.Records))
	for _, rec := range ra.Records {
		recs = append(recs, Attendance{
			StudentID:     rec.StudentID,
			CourseID:      lvl.CourseID,
			CourseLevelID: lvl.ID,
			Date:          date,
			Status:        rec.Status,
			Notes:         rec.Notes,
			RecordedBy:    recordedBy,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	n, err := svc.repo.ReplaceDay(ctx, lvl.ID, NewDayWindow(date, svc.loc), recs)
	if err != nil {
		return RecordResult{}, errors.Wrap(err, "recording attendance")
	}

	svc.logger.Info(
		fmt.Sprintf("attendance taken for %s on %s", lvl.DisplayName(), ra.Date),
		map[string]interface{}{"course_level_id": lvl.ID, "count": n},
	)
	return RecordResult{Count: n}, nil
}

// UpdateAttendance corrects one record.
func (svc *Service) UpdateAttendance(ctx context.Context, id string, ua UpdateAttendance, recordedBy *string) (Attendance, error) {
	ua.Status = Status(core.CleanString(string(ua.Status)))
	if err := svc.validate.Struct(ua); err != nil {
		return Attendance{}, err
	}

	att, err := svc.repo.GetAttendance(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	att.Status = ua.Status
	if ua.Notes != nil {
		att.Notes = core.CleanString(*ua.Notes)
	}
	if recordedBy != nil {
		att.RecordedBy = recordedBy
	}
	att.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAttendance(ctx, att)
}

// ListForDay returns the level's records for the calendar day of `date`.
func (svc *Service) ListForDay(ctx context.Context, courseLevelID string, date time.Time) ([]Attendance, error) {
	lvl, err := svc.levels.GetLevel(ctx, courseLevelID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryDay(ctx, lvl.ID, NewDayWindow(date, svc.loc))
}
