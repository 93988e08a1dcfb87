package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/payment"
	"github.com/trezcool/mahudhurio/core/staff"
	"github.com/trezcool/mahudhurio/core/student"
	boiledrepos "github.com/trezcool/mahudhurio/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/mahudhurio/storage/database/sqlx"
	"github.com/trezcool/mahudhurio/testutil"
)

func TestCourseRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := sqlxrepos.NewCourseRepository(db)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, repo, "Swimming")
	_, err := repo.CreateCourse(ctx, course.Course{Name: "Swimming", CreatedAt: time.Now(), UpdatedAt: time.Now()})
	assert.Equal(t, course.ErrCourseExists, err)

	lvl := testutil.CreateLevel(t, repo, crs.ID, course.LevelBeginner, course.Wednesday, course.Monday, course.Monday)
	assert.Equal(t, "Swimming", lvl.CourseName)
	assert.Equal(t, course.Weekdays{course.Monday, course.Wednesday}, lvl.AttendanceDays)

	_, err = repo.CreateLevel(ctx, course.CourseLevel{CourseID: crs.ID, Level: course.LevelBeginner, AttendanceDays: course.Weekdays{course.Friday}})
	assert.Equal(t, course.ErrLevelExists, err)

	_, err = repo.GetLevel(ctx, "not-a-uuid")
	assert.Equal(t, course.ErrLevelNotFound, err)

	require.NoError(t, repo.DeleteCourse(ctx, crs.ID))
	_, err = repo.GetLevel(ctx, lvl.ID)
	assert.Equal(t, course.ErrLevelNotFound, err)
	assert.Equal(t, course.ErrCourseNotFound, repo.DeleteCourse(ctx, crs.ID))
}

func TestAttendanceRepository_ReplaceDay(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	courseRepo := sqlxrepos.NewCourseRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)
	repo := sqlxrepos.NewAttendanceRepository(db)

	crs := testutil.CreateCourse(t, courseRepo, "Judo")
	lvl := testutil.CreateLevel(t, courseRepo, crs.ID, course.LevelIntermediate, course.Tuesday)
	amani := testutil.CreateStudent(t, studentRepo, "Amani", "Kito", "")
	baraka := testutil.CreateStudent(t, studentRepo, "Baraka", "Kito", "")

	tuesday := testutil.Date(2024, time.March, 12)
	window := attendance.NewDayWindow(tuesday, time.UTC)
	rec := func(studentID string, status attendance.Status) attendance.Attendance {
		now := time.Now().UTC()
		return attendance.Attendance{
			StudentID: studentID, CourseID: crs.ID, CourseLevelID: lvl.ID,
			Date: tuesday, Status: status, CreatedAt: now, UpdatedAt: now,
		}
	}

	n, err := repo.ReplaceDay(ctx, lvl.ID, window, []attendance.Attendance{
		rec(amani.ID, attendance.StatusPresent),
		rec(baraka.ID, attendance.StatusAbsent),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.ReplaceDay(ctx, lvl.ID, window, []attendance.Attendance{rec(amani.ID, attendance.StatusExcused)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs, err := repo.QueryDay(ctx, lvl.ID, window)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, attendance.StatusExcused, recs[0].Status)

	// an unknown student fails the insert after the delete and rolls the whole day back
	for _, ghost := range []string{"00000000-0000-0000-0000-000000000000", "ghost"} {
		_, err = repo.ReplaceDay(ctx, lvl.ID, window, []attendance.Attendance{
			rec(baraka.ID, attendance.StatusPresent),
			rec(ghost, attendance.StatusPresent),
		})
		assert.Equal(t, student.ErrNotFound, errors.Cause(err), ghost)

		recs, err = repo.QueryDay(ctx, lvl.ID, window)
		require.NoError(t, err)
		require.Len(t, recs, 1, ghost)
		assert.Equal(t, amani.ID, recs[0].StudentID)
		assert.Equal(t, attendance.StatusExcused, recs[0].Status)
	}
}

func TestPaymentRepositories(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	courseRepo := sqlxrepos.NewCourseRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)
	repo := sqlxrepos.NewPaymentRepository(db)
	reports := boiledrepos.NewPaymentReportRepository(db)

	crs := testutil.CreateCourse(t, courseRepo, "Tennis")
	lvl := testutil.CreateLevel(t, courseRepo, crs.ID, course.LevelAdvanced, course.Saturday)
	amani := testutil.CreateStudent(t, studentRepo, "Amani", "Kito", "parent@test.cd")
	baraka := testutil.CreateStudent(t, studentRepo, "Baraka", "Juma", "")
	testutil.Enroll(t, studentRepo, amani.ID, lvl.ID)
	testutil.Enroll(t, studentRepo, baraka.ID, lvl.ID)

	now := time.Now().UTC()
	amount := 25.5
	first, err := repo.UpsertPayment(ctx, payment.Payment{
		StudentID: amani.ID, CourseID: crs.ID, CourseLevelID: lvl.ID, Month: 7, Year: 2024,
		Status: payment.StatusPending, Amount: &amount, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	second, err := repo.UpsertPayment(ctx, payment.Payment{
		StudentID: amani.ID, CourseID: crs.ID, CourseLevelID: lvl.ID, Month: 7, Year: 2024,
		Status: payment.StatusPending, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, second.Amount)

	sheet, err := reports.ControlSheet(ctx, lvl.ID, 7, 2024)
	require.NoError(t, err)
	require.Len(t, sheet, 2)
	assert.Equal(t, "Baraka", sheet[0].FirstName)
	assert.Nil(t, sheet[0].Payment)
	require.NotNil(t, sheet[1].Payment)
	assert.Equal(t, first.ID, sheet[1].Payment.ID)

	pending, err := reports.QueryPending(ctx, 7, 2024)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Amani Kito", pending[0].StudentName)
	assert.Equal(t, "parent@test.cd", pending[0].ContactEmail())
	assert.Equal(t, course.LevelAdvanced, pending[0].Level)
}

func TestStudentRepository_Enroll(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	courseRepo := sqlxrepos.NewCourseRepository(db)
	repo := sqlxrepos.NewStudentRepository(db)

	crs := testutil.CreateCourse(t, courseRepo, "Chess")
	lvl := testutil.CreateLevel(t, courseRepo, crs.ID, course.LevelBeginner, course.Sunday)
	std := testutil.CreateStudent(t, repo, "Amani", "Kito", "")

	first := testutil.Enroll(t, repo, std.ID, lvl.ID)
	again := testutil.Enroll(t, repo, std.ID, lvl.ID)
	assert.True(t, first.EnrolledAt.Equal(again.EnrolledAt))

	enrolled, err := repo.QueryStudents(ctx, &student.QueryFilter{CourseLevelID: lvl.ID})
	require.NoError(t, err)
	assert.Len(t, enrolled, 1)

	require.NoError(t, repo.DeleteStudent(ctx, std.ID))
	assert.Equal(t, student.ErrEnrollmentNotFound, repo.Unenroll(ctx, std.ID, lvl.ID))
}

func TestStaffRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := sqlxrepos.NewStaffRepository(db)

	kito := testutil.CreateUser(t, repo, "Coach Kito", "kito", "", "Tr4ck&Field!", []string{staff.RoleCoach}, true)
	testutil.CreateUser(t, repo, "Admin Juma", "", "juma@test.cd", "Tr4ck&Field!", []string{staff.RoleAdmin}, true)

	assert.Equal(t, staff.ErrUsernameExists, repo.CheckUniqueness(ctx, "kito", ""))
	assert.NoError(t, repo.CheckUniqueness(ctx, "kito", "", kito.ID))
	assert.Equal(t, staff.ErrEmailExists, repo.CheckUniqueness(ctx, "", "juma@test.cd"))

	admins, err := repo.QueryUsers(ctx, &staff.QueryFilter{Role: "admin"})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "juma@test.cd", admins[0].Email)

	usr, err := repo.GetUser(ctx, staff.GetFilter{UsernameOrEmail: "kito"})
	require.NoError(t, err)
	assert.Equal(t, kito.ID, usr.ID)
	assert.NoError(t, usr.CheckPassword("Tr4ck&Field!"))

	_, err = repo.GetUser(ctx, staff.GetFilter{ID: "nope"})
	assert.Equal(t, staff.ErrNotFound, err)
}
