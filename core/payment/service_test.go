package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/payment"
	"github.com/trezcool/mahudhurio/core/student"
	appfs "github.com/trezcool/mahudhurio/fs"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	"github.com/trezcool/mahudhurio/storage/database/dummy"
	"github.com/trezcool/mahudhurio/testutil"
)

type fixture struct {
	svc      *payment.Service
	mailSvc  *emailsvc.ConsoleServiceMock
	lvl      course.CourseLevel
	students []student.Student
}

func setup(t *testing.T) fixture {
	db, err := dummydb.Open()
	require.NoError(t, err)
	courseRepo := dummydb.NewCourseRepository(db)
	studentRepo := dummydb.NewStudentRepository(db)

	crs := testutil.CreateCourse(t, courseRepo, "Swimming")
	lvl := testutil.CreateLevel(t, courseRepo, crs.ID, course.LevelBeginner, course.Monday, course.Wednesday)
	students := []student.Student{
		testutil.CreateStudent(t, studentRepo, "Amani", "Baraka", "parent@test.cd"),
		testutil.CreateStudent(t, studentRepo, "Neema", "Juma", ""),
	}
	for _, std := range students {
		testutil.Enroll(t, studentRepo, std.ID, lvl.ID)
	}

	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	core.ParseEmailTemplates(appfs.FS, conf, logger)
	validate, _ := testutil.NewValidator()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	svc := payment.NewService(
		dummydb.NewPaymentRepository(db),
		dummydb.NewPaymentReportRepository(db),
		courseRepo,
		mailSvc,
		validate,
		conf,
		logger,
	)
	return fixture{svc: svc, mailSvc: mailSvc, lvl: lvl, students: students}
}

func mockNow(t *testing.T, now time.Time) {
	orig := payment.NowFunc
	payment.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { payment.NowFunc = orig })
}

func fPtr(f float64) *float64 { return &f }

func TestService_UpsertPayment_paidThenPending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	paidAt := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	mockNow(t, paidAt)

	up := payment.UpsertPayment{
		StudentID:     f.students[0].ID,
		CourseID:      f.lvl.CourseID,
		CourseLevelID: f.lvl.ID,
		Month:         5,
		Year:          2024,
		Status:        payment.StatusPaid,
		Amount:        fPtr(50),
	}
	paid, err := f.svc.UpsertPayment(ctx, up)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(paidAt))

	mockNow(t, paidAt.Add(24*time.Hour))
	up.Status = payment.StatusPending
	pending, err := f.svc.UpsertPayment(ctx, up)
	require.NoError(t, err)
	assert.Equal(t, paid.ID, pending.ID)
	assert.Nil(t, pending.PaidAt)
	assert.Equal(t, payment.StatusPending, pending.Status)
	assert.True(t, pending.CreatedAt.Equal(paid.CreatedAt))

	rows, err := f.svc.ControlSheet(ctx, f.lvl.ID, payment.Period{Month: 5, Year: 2024})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	var recorded int
	for _, row := range rows {
		if row.Payment != nil {
			recorded++
			assert.Equal(t, paid.ID, row.Payment.ID)
		}
	}
	assert.Equal(t, 1, recorded)
}

func TestService_UpsertPayment_validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	valid := func() payment.UpsertPayment {
		return payment.UpsertPayment{
			StudentID:     f.students[0].ID,
			CourseID:      f.lvl.CourseID,
			CourseLevelID: f.lvl.ID,
			Month:         5,
			Year:          2024,
			Status:        payment.StatusPaid,
		}
	}

	tests := []struct {
		name      string
		mutate    func(up *payment.UpsertPayment)
		wantField string // core.ValidationError field; empty means validator.ValidationErrors
	}{
		{name: "month 0", mutate: func(up *payment.UpsertPayment) { up.Month = 0 }},
		{name: "month 13", mutate: func(up *payment.UpsertPayment) { up.Month = 13 }},
		{name: "bad status", mutate: func(up *payment.UpsertPayment) { up.Status = "OWED" }},
		{name: "negative amount", mutate: func(up *payment.UpsertPayment) { up.Amount = fPtr(-1) }},
		{name: "year 1999", mutate: func(up *payment.UpsertPayment) { up.Year = 1999 }, wantField: "year"},
		{name: "year 2101", mutate: func(up *payment.UpsertPayment) { up.Year = 2101 }, wantField: "year"},
		{name: "course mismatch", mutate: func(up *payment.UpsertPayment) { up.CourseID = "other" }, wantField: "course_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := valid()
			tt.mutate(&up)
			_, err := f.svc.UpsertPayment(ctx, up)
			if tt.wantField == "" {
				assert.IsType(t, validator.ValidationErrors{}, err)
				return
			}
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}

	t.Run("unknown level", func(t *testing.T) {
		up := valid()
		up.CourseLevelID = "nope"
		_, err := f.svc.UpsertPayment(ctx, up)
		assert.Equal(t, course.ErrLevelNotFound, errors.Cause(err))
	})

	t.Run("unknown student", func(t *testing.T) {
		up := valid()
		up.StudentID = "ghost"
		_, err := f.svc.UpsertPayment(ctx, up)
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
		assert.True(t, core.IsNotFound(err))
	})

	rows, err := f.svc.ControlSheet(ctx, f.lvl.ID, payment.Period{Month: 5, Year: 2024})
	require.NoError(t, err)
	for _, row := range rows {
		assert.Nil(t, row.Payment)
	}
}

func TestService_UpsertBatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.UpsertBatch(ctx, payment.UpsertBatch{
		CourseLevelID: f.lvl.ID,
		Month:         6,
		Year:          2024,
		Entries: []payment.BatchEntry{
			{StudentID: f.students[0].ID, Status: payment.StatusPaid, Amount: fPtr(40)},
			{StudentID: f.students[1].ID, Status: "OWED"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Payments, 1)
	assert.Equal(t, f.students[0].ID, res.Payments[0].StudentID)
	assert.Equal(t, f.lvl.CourseID, res.Payments[0].CourseID)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, f.students[1].ID, res.Failures[0].StudentID)

	res, err = f.svc.UpsertBatch(ctx, payment.UpsertBatch{CourseLevelID: f.lvl.ID, Month: 7, Year: 2024,
		Entries: []payment.BatchEntry{{StudentID: "ghost", Status: payment.StatusPaid}}})
	require.NoError(t, err)
	assert.Empty(t, res.Payments)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "ghost", res.Failures[0].StudentID)

	_, err = f.svc.UpsertBatch(ctx, payment.UpsertBatch{CourseLevelID: f.lvl.ID, Month: 13, Year: 2024,
		Entries: []payment.BatchEntry{{StudentID: f.students[0].ID, Status: payment.StatusPaid}}})
	assert.IsType(t, validator.ValidationErrors{}, err)

	_, err = f.svc.UpsertBatch(ctx, payment.UpsertBatch{CourseLevelID: "nope", Month: 6, Year: 2024,
		Entries: []payment.BatchEntry{{StudentID: f.students[0].ID, Status: payment.StatusPaid}}})
	assert.True(t, core.IsNotFound(err))
}

func TestService_RemindPending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, std := range f.students {
		_, err := f.svc.UpsertPayment(ctx, payment.UpsertPayment{
			StudentID:     std.ID,
			CourseID:      f.lvl.CourseID,
			CourseLevelID: f.lvl.ID,
			Month:         7,
			Year:          2024,
			Status:        payment.StatusPending,
		})
		require.NoError(t, err)
	}

	pending, err := f.svc.ListPending(ctx, payment.Period{Month: 7, Year: 2024})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// only the student with a contact address gets a reminder
	sent, err := f.svc.RemindPending(ctx, payment.Period{Month: 7, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	msgs := f.mailSvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "parent@test.cd", msgs[0].To[0].Address)
	assert.Equal(t, "Pending payment for July 2024", msgs[0].Subject)

	_, err = f.svc.ListPending(ctx, payment.Period{Month: 0, Year: 2024})
	assert.IsType(t, validator.ValidationErrors{}, err)
}
