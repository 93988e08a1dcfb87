// Package boiledrepos runs the reporting queries through sqlboiler's raw query binding.
package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/payment"
)

type paymentReportRepository struct {
	exec core.DBExecutor
}

var _ payment.ReportRepository = (*paymentReportRepository)(nil) // interface compliance check

func NewPaymentReportRepository(exec core.DBExecutor) payment.ReportRepository {
	return &paymentReportRepository{exec: exec}
}

type controlRow struct {
	StudentID  string       `boil:"student_id"`
	FirstName  string       `boil:"first_name"`
	LastName   string       `boil:"last_name"`
	EnrolledAt time.Time    `boil:"enrolled_at"`
	PaymentID  null.String  `boil:"payment_id"`
	CourseID   null.String  `boil:"course_id"`
	Status     null.String  `boil:"status"`
	Amount     null.Float64 `boil:"amount"`
	Notes      null.String  `boil:"notes"`
	PaidAt     null.Time    `boil:"paid_at"`
	CreatedAt  null.Time    `boil:"created_at"`
	UpdatedAt  null.Time    `boil:"updated_at"`
}

func (r controlRow) unboil(courseLevelID string, month, year int) payment.ControlRow {
	row := payment.ControlRow{
		StudentID:  r.StudentID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		EnrolledAt: r.EnrolledAt.UTC(),
	}
	if r.PaymentID.Valid {
		pmt := payment.Payment{
			ID:            r.PaymentID.String,
			StudentID:     r.StudentID,
			CourseID:      r.CourseID.String,
			CourseLevelID: courseLevelID,
			Month:         month,
			Year:          year,
			Status:        payment.Status(r.Status.String),
			Amount:        r.Amount.Ptr(),
			Notes:         r.Notes.Ptr(),
			CreatedAt:     r.CreatedAt.Time.UTC(),
			UpdatedAt:     r.UpdatedAt.Time.UTC(),
		}
		if r.PaidAt.Valid {
			paidAt := r.PaidAt.Time.UTC()
			pmt.PaidAt = &paidAt
		}
		row.Payment = &pmt
	}
	return row
}

// ControlSheet lists every student enrolled in the level with their payment for the period, if any.
func (repo *paymentReportRepository) ControlSheet(ctx context.Context, courseLevelID string, month, year int) ([]payment.ControlRow, error) {
	const q = `
SELECT s.id AS student_id, s.first_name, s.last_name, e.enrolled_at,
	p.id AS payment_id, p.course_id, p.status, p.amount, p.notes, p.paid_at, p.created_at, p.updated_at
FROM enrollment e
JOIN student s ON s.id = e.student_id
LEFT JOIN payment p ON p.student_id = e.student_id
	AND p.course_level_id = e.course_level_id AND p.month = $2 AND p.year = $3
WHERE e.course_level_id = $1
ORDER BY s.last_name, s.first_name`

	var rows []controlRow
	if err := queries.Raw(q, courseLevelID, month, year).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying control sheet")
	}
	sheet := make([]payment.ControlRow, 0, len(rows))
	for _, r := range rows {
		sheet = append(sheet, r.unboil(courseLevelID, month, year))
	}
	return sheet, nil
}

type pendingRow struct {
	PaymentID     string       `boil:"payment_id"`
	StudentID     string       `boil:"student_id"`
	StudentName   string       `boil:"student_name"`
	Email         null.String  `boil:"email"`
	GuardianEmail null.String  `boil:"guardian_email"`
	CourseName    string       `boil:"course_name"`
	Level         string       `boil:"level"`
	Month         int          `boil:"month"`
	Year          int          `boil:"year"`
	Amount        null.Float64 `boil:"amount"`
}

// QueryPending lists PENDING payments of the period with the student and course context.
func (repo *paymentReportRepository) QueryPending(ctx context.Context, month, year int) ([]payment.Pending, error) {
	const q = `
SELECT p.id AS payment_id, s.id AS student_id, s.first_name || ' ' || s.last_name AS student_name,
	s.email, s.guardian_email, c.name AS course_name, cl.level, p.month, p.year, p.amount
FROM payment p
JOIN student s ON s.id = p.student_id
JOIN course c ON c.id = p.course_id
JOIN course_level cl ON cl.id = p.course_level_id
WHERE p.status = $1 AND p.month = $2 AND p.year = $3
ORDER BY student_name`

	var rows []pendingRow
	if err := queries.Raw(q, string(payment.StatusPending), month, year).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying pending payments")
	}
	pending := make([]payment.Pending, 0, len(rows))
	for _, r := range rows {
		pending = append(pending, payment.Pending{
			PaymentID:     r.PaymentID,
			StudentID:     r.StudentID,
			StudentName:   r.StudentName,
			Email:         r.Email.String,
			GuardianEmail: r.GuardianEmail.String,
			CourseName:    r.CourseName,
			Level:         course.Level(r.Level),
			Month:         r.Month,
			Year:          r.Year,
			Amount:        r.Amount.Ptr(),
		})
	}
	return pending, nil
}
