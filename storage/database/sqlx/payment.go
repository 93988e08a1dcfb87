package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/payment"
	"github.com/trezcool/mahudhurio/core/student"
)

const (
	paymentStudentKey = "payment_student_id_fkey"
	paymentCourseKey  = "payment_course_id_fkey"
	paymentLevelKey   = "payment_course_level_id_fkey"
)

type paymentRow struct {
	ID            string       `db:"id"`
	StudentID     string       `db:"student_id"`
	CourseID      string       `db:"course_id"`
	CourseLevelID string       `db:"course_level_id"`
	Month         int          `db:"month"`
	Year          int          `db:"year"`
	Status        string       `db:"status"`
	Amount        null.Float64 `db:"amount"`
	Notes         null.String  `db:"notes"`
	PaidAt        null.Time    `db:"paid_at"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

func (r paymentRow) toPayment() payment.Payment {
	pmt := payment.Payment{
		ID:            r.ID,
		StudentID:     r.StudentID,
		CourseID:      r.CourseID,
		CourseLevelID: r.CourseLevelID,
		Month:         r.Month,
		Year:          r.Year,
		Status:        payment.Status(r.Status),
		Amount:        r.Amount.Ptr(),
		Notes:         r.Notes.Ptr(),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.PaidAt.Valid {
		paidAt := r.PaidAt.Time.UTC()
		pmt.PaidAt = &paidAt
	}
	return pmt
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) payment.Repository {
	return &paymentRepository{db: db}
}

// UpsertPayment relies on the (student, level, month, year) unique constraint: a second write
// for the same period overwrites the first and keeps its id and created_at.
func (repo *paymentRepository) UpsertPayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	const q = `
INSERT INTO payment (id, student_id, course_id, course_level_id, month, year, status, amount, notes, paid_at, created_at, updated_at)
VALUES (:id, :student_id, :course_id, :course_level_id, :month, :year, :status, :amount, :notes, :paid_at, :created_at, :updated_at)
ON CONFLICT ON CONSTRAINT payment_student_level_period_key DO UPDATE SET
	course_id = EXCLUDED.course_id,
	status = EXCLUDED.status,
	amount = EXCLUDED.amount,
	notes = EXCLUDED.notes,
	paid_at = EXCLUDED.paid_at,
	updated_at = EXCLUDED.updated_at
RETURNING *`

	arg := paymentRow{
		ID:            uuid.New().String(),
		StudentID:     pmt.StudentID,
		CourseID:      pmt.CourseID,
		CourseLevelID: pmt.CourseLevelID,
		Month:         pmt.Month,
		Year:          pmt.Year,
		Status:        string(pmt.Status),
		Amount:        null.Float64FromPtr(pmt.Amount),
		Notes:         null.StringFromPtr(pmt.Notes),
		PaidAt:        null.TimeFromPtr(pmt.PaidAt),
		CreatedAt:     pmt.CreatedAt.UTC(),
		UpdatedAt:     pmt.UpdatedAt.UTC(),
	}

	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return payment.Payment{}, err
	}
	defer func() { _ = stmt.Close() }()

	var row paymentRow
	if err = stmt.GetContext(ctx, &row, arg); err != nil {
		switch violatedConstraint(err) {
		case paymentStudentKey:
			return payment.Payment{}, student.ErrNotFound
		case paymentCourseKey:
			return payment.Payment{}, course.ErrCourseNotFound
		case paymentLevelKey:
			return payment.Payment{}, course.ErrLevelNotFound
		}
		return payment.Payment{}, err
	}
	return row.toPayment(), nil
}

func (repo *paymentRepository) GetPayment(ctx context.Context, id string) (payment.Payment, error) {
	var row paymentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM payment WHERE id = $1`, id); err != nil {
		return payment.Payment{}, trapNotFound(err, payment.ErrNotFound)
	}
	return row.toPayment(), nil
}
