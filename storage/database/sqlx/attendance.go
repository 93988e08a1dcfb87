package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

const attendanceStudentKey = "attendance_student_id_fkey"

type attendanceRow struct {
	ID            string      `db:"id"`
	StudentID     string      `db:"student_id"`
	CourseID      string      `db:"course_id"`
	CourseLevelID string      `db:"course_level_id"`
	Date          time.Time   `db:"date"`
	Status        string      `db:"status"`
	Notes         string      `db:"notes"`
	RecordedBy    null.String `db:"recorded_by"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func newAttendanceRow(att attendance.Attendance) attendanceRow {
	return attendanceRow{
		ID:            att.ID,
		StudentID:     att.StudentID,
		CourseID:      att.CourseID,
		CourseLevelID: att.CourseLevelID,
		Date:          att.Date,
		Status:        string(att.Status),
		Notes:         att.Notes,
		RecordedBy:    null.StringFromPtr(att.RecordedBy),
		CreatedAt:     att.CreatedAt.UTC(),
		UpdatedAt:     att.UpdatedAt.UTC(),
	}
}

// toAttendance keeps the stored instant; callers wanting local dates convert with their location.
func (r attendanceRow) toAttendance() attendance.Attendance {
	return attendance.Attendance{
		ID:            r.ID,
		StudentID:     r.StudentID,
		CourseID:      r.CourseID,
		CourseLevelID: r.CourseLevelID,
		Date:          r.Date,
		Status:        attendance.Status(r.Status),
		Notes:         r.Notes,
		RecordedBy:    r.RecordedBy.Ptr(),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// ReplaceDay deletes the day's records and inserts recs in one transaction.
func (repo *attendanceRepository) ReplaceDay(
	ctx context.Context,
	courseLevelID string,
	window attendance.DayWindow,
	recs []attendance.Attendance,
) (int, error) {
	const (
		del = `DELETE FROM attendance WHERE course_level_id = $1 AND date BETWEEN $2 AND $3`
		ins = `
INSERT INTO attendance (id, student_id, course_id, course_level_id, date, status, notes, recorded_by, created_at, updated_at)
VALUES (:id, :student_id, :course_id, :course_level_id, :date, :status, :notes, :recorded_by, :created_at, :updated_at)`
	)

	rows := make([]attendanceRow, 0, len(recs))
	for _, att := range recs {
		att.ID = uuid.New().String()
		rows = append(rows, newAttendanceRow(att))
	}

	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, del, courseLevelID, window.From, window.To); err != nil {
			return errors.Wrap(err, "deleting day records")
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NamedExecContext(ctx, ins, rows); err != nil {
			if violatedConstraint(err) == attendanceStudentKey {
				return student.ErrNotFound
			}
			return errors.Wrap(trapNotFound(err, student.ErrNotFound), "inserting day records")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (repo *attendanceRepository) QueryDay(ctx context.Context, courseLevelID string, window attendance.DayWindow) ([]attendance.Attendance, error) {
	const q = `
SELECT * FROM attendance
WHERE course_level_id = $1 AND date BETWEEN $2 AND $3
ORDER BY student_id`

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, courseLevelID, window.From, window.To); err != nil {
		return nil, trapNotFound(err, attendance.ErrNotFound)
	}
	recs := make([]attendance.Attendance, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toAttendance())
	}
	return recs, nil
}

func (repo *attendanceRepository) CountDay(ctx context.Context, courseLevelID string, window attendance.DayWindow) (int, error) {
	const q = `SELECT COUNT(*) FROM attendance WHERE course_level_id = $1 AND date BETWEEN $2 AND $3`

	var n int
	if err := repo.db.GetContext(ctx, &n, q, courseLevelID, window.From, window.To); err != nil {
		if trapNotFound(err, attendance.ErrNotFound) == attendance.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, id string) (attendance.Attendance, error) {
	var row attendanceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM attendance WHERE id = $1`, id); err != nil {
		return attendance.Attendance{}, trapNotFound(err, attendance.ErrNotFound)
	}
	return row.toAttendance(), nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	const q = `
UPDATE attendance SET status = :status, notes = :notes, recorded_by = :recorded_by, updated_at = :updated_at
WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, q, newAttendanceRow(att))
	if err != nil {
		return attendance.Attendance{}, trapNotFound(err, attendance.ErrNotFound)
	}
	if err = checkAffected(res, attendance.ErrNotFound); err != nil {
		return attendance.Attendance{}, err
	}
	return att, nil
}
