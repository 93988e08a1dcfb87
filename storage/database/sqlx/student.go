package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
)

const (
	enrollmentStudentKey = "enrollment_student_id_fkey"
	enrollmentLevelKey   = "enrollment_course_level_id_fkey"
)

type studentRow struct {
	ID            string      `db:"id"`
	FirstName     string      `db:"first_name"`
	LastName      string      `db:"last_name"`
	Email         null.String `db:"email"`
	Phone         null.String `db:"phone"`
	GuardianEmail null.String `db:"guardian_email"`
	BirthDate     null.Time   `db:"birth_date"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func newStudentRow(std student.Student) studentRow {
	return studentRow{
		ID:            std.ID,
		FirstName:     std.FirstName,
		LastName:      std.LastName,
		Email:         null.NewString(std.Email, std.Email != ""),
		Phone:         null.NewString(std.Phone, std.Phone != ""),
		GuardianEmail: null.NewString(std.GuardianEmail, std.GuardianEmail != ""),
		BirthDate:     null.TimeFromPtr(std.BirthDate),
		CreatedAt:     std.CreatedAt.UTC(),
		UpdatedAt:     std.UpdatedAt.UTC(),
	}
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:            r.ID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email.String,
		Phone:         r.Phone.String,
		GuardianEmail: r.GuardianEmail.String,
		BirthDate:     r.BirthDate.Ptr(),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type enrollmentRow struct {
	StudentID     string    `db:"student_id"`
	CourseLevelID string    `db:"course_level_id"`
	EnrolledAt    time.Time `db:"enrolled_at"`
}

func (r enrollmentRow) toEnrollment() student.Enrollment {
	return student.Enrollment{
		StudentID:     r.StudentID,
		CourseLevelID: r.CourseLevelID,
		EnrolledAt:    r.EnrolledAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	const q = `
INSERT INTO student (id, first_name, last_name, email, phone, guardian_email, birth_date, created_at, updated_at)
VALUES (:id, :first_name, :last_name, :email, :phone, :guardian_email, :birth_date, :created_at, :updated_at)`

	std.ID = uuid.New().String()
	row := newStudentRow(std)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return student.Student{}, err
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, trapNotFound(err, student.ErrNotFound)
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter) ([]student.Student, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := len(args)
			where = append(where, fmt.Sprintf("(s.first_name ILIKE $%d OR s.last_name ILIKE $%d OR s.email ILIKE $%d)", n, n, n))
		}
		if filter.CourseLevelID != "" {
			if _, err := uuid.Parse(filter.CourseLevelID); err != nil {
				return []student.Student{}, nil
			}
			args = append(args, filter.CourseLevelID)
			where = append(where, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM enrollment e WHERE e.student_id = s.id AND e.course_level_id = $%d)", len(args),
			))
		}
	}

	q := `SELECT s.* FROM student s`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY s.last_name, s.first_name"

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	const q = `
UPDATE student SET
	first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
	guardian_email = :guardian_email, birth_date = :birth_date, updated_at = :updated_at
WHERE id = :id`

	row := newStudentRow(std)
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return student.Student{}, trapNotFound(err, student.ErrNotFound)
	}
	if err = checkAffected(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return row.toStudent(), nil
}

// DeleteStudent relies on ON DELETE CASCADE for enrollments, attendance and payments.
func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return trapNotFound(err, student.ErrNotFound)
	}
	return checkAffected(res, student.ErrNotFound)
}

func (repo *studentRepository) Enroll(ctx context.Context, enr student.Enrollment) (student.Enrollment, error) {
	const q = `
INSERT INTO enrollment (student_id, course_level_id, enrolled_at)
VALUES (:student_id, :course_level_id, :enrolled_at)
ON CONFLICT (student_id, course_level_id) DO NOTHING`

	row := enrollmentRow{StudentID: enr.StudentID, CourseLevelID: enr.CourseLevelID, EnrolledAt: enr.EnrolledAt.UTC()}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		switch violatedConstraint(err) {
		case enrollmentStudentKey:
			return student.Enrollment{}, student.ErrNotFound
		case enrollmentLevelKey:
			return student.Enrollment{}, course.ErrLevelNotFound
		}
		return student.Enrollment{}, err
	}

	const sel = `SELECT * FROM enrollment WHERE student_id = $1 AND course_level_id = $2`
	if err := repo.db.GetContext(ctx, &row, sel, enr.StudentID, enr.CourseLevelID); err != nil {
		return student.Enrollment{}, err
	}
	return row.toEnrollment(), nil
}

func (repo *studentRepository) Unenroll(ctx context.Context, studentID, courseLevelID string) error {
	const q = `DELETE FROM enrollment WHERE student_id = $1 AND course_level_id = $2`
	res, err := repo.db.ExecContext(ctx, q, studentID, courseLevelID)
	if err != nil {
		return trapNotFound(err, student.ErrEnrollmentNotFound)
	}
	return checkAffected(res, student.ErrEnrollmentNotFound)
}

func (repo *studentRepository) QueryEnrollments(ctx context.Context, studentID string) ([]student.Enrollment, error) {
	var rows []enrollmentRow
	const q = `SELECT * FROM enrollment WHERE student_id = $1 ORDER BY enrolled_at`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, trapNotFound(err, student.ErrNotFound)
	}
	enrollments := make([]student.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.toEnrollment())
	}
	return enrollments, nil
}
