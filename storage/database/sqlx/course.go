package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/mahudhurio/core/course"
)

const (
	courseNameKey  = "course_name_key"
	levelKey       = "course_level_course_id_level_key"
	levelCourseKey = "course_level_course_id_fkey"

	selectLevels = `
SELECT cl.id, cl.course_id, c.name AS course_name, cl.level, cl.attendance_days, cl.created_at, cl.updated_at
FROM course_level cl JOIN course c ON c.id = cl.course_id`
)

type courseRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type levelRow struct {
	ID             string         `db:"id"`
	CourseID       string         `db:"course_id"`
	CourseName     string         `db:"course_name"`
	Level          string         `db:"level"`
	AttendanceDays pq.StringArray `db:"attendance_days"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func newLevelRow(lvl course.CourseLevel) levelRow {
	return levelRow{
		ID:             lvl.ID,
		CourseID:       lvl.CourseID,
		Level:          string(lvl.Level),
		AttendanceDays: pq.StringArray(lvl.AttendanceDays.Normalize().Strings()),
		CreatedAt:      lvl.CreatedAt.UTC(),
		UpdatedAt:      lvl.UpdatedAt.UTC(),
	}
}

func (r levelRow) toLevel() course.CourseLevel {
	return course.CourseLevel{
		ID:             r.ID,
		CourseID:       r.CourseID,
		CourseName:     r.CourseName,
		Level:          course.Level(r.Level),
		AttendanceDays: course.WeekdaysFromStrings(r.AttendanceDays),
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func trapCourseErr(err error) error {
	switch violatedConstraint(err) {
	case courseNameKey:
		return course.ErrCourseExists
	case levelKey:
		return course.ErrLevelExists
	case levelCourseKey:
		return course.ErrCourseNotFound
	}
	return err
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	const q = `
INSERT INTO course (id, name, description, created_at, updated_at)
VALUES (:id, :name, :description, :created_at, :updated_at)`

	row := courseRow{
		ID:          uuid.New().String(),
		Name:        crs.Name,
		Description: crs.Description,
		CreatedAt:   crs.CreatedAt.UTC(),
		UpdatedAt:   crs.UpdatedAt.UTC(),
	}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return course.Course{}, trapCourseErr(err)
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNotFound(err, course.ErrCourseNotFound)
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context) ([]course.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course ORDER BY name`); err != nil {
		return nil, err
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	const q = `UPDATE course SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`

	row := courseRow{
		ID:          crs.ID,
		Name:        crs.Name,
		Description: crs.Description,
		CreatedAt:   crs.CreatedAt.UTC(),
		UpdatedAt:   crs.UpdatedAt.UTC(),
	}
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return course.Course{}, trapNotFound(trapCourseErr(err), course.ErrCourseNotFound)
	}
	if err = checkAffected(res, course.ErrCourseNotFound); err != nil {
		return course.Course{}, err
	}
	return row.toCourse(), nil
}

// DeleteCourse relies on ON DELETE CASCADE for levels, enrollments, attendance and payments.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return trapNotFound(err, course.ErrCourseNotFound)
	}
	return checkAffected(res, course.ErrCourseNotFound)
}

func (repo *courseRepository) CreateLevel(ctx context.Context, lvl course.CourseLevel) (course.CourseLevel, error) {
	const q = `
INSERT INTO course_level (id, course_id, level, attendance_days, created_at, updated_at)
VALUES (:id, :course_id, :level, :attendance_days, :created_at, :updated_at)`

	lvl.ID = uuid.New().String()
	if _, err := repo.db.NamedExecContext(ctx, q, newLevelRow(lvl)); err != nil {
		return course.CourseLevel{}, trapNotFound(trapCourseErr(err), course.ErrCourseNotFound)
	}
	return repo.GetLevel(ctx, lvl.ID)
}

func (repo *courseRepository) GetLevel(ctx context.Context, id string) (course.CourseLevel, error) {
	var row levelRow
	if err := repo.db.GetContext(ctx, &row, selectLevels+` WHERE cl.id = $1`, id); err != nil {
		return course.CourseLevel{}, trapNotFound(err, course.ErrLevelNotFound)
	}
	return row.toLevel(), nil
}

func (repo *courseRepository) QueryLevels(ctx context.Context, courseID string) ([]course.CourseLevel, error) {
	var rows []levelRow
	if err := repo.db.SelectContext(ctx, &rows, selectLevels+` WHERE cl.course_id = $1 ORDER BY cl.created_at`, courseID); err != nil {
		return nil, trapNotFound(err, course.ErrCourseNotFound)
	}
	levels := make([]course.CourseLevel, 0, len(rows))
	for _, row := range rows {
		levels = append(levels, row.toLevel())
	}
	return levels, nil
}

func (repo *courseRepository) UpdateLevel(ctx context.Context, lvl course.CourseLevel) (course.CourseLevel, error) {
	const q = `
UPDATE course_level SET level = :level, attendance_days = :attendance_days, updated_at = :updated_at
WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, q, newLevelRow(lvl))
	if err != nil {
		return course.CourseLevel{}, trapNotFound(trapCourseErr(err), course.ErrLevelNotFound)
	}
	if err = checkAffected(res, course.ErrLevelNotFound); err != nil {
		return course.CourseLevel{}, err
	}
	return repo.GetLevel(ctx, lvl.ID)
}

func (repo *courseRepository) DeleteLevel(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course_level WHERE id = $1`, id)
	if err != nil {
		return trapNotFound(err, course.ErrLevelNotFound)
	}
	return checkAffected(res, course.ErrLevelNotFound)
}
