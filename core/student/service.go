package student

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("student")
	ErrEnrollmentNotFound = core.NewNotFoundError("enrollment")
	errInvalidBirthDate   = errors.New("invalid birth date")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		// QueryStudents applies AND on the filter fields.
		// QueryFilter.Search does a case-insensitive match on first name, last name or email.
		QueryStudents(ctx context.Context, filter *QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudent also removes the student's enrollments, attendance and payments.
		DeleteStudent(ctx context.Context, id string) error

		// Enroll is a no-op when the enrollment already exists.
		Enroll(ctx context.Context, enr Enrollment) (Enrollment, error)
		Unenroll(ctx context.Context, studentID, courseLevelID string) error
		QueryEnrollments(ctx context.Context, studentID string) ([]Enrollment, error)
	}

	// LevelGetter resolves course levels.
	LevelGetter interface {
		GetLevel(ctx context.Context, id string) (course.CourseLevel, error)
	}

	Service struct {
		repo     Repository
		levels   LevelGetter
		validate *validator.Validate
	}
)

func NewService(repo Repository, levels LevelGetter, validate *validator.Validate) *Service {
	return &Service{repo: repo, levels: levels, validate: validate}
}

func parseBirthDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	bd, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return nil, core.NewValidationError(errInvalidBirthDate, core.FieldError{Field: "birth_date", Error: err.Error()})
	}
	return &bd, nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Student{}, err
	}
	bd, err := parseBirthDate(ns.BirthDate)
	if err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateStudent(ctx, Student{
		FirstName:     ns.FirstName,
		LastName:      ns.LastName,
		Email:         ns.Email,
		Phone:         ns.Phone,
		GuardianEmail: ns.GuardianEmail,
		BirthDate:     bd,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// Get returns the student with its enrollments.
func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	std, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if std.Enrollments, err = svc.repo.QueryEnrollments(ctx, id); err != nil {
		return Student{}, err
	}
	return std, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Student, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryStudents(ctx, filter)
}

// ListEnrolled returns the students enrolled in a course level.
func (svc *Service) ListEnrolled(ctx context.Context, courseLevelID string) ([]Student, error) {
	if _, err := svc.levels.GetLevel(ctx, courseLevelID); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudents(ctx, &QueryFilter{CourseLevelID: courseLevelID})
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	us.clean(std)
	if err = svc.validate.Struct(us); err != nil {
		return Student{}, err
	}

	if us.BirthDate != "" {
		if std.BirthDate, err = parseBirthDate(us.BirthDate); err != nil {
			return Student{}, err
		}
	}
	std.FirstName = us.FirstName
	std.LastName = us.LastName
	std.Email = us.Email
	std.Phone = us.Phone
	std.GuardianEmail = us.GuardianEmail
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// Enroll adds the student to a course level; enrolling twice keeps the first enrollment.
func (svc *Service) Enroll(ctx context.Context, studentID string, ne NewEnrollment) (Enrollment, error) {
	ne.CourseLevelID = core.CleanString(ne.CourseLevelID)
	if err := svc.validate.Struct(ne); err != nil {
		return Enrollment{}, err
	}
	if _, err := svc.repo.GetStudent(ctx, studentID); err != nil {
		return Enrollment{}, err
	}
	if _, err := svc.levels.GetLevel(ctx, ne.CourseLevelID); err != nil {
		return Enrollment{}, err
	}
	return svc.repo.Enroll(ctx, Enrollment{
		StudentID:     studentID,
		CourseLevelID: ne.CourseLevelID,
		EnrolledAt:    time.Now().UTC(),
	})
}

func (svc *Service) Unenroll(ctx context.Context, studentID, courseLevelID string) error {
	return svc.repo.Unenroll(ctx, studentID, courseLevelID)
}
