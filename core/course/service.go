package course

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

var (
	// errors
	ErrCourseNotFound = core.NewNotFoundError("course")
	ErrLevelNotFound  = core.NewNotFoundError("course level")
	ErrCourseExists   = errors.New("a course with this name already exists")
	ErrLevelExists    = errors.New("this course already has this level")
	ErrInvalidWeekday = errors.New("invalid weekday")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		CreateLevel(ctx context.Context, lvl CourseLevel) (CourseLevel, error)
		// GetLevel fills CourseLevel.CourseName.
		GetLevel(ctx context.Context, id string) (CourseLevel, error)
		QueryLevels(ctx context.Context, courseID string) ([]CourseLevel, error)
		UpdateLevel(ctx context.Context, lvl CourseLevel) (CourseLevel, error)
		DeleteLevel(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// trapUniqueErr turns repository uniqueness errors into validation errors.
func trapUniqueErr(err error) error {
	switch err {
	case ErrCourseExists:
		return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
	case ErrLevelExists:
		return core.NewValidationError(err, core.FieldError{Field: "level", Error: err.Error()})
	}
	return err
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	nc.clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Course{}, err
	}

	now := time.Now().UTC()
	crs, err := svc.repo.CreateCourse(ctx, Course{
		Name:        nc.Name,
		Description: nc.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return crs, trapUniqueErr(err)
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	uc.clean(crs)
	if err = svc.validate.Struct(uc); err != nil {
		return Course{}, err
	}

	crs.Name = uc.Name
	crs.Description = *uc.Description
	crs.UpdatedAt = time.Now().UTC()
	crs, err = svc.repo.UpdateCourse(ctx, crs)
	return crs, trapUniqueErr(err)
}

// Delete removes the course with its levels and everything recorded against them.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) CreateLevel(ctx context.Context, courseID string, nl NewCourseLevel) (CourseLevel, error) {
	crs, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return CourseLevel{}, err
	}
	nl.clean()
	if err = svc.validate.Struct(nl); err != nil {
		return CourseLevel{}, err
	}

	now := time.Now().UTC()
	lvl, err := svc.repo.CreateLevel(ctx, CourseLevel{
		CourseID:       crs.ID,
		CourseName:     crs.Name,
		Level:          nl.Level,
		AttendanceDays: Weekdays(nl.AttendanceDays).Normalize(),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	return lvl, trapUniqueErr(err)
}

func (svc *Service) GetLevel(ctx context.Context, id string) (CourseLevel, error) {
	return svc.repo.GetLevel(ctx, id)
}

func (svc *Service) QueryLevels(ctx context.Context, courseID string) ([]CourseLevel, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryLevels(ctx, courseID)
}

func (svc *Service) UpdateLevel(ctx context.Context, id string, ul UpdateCourseLevel) (CourseLevel, error) {
	lvl, err := svc.repo.GetLevel(ctx, id)
	if err != nil {
		return CourseLevel{}, err
	}
	ul.clean(lvl)
	if err = svc.validate.Struct(ul); err != nil {
		return CourseLevel{}, err
	}

	lvl.Level = ul.Level
	lvl.AttendanceDays = Weekdays(ul.AttendanceDays).Normalize()
	lvl.UpdatedAt = time.Now().UTC()
	lvl, err = svc.repo.UpdateLevel(ctx, lvl)
	return lvl, trapUniqueErr(err)
}

func (svc *Service) DeleteLevel(ctx context.Context, id string) error {
	return svc.repo.DeleteLevel(ctx, id)
}
