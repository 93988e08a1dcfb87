package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) nameTaken(name, exclID string) bool {
	for _, crs := range repo.db.course {
		if crs.Name == name && crs.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *courseRepository) levelTaken(lvl course.CourseLevel) bool {
	for _, l := range repo.db.level {
		if l.CourseID == lvl.CourseID && l.Level == lvl.Level && l.ID != lvl.ID {
			return true
		}
	}
	return false
}

func (repo *courseRepository) withCourseName(lvl course.CourseLevel) course.CourseLevel {
	if crs, ok := repo.db.course[lvl.CourseID]; ok {
		lvl.CourseName = crs.Name
	}
	lvl.AttendanceDays = append(course.Weekdays(nil), lvl.AttendanceDays...)
	return lvl
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameTaken(crs.Name, "") {
		return course.Course{}, course.ErrCourseExists
	}
	crs.ID = uuid.New().String()
	repo.db.course[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.course[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrCourseNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.course))
	for _, crs := range repo.db.course {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.course[crs.ID]; !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	if repo.nameTaken(crs.Name, crs.ID) {
		return course.Course{}, course.ErrCourseExists
	}
	repo.db.course[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.course[id]; !ok {
		return course.ErrCourseNotFound
	}
	var levelIDs []string
	for lid, lvl := range repo.db.level {
		if lvl.CourseID == id {
			levelIDs = append(levelIDs, lid)
		}
	}
	repo.db.deleteLevels(levelIDs...)
	delete(repo.db.course, id)
	return nil
}

func (repo *courseRepository) CreateLevel(_ context.Context, lvl course.CourseLevel) (course.CourseLevel, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.course[lvl.CourseID]; !ok {
		return course.CourseLevel{}, course.ErrCourseNotFound
	}
	if repo.levelTaken(lvl) {
		return course.CourseLevel{}, course.ErrLevelExists
	}
	lvl.ID = uuid.New().String()
	lvl = repo.withCourseName(lvl)
	repo.db.level[lvl.ID] = &lvl
	return lvl, nil
}

func (repo *courseRepository) GetLevel(_ context.Context, id string) (course.CourseLevel, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lvl, ok := repo.db.level[id]; ok {
		return repo.withCourseName(*lvl), nil
	}
	return course.CourseLevel{}, course.ErrLevelNotFound
}

func (repo *courseRepository) QueryLevels(_ context.Context, courseID string) ([]course.CourseLevel, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	levels := make([]course.CourseLevel, 0)
	for _, lvl := range repo.db.level {
		if lvl.CourseID == courseID {
			levels = append(levels, repo.withCourseName(*lvl))
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].CreatedAt.Before(levels[j].CreatedAt) })
	return levels, nil
}

func (repo *courseRepository) UpdateLevel(_ context.Context, lvl course.CourseLevel) (course.CourseLevel, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.level[lvl.ID]; !ok {
		return course.CourseLevel{}, course.ErrLevelNotFound
	}
	if repo.levelTaken(lvl) {
		return course.CourseLevel{}, course.ErrLevelExists
	}
	lvl = repo.withCourseName(lvl)
	repo.db.level[lvl.ID] = &lvl
	return lvl, nil
}

func (repo *courseRepository) DeleteLevel(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.level[id]; !ok {
		return course.ErrLevelNotFound
	}
	repo.db.deleteLevels(id)
	return nil
}
