package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = uuid.New().String()
	std.Enrollments = nil
	repo.db.student[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.student[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, std := range repo.db.student {
		if filter != nil {
			if filter.Search != "" {
				kw := strings.ToLower(filter.Search)
				if !(strings.Contains(strings.ToLower(std.FirstName), kw) ||
					strings.Contains(strings.ToLower(std.LastName), kw) ||
					strings.Contains(strings.ToLower(std.Email), kw)) {
					continue
				}
			}
			if filter.CourseLevelID != "" {
				if _, ok := repo.db.enrollment[enrollmentKey{std.ID, filter.CourseLevelID}]; !ok {
					continue
				}
			}
		}
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName == students[j].LastName {
			return students[i].FirstName < students[j].FirstName
		}
		return students[i].LastName < students[j].LastName
	})
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.student[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	std.Enrollments = nil
	repo.db.student[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.student[id]; !ok {
		return student.ErrNotFound
	}
	for k := range repo.db.enrollment {
		if k.studentID == id {
			delete(repo.db.enrollment, k)
		}
	}
	for aid, att := range repo.db.attendance {
		if att.StudentID == id {
			delete(repo.db.attendance, aid)
		}
	}
	for pid, pmt := range repo.db.payment {
		if pmt.StudentID == id {
			delete(repo.db.payment, pid)
		}
	}
	delete(repo.db.student, id)
	return nil
}

func (repo *studentRepository) Enroll(_ context.Context, enr student.Enrollment) (student.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := enrollmentKey{enr.StudentID, enr.CourseLevelID}
	if existing, ok := repo.db.enrollment[key]; ok {
		return *existing, nil
	}
	repo.db.enrollment[key] = &enr
	return enr, nil
}

func (repo *studentRepository) Unenroll(_ context.Context, studentID, courseLevelID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := enrollmentKey{studentID, courseLevelID}
	if _, ok := repo.db.enrollment[key]; !ok {
		return student.ErrEnrollmentNotFound
	}
	delete(repo.db.enrollment, key)
	return nil
}

func (repo *studentRepository) QueryEnrollments(_ context.Context, studentID string) ([]student.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]student.Enrollment, 0)
	for k, enr := range repo.db.enrollment {
		if k.studentID == studentID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].EnrolledAt.Before(enrollments[j].EnrolledAt) })
	return enrollments, nil
}
