package dummydb

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

var errInsertFailed = errors.New("dummydb: insert failed")

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) inDay(courseLevelID string, window attendance.DayWindow) []attendance.Attendance {
	recs := make([]attendance.Attendance, 0)
	for _, att := range repo.db.attendance {
		if att.CourseLevelID == courseLevelID && window.Contains(att.Date) {
			recs = append(recs, *att)
		}
	}
	return recs
}

// ReplaceDay holds the write lock for the whole delete then insert and puts the
// deleted rows back when the insert fails, so it is all or nothing.
func (repo *attendanceRepository) ReplaceDay(_ context.Context, courseLevelID string, window attendance.DayWindow, recs []attendance.Attendance) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, att := range recs {
		if _, ok := repo.db.student[att.StudentID]; !ok {
			return 0, student.ErrNotFound
		}
	}

	previous := repo.inDay(courseLevelID, window)
	for _, att := range previous {
		delete(repo.db.attendance, att.ID)
	}

	inserted := make([]string, 0, len(recs))
	for _, att := range recs {
		if repo.db.failInserts {
			for _, id := range inserted {
				delete(repo.db.attendance, id)
			}
			for _, att := range previous {
				att := att
				repo.db.attendance[att.ID] = &att
			}
			return 0, errInsertFailed
		}
		att := att
		att.ID = uuid.New().String()
		repo.db.attendance[att.ID] = &att
		inserted = append(inserted, att.ID)
	}
	return len(recs), nil
}

func (repo *attendanceRepository) QueryDay(_ context.Context, courseLevelID string, window attendance.DayWindow) ([]attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := repo.inDay(courseLevelID, window)
	sort.Slice(recs, func(i, j int) bool { return recs[i].StudentID < recs[j].StudentID })
	return recs, nil
}

func (repo *attendanceRepository) CountDay(_ context.Context, courseLevelID string, window attendance.DayWindow) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.inDay(courseLevelID, window)), nil
}

func (repo *attendanceRepository) GetAttendance(_ context.Context, id string) (attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if att, ok := repo.db.attendance[id]; ok {
		return *att, nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpdateAttendance(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.attendance[att.ID]; !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	repo.db.attendance[att.ID] = &att
	return att, nil
}
