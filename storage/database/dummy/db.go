package dummydb

import (
	"sync"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/payment"
	"github.com/trezcool/mahudhurio/core/staff"
	"github.com/trezcool/mahudhurio/core/student"
)

type (
	// DB is an in-memory database. One lock guards every table so cascades stay consistent.
	DB struct {
		sync.RWMutex

		user        map[string]*staff.User
		course      map[string]*course.Course
		level       map[string]*course.CourseLevel
		student     map[string]*student.Student
		enrollment  map[enrollmentKey]*student.Enrollment
		attendance  map[string]*attendance.Attendance
		payment     map[string]*payment.Payment
		failInserts bool
	}

	enrollmentKey struct {
		studentID, courseLevelID string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       make(map[string]*staff.User),
		course:     make(map[string]*course.Course),
		level:      make(map[string]*course.CourseLevel),
		student:    make(map[string]*student.Student),
		enrollment: make(map[enrollmentKey]*student.Enrollment),
		attendance: make(map[string]*attendance.Attendance),
		payment:    make(map[string]*payment.Payment),
	}
	return db, nil
}

// FailInserts makes every following attendance insert fail, to exercise rollbacks.
func (db *DB) FailInserts(fail bool) {
	db.Lock()
	defer db.Unlock()
	db.failInserts = fail
}

// deleteLevels drops the levels and every row recorded against them. Caller holds the lock.
func (db *DB) deleteLevels(ids ...string) {
	for _, id := range ids {
		delete(db.level, id)
		for k := range db.enrollment {
			if k.courseLevelID == id {
				delete(db.enrollment, k)
			}
		}
		for aid, att := range db.attendance {
			if att.CourseLevelID == id {
				delete(db.attendance, aid)
			}
		}
		for pid, pmt := range db.payment {
			if pmt.CourseLevelID == id {
				delete(db.payment, pid)
			}
		}
	}
}
