package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/payment"
	"github.com/trezcool/mahudhurio/core/student"
)

type paymentRepository struct {
	db *DB
}

var (
	_ payment.Repository       = (*paymentRepository)(nil) // interface compliance check
	_ payment.ReportRepository = (*paymentRepository)(nil)
)

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func NewPaymentReportRepository(db *DB) payment.ReportRepository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) find(studentID, courseLevelID string, month, year int) *payment.Payment {
	for _, pmt := range repo.db.payment {
		if pmt.StudentID == studentID && pmt.CourseLevelID == courseLevelID && pmt.Month == month && pmt.Year == year {
			return pmt
		}
	}
	return nil
}

func (repo *paymentRepository) UpsertPayment(_ context.Context, pmt payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.student[pmt.StudentID]; !ok {
		return payment.Payment{}, student.ErrNotFound
	}
	if _, ok := repo.db.course[pmt.CourseID]; !ok {
		return payment.Payment{}, course.ErrCourseNotFound
	}
	if _, ok := repo.db.level[pmt.CourseLevelID]; !ok {
		return payment.Payment{}, course.ErrLevelNotFound
	}

	if existing := repo.find(pmt.StudentID, pmt.CourseLevelID, pmt.Month, pmt.Year); existing != nil {
		pmt.ID = existing.ID
		pmt.CreatedAt = existing.CreatedAt
	} else {
		pmt.ID = uuid.New().String()
	}
	repo.db.payment[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *paymentRepository) GetPayment(_ context.Context, id string) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if pmt, ok := repo.db.payment[id]; ok {
		return *pmt, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) ControlSheet(_ context.Context, courseLevelID string, month, year int) ([]payment.ControlRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]payment.ControlRow, 0)
	for k, enr := range repo.db.enrollment {
		if k.courseLevelID != courseLevelID {
			continue
		}
		std, ok := repo.db.student[k.studentID]
		if !ok {
			continue
		}
		row := payment.ControlRow{
			StudentID:  std.ID,
			FirstName:  std.FirstName,
			LastName:   std.LastName,
			EnrolledAt: enr.EnrolledAt,
		}
		if pmt := repo.find(std.ID, courseLevelID, month, year); pmt != nil {
			p := *pmt
			row.Payment = &p
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LastName == rows[j].LastName {
			return rows[i].FirstName < rows[j].FirstName
		}
		return rows[i].LastName < rows[j].LastName
	})
	return rows, nil
}

func (repo *paymentRepository) QueryPending(_ context.Context, month, year int) ([]payment.Pending, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	pending := make([]payment.Pending, 0)
	for _, pmt := range repo.db.payment {
		if pmt.Status != payment.StatusPending || pmt.Month != month || pmt.Year != year {
			continue
		}
		p := payment.Pending{
			PaymentID: pmt.ID,
			StudentID: pmt.StudentID,
			Month:     pmt.Month,
			Year:      pmt.Year,
			Amount:    pmt.Amount,
		}
		if std, ok := repo.db.student[pmt.StudentID]; ok {
			p.StudentName = std.FullName()
			p.Email = std.Email
			p.GuardianEmail = std.GuardianEmail
		}
		if lvl, ok := repo.db.level[pmt.CourseLevelID]; ok {
			p.Level = lvl.Level
		}
		if crs, ok := repo.db.course[pmt.CourseID]; ok {
			p.CourseName = crs.Name
		}
		pending = append(pending, p)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].StudentName < pending[j].StudentName })
	return pending, nil
}
