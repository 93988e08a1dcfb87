package payment

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
)

var NowFunc = time.Now // mockable

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("payment")
	errInvalidYear    = errors.New("invalid year")
	errCourseMismatch = errors.New("course level does not belong to this course")
)

type (
	Repository interface {
		// UpsertPayment writes the payment keyed by (student, course level, month, year) in one
		// statement. An existing row keeps its id and creation time.
		UpsertPayment(ctx context.Context, pmt Payment) (Payment, error)
		GetPayment(ctx context.Context, id string) (Payment, error)
	}

	ReportRepository interface {
		// ControlSheet lists every student enrolled in the level, with their payment for the month if any.
		ControlSheet(ctx context.Context, courseLevelID string, month, year int) ([]ControlRow, error)
		QueryPending(ctx context.Context, month, year int) ([]Pending, error)
	}

	// LevelGetter resolves course levels.
	LevelGetter interface {
		GetLevel(ctx context.Context, id string) (course.CourseLevel, error)
	}

	Service struct {
		repo     Repository
		reports  ReportRepository
		levels   LevelGetter
		mailSvc  core.EmailService
		validate *validator.Validate
		minYear  int
		maxYear  int
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	reports ReportRepository,
	levels LevelGetter,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		reports:  reports,
		levels:   levels,
		mailSvc:  mailSvc,
		validate: validate,
		minYear:  conf.Payment.MinYear,
		maxYear:  conf.Payment.MaxYear,
		logger:   logger,
	}
}

func (svc *Service) checkYear(year int) error {
	if year < svc.minYear || year > svc.maxYear {
		return core.NewValidationError(errInvalidYear, core.FieldError{
			Field: "year",
			Error: fmt.Sprintf("year must be between %d and %d", svc.minYear, svc.maxYear),
		})
	}
	return nil
}

func (svc *Service) checkPeriod(p Period) error {
	if err := svc.validate.Struct(p); err != nil {
		return err
	}
	return svc.checkYear(p.Year)
}

// UpsertPayment records the payment status of a student for a month.
// PaidAt is stamped on every write to PAID and cleared otherwise.
func (svc *Service) UpsertPayment(ctx context.Context, up UpsertPayment) (Payment, error) {
	up.clean()
	if err := svc.validate.Struct(up); err != nil {
		return Payment{}, err
	}
	if err := svc.checkYear(up.Year); err != nil {
		return Payment{}, err
	}

	lvl, err := svc.levels.GetLevel(ctx, up.CourseLevelID)
	if err != nil {
		return Payment{}, err
	}
	if lvl.CourseID != up.CourseID {
		return Payment{}, core.NewValidationError(errCourseMismatch, core.FieldError{
			Field: "course_id",
			Error: errCourseMismatch.Error(),
		})
	}
	return svc.upsert(ctx, up)
}

func (svc *Service) upsert(ctx context.Context, up UpsertPayment) (Payment, error) {
	now := NowFunc().UTC()
	pmt := Payment{
		StudentID:     up.StudentID,
		CourseID:      up.CourseID,
		CourseLevelID: up.CourseLevelID,
		Month:         up.Month,
		Year:          up.Year,
		Status:        up.Status,
		Amount:        up.Amount,
		Notes:         up.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if up.Status == StatusPaid {
		pmt.PaidAt = &now
	}

	pmt, err := svc.repo.UpsertPayment(ctx, pmt)
	if err != nil {
		return Payment{}, errors.Wrap(err, "upserting payment")
	}
	return pmt, nil
}

// UpsertBatch upserts one payment per entry. Each entry is written on its own:
// failed entries are reported in BatchResult.Failures and never undo the others.
func (svc *Service) UpsertBatch(ctx context.Context, ub UpsertBatch) (BatchResult, error) {
	ub.CourseLevelID = core.CleanString(ub.CourseLevelID)
	if err := svc.validate.Struct(ub); err != nil {
		return BatchResult{}, err
	}
	if err := svc.checkYear(ub.Year); err != nil {
		return BatchResult{}, err
	}

	lvl, err := svc.levels.GetLevel(ctx, ub.CourseLevelID)
	if err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{
		Payments: make([]Payment, 0, len(ub.Entries)),
		Failures: make([]BatchFailure, 0),
	}
	for _, entry := range ub.Entries {
		up := UpsertPayment{
			StudentID:     entry.StudentID,
			CourseID:      lvl.CourseID,
			CourseLevelID: lvl.ID,
			Month:         ub.Month,
			Year:          ub.Year,
			Status:        entry.Status,
			Amount:        entry.Amount,
			Notes:         entry.Notes,
		}
		up.clean()
		if err = svc.validate.Struct(up); err == nil {
			var pmt Payment
			if pmt, err = svc.upsert(ctx, up); err == nil {
				res.Payments = append(res.Payments, pmt)
				continue
			}
		}
		res.Failures = append(res.Failures, BatchFailure{StudentID: up.StudentID, Error: err.Error()})
	}

	if len(res.Failures) > 0 {
		svc.logger.Warn(
			fmt.Sprintf("payment batch for %s: %d of %d entries failed", lvl.DisplayName(), len(res.Failures), len(ub.Entries)),
			map[string]interface{}{"course_level_id": lvl.ID, "failures": res.Failures},
		)
	}
	return res, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPayment(ctx, id)
}

// ControlSheet lists the level's enrolled students with their payment for the period.
func (svc *Service) ControlSheet(ctx context.Context, courseLevelID string, period Period) ([]ControlRow, error) {
	if err := svc.checkPeriod(period); err != nil {
		return nil, err
	}
	lvl, err := svc.levels.GetLevel(ctx, courseLevelID)
	if err != nil {
		return nil, err
	}
	return svc.reports.ControlSheet(ctx, lvl.ID, period.Month, period.Year)
}

func (svc *Service) ListPending(ctx context.Context, period Period) ([]Pending, error) {
	if err := svc.checkPeriod(period); err != nil {
		return nil, err
	}
	return svc.reports.QueryPending(ctx, period.Month, period.Year)
}

type reminderData struct {
	Period      string
	StudentName string
	CourseName  string
	Level       string
	Amount      string
}

// RemindPending emails a reminder for every pending payment of the period that has a contact
// address. Returns the number of reminders sent.
func (svc *Service) RemindPending(ctx context.Context, period Period) (int, error) {
	pending, err := svc.ListPending(ctx, period)
	if err != nil {
		return 0, err
	}

	msgs := make([]*core.EmailMessage, 0, len(pending))
	for _, p := range pending {
		to := p.ContactEmail()
		if to == "" {
			continue
		}
		data := reminderData{
			Period:      period.String(),
			StudentName: p.StudentName,
			CourseName:  p.CourseName,
			Level:       p.Level.Label(),
		}
		if p.Amount != nil {
			data.Amount = strconv.FormatFloat(*p.Amount, 'f', 2, 64)
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Address: to}},
			Subject:      "Pending payment for " + period.String(),
			TemplateName: "payment_reminder",
			TemplateData: data,
		})
	}

	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
	svc.logger.Info(fmt.Sprintf("%d payment reminders sent for %s", len(msgs), period))
	return len(msgs), nil
}
