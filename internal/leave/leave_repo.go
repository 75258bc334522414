package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// querier is satisfied by *sql.DB and *sql.Tx; repo writes and any read that
// participates in a workflow transaction go through it so the whole
// transition commits or rolls back as one unit.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type ApplicationRepository interface {
	WithTx(tx *sql.Tx) ApplicationRepository
	Create(ctx context.Context, a *LeaveApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveApplication, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]LeaveApplication, error)
	// HasOverlappingApplication reports whether the applicant already has a
	// PENDING or APPROVED application whose inclusive [start,end] interval
	// intersects the given one.
	HasOverlappingApplication(ctx context.Context, applicantID uuid.UUID, startDate, endDate time.Time) (bool, error)
	// TransitionStatus is a compare-and-set on the application status.
	// Returns false when the row was not in the expected `from` status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
}

type applicationRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewApplicationRepository(db *gorm.DB, sqlDB *sql.DB) ApplicationRepository {
	return &applicationRepository{db: db, sqlDB: sqlDB}
}

func (r *applicationRepository) WithTx(tx *sql.Tx) ApplicationRepository {
	return &applicationRepository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *applicationRepository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *applicationRepository) Create(ctx context.Context, a *LeaveApplication) error {
	query := `
INSERT INTO leave_applications (id, applicant_id, leave_type, start_date, end_date, days, reason, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
`
	_, err := r.querier().ExecContext(ctx, query,
		a.ID, a.ApplicantID, a.LeaveType, a.StartDate, a.EndDate, a.Days, a.Reason, a.Status,
	)
	return err
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*LeaveApplication, error) {
	query := `
SELECT id, applicant_id, leave_type, start_date, end_date, days, reason, status, created_at, updated_at
FROM leave_applications
WHERE id = $1
`
	var a LeaveApplication
	err := r.querier().QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.ApplicantID, &a.LeaveType, &a.StartDate, &a.EndDate,
		&a.Days, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]LeaveApplication, error) {
	var apps []LeaveApplication
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("start_date DESC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) HasOverlappingApplication(ctx context.Context, applicantID uuid.UUID, startDate, endDate time.Time) (bool, error) {
	query := `
SELECT COUNT(1)
FROM leave_applications
WHERE applicant_id = $1
  AND status IN ($2, $3)
  AND NOT (end_date < $4 OR start_date > $5)
`
	var count int64
	err := r.querier().QueryRowContext(ctx, query,
		applicantID, StatusPending, StatusApproved, startDate, endDate,
	).Scan(&count)
	return count > 0, err
}

func (r *applicationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	query := `
UPDATE leave_applications
SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2
`
	res, err := r.querier().ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
