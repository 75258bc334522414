package leave

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_step_repo.go -destination=mock/approval_step_repo_mock.go -package=mock
type StepRepository interface {
	WithTx(tx *sql.Tx) StepRepository
	CreateAll(ctx context.Context, steps []ApprovalStep) error
	FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]ApprovalStep, error)
	// FindActionable returns the application's single currently actionable
	// step: the earliest PENDING step whose predecessors are all APPROVED.
	// Nil when no step is actionable.
	FindActionable(ctx context.Context, applicationID uuid.UUID) (*ApprovalStep, error)
	// ResolvePending is the race-safe transition: a compare-and-set that only
	// fires while the step is still PENDING. Returns false when another actor
	// already resolved the step.
	ResolvePending(ctx context.Context, stepID uuid.UUID, status string, resolvedBy uuid.UUID, comments *string) (bool, error)
	CountPending(ctx context.Context, applicationID uuid.UUID) (int64, error)
	// ListActionableFor returns the actionable steps the actor may resolve,
	// either by direct assignment or through the given pooled levels.
	ListActionableFor(ctx context.Context, actorID uuid.UUID, poolLevels []string) ([]ApprovalStep, error)
}

type stepRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewStepRepository(db *gorm.DB, sqlDB *sql.DB) StepRepository {
	return &stepRepository{db: db, sqlDB: sqlDB}
}

func (r *stepRepository) WithTx(tx *sql.Tx) StepRepository {
	return &stepRepository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *stepRepository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *stepRepository) CreateAll(ctx context.Context, steps []ApprovalStep) error {
	query := `
INSERT INTO approval_steps (id, application_id, sequence, level, approver_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
`
	for i := range steps {
		s := &steps[i]
		if _, err := r.querier().ExecContext(ctx, query,
			s.ID, s.ApplicationID, s.Sequence, s.Level, s.ApproverID, s.Status,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *stepRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]ApprovalStep, error) {
	var steps []ApprovalStep
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("sequence ASC").
		Find(&steps).Error
	return steps, err
}

const actionableStepQuery = `
SELECT s.id, s.application_id, s.sequence, s.level, s.approver_id, s.status, s.resolved_by, s.comments, s.created_at, s.resolved_at
FROM approval_steps s
WHERE s.application_id = $1
  AND s.status = 'PENDING'
  AND NOT EXISTS (
    SELECT 1 FROM approval_steps p
    WHERE p.application_id = s.application_id
      AND p.sequence < s.sequence
      AND p.status <> 'APPROVED'
  )
ORDER BY s.sequence ASC
LIMIT 1
`

func (r *stepRepository) FindActionable(ctx context.Context, applicationID uuid.UUID) (*ApprovalStep, error) {
	var s ApprovalStep
	err := r.querier().QueryRowContext(ctx, actionableStepQuery, applicationID).Scan(
		&s.ID, &s.ApplicationID, &s.Sequence, &s.Level, &s.ApproverID,
		&s.Status, &s.ResolvedBy, &s.Comments, &s.CreatedAt, &s.ResolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stepRepository) ResolvePending(ctx context.Context, stepID uuid.UUID, status string, resolvedBy uuid.UUID, comments *string) (bool, error) {
	query := `
UPDATE approval_steps
SET status = $2, resolved_by = $3, comments = $4, resolved_at = NOW()
WHERE id = $1 AND status = 'PENDING'
`
	res, err := r.querier().ExecContext(ctx, query, stepID, status, resolvedBy, comments)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *stepRepository) CountPending(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	query := `
SELECT COUNT(1) FROM approval_steps
WHERE application_id = $1 AND status = 'PENDING'
`
	var count int64
	err := r.querier().QueryRowContext(ctx, query, applicationID).Scan(&count)
	return count, err
}

func (r *stepRepository) ListActionableFor(ctx context.Context, actorID uuid.UUID, poolLevels []string) ([]ApprovalStep, error) {
	db := r.db.WithContext(ctx).
		Model(&ApprovalStep{}).
		Joins("JOIN leave_applications a ON a.id = approval_steps.application_id").
		Where("a.status = ?", StatusPending).
		Where("approval_steps.status = ?", StepPending).
		Where(`NOT EXISTS (
			SELECT 1 FROM approval_steps p
			WHERE p.application_id = approval_steps.application_id
			  AND p.sequence < approval_steps.sequence
			  AND p.status <> ?)`, StepApproved)

	if len(poolLevels) > 0 {
		db = db.Where("approval_steps.approver_id = ? OR (approval_steps.approver_id IS NULL AND approval_steps.level IN ?)", actorID, poolLevels)
	} else {
		db = db.Where("approval_steps.approver_id = ?", actorID)
	}

	var steps []ApprovalStep
	err := db.Order("approval_steps.created_at ASC").Find(&steps).Error
	return steps, err
}
