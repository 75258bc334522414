package balance

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByUserAndYear(ctx context.Context, userID uuid.UUID, year int) ([]LeaveBalance, error)
	// Deduct atomically adds days to used_days, creating the row with the
	// given allocation when it does not exist yet. Returns the post-update
	// balance so callers can detect overdraft.
	Deduct(ctx context.Context, userID uuid.UUID, leaveType string, year int, days, allocation decimal.Decimal) (LeaveBalance, error)
	// Reverse atomically subtracts days from used_days, floored at zero.
	// Returns the pre-floor value so callers can detect underflow.
	Reverse(ctx context.Context, userID uuid.UUID, leaveType string, year int, days decimal.Decimal) (LeaveBalance, decimal.Decimal, error)
	Provision(ctx context.Context, userID uuid.UUID, leaveType string, year int, allocation decimal.Decimal) (LeaveBalance, error)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) FindByUserAndYear(ctx context.Context, userID uuid.UUID, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("year = ?", year).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) Deduct(ctx context.Context, userID uuid.UUID, leaveType string, year int, days, allocation decimal.Decimal) (LeaveBalance, error) {
	query := `
INSERT INTO leave_balances (user_id, leave_type, year, total_days, used_days, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
ON CONFLICT (user_id, leave_type, year) DO UPDATE
SET used_days = leave_balances.used_days + EXCLUDED.used_days, updated_at = NOW()
RETURNING total_days, used_days
`
	b := LeaveBalance{UserID: userID, LeaveType: leaveType, Year: year}
	err := r.querier().QueryRowContext(ctx, query, userID, leaveType, year, allocation, days).
		Scan(&b.TotalDays, &b.UsedDays)
	return b, err
}

func (r *repository) Reverse(ctx context.Context, userID uuid.UUID, leaveType string, year int, days decimal.Decimal) (LeaveBalance, decimal.Decimal, error) {
	// The CTE keeps the pre-update value observable in one round trip.
	query := `
WITH before AS (
	SELECT used_days AS v FROM leave_balances
	WHERE user_id = $1 AND leave_type = $2 AND year = $3
)
UPDATE leave_balances
SET used_days = GREATEST(used_days - $4, 0), updated_at = NOW()
FROM before
WHERE user_id = $1 AND leave_type = $2 AND year = $3
RETURNING total_days, used_days, before.v
`
	b := LeaveBalance{UserID: userID, LeaveType: leaveType, Year: year}
	var previousUsed decimal.Decimal
	err := r.querier().QueryRowContext(ctx, query, userID, leaveType, year, days).
		Scan(&b.TotalDays, &b.UsedDays, &previousUsed)
	return b, previousUsed, err
}

func (r *repository) Provision(ctx context.Context, userID uuid.UUID, leaveType string, year int, allocation decimal.Decimal) (LeaveBalance, error) {
	query := `
INSERT INTO leave_balances (user_id, leave_type, year, total_days, used_days, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
ON CONFLICT (user_id, leave_type, year) DO UPDATE SET updated_at = leave_balances.updated_at
RETURNING total_days, used_days
`
	b := LeaveBalance{UserID: userID, LeaveType: leaveType, Year: year}
	err := r.querier().QueryRowContext(ctx, query, userID, leaveType, year, allocation).
		Scan(&b.TotalDays, &b.UsedDays)
	return b, err
}
