package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance is the (user, leave type, year) allowance record. UsedDays is
// mutated only by the approval workflow, inside the same transaction as the
// status transition that justifies the change.
type LeaveBalance struct {
	UserID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LeaveType string          `gorm:"type:varchar(30);primaryKey"`
	Year      int             `gorm:"primaryKey"`
	TotalDays decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	UsedDays  decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining returns the days still available; negative when overdrawn.
func (b LeaveBalance) Remaining() decimal.Decimal {
	return b.TotalDays.Sub(b.UsedDays)
}
