package policy

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeavePolicy holds the per-leave-type rules: how many days a year each user
// is allocated by default and how long a single absence may run. Amounts are
// decimal so half-day policies round-trip exactly.
type LeavePolicy struct {
	LeaveType          string          `gorm:"type:varchar(30);primaryKey"`
	AnnualAllocation   decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	MaxConsecutiveDays decimal.Decimal `gorm:"type:numeric(5,1);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApprovalChainStep is one configured position in a role's approval chain.
type ApprovalChainStep struct {
	Role     string `gorm:"type:varchar(30);primaryKey"`
	Position int    `gorm:"primaryKey"`
	Level    string `gorm:"type:varchar(30);not null"`
}
