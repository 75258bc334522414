package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Application statuses. APPROVED, REJECTED, CANCELLED and REVOKED are
// terminal; a terminal application never becomes PENDING again.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
	StatusRevoked   = "REVOKED"
)

// Step statuses.
const (
	StepPending  = "PENDING"
	StepApproved = "APPROVED"
	StepRejected = "REJECTED"
)

// LeaveApplication also carries a schema-level overlap guard that gorm tags
// cannot express; it is applied alongside the auto-migration:
//
//	CREATE EXTENSION IF NOT EXISTS btree_gist;
//	ALTER TABLE leave_applications
//	    ADD CONSTRAINT excl_leave_application_period
//	    EXCLUDE USING gist (
//	        applicant_id WITH =,
//	        daterange(start_date, end_date, '[]') WITH &&
//	    ) WHERE (status IN ('PENDING', 'APPROVED'));
//
// The service checks for overlaps inside the submission transaction, but
// under READ COMMITTED two concurrent submissions can both pass that check;
// the constraint is the backstop, surfaced through mapRepositoryError.
type LeaveApplication struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApplicantID uuid.UUID       `gorm:"type:uuid;not null;index:idx_applications_applicant_dates"`
	LeaveType   string          `gorm:"type:varchar(30);not null;default:'ANNUAL'"`
	StartDate   time.Time       `gorm:"type:date;not null;index:idx_applications_applicant_dates"`
	EndDate     time.Time       `gorm:"type:date;not null;index:idx_applications_applicant_dates"`
	Days        decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	Reason      string          `gorm:"type:text"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether no further transitions are permitted.
func (a LeaveApplication) IsTerminal() bool {
	return a.Status != StatusPending
}

// ApprovalStep is one position in an application's approval chain. A nil
// ApproverID means the step is pooled: any active member of the level's role
// pool may resolve it. Steps are totally ordered by Sequence; step k is
// actionable only once step k-1 is approved.
type ApprovalStep struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApplicationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_steps_application_sequence"`
	Sequence      int        `gorm:"not null;uniqueIndex:idx_steps_application_sequence"`
	Level         string     `gorm:"type:varchar(30);not null"`
	ApproverID    *uuid.UUID `gorm:"type:uuid"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ResolvedBy    *uuid.UUID `gorm:"type:uuid"`
	Comments      *string    `gorm:"type:text"`

	CreatedAt  time.Time
	ResolvedAt *time.Time
}
