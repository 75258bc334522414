package events

import "time"

const LeaveWorkflowTopic = "leave.workflow.v1"

const (
	TypeStepPending          = "leave_step_pending"
	TypeApplicationFinalized = "leave_application_finalized"
)

// StepPendingEvent is emitted when a step becomes the application's
// actionable step: on submission for step 1, and after each intermediate
// approval for the successor.
type StepPendingEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	ApplicationID string    `json:"application_id"`
	ApplicantID   string    `json:"applicant_id"`
	StepID        string    `json:"step_id"`
	Sequence      int       `json:"sequence"`
	Level         string    `json:"level"`
	ApproverID    *string   `json:"approver_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ApplicationFinalizedEvent is emitted once, when an application reaches a
// terminal status.
type ApplicationFinalizedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	ApplicationID string    `json:"application_id"`
	ApplicantID   string    `json:"applicant_id"`
	Outcome       string    `json:"outcome"`
	LeaveType     string    `json:"leave_type"`
	Days          string    `json:"days"`
	OccurredAt    time.Time `json:"occurred_at"`
}
