package leave

import "time"

type SubmitApplicationRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	// Days overrides the inclusive calendar-day count, e.g. "2.5" when the
	// period ends with a half day. Empty means the full period.
	Days   string `json:"days"`
	Reason string `json:"reason"`
}

type ActRequest struct {
	Comments string `json:"comments"`
}

type ApplicationResponse struct {
	ID          string         `json:"id"`
	ApplicantID string         `json:"applicant_id"`
	LeaveType   string         `json:"leave_type"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Days        string         `json:"days"`
	Reason      string         `json:"reason"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at"`
	Steps       []StepResponse `json:"steps,omitempty"`
	// OverdraftWarning is set when a final approval pushed used days past the
	// allocation; the approval itself still succeeds.
	OverdraftWarning bool `json:"overdraft_warning,omitempty"`
}

type StepResponse struct {
	ID         string  `json:"id"`
	Sequence   int     `json:"sequence"`
	Level      string  `json:"level"`
	ApproverID *string `json:"approver_id,omitempty"`
	Status     string  `json:"status"`
	ResolvedBy *string `json:"resolved_by,omitempty"`
	Comments   *string `json:"comments,omitempty"`
	ResolvedAt *string `json:"resolved_at,omitempty"`
}

// PendingStepResponse is one row of an approver's work queue.
type PendingStepResponse struct {
	Application ApplicationResponse `json:"application"`
	Step        StepResponse        `json:"step"`
}

func mapToResponse(a LeaveApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID.String(),
		ApplicantID: a.ApplicantID.String(),
		LeaveType:   a.LeaveType,
		StartDate:   a.StartDate.Format("2006-01-02"),
		EndDate:     a.EndDate.Format("2006-01-02"),
		Days:        a.Days.String(),
		Reason:      a.Reason,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(apps []LeaveApplication) []ApplicationResponse {
	resp := make([]ApplicationResponse, len(apps))
	for i, a := range apps {
		resp[i] = mapToResponse(a)
	}
	return resp
}

func mapStepToResponse(s ApprovalStep) StepResponse {
	resp := StepResponse{
		ID:       s.ID.String(),
		Sequence: s.Sequence,
		Level:    s.Level,
		Status:   s.Status,
		Comments: s.Comments,
	}
	if s.ApproverID != nil {
		v := s.ApproverID.String()
		resp.ApproverID = &v
	}
	if s.ResolvedBy != nil {
		v := s.ResolvedBy.String()
		resp.ResolvedBy = &v
	}
	if s.ResolvedAt != nil {
		v := s.ResolvedAt.UTC().Format(time.RFC3339)
		resp.ResolvedAt = &v
	}
	return resp
}
