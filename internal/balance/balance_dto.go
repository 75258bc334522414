package balance

type BalanceResponse struct {
	UserID    string `json:"user_id"`
	LeaveType string `json:"leave_type"`
	Year      int    `json:"year"`
	TotalDays string `json:"total_days"`
	UsedDays  string `json:"used_days"`
	Remaining string `json:"remaining"`
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		UserID:    b.UserID.String(),
		LeaveType: b.LeaveType,
		Year:      b.Year,
		TotalDays: b.TotalDays.String(),
		UsedDays:  b.UsedDays.String(),
		Remaining: b.Remaining().String(),
	}
}

func mapToListResponse(balances []LeaveBalance) []BalanceResponse {
	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp
}
