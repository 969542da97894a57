package model

// TransferLog records a manual group override for a member. Append-only.
type TransferLog struct {
	ID          string `json:"id"`
	MemberID    string `json:"memberId"`
	FromGroupID string `json:"fromGroupId"`
	ToGroupID   string `json:"toGroupId"`
	Reason      string `json:"reason"`
	Date        string `json:"date"`
}

// AbsenceReason is a selectable reason for marking a member absent.
type AbsenceReason struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
