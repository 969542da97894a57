package model

type FollowUpStatus string

const (
	FollowUpOpen FollowUpStatus = "open"
	FollowUpDone FollowUpStatus = "done"
)

// FollowUpTask asks a group leader to check in on a member after
// concerning attendance. At most one open task exists per member.
type FollowUpTask struct {
	ID           string         `json:"id"`
	MemberID     string         `json:"memberId"`
	CareGroupID  string         `json:"careGroupId"`
	LeaderUserID string         `json:"leaderUserId,omitempty"`
	Reason       string         `json:"reason"`
	Status       FollowUpStatus `json:"status"`
	CreatedAt    string         `json:"createdAt"`
	CompletedAt  string         `json:"completedAt,omitempty"`
}
