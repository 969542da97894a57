// Package sync holds the offline action queue, the reconciler that
// replays it against the local snapshot, and the connectivity watcher
// that decides when replay happens.
package sync

import (
	"encoding/json"
	"fmt"

	"github.com/gracechapel/shepherd/internal/model"
)

type ActionType string

const (
	ActionAttendanceSave ActionType = "attendance_save"
	ActionMemberUpdate   ActionType = "member_update"
	ActionMemberTransfer ActionType = "member_transfer"
)

// Action is one queued mutation: a type tag plus the payload for that
// type. The payload stays raw until the reconciler dispatches on the tag.
type Action struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MemberUpdatePayload replaces a member's profile fields.
type MemberUpdatePayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	DOB   string `json:"dob"`
}

// MemberTransferPayload moves a member between groups with an audit reason.
type MemberTransferPayload struct {
	ID          string `json:"id"`
	FromGroupID string `json:"fromGroupId"`
	ToGroupID   string `json:"toGroupId"`
	Reason      string `json:"reason"`
	Date        string `json:"date"`
}

func newAction(t ActionType, payload any) (Action, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Action{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Action{Type: t, Payload: raw}, nil
}

// NewAttendanceSave queues a batch attendance save.
func NewAttendanceSave(in model.AttendanceInput) (Action, error) {
	return newAction(ActionAttendanceSave, in)
}

// NewMemberUpdate queues a member profile replacement.
func NewMemberUpdate(p MemberUpdatePayload) (Action, error) {
	return newAction(ActionMemberUpdate, p)
}

// NewMemberTransfer queues a manual group transfer.
func NewMemberTransfer(p MemberTransferPayload) (Action, error) {
	return newAction(ActionMemberTransfer, p)
}
