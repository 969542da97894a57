// Package store defines the backend-neutral data interface. Two
// implementations exist: sqlstore (the hosted relational backend) and
// localstore (the on-disk JSON snapshot used as an offline fallback).
// Callers are wired to exactly one at startup and never learn which one
// served a call; both must leave equivalent post-conditions behind.
package store

import (
	"errors"

	"github.com/gracechapel/shepherd/internal/model"
)

// ErrLastAdmin is returned when deleting a user would leave the system
// with no admin account.
var ErrLastAdmin = errors.New("cannot delete the last admin user")

// Store is the full set of data operations. Lookups return (nil, nil)
// when nothing matches; backend failures are returned as errors for the
// caller to report.
type Store interface {
	// Users
	ListUsers() ([]model.User, error)
	ListLeaders() ([]model.User, error)
	ListAdmins() ([]model.User, error)
	GetUserByID(id string) (*model.User, error)
	GetUserByName(name string) (*model.User, error)
	CreateUser(u model.User) (*model.User, error)
	UpdateUserPassword(userID, passwordHash string) error
	// DeleteUser removes a user. Deleting the last remaining admin fails
	// with ErrLastAdmin before any delete is issued.
	DeleteUser(userID string) error

	// Care groups
	ListCareGroups() ([]model.CareGroup, error)
	GetCareGroup(id string) (*model.CareGroup, error)
	SetCareGroupLeader(groupID, leaderUserID string) error

	// Members
	ListMembers() ([]model.Member, error)
	ListMembersByGroup(groupID string) ([]model.Member, error)
	GetMember(id string) (*model.Member, error)
	InsertMember(m model.Member) (*model.Member, error)
	BulkInsertMembers(members []model.Member) error
	UpdateMemberProfile(id, name, phone, dob string) error
	UpdateMemberGroup(id, groupID string) error
	// MergeMembers reassigns the duplicates' attendance to primaryID and
	// then deletes the duplicate members. The two steps are independent
	// calls with no compensating rollback.
	MergeMembers(primaryID string, duplicateIDs []string) error

	// Attendance. UpsertAttendance replaces the whole (date, group) batch:
	// existing records for the pair are removed, fresh ones inserted.
	UpsertAttendance(in model.AttendanceInput) error
	ListAttendanceByDateGroup(date, groupID string) ([]model.AttendanceRecord, error)
	ListAttendanceByDate(date string) ([]model.AttendanceRecord, error)
	ListAttendanceByMember(memberID string, limit int) ([]model.AttendanceRecord, error)
	ListAllAttendance() ([]model.AttendanceRecord, error)

	// Follow-ups. CreateFollowUpIfNotExists is a no-op when the member
	// already has an open task.
	CreateFollowUpIfNotExists(memberID, groupID, leaderUserID, reason string) error
	ListFollowUpsByGroup(groupID string) ([]model.FollowUpTask, error)
	CompleteFollowUp(id string) error
	ReopenFollowUp(id string) error

	// Transfers
	// TransferMember moves the member to toGroupID and appends a
	// TransferLog entry recording the override.
	TransferMember(memberID, fromGroupID, toGroupID, reason, date string) error
	ListTransferLogs() ([]model.TransferLog, error)

	ListAbsenceReasons() ([]model.AbsenceReason, error)

	// Sessions
	CreateSession(userID string) (*model.Session, error)
	GetSessionUser(token string) (*model.User, error)
	DeleteSession(token string) error
}
