package model

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLeader Role = "leader"
)

// User is an account that can sign in: either an admin or a group leader.
// Password carries a legacy plaintext credential; PasswordHash holds either
// a SHA-256 hex digest (legacy) or a bcrypt hash. At least one admin user
// must exist at all times; that rule is enforced where deletion happens,
// not here.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	CareGroupID  string `json:"careGroupId,omitempty"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// SessionUser is the subset of User persisted with a session and returned
// to clients after login. Credentials never leave the server.
type SessionUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	CareGroupID string `json:"careGroupId,omitempty"`
}

func (u *User) SessionUser() SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Role: u.Role, CareGroupID: u.CareGroupID}
}
