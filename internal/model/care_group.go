package model

// CareGroup is a recurring small-group meeting tied to one weekday.
// The ID doubles as the weekday code (sun..sat); there is at most one
// group per weekday. LeaderID, when set, references a User with the
// leader role.
type CareGroup struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LeaderID string `json:"leaderId"`
	Day      string `json:"day"`
}
