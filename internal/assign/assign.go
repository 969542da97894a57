// Package assign holds the pure functions behind weekday-based group
// placement and leader management. Members join the care group matching
// their date of birth's weekday unless an admin transfers them manually.
package assign

import (
	"fmt"
	"time"

	"github.com/gracechapel/shepherd/internal/model"
)

// DayIDs maps weekday names to group ids.
var DayIDs = map[string]string{
	"Sunday":    "sun",
	"Monday":    "mon",
	"Tuesday":   "tue",
	"Wednesday": "wed",
	"Thursday":  "thu",
	"Friday":    "fri",
	"Saturday":  "sat",
}

// IDToDay is the inverse of DayIDs.
var IDToDay = map[string]string{
	"sun": "Sunday",
	"mon": "Monday",
	"tue": "Tuesday",
	"wed": "Wednesday",
	"thu": "Thursday",
	"fri": "Friday",
	"sat": "Saturday",
}

// DayNameFromDOB returns the weekday name for an ISO date string.
func DayNameFromDOB(dob string) (string, error) {
	t, err := parseDOB(dob)
	if err != nil {
		return "", err
	}
	return model.WeekdayNames[int(t.Weekday())], nil
}

// GroupIDForDOB returns the weekday group id (sun..sat) for an ISO date
// string.
func GroupIDForDOB(dob string) (string, error) {
	t, err := parseDOB(dob)
	if err != nil {
		return "", err
	}
	return model.WeekdayCodes[int(t.Weekday())], nil
}

// AssignGroupByDOB fills in the member's care group from their DOB.
// Members with an unparseable DOB are left untouched.
func AssignGroupByDOB(m model.Member) model.Member {
	id, err := GroupIDForDOB(m.DOB)
	if err != nil {
		return m
	}
	m.CareGroupID = id
	return m
}

func parseDOB(dob string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", dob); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, dob); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parse dob %q", dob)
}

// SetLeaderForGroup assigns leaderID as the leader of groupID in the
// document, clearing any group the leader previously led and keeping the
// leader users' careGroupId mapping consistent. An empty leaderID clears
// the group's leader.
func SetLeaderForGroup(doc *model.Document, groupID, leaderID string) {
	if leaderID != "" {
		for i := range doc.CareGroups {
			if doc.CareGroups[i].LeaderID == leaderID {
				doc.CareGroups[i].LeaderID = ""
			}
		}
	}
	for i := range doc.CareGroups {
		if doc.CareGroups[i].ID == groupID {
			doc.CareGroups[i].LeaderID = leaderID
		}
	}
	for i := range doc.Users {
		u := &doc.Users[i]
		if u.Role != model.RoleLeader {
			continue
		}
		switch {
		case u.ID == leaderID:
			u.CareGroupID = groupID
		case u.CareGroupID == groupID && u.ID != leaderID:
			u.CareGroupID = ""
		}
	}
}

// PromoteMemberToLeader creates (or refreshes) a leader user for the given
// member and assigns them as groupID's leader. passwordHash is applied
// only when the user has no credential yet; pass the hash of a freshly
// generated password. Reports whether the member was found.
func PromoteMemberToLeader(doc *model.Document, groupID, memberID, passwordHash string) bool {
	var member *model.Member
	for i := range doc.Members {
		if doc.Members[i].ID == memberID {
			member = &doc.Members[i]
			break
		}
	}
	if member == nil {
		return false
	}

	leaderUserID := "leader-" + member.ID
	found := false
	for i := range doc.Users {
		if doc.Users[i].ID != leaderUserID {
			continue
		}
		u := &doc.Users[i]
		u.Name = member.Name
		u.Role = model.RoleLeader
		u.CareGroupID = groupID
		if u.Password == "" && u.PasswordHash == "" {
			u.PasswordHash = passwordHash
		}
		found = true
		break
	}
	if !found {
		doc.Users = append(doc.Users, model.User{
			ID:           leaderUserID,
			Name:         member.Name,
			Role:         model.RoleLeader,
			CareGroupID:  groupID,
			PasswordHash: passwordHash,
		})
	}

	for i := range doc.CareGroups {
		if doc.CareGroups[i].LeaderID == leaderUserID {
			doc.CareGroups[i].LeaderID = ""
		}
	}
	for i := range doc.CareGroups {
		if doc.CareGroups[i].ID == groupID {
			doc.CareGroups[i].LeaderID = leaderUserID
		}
	}
	return true
}

// ClearGroupLeader removes groupID's leader and clears the leader user's
// group mapping.
func ClearGroupLeader(doc *model.Document, groupID string) {
	var currentLeaderID string
	for i := range doc.CareGroups {
		if doc.CareGroups[i].ID == groupID {
			currentLeaderID = doc.CareGroups[i].LeaderID
			doc.CareGroups[i].LeaderID = ""
		}
	}
	if currentLeaderID == "" {
		return
	}
	for i := range doc.Users {
		if doc.Users[i].ID == currentLeaderID {
			doc.Users[i].CareGroupID = ""
		}
	}
}
