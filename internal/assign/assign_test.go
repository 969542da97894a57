package assign

import (
	"testing"
	"time"

	"github.com/gracechapel/shepherd/internal/model"
)

func TestGroupIDForDOBWednesdaysAcrossYear(t *testing.T) {
	// Walk a full year week by week starting from a known Wednesday.
	start := time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC) // Wednesday
	for i := 0; i < 53; i++ {
		dob := start.AddDate(0, 0, i*7).Format("2006-01-02")
		got, err := GroupIDForDOB(dob)
		if err != nil {
			t.Fatalf("GroupIDForDOB(%s): %v", dob, err)
		}
		if got != "wed" {
			t.Errorf("GroupIDForDOB(%s) = %q, want %q", dob, got, "wed")
		}
	}
}

func TestGroupIDForDOBLeapDay(t *testing.T) {
	got, err := GroupIDForDOB("2024-02-29")
	if err != nil {
		t.Fatalf("leap day: %v", err)
	}
	// 2024-02-29 was a Thursday.
	if got != "thu" {
		t.Errorf("GroupIDForDOB(2024-02-29) = %q, want %q", got, "thu")
	}
}

func TestGroupIDForDOBYearBoundaries(t *testing.T) {
	cases := map[string]string{
		"2023-12-31": "sun",
		"2024-01-01": "mon",
		"2024-12-31": "tue",
		"2025-01-01": "wed",
	}
	for dob, want := range cases {
		got, err := GroupIDForDOB(dob)
		if err != nil {
			t.Fatalf("GroupIDForDOB(%s): %v", dob, err)
		}
		if got != want {
			t.Errorf("GroupIDForDOB(%s) = %q, want %q", dob, got, want)
		}
	}
}

func TestGroupIDForDOBRejectsGarbage(t *testing.T) {
	if _, err := GroupIDForDOB("not-a-date"); err == nil {
		t.Fatal("expected error for unparseable dob")
	}
}

func TestAssignGroupByDOB(t *testing.T) {
	m := AssignGroupByDOB(model.Member{ID: "m1", DOB: "1995-06-18"}) // Sunday
	if m.CareGroupID != "sun" {
		t.Errorf("careGroupId = %q, want %q", m.CareGroupID, "sun")
	}

	// Unparseable DOB leaves the member untouched.
	m = AssignGroupByDOB(model.Member{ID: "m2", DOB: "", CareGroupID: "wed"})
	if m.CareGroupID != "wed" {
		t.Errorf("careGroupId = %q, want unchanged %q", m.CareGroupID, "wed")
	}
}

func TestSetLeaderForGroupMovesLeader(t *testing.T) {
	doc := model.DefaultDocument()
	SetLeaderForGroup(doc, "sun", "leader1")
	SetLeaderForGroup(doc, "mon", "leader1")

	var sun, mon model.CareGroup
	for _, g := range doc.CareGroups {
		switch g.ID {
		case "sun":
			sun = g
		case "mon":
			mon = g
		}
	}
	if sun.LeaderID != "" {
		t.Errorf("sun leader = %q, want cleared", sun.LeaderID)
	}
	if mon.LeaderID != "leader1" {
		t.Errorf("mon leader = %q, want leader1", mon.LeaderID)
	}
	for _, u := range doc.Users {
		if u.ID == "leader1" && u.CareGroupID != "mon" {
			t.Errorf("leader1 careGroupId = %q, want mon", u.CareGroupID)
		}
	}
}

func TestSetLeaderForGroupClearsWithEmptyID(t *testing.T) {
	doc := model.DefaultDocument()
	SetLeaderForGroup(doc, "tue", "leader2")
	SetLeaderForGroup(doc, "tue", "")

	for _, g := range doc.CareGroups {
		if g.ID == "tue" && g.LeaderID != "" {
			t.Errorf("tue leader = %q, want cleared", g.LeaderID)
		}
	}
	for _, u := range doc.Users {
		if u.ID == "leader2" && u.CareGroupID != "" {
			t.Errorf("leader2 careGroupId = %q, want cleared", u.CareGroupID)
		}
	}
}

func TestPromoteMemberToLeader(t *testing.T) {
	doc := model.DefaultDocument()
	ok := PromoteMemberToLeader(doc, "wed", "member4", "hash123")
	if !ok {
		t.Fatal("expected promotion to succeed")
	}

	var leader *model.User
	for i := range doc.Users {
		if doc.Users[i].ID == "leader-member4" {
			leader = &doc.Users[i]
		}
	}
	if leader == nil {
		t.Fatal("promoted leader user not created")
	}
	if leader.Role != model.RoleLeader {
		t.Errorf("role = %q, want leader", leader.Role)
	}
	if leader.CareGroupID != "wed" {
		t.Errorf("careGroupId = %q, want wed", leader.CareGroupID)
	}
	if leader.PasswordHash != "hash123" {
		t.Errorf("passwordHash = %q, want hash123", leader.PasswordHash)
	}
	for _, g := range doc.CareGroups {
		if g.ID == "wed" && g.LeaderID != "leader-member4" {
			t.Errorf("wed leader = %q, want leader-member4", g.LeaderID)
		}
	}

	// Promoting again must not overwrite the existing credential.
	if ok := PromoteMemberToLeader(doc, "thu", "member4", "otherhash"); !ok {
		t.Fatal("expected re-promotion to succeed")
	}
	for _, u := range doc.Users {
		if u.ID == "leader-member4" && u.PasswordHash != "hash123" {
			t.Errorf("passwordHash overwritten to %q", u.PasswordHash)
		}
	}
}

func TestPromoteUnknownMember(t *testing.T) {
	doc := model.DefaultDocument()
	if PromoteMemberToLeader(doc, "sun", "nope", "h") {
		t.Fatal("expected promotion of unknown member to fail")
	}
}
