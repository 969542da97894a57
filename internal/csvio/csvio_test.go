package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gracechapel/shepherd/internal/model"
)

func TestMembersRoundTrip(t *testing.T) {
	members := []model.Member{
		{ID: "m1", Name: `Smith, John "JJ"`, Phone: "555-0101", DOB: "1995-06-18", CareGroupID: "sun"},
		{ID: "m2", Name: "Plain Name", Phone: "555-0102", DOB: "1990-03-12", CareGroupID: "mon"},
	}

	var buf bytes.Buffer
	if err := WriteMembers(&buf, members, nil); err != nil {
		t.Fatalf("write: %v", err)
	}

	parsed, err := ParseMembers(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != len(members) {
		t.Fatalf("parsed %d rows, want %d", len(parsed), len(members))
	}
	for i, m := range members {
		if parsed[i].Name != m.Name || parsed[i].Phone != m.Phone || parsed[i].DOB != m.DOB {
			t.Errorf("row %d = %+v, want (%s, %s, %s)", i, parsed[i], m.Name, m.Phone, m.DOB)
		}
	}
}

func TestWriteMembersGroupNameSubstitution(t *testing.T) {
	members := []model.Member{{ID: "m1", Name: "A", Phone: "1", DOB: "2000-01-01", CareGroupID: "sun"}}
	groups := []model.CareGroup{{ID: "sun", Name: "Sunday Care Group", Day: "Sunday"}}

	var buf bytes.Buffer
	if err := WriteMembers(&buf, members, groups); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "Sunday Care Group") {
		t.Errorf("output missing group name: %q", buf.String())
	}
}

func TestWriteAttendanceSubstitutesNames(t *testing.T) {
	records := []model.AttendanceRecord{
		{ID: "a1", Date: "2024-01-07", MemberID: "m1", CareGroupID: "sun", Status: model.StatusAbsent, AbsenceReason: "Sick"},
	}
	members := []model.Member{{ID: "m1", Name: "Emma Wilson"}}
	groups := []model.CareGroup{{ID: "sun", Name: "Sunday Care Group"}}

	var buf bytes.Buffer
	if err := WriteAttendance(&buf, records, members, groups); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Emma Wilson") || !strings.Contains(out, "Sunday Care Group") {
		t.Errorf("output missing substituted names: %q", out)
	}
	if strings.Contains(out, "m1,") {
		t.Errorf("output leaks raw member id: %q", out)
	}
}

func TestParseMembersHeaderless(t *testing.T) {
	in := "Alice,555-1,1990-01-01\nBob,555-2,1991-02-02\n"
	parsed, err := ParseMembers(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("parsed %d rows, want 2", len(parsed))
	}
	if parsed[0].Name != "Alice" || parsed[1].Phone != "555-2" {
		t.Errorf("unexpected rows: %+v", parsed)
	}
}

func TestParseMembersReorderedHeader(t *testing.T) {
	in := "Phone,DOB,Name\n555-1,1990-01-01,Alice\n"
	parsed, err := ParseMembers(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d rows, want 1", len(parsed))
	}
	if parsed[0].Name != "Alice" || parsed[0].Phone != "555-1" || parsed[0].DOB != "1990-01-01" {
		t.Errorf("unexpected row: %+v", parsed[0])
	}
}

func TestParseMembersSkipsIncompleteRows(t *testing.T) {
	in := "name,phone,dob\nAlice,555-1,1990-01-01\nNoPhone,,1991-02-02\n,,\n"
	parsed, err := ParseMembers(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d rows, want 1", len(parsed))
	}
}

func TestParseMembersQuotedFields(t *testing.T) {
	in := "name,phone,dob\n\"Smith, John \"\"JJ\"\"\",555-1,1990-01-01\n"
	parsed, err := ParseMembers(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d rows, want 1", len(parsed))
	}
	if parsed[0].Name != `Smith, John "JJ"` {
		t.Errorf("name = %q", parsed[0].Name)
	}
}

func TestParseMembersEmpty(t *testing.T) {
	parsed, err := ParseMembers(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 0 {
		t.Fatalf("parsed %d rows, want 0", len(parsed))
	}
}
