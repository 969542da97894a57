// Package csvio handles CSV export of members, attendance, and leaders,
// and import of member rosters.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gracechapel/shepherd/internal/model"
)

// MemberImport is one parsed roster row. Group assignment and ID
// generation happen at the import call site.
type MemberImport struct {
	Name  string
	Phone string
	DOB   string
}

// WriteMembers exports the roster. When groups is non-nil the group
// column carries the group name instead of the raw ID, which is what
// the admin export shows.
func WriteMembers(w io.Writer, members []model.Member, groups []model.CareGroup) error {
	cw := csv.NewWriter(w)
	names := groupNames(groups)

	if err := cw.Write([]string{"id", "name", "phone", "dob", "careGroupId"}); err != nil {
		return fmt.Errorf("write members header: %w", err)
	}
	for _, m := range members {
		group := m.CareGroupID
		if groups != nil {
			group = names[m.CareGroupID]
		}
		if err := cw.Write([]string{m.ID, m.Name, m.Phone, m.DOB, group}); err != nil {
			return fmt.Errorf("write member row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAttendance exports attendance history with member and group
// names substituted for their IDs.
func WriteAttendance(w io.Writer, records []model.AttendanceRecord, members []model.Member, groups []model.CareGroup) error {
	cw := csv.NewWriter(w)
	memberNames := make(map[string]string, len(members))
	for _, m := range members {
		memberNames[m.ID] = m.Name
	}
	names := groupNames(groups)

	if err := cw.Write([]string{"id", "date", "memberName", "groupName", "status", "absenceReason"}); err != nil {
		return fmt.Errorf("write attendance header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{
			r.ID, r.Date,
			memberNames[r.MemberID], names[r.CareGroupID],
			string(r.Status), r.AbsenceReason,
		}); err != nil {
			return fmt.Errorf("write attendance row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLeaders exports the leader accounts with their group names.
func WriteLeaders(w io.Writer, leaders []model.User, groups []model.CareGroup) error {
	cw := csv.NewWriter(w)
	names := groupNames(groups)

	if err := cw.Write([]string{"id", "name", "role", "groupName"}); err != nil {
		return fmt.Errorf("write leaders header: %w", err)
	}
	for _, u := range leaders {
		if err := cw.Write([]string{u.ID, u.Name, string(u.Role), names[u.CareGroupID]}); err != nil {
			return fmt.Errorf("write leader row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseMembers reads a roster CSV. The header row is optional and
// matched case-insensitively; with a header the name/phone/dob columns
// may appear in any order, without one the first three columns are
// taken positionally. Rows missing any of the three fields are skipped.
func ParseMembers(r io.Reader) ([]MemberImport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse members csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idxName, idxPhone, idxDOB := 0, 1, 2
	start := 0
	header := rows[0]
	hn, hp, hd := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			hn = i
		case "phone":
			hp = i
		case "dob":
			hd = i
		}
	}
	if hn >= 0 && hp >= 0 && hd >= 0 {
		idxName, idxPhone, idxDOB = hn, hp, hd
		start = 1
	}

	var out []MemberImport
	for _, row := range rows[start:] {
		rec := MemberImport{
			Name:  field(row, idxName),
			Phone: field(row, idxPhone),
			DOB:   field(row, idxDOB),
		}
		if rec.Name == "" || rec.Phone == "" || rec.DOB == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func groupNames(groups []model.CareGroup) map[string]string {
	m := make(map[string]string, len(groups))
	for _, g := range groups {
		m[g.ID] = g.Name
	}
	return m
}
