package model

// Document is the complete local snapshot of every entity, persisted as a
// single JSON file and rewritten whole on every mutation. AbsenceReasons
// stores bare labels; the store derives ids from them when listing.
type Document struct {
	Users          []User             `json:"users"`
	CareGroups     []CareGroup        `json:"careGroups"`
	Members        []Member           `json:"members"`
	Attendance     []AttendanceRecord `json:"attendance"`
	TransferLogs   []TransferLog      `json:"transferLogs"`
	FollowUps      []FollowUpTask     `json:"followUps"`
	AbsenceReasons []string           `json:"absenceReasons"`
	Sessions       []Session          `json:"sessions,omitempty"`
}

// DefaultAdminPassword is applied to admin users that have no credential,
// so a legacy snapshot cannot lock everyone out.
const DefaultAdminPassword = "admin123"

// WeekdayNames in time.Weekday order (Sunday first).
var WeekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayCodes in time.Weekday order; these double as care group ids.
var WeekdayCodes = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// DefaultAbsenceReasons seeds the selectable absence reason labels.
var DefaultAbsenceReasons = []string{"Sick/Health", "Travel", "Work", "Family", "School"}

// DefaultDocument returns the seed snapshot: the canonical seven weekday
// groups, a default admin, and a small starter roster.
func DefaultDocument() *Document {
	doc := &Document{
		Users: []User{
			{ID: "admin1", Name: "Pastor John", Role: RoleAdmin, Password: DefaultAdminPassword},
			{ID: "leader1", Name: "Sarah Johnson", Role: RoleLeader},
			{ID: "leader2", Name: "Michael Brown", Role: RoleLeader},
		},
		Members: []Member{
			{ID: "member1", Name: "Emma Wilson", Phone: "555-0101", DOB: "1995-06-18", CareGroupID: "sun"},
			{ID: "member2", Name: "James Davis", Phone: "555-0102", DOB: "1990-03-12", CareGroupID: "mon"},
			{ID: "member3", Name: "Olivia Martinez", Phone: "555-0103", DOB: "1988-09-13", CareGroupID: "tue"},
			{ID: "member4", Name: "William Garcia", Phone: "555-0104", DOB: "1992-11-25", CareGroupID: "wed"},
			{ID: "member5", Name: "Sophia Rodriguez", Phone: "555-0105", DOB: "1999-02-04", CareGroupID: "thu"},
		},
		Attendance:     []AttendanceRecord{},
		TransferLogs:   []TransferLog{},
		FollowUps:      []FollowUpTask{},
		AbsenceReasons: append([]string(nil), DefaultAbsenceReasons...),
	}
	for i, day := range WeekdayNames {
		doc.CareGroups = append(doc.CareGroups, CareGroup{
			ID:   WeekdayCodes[i],
			Name: day + " Care Group",
			Day:  day,
		})
	}
	return doc
}
