package model

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

// AttendanceRecord marks one member present or absent on one date.
// At most one record exists per (date, member) pair; saves replace the
// whole (date, group) batch rather than patching individual rows.
type AttendanceRecord struct {
	ID            string           `json:"id"`
	Date          string           `json:"date"`
	MemberID      string           `json:"memberId"`
	CareGroupID   string           `json:"careGroupId"`
	Status        AttendanceStatus `json:"status"`
	AbsenceReason string           `json:"absenceReason,omitempty"`
}

// AttendanceEntry is one member's mark inside a batch save.
type AttendanceEntry struct {
	MemberID      string           `json:"memberId" validate:"required"`
	Status        AttendanceStatus `json:"status" validate:"required,oneof=present absent"`
	AbsenceReason string           `json:"absenceReason,omitempty"`
}

// AttendanceInput is a batch attendance save for one group on one date.
// Applying it removes any existing records for the (date, group) pair and
// inserts fresh ones.
type AttendanceInput struct {
	Date        string            `json:"date" validate:"required"`
	CareGroupID string            `json:"careGroupId" validate:"required"`
	Records     []AttendanceEntry `json:"records" validate:"required,dive"`
}
