package sqlstore

import (
	"fmt"

	"github.com/gracechapel/shepherd/internal/model"
)

const attendanceCols = `id, date, member_id, care_group_id, status, absence_reason`

func scanAttendance(scanner interface{ Scan(...any) error }) (*model.AttendanceRecord, error) {
	var a model.AttendanceRecord
	err := scanner.Scan(&a.ID, &a.Date, &a.MemberID, &a.CareGroupID, &a.Status, &a.AbsenceReason)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) listAttendanceWhere(where string, args ...any) ([]model.AttendanceRecord, error) {
	rows, err := s.db.Query(`SELECT `+attendanceCols+` FROM attendance `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, *a)
	}
	return records, rows.Err()
}

// UpsertAttendance replaces the whole (date, group) batch: any existing
// records for the pair are deleted before the fresh ones are inserted, so
// at most one record exists per (date, member).
func (s *Store) UpsertAttendance(in model.AttendanceInput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM attendance WHERE date = ? AND care_group_id = ?`,
		in.Date, in.CareGroupID,
	); err != nil {
		return fmt.Errorf("clear attendance batch: %w", err)
	}

	for _, r := range in.Records {
		reason := ""
		if r.Status == model.StatusAbsent {
			reason = r.AbsenceReason
		}
		if _, err := tx.Exec(
			`INSERT INTO attendance (id, date, member_id, care_group_id, status, absence_reason) VALUES (?, ?, ?, ?, ?, ?)`,
			model.NewID("att"), in.Date, r.MemberID, in.CareGroupID, r.Status, reason,
		); err != nil {
			return fmt.Errorf("insert attendance: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListAttendanceByDateGroup(date, groupID string) ([]model.AttendanceRecord, error) {
	return s.listAttendanceWhere(`WHERE date = ? AND care_group_id = ?`, date, groupID)
}

func (s *Store) ListAttendanceByDate(date string) ([]model.AttendanceRecord, error) {
	return s.listAttendanceWhere(`WHERE date = ?`, date)
}

func (s *Store) ListAttendanceByMember(memberID string, limit int) ([]model.AttendanceRecord, error) {
	if limit <= 0 {
		// SQLite treats a negative LIMIT as unbounded.
		limit = -1
	}
	return s.listAttendanceWhere(`WHERE member_id = ? ORDER BY date DESC LIMIT ?`, memberID, limit)
}

func (s *Store) ListAllAttendance() ([]model.AttendanceRecord, error) {
	return s.listAttendanceWhere(`ORDER BY date DESC`)
}
