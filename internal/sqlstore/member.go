package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/gracechapel/shepherd/internal/model"
)

const memberCols = `id, name, phone, dob, care_group_id`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	err := scanner.Scan(&m.ID, &m.Name, &m.Phone, &m.DOB, &m.CareGroupID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) listMembersWhere(where string, args ...any) ([]model.Member, error) {
	rows, err := s.db.Query(`SELECT `+memberCols+` FROM members `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *Store) ListMembers() ([]model.Member, error) {
	return s.listMembersWhere(`ORDER BY name`)
}

func (s *Store) ListMembersByGroup(groupID string) ([]model.Member, error) {
	return s.listMembersWhere(`WHERE care_group_id = ? ORDER BY name`, groupID)
}

func (s *Store) GetMember(id string) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *Store) InsertMember(m model.Member) (*model.Member, error) {
	if m.ID == "" {
		m.ID = model.NewID("member")
	}
	_, err := s.db.Exec(
		`INSERT INTO members (id, name, phone, dob, care_group_id) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Phone, m.DOB, m.CareGroupID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return s.GetMember(m.ID)
}

func (s *Store) BulkInsertMembers(members []model.Member) error {
	if len(members) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO members (id, name, phone, dob, care_group_id) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range members {
		if m.ID == "" {
			m.ID = model.NewID("member")
		}
		if _, err := stmt.Exec(m.ID, m.Name, m.Phone, m.DOB, m.CareGroupID); err != nil {
			return fmt.Errorf("insert member %s: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

func (s *Store) UpdateMemberProfile(id, name, phone, dob string) error {
	_, err := s.db.Exec(
		`UPDATE members SET name = ?, phone = ?, dob = ? WHERE id = ?`,
		name, phone, dob, id,
	)
	if err != nil {
		return fmt.Errorf("update member profile: %w", err)
	}
	return nil
}

func (s *Store) UpdateMemberGroup(id, groupID string) error {
	_, err := s.db.Exec(`UPDATE members SET care_group_id = ? WHERE id = ?`, groupID, id)
	if err != nil {
		return fmt.Errorf("update member group: %w", err)
	}
	return nil
}

// MergeMembers reassigns attendance from the duplicates to the primary
// member, then deletes the duplicate rows. Two independent statements;
// there is no compensating rollback if the second fails.
func (s *Store) MergeMembers(primaryID string, duplicateIDs []string) error {
	if len(duplicateIDs) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(duplicateIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(duplicateIDs)+1)
	args = append(args, primaryID)
	for _, id := range duplicateIDs {
		args = append(args, id)
	}
	if _, err := s.db.Exec(
		`UPDATE attendance SET member_id = ? WHERE member_id IN (`+placeholders+`)`, args...,
	); err != nil {
		return fmt.Errorf("reassign attendance: %w", err)
	}

	delArgs := args[1:]
	if _, err := s.db.Exec(
		`DELETE FROM members WHERE id IN (`+placeholders+`)`, delArgs...,
	); err != nil {
		return fmt.Errorf("delete duplicates: %w", err)
	}
	return nil
}
