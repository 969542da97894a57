package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/gracechapel/shepherd/internal/model"
)

const groupCols = `id, name, leader_id, day`

func scanGroup(scanner interface{ Scan(...any) error }) (*model.CareGroup, error) {
	var g model.CareGroup
	err := scanner.Scan(&g.ID, &g.Name, &g.LeaderID, &g.Day)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) ListCareGroups() ([]model.CareGroup, error) {
	rows, err := s.db.Query(`SELECT ` + groupCols + ` FROM care_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list care groups: %w", err)
	}
	defer rows.Close()

	var groups []model.CareGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan care group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

func (s *Store) GetCareGroup(id string) (*model.CareGroup, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM care_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get care group: %w", err)
	}
	return g, nil
}

// SetCareGroupLeader assigns leaderUserID (possibly empty) as the group's
// leader, clearing any group the leader previously led and keeping the
// leader users' care_group_id mapping in step.
func (s *Store) SetCareGroupLeader(groupID, leaderUserID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if leaderUserID != "" {
		if _, err := tx.Exec(`UPDATE care_groups SET leader_id = '' WHERE leader_id = ?`, leaderUserID); err != nil {
			return fmt.Errorf("clear previous group: %w", err)
		}
	}
	if _, err := tx.Exec(`UPDATE care_groups SET leader_id = ? WHERE id = ?`, leaderUserID, groupID); err != nil {
		return fmt.Errorf("set group leader: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE users SET care_group_id = NULL WHERE role = 'leader' AND care_group_id = ? AND id != ?`,
		groupID, leaderUserID,
	); err != nil {
		return fmt.Errorf("clear displaced leader: %w", err)
	}
	if leaderUserID != "" {
		if _, err := tx.Exec(`UPDATE users SET care_group_id = ? WHERE id = ?`, groupID, leaderUserID); err != nil {
			return fmt.Errorf("map leader to group: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListAbsenceReasons() ([]model.AbsenceReason, error) {
	rows, err := s.db.Query(
		`SELECT id, label FROM absence_reasons WHERE active = 1 ORDER BY sort_order, label`,
	)
	if err != nil {
		return nil, fmt.Errorf("list absence reasons: %w", err)
	}
	defer rows.Close()

	var reasons []model.AbsenceReason
	for rows.Next() {
		var r model.AbsenceReason
		if err := rows.Scan(&r.ID, &r.Label); err != nil {
			return nil, fmt.Errorf("scan absence reason: %w", err)
		}
		reasons = append(reasons, r)
	}
	return reasons, rows.Err()
}
