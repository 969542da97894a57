package sqlstore

import (
	"fmt"
	"time"

	"github.com/gracechapel/shepherd/internal/model"
)

const followUpCols = `id, member_id, care_group_id, leader_user_id, reason, status, created_at, completed_at`

func scanFollowUp(scanner interface{ Scan(...any) error }) (*model.FollowUpTask, error) {
	var f model.FollowUpTask
	err := scanner.Scan(&f.ID, &f.MemberID, &f.CareGroupID, &f.LeaderUserID, &f.Reason, &f.Status, &f.CreatedAt, &f.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFollowUpIfNotExists opens a follow-up task for the member unless
// one is already open. The open-task guard is what keeps repeated
// attendance re-saves from piling up duplicate tasks.
func (s *Store) CreateFollowUpIfNotExists(memberID, groupID, leaderUserID, reason string) error {
	var open int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM follow_ups WHERE member_id = ? AND status = 'open'`, memberID,
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("check open follow-up: %w", err)
	}
	if open > 0 {
		return nil
	}

	_, err = s.db.Exec(
		`INSERT INTO follow_ups (id, member_id, care_group_id, leader_user_id, reason, status, created_at) VALUES (?, ?, ?, ?, ?, 'open', ?)`,
		model.NewID("fu"), memberID, groupID, leaderUserID, reason, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert follow-up: %w", err)
	}
	return nil
}

func (s *Store) ListFollowUpsByGroup(groupID string) ([]model.FollowUpTask, error) {
	rows, err := s.db.Query(
		`SELECT `+followUpCols+` FROM follow_ups WHERE care_group_id = ? ORDER BY created_at DESC`, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	defer rows.Close()

	var tasks []model.FollowUpTask
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan follow-up: %w", err)
		}
		tasks = append(tasks, *f)
	}
	return tasks, rows.Err()
}

func (s *Store) CompleteFollowUp(id string) error {
	_, err := s.db.Exec(
		`UPDATE follow_ups SET status = 'done', completed_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("complete follow-up: %w", err)
	}
	return nil
}

func (s *Store) ReopenFollowUp(id string) error {
	_, err := s.db.Exec(`UPDATE follow_ups SET status = 'open', completed_at = '' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("reopen follow-up: %w", err)
	}
	return nil
}
