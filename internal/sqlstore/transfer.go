package sqlstore

import (
	"fmt"

	"github.com/gracechapel/shepherd/internal/model"
)

// TransferMember moves the member into toGroupID and appends a transfer
// log entry recording the override and its justification.
func (s *Store) TransferMember(memberID, fromGroupID, toGroupID, reason, date string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE members SET care_group_id = ? WHERE id = ?`, toGroupID, memberID); err != nil {
		return fmt.Errorf("move member: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO transfer_logs (id, member_id, from_group_id, to_group_id, reason, date) VALUES (?, ?, ?, ?, ?, ?)`,
		model.NewID("tx"), memberID, fromGroupID, toGroupID, reason, date,
	); err != nil {
		return fmt.Errorf("append transfer log: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ListTransferLogs() ([]model.TransferLog, error) {
	rows, err := s.db.Query(
		`SELECT id, member_id, from_group_id, to_group_id, reason, date FROM transfer_logs ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfer logs: %w", err)
	}
	defer rows.Close()

	var logs []model.TransferLog
	for rows.Next() {
		var t model.TransferLog
		if err := rows.Scan(&t.ID, &t.MemberID, &t.FromGroupID, &t.ToGroupID, &t.Reason, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transfer log: %w", err)
		}
		logs = append(logs, t)
	}
	return logs, rows.Err()
}
