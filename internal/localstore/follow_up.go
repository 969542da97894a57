package localstore

import (
	"time"

	"github.com/gracechapel/shepherd/internal/model"
)

func (s *Store) CreateFollowUpIfNotExists(memberID, groupID, leaderUserID, reason string) error {
	return s.mutate(func(doc *model.Document) error {
		OpenFollowUpIfNone(doc, memberID, groupID, leaderUserID, reason)
		return nil
	})
}

func (s *Store) ListFollowUpsByGroup(groupID string) ([]model.FollowUpTask, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	var tasks []model.FollowUpTask
	for _, f := range doc.FollowUps {
		if f.CareGroupID == groupID {
			tasks = append(tasks, f)
		}
	}
	return tasks, nil
}

func (s *Store) CompleteFollowUp(id string) error {
	return s.mutate(func(doc *model.Document) error {
		for i := range doc.FollowUps {
			if doc.FollowUps[i].ID == id {
				doc.FollowUps[i].Status = model.FollowUpDone
				doc.FollowUps[i].CompletedAt = time.Now().UTC().Format(time.RFC3339)
			}
		}
		return nil
	})
}

func (s *Store) ReopenFollowUp(id string) error {
	return s.mutate(func(doc *model.Document) error {
		for i := range doc.FollowUps {
			if doc.FollowUps[i].ID == id {
				doc.FollowUps[i].Status = model.FollowUpOpen
				doc.FollowUps[i].CompletedAt = ""
			}
		}
		return nil
	})
}
