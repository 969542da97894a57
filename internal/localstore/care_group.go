package localstore

import (
	"strings"

	"github.com/gracechapel/shepherd/internal/assign"
	"github.com/gracechapel/shepherd/internal/model"
)

func (s *Store) ListCareGroups() ([]model.CareGroup, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.CareGroups, nil
}

func (s *Store) GetCareGroup(id string) (*model.CareGroup, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, g := range doc.CareGroups {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, nil
}

func (s *Store) SetCareGroupLeader(groupID, leaderUserID string) error {
	return s.mutate(func(doc *model.Document) error {
		assign.SetLeaderForGroup(doc, groupID, leaderUserID)
		return nil
	})
}

func (s *Store) ListAbsenceReasons() ([]model.AbsenceReason, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	labels := doc.AbsenceReasons
	if len(labels) == 0 {
		labels = model.DefaultAbsenceReasons
	}
	reasons := make([]model.AbsenceReason, 0, len(labels))
	for _, label := range labels {
		reasons = append(reasons, model.AbsenceReason{ID: reasonID(label), Label: label})
	}
	return reasons, nil
}

// reasonID derives a stable id from a label, e.g. "Sick/Health" -> "sick-health".
func reasonID(label string) string {
	id := strings.ToLower(label)
	id = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, id)
	return strings.Trim(id, "-")
}
