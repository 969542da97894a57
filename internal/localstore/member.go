package localstore

import "github.com/gracechapel/shepherd/internal/model"

func (s *Store) ListMembers() ([]model.Member, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Members, nil
}

func (s *Store) ListMembersByGroup(groupID string) ([]model.Member, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	var members []model.Member
	for _, m := range doc.Members {
		if m.CareGroupID == groupID {
			members = append(members, m)
		}
	}
	return members, nil
}

func (s *Store) GetMember(id string) (*model.Member, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, m := range doc.Members {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertMember(m model.Member) (*model.Member, error) {
	if m.ID == "" {
		m.ID = model.NewID("member")
	}
	err := s.mutate(func(doc *model.Document) error {
		doc.Members = append(doc.Members, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) BulkInsertMembers(members []model.Member) error {
	return s.mutate(func(doc *model.Document) error {
		for _, m := range members {
			if m.ID == "" {
				m.ID = model.NewID("member")
			}
			doc.Members = append(doc.Members, m)
		}
		return nil
	})
}

func (s *Store) UpdateMemberProfile(id, name, phone, dob string) error {
	return s.mutate(func(doc *model.Document) error {
		ApplyMemberUpdate(doc, id, name, phone, dob)
		return nil
	})
}

func (s *Store) UpdateMemberGroup(id, groupID string) error {
	return s.mutate(func(doc *model.Document) error {
		for i := range doc.Members {
			if doc.Members[i].ID == id {
				doc.Members[i].CareGroupID = groupID
			}
		}
		return nil
	})
}

func (s *Store) MergeMembers(primaryID string, duplicateIDs []string) error {
	if len(duplicateIDs) == 0 {
		return nil
	}
	return s.mutate(func(doc *model.Document) error {
		dupes := make(map[string]bool, len(duplicateIDs))
		for _, id := range duplicateIDs {
			dupes[id] = true
		}
		for i := range doc.Attendance {
			if dupes[doc.Attendance[i].MemberID] {
				doc.Attendance[i].MemberID = primaryID
			}
		}
		kept := doc.Members[:0]
		for _, m := range doc.Members {
			if !dupes[m.ID] {
				kept = append(kept, m)
			}
		}
		doc.Members = kept
		return nil
	})
}

func (s *Store) TransferMember(memberID, fromGroupID, toGroupID, reason, date string) error {
	return s.mutate(func(doc *model.Document) error {
		ApplyMemberTransfer(doc, memberID, fromGroupID, toGroupID, reason, date)
		return nil
	})
}

func (s *Store) ListTransferLogs() ([]model.TransferLog, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.TransferLogs, nil
}

// ApplyMemberUpdate replaces the member's profile fields in place. Shared
// with the offline-queue reconciler, which replays the same transform
// against a working copy of the document.
func ApplyMemberUpdate(doc *model.Document, id, name, phone, dob string) {
	for i := range doc.Members {
		if doc.Members[i].ID == id {
			doc.Members[i].Name = name
			doc.Members[i].Phone = phone
			doc.Members[i].DOB = dob
		}
	}
}

// ApplyMemberTransfer moves the member and appends the audit log entry.
// Shared with the offline-queue reconciler.
func ApplyMemberTransfer(doc *model.Document, memberID, fromGroupID, toGroupID, reason, date string) {
	for i := range doc.Members {
		if doc.Members[i].ID == memberID {
			doc.Members[i].CareGroupID = toGroupID
		}
	}
	doc.TransferLogs = append(doc.TransferLogs, model.TransferLog{
		ID:          model.NewID("tx"),
		MemberID:    memberID,
		FromGroupID: fromGroupID,
		ToGroupID:   toGroupID,
		Reason:      reason,
		Date:        date,
	})
}
