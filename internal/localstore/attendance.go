package localstore

import (
	"sort"
	"strings"
	"time"

	"github.com/gracechapel/shepherd/internal/model"
)

func (s *Store) UpsertAttendance(in model.AttendanceInput) error {
	return s.mutate(func(doc *model.Document) error {
		ApplyAttendanceSave(doc, in)
		return nil
	})
}

func (s *Store) listAttendanceFiltered(keep func(model.AttendanceRecord) bool) ([]model.AttendanceRecord, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	var records []model.AttendanceRecord
	for _, a := range doc.Attendance {
		if keep(a) {
			records = append(records, a)
		}
	}
	return records, nil
}

func (s *Store) ListAttendanceByDateGroup(date, groupID string) ([]model.AttendanceRecord, error) {
	return s.listAttendanceFiltered(func(a model.AttendanceRecord) bool {
		return a.Date == date && a.CareGroupID == groupID
	})
}

func (s *Store) ListAttendanceByDate(date string) ([]model.AttendanceRecord, error) {
	return s.listAttendanceFiltered(func(a model.AttendanceRecord) bool {
		return a.Date == date
	})
}

func (s *Store) ListAttendanceByMember(memberID string, limit int) ([]model.AttendanceRecord, error) {
	records, err := s.listAttendanceFiltered(func(a model.AttendanceRecord) bool {
		return a.MemberID == memberID
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Store) ListAllAttendance() ([]model.AttendanceRecord, error) {
	records, err := s.listAttendanceFiltered(func(model.AttendanceRecord) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	return records, nil
}

// ApplyAttendanceSave replaces the (date, group) attendance batch in the
// document and derives follow-up tasks for the affected group. Shared
// with the offline-queue reconciler.
func ApplyAttendanceSave(doc *model.Document, in model.AttendanceInput) {
	kept := doc.Attendance[:0]
	for _, a := range doc.Attendance {
		if !(a.Date == in.Date && a.CareGroupID == in.CareGroupID) {
			kept = append(kept, a)
		}
	}
	doc.Attendance = kept

	for _, r := range in.Records {
		reason := ""
		if r.Status == model.StatusAbsent {
			reason = r.AbsenceReason
		}
		doc.Attendance = append(doc.Attendance, model.AttendanceRecord{
			ID:            model.NewID("att"),
			Date:          in.Date,
			MemberID:      r.MemberID,
			CareGroupID:   in.CareGroupID,
			Status:        r.Status,
			AbsenceReason: reason,
		})
	}

	leaderUserID := groupLeaderID(doc, in.CareGroupID)

	// Immediate follow-up for sick-related absences in this batch.
	for _, r := range in.Records {
		if r.Status != model.StatusAbsent {
			continue
		}
		if !strings.Contains(strings.ToLower(r.AbsenceReason), "sick") {
			continue
		}
		reason := r.AbsenceReason
		if reason == "" {
			reason = "Sick/Health"
		}
		OpenFollowUpIfNone(doc, r.MemberID, in.CareGroupID, leaderUserID, reason)
	}

	DeriveRepeatedAbsenceFollowUps(doc, in.CareGroupID)
}

// DeriveRepeatedAbsenceFollowUps opens a task for each member of the group
// whose two most recent attendance records are both absences, using the
// most recent absence reason (or "Repeated absence"). Safe to re-run: the
// open-task guard prevents duplicates.
func DeriveRepeatedAbsenceFollowUps(doc *model.Document, careGroupID string) {
	leaderUserID := groupLeaderID(doc, careGroupID)
	for _, m := range doc.Members {
		if m.CareGroupID != careGroupID {
			continue
		}
		var recs []model.AttendanceRecord
		for _, a := range doc.Attendance {
			if a.MemberID == m.ID {
				recs = append(recs, a)
			}
		}
		if len(recs) < 2 {
			continue
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].Date > recs[j].Date })
		if recs[0].Status != model.StatusAbsent || recs[1].Status != model.StatusAbsent {
			continue
		}
		reason := recs[0].AbsenceReason
		if reason == "" {
			reason = "Repeated absence"
		}
		OpenFollowUpIfNone(doc, m.ID, careGroupID, leaderUserID, reason)
	}
}

// OpenFollowUpIfNone appends an open follow-up task unless the member
// already has one open.
func OpenFollowUpIfNone(doc *model.Document, memberID, careGroupID, leaderUserID, reason string) {
	for _, f := range doc.FollowUps {
		if f.MemberID == memberID && f.Status == model.FollowUpOpen {
			return
		}
	}
	doc.FollowUps = append(doc.FollowUps, model.FollowUpTask{
		ID:           model.NewID("fu"),
		MemberID:     memberID,
		CareGroupID:  careGroupID,
		LeaderUserID: leaderUserID,
		Reason:       reason,
		Status:       model.FollowUpOpen,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

func groupLeaderID(doc *model.Document, groupID string) string {
	for _, g := range doc.CareGroups {
		if g.ID == groupID {
			return g.LeaderID
		}
	}
	return ""
}
