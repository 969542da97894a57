package localstore

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	return New(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestLoadSeedsDefaultDocument(t *testing.T) {
	s := setupStore(t)

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.CareGroups) != 7 {
		t.Errorf("care groups = %d, want 7", len(doc.CareGroups))
	}
	admins, err := s.ListAdmins()
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(admins) != 1 || admins[0].ID != "admin1" {
		t.Errorf("admins = %+v, want single admin1", admins)
	}
}

func TestCorruptSnapshotResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	s := New(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.CareGroups) != 7 {
		t.Errorf("care groups = %d, want default 7 after reset", len(doc.CareGroups))
	}
}

func TestMigrateLegacyShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	legacy := map[string]any{
		"users": []map[string]any{
			{"id": "admin1", "name": "Pastor John", "role": "admin"},
		},
		"careGroups": []map[string]any{
			{"id": "group1", "name": "First Group"},
			{"id": "group2", "name": "Second Group"},
		},
		"members": []map[string]any{
			{"id": "m1", "name": "Old Member", "phone": "555-1", "careGroupId": "group1"},
			{"id": "m2", "name": "Dated Member", "phone": "555-2", "dob": "1995-06-18", "careGroupId": "group2"},
		},
	}
	raw, _ := json.Marshal(legacy)
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("write legacy snapshot: %v", err)
	}

	s := New(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(doc.CareGroups) != 7 {
		t.Fatalf("care groups = %d, want canonical 7", len(doc.CareGroups))
	}
	for _, g := range doc.CareGroups {
		if g.Day == "" {
			t.Errorf("group %s has no weekday", g.ID)
		}
	}

	byID := map[string]model.Member{}
	for _, m := range doc.Members {
		byID[m.ID] = m
	}
	// Missing DOB gets a placeholder and a recomputed group.
	if byID["m1"].DOB == "" {
		t.Error("m1 dob still empty after migration")
	}
	// Legacy group2 maps to mon, but a known DOB wins nothing extra here;
	// the member keeps a valid weekday group.
	if byID["m2"].CareGroupID != "mon" {
		t.Errorf("m2 group = %q, want mon", byID["m2"].CareGroupID)
	}

	// Admin with no credential gets the default password.
	admin, err := s.GetUserByID("admin1")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if admin.Password != model.DefaultAdminPassword {
		t.Errorf("admin password = %q, want default", admin.Password)
	}

	if doc.TransferLogs == nil || doc.FollowUps == nil || doc.AbsenceReasons == nil {
		t.Error("missing arrays not initialized")
	}
}

func TestUpsertAttendanceReplacesBatch(t *testing.T) {
	s := setupStore(t)

	first := model.AttendanceInput{
		Date: "2024-01-07", CareGroupID: "sun",
		Records: []model.AttendanceEntry{
			{MemberID: "member1", Status: model.StatusPresent},
		},
	}
	if err := s.UpsertAttendance(first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := model.AttendanceInput{
		Date: "2024-01-07", CareGroupID: "sun",
		Records: []model.AttendanceEntry{
			{MemberID: "member1", Status: model.StatusAbsent, AbsenceReason: "Travel"},
		},
	}
	if err := s.UpsertAttendance(second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	records, err := s.ListAttendanceByDateGroup("2024-01-07", "sun")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 (no residue)", len(records))
	}
	if records[0].Status != model.StatusAbsent || records[0].AbsenceReason != "Travel" {
		t.Errorf("record = %+v, want second save to win", records[0])
	}
}

func TestSickAbsenceOpensFollowUp(t *testing.T) {
	s := setupStore(t)

	in := model.AttendanceInput{
		Date: "2024-01-07", CareGroupID: "sun",
		Records: []model.AttendanceEntry{
			{MemberID: "member1", Status: model.StatusAbsent, AbsenceReason: "Sick"},
		},
	}
	if err := s.UpsertAttendance(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	tasks, err := s.ListFollowUpsByGroup("sun")
	if err != nil {
		t.Fatalf("list follow-ups: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Reason != "Sick" || tasks[0].Status != model.FollowUpOpen {
		t.Errorf("task = %+v", tasks[0])
	}

	// Re-saving the same batch must not duplicate the open task.
	if err := s.UpsertAttendance(in); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	tasks, _ = s.ListFollowUpsByGroup("sun")
	if len(tasks) != 1 {
		t.Errorf("tasks after re-save = %d, want 1", len(tasks))
	}
}

func TestTwoConsecutiveAbsencesOpenFollowUp(t *testing.T) {
	s := setupStore(t)

	for i, date := range []string{"2024-01-07", "2024-01-14"} {
		in := model.AttendanceInput{
			Date: date, CareGroupID: "sun",
			Records: []model.AttendanceEntry{
				{MemberID: "member1", Status: model.StatusAbsent, AbsenceReason: "Travel"},
			},
		}
		if err := s.UpsertAttendance(in); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	tasks, err := s.ListFollowUpsByGroup("sun")
	if err != nil {
		t.Fatalf("list follow-ups: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want exactly 1", len(tasks))
	}
	if tasks[0].Reason != "Travel" {
		t.Errorf("reason = %q, want most recent absence reason", tasks[0].Reason)
	}
}

func TestRepeatedAbsenceFallbackReason(t *testing.T) {
	doc := model.DefaultDocument()
	ApplyAttendanceSave(doc, model.AttendanceInput{
		Date: "2024-01-07", CareGroupID: "sun",
		Records: []model.AttendanceEntry{{MemberID: "member1", Status: model.StatusAbsent}},
	})
	ApplyAttendanceSave(doc, model.AttendanceInput{
		Date: "2024-01-14", CareGroupID: "sun",
		Records: []model.AttendanceEntry{{MemberID: "member1", Status: model.StatusAbsent}},
	})

	if len(doc.FollowUps) != 1 {
		t.Fatalf("follow-ups = %d, want 1", len(doc.FollowUps))
	}
	if doc.FollowUps[0].Reason != "Repeated absence" {
		t.Errorf("reason = %q, want fallback", doc.FollowUps[0].Reason)
	}
}

func TestCompleteAndReopenFollowUp(t *testing.T) {
	s := setupStore(t)
	if err := s.CreateFollowUpIfNotExists("member1", "sun", "leader1", "Sick"); err != nil {
		t.Fatalf("create: %v", err)
	}
	tasks, _ := s.ListFollowUpsByGroup("sun")
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	id := tasks[0].ID

	if err := s.CompleteFollowUp(id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	tasks, _ = s.ListFollowUpsByGroup("sun")
	if tasks[0].Status != model.FollowUpDone || tasks[0].CompletedAt == "" {
		t.Errorf("task after complete = %+v", tasks[0])
	}

	if err := s.ReopenFollowUp(id); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	tasks, _ = s.ListFollowUpsByGroup("sun")
	if tasks[0].Status != model.FollowUpOpen || tasks[0].CompletedAt != "" {
		t.Errorf("task after reopen = %+v", tasks[0])
	}
}

func TestMergeMembersReassignsAttendance(t *testing.T) {
	s := setupStore(t)

	if err := s.UpsertAttendance(model.AttendanceInput{
		Date: "2024-01-08", CareGroupID: "mon",
		Records: []model.AttendanceEntry{{MemberID: "member2", Status: model.StatusPresent}},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.MergeMembers("member1", []string{"member2"}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if m, _ := s.GetMember("member2"); m != nil {
		t.Error("duplicate member still present after merge")
	}
	records, _ := s.ListAttendanceByMember("member1", 0)
	if len(records) != 1 {
		t.Errorf("primary attendance = %d records, want 1 reassigned", len(records))
	}
}

func TestTransferMemberAppendsLog(t *testing.T) {
	s := setupStore(t)
	if err := s.TransferMember("member1", "sun", "wed", "Moved closer to Wednesday group", "2024-02-01"); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	m, _ := s.GetMember("member1")
	if m.CareGroupID != "wed" {
		t.Errorf("group = %q, want wed", m.CareGroupID)
	}
	logs, _ := s.ListTransferLogs()
	if len(logs) != 1 || logs[0].FromGroupID != "sun" || logs[0].ToGroupID != "wed" {
		t.Errorf("logs = %+v", logs)
	}
}

func TestDeleteLastAdminRejected(t *testing.T) {
	s := setupStore(t)
	err := s.DeleteUser("admin1")
	if !errors.Is(err, store.ErrLastAdmin) {
		t.Fatalf("err = %v, want ErrLastAdmin", err)
	}
	admins, _ := s.ListAdmins()
	if len(admins) != 1 {
		t.Errorf("admins = %d, want untouched 1", len(admins))
	}

	// With a second admin present the delete goes through.
	if _, err := s.CreateUser(model.User{Name: "Second Admin", Role: model.RoleAdmin, Password: "pw"}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if err := s.DeleteUser("admin1"); err != nil {
		t.Fatalf("delete with backup admin: %v", err)
	}
}

func TestSessions(t *testing.T) {
	s := setupStore(t)
	sess, err := s.CreateSession("admin1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	u, err := s.GetSessionUser(sess.Token)
	if err != nil {
		t.Fatalf("get session user: %v", err)
	}
	if u == nil || u.ID != "admin1" {
		t.Fatalf("session user = %+v, want admin1", u)
	}

	if err := s.DeleteSession(sess.Token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	u, _ = s.GetSessionUser(sess.Token)
	if u != nil {
		t.Error("session survived deletion")
	}
}
