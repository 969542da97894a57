// Package localstore implements store.Store over a single JSON snapshot
// document on disk. The whole document is read, mutated in memory, and
// rewritten atomically per operation; there is no finer-grained locking.
// It is the fallback backend when no remote DSN is configured, and the
// replay target for the offline action queue.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
)

type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the snapshot, applying legacy-shape migrations as needed.
// A missing file yields the seeded default document; a corrupt file is
// reset to the default wholesale.
func (s *Store) Load() (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*model.Document, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		doc := model.DefaultDocument()
		if err := s.save(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("snapshot corrupted, resetting to default", "error", err)
		reset := model.DefaultDocument()
		if err := s.save(reset); err != nil {
			return nil, err
		}
		return reset, nil
	}

	if migrated := migrate(&doc); migrated {
		s.logger.Info("migrated legacy snapshot shape")
		if err := s.save(&doc); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// Save rewrites the snapshot as one atomic write.
func (s *Store) Save(doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *Store) save(doc *model.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// mutate runs fn against the current document and persists the result.
func (s *Store) mutate(fn func(*model.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

// migrate upgrades legacy snapshot shapes in place and reports whether
// anything changed:
//   - care groups without a weekday are replaced with the canonical seven,
//     preserving users and remapping legacy group ids (group1/group2) or
//     recomputing from DOB;
//   - members without a DOB get today as a placeholder and are reassigned
//     by weekday;
//   - missing transferLogs/followUps/absenceReasons arrays are defaulted;
//   - admin users without any credential get the default password.
func migrate(doc *model.Document) bool {
	changed := false

	for i := range doc.Users {
		u := &doc.Users[i]
		if u.Role == model.RoleAdmin && u.Password == "" && u.PasswordHash == "" {
			u.Password = model.DefaultAdminPassword
			changed = true
		}
	}
	if doc.TransferLogs == nil {
		doc.TransferLogs = []model.TransferLog{}
		changed = true
	}
	if doc.FollowUps == nil {
		doc.FollowUps = []model.FollowUpTask{}
		changed = true
	}
	if doc.AbsenceReasons == nil {
		doc.AbsenceReasons = append([]string(nil), model.DefaultAbsenceReasons...)
		changed = true
	}

	needsGroupMigration := len(doc.CareGroups) == 0
	for _, g := range doc.CareGroups {
		if g.Day == "" {
			needsGroupMigration = true
		}
	}
	needsMemberDOB := false
	for _, m := range doc.Members {
		if m.DOB == "" {
			needsMemberDOB = true
		}
	}

	if needsGroupMigration || needsMemberDOB {
		migrated := model.DefaultDocument()
		if len(doc.Users) > 0 {
			migrated.Users = doc.Users
		}
		legacyGroups := map[string]string{"group1": "sun", "group2": "mon"}
		if doc.Members != nil {
			migrated.Members = nil
			today := time.Now().Format("2006-01-02")
			for i, m := range doc.Members {
				if m.DOB == "" {
					m.DOB = today
				}
				if mapped, ok := legacyGroups[m.CareGroupID]; ok {
					m.CareGroupID = mapped
				}
				if m.CareGroupID == "" || wasMissingDOB(doc.Members[i]) {
					m.CareGroupID = groupIDForDOB(m.DOB)
				}
				if m.ID == "" {
					m.ID = model.NewID("member")
				}
				migrated.Members = append(migrated.Members, m)
			}
		}
		if doc.Attendance != nil {
			migrated.Attendance = doc.Attendance
		}
		migrated.TransferLogs = doc.TransferLogs
		migrated.FollowUps = doc.FollowUps
		migrated.AbsenceReasons = doc.AbsenceReasons
		migrated.Sessions = doc.Sessions
		*doc = *migrated
		changed = true
	}

	return changed
}

func wasMissingDOB(m model.Member) bool {
	return m.DOB == ""
}

func groupIDForDOB(dob string) string {
	t, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return model.WeekdayCodes[0]
	}
	return model.WeekdayCodes[int(t.Weekday())]
}
