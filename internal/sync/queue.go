package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Queue is the durable, ordered list of mutations attempted while
// offline, persisted as a JSON array in its own file beside the snapshot.
// Append-only until the reconciler drains it. No deduplication and no
// size bound: if the system stays offline indefinitely the queue grows
// without limit. Accepted limitation.
type Queue struct {
	mu   sync.Mutex
	path string
}

func NewQueue(path string) *Queue {
	return &Queue{path: path}
}

// Enqueue appends the action to the persisted sequence.
func (q *Queue) Enqueue(a Action) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions := q.read()
	actions = append(actions, a)
	return q.write(actions)
}

// Actions returns the queued actions in enqueue order.
func (q *Queue) Actions() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.read()
}

// Len returns the queued action count, for backlog indication.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.read())
}

// Clear atomically replaces the queue with an empty sequence. Called by
// the reconciler after a replay batch, regardless of per-action outcomes.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.write(nil)
}

// read tolerates a missing or corrupt file by returning an empty queue;
// a corrupt queue is unrecoverable anyway and blocking every enqueue on
// it would only make the outage worse.
func (q *Queue) read() []Action {
	raw, err := os.ReadFile(q.path)
	if err != nil {
		return nil
	}
	var actions []Action
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil
	}
	return actions
}

func (q *Queue) write(actions []Action) error {
	if actions == nil {
		actions = []Action{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(q.path), 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create queue dir: %w", err)
	}
	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write queue: %w", err)
	}
	if err := os.Rename(tmp, q.path); err != nil {
		return fmt.Errorf("replace queue: %w", err)
	}
	return nil
}
