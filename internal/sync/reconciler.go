package sync

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gracechapel/shepherd/internal/localstore"
	"github.com/gracechapel/shepherd/internal/model"
)

// Result reports a replay batch: Processed actions applied cleanly,
// Failed actions were dropped. Failed + Processed equals the queue
// length at the start of the batch.
type Result struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Reconciler replays the queued offline mutations against the local
// snapshot once connectivity returns.
type Reconciler struct {
	queue  *Queue
	local  *localstore.Store
	logger *slog.Logger
}

func NewReconciler(queue *Queue, local *localstore.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{queue: queue, local: local, logger: logger}
}

// Run drains the queue in enqueue order against an in-memory working copy
// of the snapshot, then clears the queue and persists the snapshot as one
// write. A failing action is dropped — logged and counted, never retried
// or re-queued — and the batch continues: at-most-once semantics, chosen
// so one malformed action cannot wedge the queue forever.
func (r *Reconciler) Run() (Result, error) {
	actions := r.queue.Actions()
	if len(actions) == 0 {
		return Result{}, nil
	}

	doc, err := r.local.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load snapshot: %w", err)
	}

	var res Result
	for i, a := range actions {
		if err := apply(doc, a); err != nil {
			res.Failed++
			r.logger.Warn("dropping failed action", "index", i, "type", a.Type, "error", err)
			continue
		}
		res.Processed++
	}

	if err := r.queue.Clear(); err != nil {
		return res, fmt.Errorf("clear queue: %w", err)
	}
	if err := r.local.Save(doc); err != nil {
		return res, fmt.Errorf("persist snapshot: %w", err)
	}

	r.logger.Info("reconciled offline queue", "processed", res.Processed, "failed", res.Failed)
	return res, nil
}

// apply dispatches one action onto the working document.
func apply(doc *model.Document, a Action) error {
	switch a.Type {
	case ActionAttendanceSave:
		var in model.AttendanceInput
		if err := json.Unmarshal(a.Payload, &in); err != nil {
			return fmt.Errorf("decode attendance_save: %w", err)
		}
		if in.Date == "" || in.CareGroupID == "" {
			return fmt.Errorf("attendance_save missing date or group")
		}
		localstore.ApplyAttendanceSave(doc, in)
		return nil

	case ActionMemberUpdate:
		var p MemberUpdatePayload
		if err := json.Unmarshal(a.Payload, &p); err != nil {
			return fmt.Errorf("decode member_update: %w", err)
		}
		if p.ID == "" {
			return fmt.Errorf("member_update missing id")
		}
		localstore.ApplyMemberUpdate(doc, p.ID, p.Name, p.Phone, p.DOB)
		return nil

	case ActionMemberTransfer:
		var p MemberTransferPayload
		if err := json.Unmarshal(a.Payload, &p); err != nil {
			return fmt.Errorf("decode member_transfer: %w", err)
		}
		if p.ID == "" {
			return fmt.Errorf("member_transfer missing id")
		}
		localstore.ApplyMemberTransfer(doc, p.ID, p.FromGroupID, p.ToGroupID, p.Reason, p.Date)
		return nil

	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}
