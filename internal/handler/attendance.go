package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
	offline "github.com/gracechapel/shepherd/internal/sync"
	"github.com/gracechapel/shepherd/internal/websocket"
)

type AttendanceHandler struct {
	store   store.Store
	queue   *offline.Queue
	watcher *offline.Watcher
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewAttendanceHandler(st store.Store, queue *offline.Queue, watcher *offline.Watcher, hub *websocket.Hub, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{store: st, queue: queue, watcher: watcher, hub: hub, logger: logger}
}

func (h *AttendanceHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *AttendanceHandler) online() bool {
	return h.watcher == nil || h.watcher.Online()
}

// Save replaces the attendance batch for one (date, group) pair and
// derives follow-up tasks for concerning absences. While offline the
// batch is queued; follow-up derivation then happens during replay.
func (h *AttendanceHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in model.AttendanceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, "date, careGroupId, and records are required")
		return
	}

	if !h.online() {
		a, err := offline.NewAttendanceSave(in)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to queue attendance")
			return
		}
		if err := h.queue.Enqueue(a); err != nil {
			h.logger.Error("enqueue attendance", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to queue attendance")
			return
		}
		h.logger.Info("queued offline attendance save", "date", in.Date, "group", in.CareGroupID, "pending", h.queue.Len())
		h.broadcast(websocket.NewSyncStatus(false, h.queue.Len()))
		writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "pending": h.queue.Len()})
		return
	}

	group, err := h.store.GetCareGroup(in.CareGroupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get care group")
		return
	}
	if group == nil {
		writeError(w, http.StatusBadRequest, "careGroupId does not exist")
		return
	}

	if err := h.store.UpsertAttendance(in); err != nil {
		h.logger.Error("save attendance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save attendance")
		return
	}

	h.deriveFollowUps(in, group.LeaderID)

	h.broadcast(websocket.NewMessage("attendance", "saved", in.CareGroupID, map[string]any{
		"date": in.Date,
	}))
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// deriveFollowUps opens tasks for sick or health related absences in the
// batch and for members whose two most recent records are both absences.
// The per-member open-task guard in the store keeps this idempotent.
func (h *AttendanceHandler) deriveFollowUps(in model.AttendanceInput, leaderUserID string) {
	for _, rec := range in.Records {
		if rec.Status != model.StatusAbsent {
			continue
		}
		lower := strings.ToLower(rec.AbsenceReason)
		if strings.Contains(lower, "sick") || strings.Contains(lower, "health") {
			reason := rec.AbsenceReason
			if reason == "" {
				reason = "Sick/Health"
			}
			if err := h.store.CreateFollowUpIfNotExists(rec.MemberID, in.CareGroupID, leaderUserID, reason); err != nil {
				h.logger.Error("create follow-up", "member", rec.MemberID, "error", err)
			}
		}
	}

	for _, rec := range in.Records {
		recent, err := h.store.ListAttendanceByMember(rec.MemberID, 2)
		if err != nil {
			h.logger.Error("list member attendance", "member", rec.MemberID, "error", err)
			continue
		}
		if len(recent) < 2 {
			continue
		}
		if recent[0].Status != model.StatusAbsent || recent[1].Status != model.StatusAbsent {
			continue
		}
		reason := recent[0].AbsenceReason
		if reason == "" {
			reason = "Repeated absence"
		}
		if err := h.store.CreateFollowUpIfNotExists(rec.MemberID, in.CareGroupID, leaderUserID, reason); err != nil {
			h.logger.Error("create follow-up", "member", rec.MemberID, "error", err)
		}
	}
}

// List filters attendance by date, group, or member via query parameters.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	groupID := q.Get("careGroupId")
	memberID := q.Get("memberId")

	var (
		records []model.AttendanceRecord
		err     error
	)
	switch {
	case memberID != "":
		records, err = h.store.ListAttendanceByMember(memberID, 0)
	case date != "" && groupID != "":
		records, err = h.store.ListAttendanceByDateGroup(date, groupID)
	case date != "":
		records, err = h.store.ListAttendanceByDate(date)
	default:
		records, err = h.store.ListAllAttendance()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
