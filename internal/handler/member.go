package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gracechapel/shepherd/internal/assign"
	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
	offline "github.com/gracechapel/shepherd/internal/sync"
	"github.com/gracechapel/shepherd/internal/websocket"
)

type MemberHandler struct {
	store   store.Store
	queue   *offline.Queue
	watcher *offline.Watcher
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMemberHandler(st store.Store, queue *offline.Queue, watcher *offline.Watcher, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{store: st, queue: queue, watcher: watcher, hub: hub, logger: logger}
}

func (h *MemberHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *MemberHandler) online() bool {
	return h.watcher == nil || h.watcher.Online()
}

// enqueue captures a mutation for later replay and acknowledges it as
// accepted rather than applied.
func (h *MemberHandler) enqueue(w http.ResponseWriter, a offline.Action, err error) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to queue change")
		return
	}
	if err := h.queue.Enqueue(a); err != nil {
		h.logger.Error("enqueue action", "type", a.Type, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to queue change")
		return
	}
	h.logger.Info("queued offline action", "type", a.Type, "pending", h.queue.Len())
	h.broadcast(websocket.NewSyncStatus(false, h.queue.Len()))
	writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "pending": h.queue.Len()})
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		members []model.Member
		err     error
	)
	if groupID := r.URL.Query().Get("careGroupId"); groupID != "" {
		members, err = h.store.ListMembersByGroup(groupID)
	} else {
		members, err = h.store.ListMembers()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, err := h.store.GetMember(idParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	writeJSON(w, http.StatusOK, member)
}

type memberRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	DOB   string `json:"dob" validate:"required"`
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "name, phone, and dob are required")
		return
	}

	groupID, err := assign.GroupIDForDOB(req.DOB)
	if err != nil {
		writeError(w, http.StatusBadRequest, "dob must be a valid date (YYYY-MM-DD)")
		return
	}

	member, err := h.store.InsertMember(model.Member{
		Name:        req.Name,
		Phone:       req.Phone,
		DOB:         req.DOB,
		CareGroupID: groupID,
	})
	if err != nil {
		h.logger.Error("insert member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create member")
		return
	}

	h.broadcast(websocket.NewMessage("member", "created", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

// Update replaces a member's profile. While offline the change is queued
// for replay instead of applied.
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "name, phone, and dob are required")
		return
	}

	if !h.online() {
		a, err := offline.NewMemberUpdate(offline.MemberUpdatePayload{
			ID: id, Name: req.Name, Phone: req.Phone, DOB: req.DOB,
		})
		h.enqueue(w, a, err)
		return
	}

	member, err := h.store.GetMember(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	if err := h.store.UpdateMemberProfile(id, req.Name, req.Phone, req.DOB); err != nil {
		h.logger.Error("update member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update member")
		return
	}

	h.broadcast(websocket.NewMessage("member", "updated", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type transferRequest struct {
	ToGroupID string `json:"toGroupId" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

// Transfer moves a member to another group, overriding the weekday
// assignment, and records the override in the transfer log. Queued while
// offline.
func (h *MemberHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "toGroupId and reason are required")
		return
	}

	member, err := h.store.GetMember(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	date := time.Now().UTC().Format("2006-01-02")

	if !h.online() {
		a, err := offline.NewMemberTransfer(offline.MemberTransferPayload{
			ID:          id,
			FromGroupID: member.CareGroupID,
			ToGroupID:   req.ToGroupID,
			Reason:      req.Reason,
			Date:        date,
		})
		h.enqueue(w, a, err)
		return
	}

	group, err := h.store.GetCareGroup(req.ToGroupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get care group")
		return
	}
	if group == nil {
		writeError(w, http.StatusBadRequest, "toGroupId does not exist")
		return
	}

	if err := h.store.TransferMember(id, member.CareGroupID, req.ToGroupID, req.Reason, date); err != nil {
		h.logger.Error("transfer member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to transfer member")
		return
	}

	h.broadcast(websocket.NewMessage("member", "transferred", id, map[string]any{
		"toGroupId": req.ToGroupID,
	}))
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

type mergeRequest struct {
	PrimaryID    string   `json:"primaryId" validate:"required"`
	DuplicateIDs []string `json:"duplicateIds" validate:"required,min=1"`
}

// Merge reassigns the duplicates' attendance history onto the primary
// member, then removes the duplicate records.
func (h *MemberHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "primaryId and duplicateIds are required")
		return
	}
	for _, d := range req.DuplicateIDs {
		if d == req.PrimaryID {
			writeError(w, http.StatusBadRequest, "primaryId cannot appear in duplicateIds")
			return
		}
	}

	primary, err := h.store.GetMember(req.PrimaryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if primary == nil {
		writeError(w, http.StatusNotFound, "primary member not found")
		return
	}

	if err := h.store.MergeMembers(req.PrimaryID, req.DuplicateIDs); err != nil {
		h.logger.Error("merge members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to merge members")
		return
	}

	h.broadcast(websocket.NewMessage("member", "merged", req.PrimaryID, map[string]any{
		"duplicates": len(req.DuplicateIDs),
	}))
	writeJSON(w, http.StatusOK, map[string]string{"status": "merged"})
}

func (h *MemberHandler) ListTransferLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.ListTransferLogs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transfer logs")
		return
	}
	if logs == nil {
		logs = []model.TransferLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
