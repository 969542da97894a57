package handler

import (
	"log/slog"
	"net/http"

	"github.com/gracechapel/shepherd/internal/auth"
	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
	"github.com/gracechapel/shepherd/internal/websocket"
)

type FollowUpHandler struct {
	store  store.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewFollowUpHandler(st store.Store, hub *websocket.Hub, logger *slog.Logger) *FollowUpHandler {
	return &FollowUpHandler{store: st, hub: hub, logger: logger}
}

func (h *FollowUpHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// List returns a group's follow-up tasks. Leaders see their own group;
// admins may ask for any group via the careGroupId query parameter.
func (h *FollowUpHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("careGroupId")
	if !auth.IsAdmin(r.Context()) {
		ac, _ := auth.FromContext(r.Context())
		groupID = ac.CareGroupID
	}
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "careGroupId is required")
		return
	}

	tasks, err := h.store.ListFollowUpsByGroup(groupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list follow-ups")
		return
	}
	if tasks == nil {
		tasks = []model.FollowUpTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *FollowUpHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.store.CompleteFollowUp(id); err != nil {
		h.logger.Error("complete follow-up", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete follow-up")
		return
	}
	h.broadcast(websocket.NewMessage("follow_up", "completed", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "done"})
}

func (h *FollowUpHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.store.ReopenFollowUp(id); err != nil {
		h.logger.Error("reopen follow-up", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reopen follow-up")
		return
	}
	h.broadcast(websocket.NewMessage("follow_up", "reopened", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "open"})
}
