package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gracechapel/shepherd/internal/auth"
	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
	"github.com/gracechapel/shepherd/internal/websocket"
)

type CareGroupHandler struct {
	store  store.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCareGroupHandler(st store.Store, hub *websocket.Hub, logger *slog.Logger) *CareGroupHandler {
	return &CareGroupHandler{store: st, hub: hub, logger: logger}
}

func (h *CareGroupHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *CareGroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListCareGroups()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list care groups")
		return
	}
	if groups == nil {
		groups = []model.CareGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

type setLeaderRequest struct {
	LeaderUserID string `json:"leaderUserId"`
}

// SetLeader assigns (or, with an empty leaderUserId, clears) a group's
// leader. A leader can head at most one group; assigning moves them.
func (h *CareGroupHandler) SetLeader(w http.ResponseWriter, r *http.Request) {
	groupID := idParam(r)
	group, err := h.store.GetCareGroup(groupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get care group")
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "care group not found")
		return
	}

	var req setLeaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.LeaderUserID != "" {
		leader, err := h.store.GetUserByID(req.LeaderUserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get leader")
			return
		}
		if leader == nil || leader.Role != model.RoleLeader {
			writeError(w, http.StatusBadRequest, "leaderUserId must reference a leader account")
			return
		}
	}

	if err := h.store.SetCareGroupLeader(groupID, req.LeaderUserID); err != nil {
		h.logger.Error("set care group leader", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set leader")
		return
	}

	h.broadcast(websocket.NewMessage("care_group", "updated", groupID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type promoteRequest struct {
	MemberID string `json:"memberId" validate:"required"`
}

type promoteResponse struct {
	User model.SessionUser `json:"user"`
	// Password is only set when a new leader account was created. It is
	// shown once; only its hash is stored.
	Password string `json:"password,omitempty"`
}

// Promote turns a group member into the group's leader, creating a leader
// account with a generated password when the member has none yet.
func (h *CareGroupHandler) Promote(w http.ResponseWriter, r *http.Request) {
	groupID := idParam(r)
	group, err := h.store.GetCareGroup(groupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get care group")
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "care group not found")
		return
	}

	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "memberId is required")
		return
	}

	member, err := h.store.GetMember(req.MemberID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	// Leader accounts created by promotion get a stable id derived from
	// the member, so repeat promotions reuse the same account.
	leaderUserID := "leader-" + member.ID
	leader, err := h.store.GetUserByID(leaderUserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to promote member")
		return
	}

	var generated string
	if leader == nil {
		generated = auth.GeneratePassword()
		hash, err := auth.HashPassword(generated)
		if err != nil {
			h.logger.Error("hash generated password", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to promote member")
			return
		}
		leader, err = h.store.CreateUser(model.User{
			ID:           leaderUserID,
			Name:         member.Name,
			Role:         model.RoleLeader,
			PasswordHash: hash,
		})
		if err != nil {
			h.logger.Error("create leader user", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to promote member")
			return
		}
	}

	if err := h.store.SetCareGroupLeader(groupID, leaderUserID); err != nil {
		h.logger.Error("assign promoted leader", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to promote member")
		return
	}
	leader.CareGroupID = groupID

	h.broadcast(websocket.NewMessage("care_group", "updated", groupID, nil))
	writeJSON(w, http.StatusOK, promoteResponse{User: leader.SessionUser(), Password: generated})
}

func (h *CareGroupHandler) ListAbsenceReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := h.store.ListAbsenceReasons()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list absence reasons")
		return
	}
	if reasons == nil {
		reasons = []model.AbsenceReason{}
	}
	writeJSON(w, http.StatusOK, reasons)
}
