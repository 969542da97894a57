package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gracechapel/shepherd/internal/auth"
	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
	"github.com/gracechapel/shepherd/internal/websocket"
)

type UserHandler struct {
	store  store.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewUserHandler(st store.Store, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: st, hub: hub, logger: logger}
}

func (h *UserHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// sanitize strips credentials before a user leaves the server.
func sanitize(users []model.User) []model.SessionUser {
	out := make([]model.SessionUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].SessionUser())
	}
	return out
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, sanitize(users))
}

func (h *UserHandler) ListLeaders(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.store.ListLeaders()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leaders")
		return
	}
	writeJSON(w, http.StatusOK, sanitize(leaders))
}

type createUserRequest struct {
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=admin leader"`
	CareGroupID string `json:"careGroupId"`
	Password    string `json:"password" validate:"required,min=6"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "name, role, and a password of at least 6 characters are required")
		return
	}

	existing, err := h.store.GetUserByName(req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "a user with that name already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.store.CreateUser(model.User{
		Name:         req.Name,
		Role:         model.Role(req.Role),
		CareGroupID:  req.CareGroupID,
		PasswordHash: hash,
	})
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.broadcast(websocket.NewMessage("user", "created", user.ID, nil))
	writeJSON(w, http.StatusCreated, user.SessionUser())
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if id == auth.UserID(r.Context()) {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.store.DeleteUser(id); err != nil {
		if errors.Is(err, store.ErrLastAdmin) {
			writeError(w, http.StatusConflict, "at least one admin account must remain")
			return
		}
		h.logger.Error("delete user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.broadcast(websocket.NewMessage("user", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
