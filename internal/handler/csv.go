package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gracechapel/shepherd/internal/assign"
	"github.com/gracechapel/shepherd/internal/csvio"
	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
	"github.com/gracechapel/shepherd/internal/websocket"
)

type CSVHandler struct {
	store  store.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCSVHandler(st store.Store, hub *websocket.Hub, logger *slog.Logger) *CSVHandler {
	return &CSVHandler{store: st, hub: hub, logger: logger}
}

func csvHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s-%s.csv", name, time.Now().Format("2006-01-02")))
}

func (h *CSVHandler) ExportMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.ListMembers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	groups, err := h.store.ListCareGroups()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list care groups")
		return
	}

	csvHeaders(w, "members")
	if err := csvio.WriteMembers(w, members, groups); err != nil {
		h.logger.Error("export members", "error", err)
	}
}

func (h *CSVHandler) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAllAttendance()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}
	members, err := h.store.ListMembers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	groups, err := h.store.ListCareGroups()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list care groups")
		return
	}

	csvHeaders(w, "attendance")
	if err := csvio.WriteAttendance(w, records, members, groups); err != nil {
		h.logger.Error("export attendance", "error", err)
	}
}

func (h *CSVHandler) ExportLeaders(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.store.ListLeaders()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leaders")
		return
	}
	groups, err := h.store.ListCareGroups()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list care groups")
		return
	}

	csvHeaders(w, "leaders")
	if err := csvio.WriteLeaders(w, leaders, groups); err != nil {
		h.logger.Error("export leaders", "error", err)
	}
}

type importResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportMembers reads a roster CSV from the request body. Rows missing a
// field were already dropped by the parser; rows whose phone matches a
// known member are skipped here. Imported members are placed in the group
// matching their date of birth's weekday.
func (h *CSVHandler) ImportMembers(w http.ResponseWriter, r *http.Request) {
	rows, err := csvio.ParseMembers(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not parse CSV")
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusOK, importResult{})
		return
	}

	existing, err := h.store.ListMembers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	knownPhones := make(map[string]bool, len(existing))
	for _, m := range existing {
		knownPhones[m.Phone] = true
	}

	var (
		toInsert []model.Member
		skipped  int
	)
	for _, row := range rows {
		if knownPhones[row.Phone] {
			skipped++
			continue
		}
		groupID, err := assign.GroupIDForDOB(row.DOB)
		if err != nil {
			skipped++
			continue
		}
		knownPhones[row.Phone] = true
		toInsert = append(toInsert, model.Member{
			ID:          model.NewID("member"),
			Name:        row.Name,
			Phone:       row.Phone,
			DOB:         row.DOB,
			CareGroupID: groupID,
		})
	}

	if len(toInsert) > 0 {
		if err := h.store.BulkInsertMembers(toInsert); err != nil {
			h.logger.Error("bulk insert members", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to import members")
			return
		}
		if h.hub != nil {
			h.hub.Broadcast(websocket.NewMessage("member", "imported", "", map[string]any{
				"count": len(toInsert),
			}))
		}
	}

	h.logger.Info("imported members", "imported", len(toInsert), "skipped", skipped)
	writeJSON(w, http.StatusOK, importResult{Imported: len(toInsert), Skipped: skipped})
}
