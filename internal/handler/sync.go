package handler

import (
	"net/http"

	offline "github.com/gracechapel/shepherd/internal/sync"
)

type SyncHandler struct {
	watcher *offline.Watcher
}

func NewSyncHandler(watcher *offline.Watcher) *SyncHandler {
	return &SyncHandler{watcher: watcher}
}

// Status reports connectivity and the queued-action backlog.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.watcher == nil {
		writeJSON(w, http.StatusOK, map[string]any{"online": true, "pending": 0})
		return
	}
	st := h.watcher.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"online":     st.State == offline.StateOnline,
		"pending":    st.Pending,
		"lastSync":   st.LastSync,
		"lastResult": st.LastResult,
	})
}
