package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gracechapel/shepherd/internal/backup"
	"github.com/gracechapel/shepherd/internal/handler"
	"github.com/gracechapel/shepherd/internal/middleware"
	"github.com/gracechapel/shepherd/internal/store"
	offline "github.com/gracechapel/shepherd/internal/sync"
	ws "github.com/gracechapel/shepherd/internal/websocket"
)

// Config carries the pieces main assembles before handing over: the
// active store, the offline-sync machinery, and the backup settings.
type Config struct {
	Store         store.Store
	Queue         *offline.Queue
	Reconciler    *offline.Reconciler
	Prober        offline.Prober
	ProbeInterval time.Duration
	Backup        backup.Config
}

type Server struct {
	hub           *ws.Hub
	authH         *handler.AuthHandler
	userH         *handler.UserHandler
	careGroupH    *handler.CareGroupHandler
	memberH       *handler.MemberHandler
	attendanceH   *handler.AttendanceHandler
	followUpH     *handler.FollowUpHandler
	csvH          *handler.CSVHandler
	reportH       *handler.ReportHandler
	syncH         *handler.SyncHandler
	store         store.Store
	watcher       *offline.Watcher
	backupManager *backup.Manager
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	watcher := offline.NewWatcher(
		cfg.Prober,
		cfg.Reconciler,
		cfg.Queue,
		cfg.ProbeInterval,
		func(st offline.Status) {
			hub.Broadcast(ws.NewSyncStatus(st.State == offline.StateOnline, st.Pending))
		},
		logger.With("component", "sync"),
	)

	backupMgr := backup.NewManager(cfg.Backup, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	}, logger.With("component", "backup"))

	st := cfg.Store
	return &Server{
		hub:           hub,
		authH:         handler.NewAuthHandler(st, logger.With("component", "auth")),
		userH:         handler.NewUserHandler(st, hub, logger.With("component", "user")),
		careGroupH:    handler.NewCareGroupHandler(st, hub, logger.With("component", "care_group")),
		memberH:       handler.NewMemberHandler(st, cfg.Queue, watcher, hub, logger.With("component", "member")),
		attendanceH:   handler.NewAttendanceHandler(st, cfg.Queue, watcher, hub, logger.With("component", "attendance")),
		followUpH:     handler.NewFollowUpHandler(st, hub, logger.With("component", "follow_up")),
		csvH:          handler.NewCSVHandler(st, hub, logger.With("component", "csv")),
		reportH:       handler.NewReportHandler(st, logger.With("component", "report")),
		syncH:         handler.NewSyncHandler(watcher),
		store:         st,
		watcher:       watcher,
		backupManager: backupMgr,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// Watcher returns the connectivity watcher for lifecycle management.
func (s *Server) Watcher() *offline.Watcher {
	return s.watcher
}

// BackupManager returns the backup manager for lifecycle management.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.store)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session routes
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me/password", s.authH.ChangePassword)

	// User management (admin)
	mux.Handle("GET /api/users", admin(s.userH.List))
	mux.Handle("POST /api/users", admin(s.userH.Create))
	mux.Handle("DELETE /api/users/{id}", admin(s.userH.Delete))
	mux.HandleFunc("GET /api/leaders", s.userH.ListLeaders)

	// Care groups
	mux.HandleFunc("GET /api/care-groups", s.careGroupH.List)
	mux.Handle("PUT /api/care-groups/{id}/leader", admin(s.careGroupH.SetLeader))
	mux.Handle("POST /api/care-groups/{id}/promote", admin(s.careGroupH.Promote))
	mux.HandleFunc("GET /api/absence-reasons", s.careGroupH.ListAbsenceReasons)

	// Members
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.HandleFunc("GET /api/members/{id}", s.memberH.Get)
	mux.HandleFunc("POST /api/members", s.memberH.Create)
	mux.HandleFunc("PUT /api/members/{id}", s.memberH.Update)
	mux.Handle("POST /api/members/{id}/transfer", admin(s.memberH.Transfer))
	mux.Handle("POST /api/members/merge", admin(s.memberH.Merge))
	mux.Handle("GET /api/transfer-logs", admin(s.memberH.ListTransferLogs))

	// Attendance
	mux.HandleFunc("POST /api/attendance", s.attendanceH.Save)
	mux.HandleFunc("GET /api/attendance", s.attendanceH.List)

	// Follow-ups
	mux.HandleFunc("GET /api/follow-ups", s.followUpH.List)
	mux.HandleFunc("POST /api/follow-ups/{id}/complete", s.followUpH.Complete)
	mux.HandleFunc("POST /api/follow-ups/{id}/reopen", s.followUpH.Reopen)

	// CSV import/export (admin)
	mux.Handle("GET /api/export/members", admin(s.csvH.ExportMembers))
	mux.Handle("GET /api/export/attendance", admin(s.csvH.ExportAttendance))
	mux.Handle("GET /api/export/leaders", admin(s.csvH.ExportLeaders))
	mux.Handle("POST /api/import/members", admin(s.csvH.ImportMembers))

	// Reports and sync
	mux.HandleFunc("GET /api/reports/attendance", s.reportH.Attendance)
	mux.HandleFunc("GET /api/sync/status", s.syncH.Status)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}

func admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(h)
}
