package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/gracechapel/shepherd/internal/auth"
	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
)

type ReportHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewReportHandler(st store.Store, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{store: st, logger: logger}
}

type dateSummary struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
}

type absenceDetail struct {
	Date          string `json:"date"`
	MemberID      string `json:"memberId"`
	MemberName    string `json:"memberName"`
	CareGroupID   string `json:"careGroupId"`
	GroupName     string `json:"groupName"`
	AbsenceReason string `json:"absenceReason,omitempty"`
}

type attendanceReport struct {
	TotalRecords   int             `json:"totalRecords"`
	PresentCount   int             `json:"presentCount"`
	AbsentCount    int             `json:"absentCount"`
	AttendanceRate int             `json:"attendanceRate"`
	ByDate         []dateSummary   `json:"byDate"`
	RecentAbsences []absenceDetail `json:"recentAbsences"`
}

// Attendance summarizes attendance history: totals, a per-date breakdown,
// and the ten most recent absences with names resolved. Leaders are scoped
// to their own group; admins may filter with careGroupId or see everything.
func (h *ReportHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("careGroupId")
	if !auth.IsAdmin(r.Context()) {
		ac, _ := auth.FromContext(r.Context())
		groupID = ac.CareGroupID
		if groupID == "" {
			writeError(w, http.StatusForbidden, "no care group assigned")
			return
		}
	}

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

	memberNames := make(map[string]string, len(members))
	for _, m := range members {
		memberNames[m.ID] = m.Name
	}
	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}

	rep := attendanceReport{ByDate: []dateSummary{}, RecentAbsences: []absenceDetail{}}
	byDate := make(map[string]*dateSummary)
	var absences []model.AttendanceRecord

	for _, rec := range records {
		if groupID != "" && rec.CareGroupID != groupID {
			continue
		}
		rep.TotalRecords++
		day, ok := byDate[rec.Date]
		if !ok {
			day = &dateSummary{Date: rec.Date}
			byDate[rec.Date] = day
		}
		if rec.Status == model.StatusPresent {
			rep.PresentCount++
			day.Present++
		} else {
			rep.AbsentCount++
			day.Absent++
			absences = append(absences, rec)
		}
	}
	if rep.TotalRecords > 0 {
		rep.AttendanceRate = rep.PresentCount * 100 / rep.TotalRecords
	}

	for _, day := range byDate {
		rep.ByDate = append(rep.ByDate, *day)
	}
	sort.Slice(rep.ByDate, func(i, j int) bool { return rep.ByDate[i].Date < rep.ByDate[j].Date })

	sort.Slice(absences, func(i, j int) bool { return absences[i].Date > absences[j].Date })
	if len(absences) > 10 {
		absences = absences[:10]
	}
	for _, a := range absences {
		rep.RecentAbsences = append(rep.RecentAbsences, absenceDetail{
			Date:          a.Date,
			MemberID:      a.MemberID,
			MemberName:    memberNames[a.MemberID],
			CareGroupID:   a.CareGroupID,
			GroupName:     groupNames[a.CareGroupID],
			AbsenceReason: a.AbsenceReason,
		})
	}

	writeJSON(w, http.StatusOK, rep)
}
