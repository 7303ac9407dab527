// Package common provides shared helpers for UI features.
package common

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/ui/components"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Session resolves the browser session of r, answering 500 when the
// cookie cannot be written.
func Session(m *session.Manager, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := m.Get(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

// PatchShell morphs the whole app shell from the controller's snapshot.
func PatchShell(sse *datastar.ServerSentEventGenerator, s *session.Session) error {
	return sse.PatchElementTempl(components.AppShell(s.Controller.Snapshot()))
}

// Finish reports err to the browser console and patches the shell.
// Superseded results are not errors; the newer request patches its own.
func Finish(sse *datastar.ServerSentEventGenerator, s *session.Session, logger *slog.Logger, err error) {
	if errors.Is(err, app.ErrStale) {
		return
	}
	if err != nil {
		logger.Debug("action failed", "session", s.ID, "error", err)
		_ = sse.ConsoleError(err)
	}
	if err := PatchShell(sse, s); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ReadSignals decodes the datastar signals of r into v. A decode failure
// is raised as a notice and returned.
func ReadSignals(r *http.Request, s *session.Session, v any) error {
	if err := datastar.ReadSignals(r, v); err != nil {
		return s.Controller.Reject(fmt.Errorf("failed to read form: %w", err))
	}
	return nil
}

// StudentSignals flattens a record into the string values the form binds.
func StudentSignals(st core.Student) map[string]string {
	num := func(f core.FlexFloat) string { return strconv.FormatFloat(f.Float(), 'f', -1, 64) }
	out := map[string]string{
		"NAME":                 st.Name.String(),
		"RNO":                  st.RNO.String(),
		"EMAIL":                st.Email.String(),
		"DEPT":                 st.Dept.String(),
		"YEAR":                 st.Year.String(),
		"CURR_SEM":             st.CurrSem.String(),
		"MENTOR":               st.Mentor.String(),
		"MENTOR_EMAIL":         st.MentorEmail.String(),
		"INTERNAL_MARKS":       num(st.InternalMarks),
		"TOTAL_DAYS_CURR":      num(st.TotalDaysCurr),
		"ATTENDED_DAYS_CURR":   num(st.AttendedDaysCurr),
		"PREV_ATTENDANCE_PERC": num(st.PrevAttendancePerc),
		"BEHAVIOR_SCORE_10":    num(st.BehaviorScore10),
	}
	for i, sem := range st.Semesters() {
		v := ""
		if sem.Valid {
			v = strconv.FormatFloat(sem.Value, 'f', -1, 64)
		}
		out["SEM"+strconv.Itoa(i+1)] = v
	}
	return out
}

// PatchStudentForm fills the $student signals from st.
func PatchStudentForm(sse *datastar.ServerSentEventGenerator, st core.Student) error {
	return sse.MarshalAndPatchSignals(map[string]any{"student": StudentSignals(st)})
}
