package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/cli/output"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

const helpText = "tab/1-7 mode • / command • enter view/command • a alert • s send • e export • r retry/reload • esc close • q quit"

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	if n := m.snap.Notice; n != nil {
		b.WriteString(noticeLine(*n))
		b.WriteString("\n\n")
	}
	if l := m.snap.Loading; l.Visible {
		b.WriteString(m.spinner.View() + " " + l.Message)
		b.WriteString("\n\n")
	}

	switch {
	case m.snap.Drilldown.ModalVisible():
		b.WriteString(m.drilldownView())
	case m.snap.Alert != nil:
		b.WriteString(styles.Modal.Render(strings.TrimRight(m.alertView(), "\n")))
	default:
		b.WriteString(m.body())
	}
	b.WriteString("\n")

	if m.input.Focused() || m.input.Value() != "" {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(styles.Muted.Render("/ " + modeHelp(m.snap.View.Mode)))
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(styles.Muted.Render(m.status) + "\n")
	}
	b.WriteString(styles.Help.Render(helpText))
	return b.String()
}

func (m Model) header() string {
	title := styles.Title.Render("EduMetric")
	st := m.snap.Stats
	if st == nil {
		return title
	}
	line := fmt.Sprintf("%d students • %d departments • %d years", st.TotalStudents, len(st.Departments), len(st.Years))
	return title + " " + styles.Muted.Render(line)
}

func (m Model) tabs() string {
	modes := viewstate.Modes()
	parts := make([]string, 0, len(modes))
	for i, id := range modes {
		label := fmt.Sprintf("%d %s", i+1, modeLabel(id))
		if id == m.snap.View.Mode {
			parts = append(parts, styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func modeLabel(id viewstate.ModeID) string {
	switch id {
	case viewstate.ModeCRUD:
		return "Records"
	case viewstate.ModeUpload:
		return "Upload"
	default:
		s := string(id)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

func noticeLine(n app.Notice) string {
	switch n.Kind {
	case app.NoticeError:
		return styles.Error.Render(n.Message) + styles.Muted.Render("  (esc to dismiss)")
	case app.NoticeSuccess:
		return styles.Success.Render(n.Message) + styles.Muted.Render("  (esc to dismiss)")
	default:
		return styles.Info.Render(n.Message) + styles.Muted.Render("  (esc to dismiss)")
	}
}

func (m Model) drilldownView() string {
	v := render.Drilldown(m.snap.Drilldown)
	var b strings.Builder
	b.WriteString(styles.Title.Render(v.Title))
	b.WriteString(" ")
	b.WriteString(styles.Muted.Render(v.Count))
	b.WriteString("\n\n")
	switch {
	case v.Status == drilldown.StatusError:
		b.WriteString(styles.Error.Render(v.Message))
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render("r retry • esc close"))
	case v.Message != "":
		b.WriteString(v.Message)
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render("enter " + render.DrilldownViewAction + " • esc close"))
	}
	return styles.Modal.Render(b.String())
}

func (m Model) alertView() string {
	var b strings.Builder
	r := textRenderer(&b)
	_ = r.Alert(*m.snap.Alert, m.ctrl.MentorEmail())
	b.WriteString("s send • esc cancel")
	return b.String()
}

// textRenderer writes plain text with no colour.
func textRenderer(w io.Writer) *output.Renderer {
	return output.NewRendererWithTTY(w, w, false, output.ModeText)
}

// body renders the active mode.
func (m Model) body() string {
	var b strings.Builder
	r := textRenderer(&b)
	s := m.snap

	switch s.View.Mode {
	case viewstate.ModeStudent:
		if s.Student == nil {
			return styles.Muted.Render("Search a register number to analyse a student.") + "\n"
		}
		_ = r.Student(*s.Student)

	case viewstate.ModeDepartment, viewstate.ModeYear, viewstate.ModeCollege:
		g, ok := s.Group(scopeOf(s.View.Mode))
		if !ok {
			return styles.Muted.Render(render.NoGroupData) + "\n"
		}
		_ = r.Group(g)

	case viewstate.ModeBatch:
		if s.Batch == nil {
			return styles.Muted.Render("Enter a batch year to analyse.") + "\n"
		}
		_ = r.Batch(*s.Batch)

	case viewstate.ModeCRUD:
		if s.CRUD.Op == "" {
			return styles.Muted.Render(modeHelp(viewstate.ModeCRUD)) + "\n"
		}
		r.Header(strings.ToUpper(string(s.CRUD.Op)))
		if s.CRUD.Message != "" {
			r.Println(s.CRUD.Message)
		}
		if len(s.CRUD.Students) > 0 {
			r.Table(render.StudentTable(s.CRUD.Students))
		}

	case viewstate.ModeUpload:
		if s.Upload == nil && s.Preview == nil {
			return styles.Muted.Render("Upload a .csv or .xlsx file.") + "\n"
		}
		if u := s.Upload; u != nil {
			r.Header(u.Filename)
			r.Println(app.UploadMessage(u.Mode, u.Result))
			r.Println()
		}
		if p := s.Preview; p != nil {
			r.KeyValues([][2]string{
				{"Students", fmt.Sprint(p.Stats.TotalStudents)},
				{"High Risk", fmt.Sprint(p.Stats.HighRisk)},
				{"High Dropout", fmt.Sprint(p.Stats.HighDropout)},
			})
			r.Table(render.GroupTable(p.Students, true))
		}
	}
	return b.String()
}

func scopeOf(mode viewstate.ModeID) core.Scope {
	switch mode {
	case viewstate.ModeDepartment:
		return core.ScopeDepartment
	case viewstate.ModeYear:
		return core.ScopeYear
	default:
		return core.ScopeCollege
	}
}
