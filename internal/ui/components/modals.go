package components

import (
	"net/url"

	"github.com/a-h/templ"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/render"
)

// DrilldownModal shows the students behind a chart segment.
func DrilldownModal(s app.Snapshot) templ.Component {
	return component(func(w *writer) {
		v := render.Drilldown(s.Drilldown)
		if !v.Visible {
			w.raw(`<div id="drilldown-modal" class="modal hidden"></div>`)
			return
		}
		w.raw(`<div id="drilldown-modal" `, attr("class", classes("modal", "show", "status-"+v.Status.String())), `><div class="modal-content wide">`)
		w.raw(`<div class="modal-header"><div>`)
		w.el("h3", `id="drilldown-title"`, v.Title)
		w.el("span", `id="drilldown-count" class="muted"`, v.Count)
		w.raw(`</div><button class="close-btn" `, post("/drilldown/close"), `>&times;</button></div>`)

		if v.Message != "" {
			w.el("p", `class="drilldown-message"`, v.Message)
			if v.CanRetry {
				w.raw(`<button class="secondary-btn" `, post("/drilldown/retry"), `>Retry</button>`)
			}
		} else {
			w.raw(`<div class="table-wrap"><table><thead><tr>`)
			for _, c := range render.DrilldownColumns {
				w.el("th", "", c)
			}
			w.raw(`</tr></thead><tbody>`)
			for _, r := range v.Rows {
				w.raw(`<tr>`)
				for _, c := range r.Cells() {
					w.el("td", "", c)
				}
				w.raw(`<td><button class="link-btn" `, post("/students/"+url.PathEscape(r.RNO)+"/view"), `>`)
				w.text(render.DrilldownViewAction)
				w.raw(`</button></td></tr>`)
			}
			w.raw(`</tbody></table></div>`)
		}
		w.raw(`</div></div>`)
	})
}

// AlertModal previews the mentor alert before it is sent.
func AlertModal(s app.Snapshot) templ.Component {
	return component(func(w *writer) {
		a := s.Alert
		if a == nil || s.Student == nil {
			w.raw(`<div id="alert-modal" class="modal hidden"></div>`)
			return
		}
		st := s.Student.Student
		w.raw(`<div id="alert-modal" `, attr("class", classes("modal", "show", "level-"+string(a.Level))), `><div class="modal-content">`)
		w.el("h3", "", a.Title)
		w.el("p", `class="urgency"`, a.Urgency)
		w.el("p", "", st.Name.String()+" ("+st.RNO.String()+")")
		if st.MentorEmail != "" {
			w.el("p", `class="meta"`, "Mentor: "+st.MentorEmail.String())
		}
		w.raw(`<h4>Recommended actions</h4><ul>`)
		for _, item := range a.Actions {
			w.el("li", "", item)
		}
		w.raw(`</ul>`)
		w.el("p", `class="timeline"`, a.Timeline)
		w.raw(`<div class="actions"><button class="danger-btn" `, post("/alert/send"), `>Send Alert</button>`)
		w.raw(`<button class="secondary-btn" `, post("/alert/close"), `>Cancel</button></div></div></div>`)
	})
}
