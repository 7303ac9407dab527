package components

import (
	"github.com/a-h/templ"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/ui/resources"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
)

// DatastarScript is the client runtime.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// initialSignals seeds every form field bound on the page.
const initialSignals = `{
  "search": {"rno": ""},
  "student": {"NAME": "", "RNO": "", "EMAIL": "", "DEPT": "", "YEAR": "", "CURR_SEM": "",
    "MENTOR": "", "MENTOR_EMAIL": "",
    "SEM1": "", "SEM2": "", "SEM3": "", "SEM4": "", "SEM5": "", "SEM6": "", "SEM7": "", "SEM8": "",
    "INTERNAL_MARKS": "20", "TOTAL_DAYS_CURR": "90", "ATTENDED_DAYS_CURR": "80",
    "PREV_ATTENDANCE_PERC": "85", "BEHAVIOR_SCORE_10": "7"},
  "dept": {"dept": "", "year": ""},
  "year": {"year": ""},
  "batch": {"batchYear": ""},
  "crud": {"op": "create", "rno": "", "name": "", "confirm": false},
  "upload": {"mode": "normalize"},
  "dd": {"kind": "", "chart": "", "value": "", "scope": "", "scopeValue": ""}
}`

// PageData is what the full page needs.
type PageData struct {
	Title string
	IsDev bool
	User  string
	Snap  app.Snapshot
}

func head(w *writer, title string) {
	w.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
	w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	w.el("title", "", title+" - EduMetric")
	w.raw(`<link rel="stylesheet" href="`, resources.StaticPath("app.css"), `">`)
	w.raw(`<script type="module" src="`, DatastarScript, `"></script>`)
	w.raw(`<script defer src="`, resources.StaticPath("app.js"), `"></script>`)
	w.raw(`</head>`)
}

// Page renders the dashboard document. The shell is rendered inline so the
// first paint needs no round trip; /updates keeps it current afterwards.
func Page(d PageData) templ.Component {
	return component(func(w *writer) {
		head(w, d.Title)
		w.raw(`<body `, attr("data-signals", initialSignals), ` data-init="@get('/updates')">`)
		if d.IsDev {
			w.raw(`<div data-init="@get('/reload', {openWhenHidden: true})"></div>`)
		}
		w.raw(`<header class="topbar"><h1>EduMetric</h1>`)
		if d.User != "" {
			w.raw(`<span class="user">`)
			w.text(d.User)
			w.raw(` <a href="/logout">Log out</a></span>`)
		}
		w.raw(`</header>`)
		w.render(AppShell(d.Snap))
		w.raw(`</body></html>`)
	})
}

// LoginPage renders the sign-in form.
func LoginPage(errMsg string) templ.Component {
	return component(func(w *writer) {
		head(w, "Sign in")
		w.raw(`<body class="login"><form class="login-card" method="post" action="/login">`)
		w.el("h2", "", "Sign in to EduMetric")
		if errMsg != "" {
			w.el("p", `class="error"`, errMsg)
		}
		w.raw(`<label>Username <input name="username" autocomplete="username"></label>`)
		w.raw(`<label>Password <input name="password" type="password" autocomplete="current-password"></label>`)
		w.raw(`<button type="submit" class="primary-btn">Sign in</button></form></body></html>`)
	})
}

// AppShell is the element the server morphs on every update.
func AppShell(s app.Snapshot) templ.Component {
	return component(func(w *writer) {
		w.raw(`<div id="app-shell">`)
		nav(w, s)
		statsBar(w, s)
		w.raw(`<main id="ui-content">`)
		for _, m := range viewstate.Modes() {
			section(w, s, m)
		}
		w.raw(`</main>`)
		w.render(DrilldownModal(s))
		w.render(AlertModal(s))
		w.render(NoticeModal(s))
		w.render(LoadingOverlay(s))
		w.raw(`</div>`)
	})
}

var modeLabels = map[viewstate.ModeID]string{
	viewstate.ModeStudent:    "Student",
	viewstate.ModeDepartment: "Department",
	viewstate.ModeYear:       "Year",
	viewstate.ModeCollege:    "College",
	viewstate.ModeBatch:      "Batch",
	viewstate.ModeCRUD:       "Manage Students",
	viewstate.ModeUpload:     "Batch Upload",
}

func nav(w *writer, s app.Snapshot) {
	w.raw(`<nav class="sidebar">`)
	for _, m := range viewstate.Modes() {
		active := ""
		if s.View.Mode == m {
			active = "active"
		}
		w.raw(`<button `, attr("class", classes("nav-btn", active)), ` `, attr("data-mode", string(m)), ` `, post("/mode/"+string(m)), `>`)
		w.text(modeLabels[m])
		w.raw(`</button>`)
	}
	w.raw(`</nav>`)
}

func statsBar(w *writer, s app.Snapshot) {
	w.raw(`<div id="stats-bar" class="stats-bar">`)
	if s.Stats == nil {
		w.el("span", `class="muted"`, "Statistics unavailable")
	} else {
		w.printf(`<span>Students <b>%d</b></span>`, s.Stats.TotalStudents)
		w.printf(`<span>Departments <b>%d</b></span>`, len(s.Stats.Departments))
		w.printf(`<span>Years <b>%d</b></span>`, len(s.Stats.Years))
	}
	w.raw(`</div>`)
}

func section(w *writer, s app.Snapshot, m viewstate.ModeID) {
	hidden := "hidden"
	if s.View.Mode == m {
		hidden = "active"
	}
	w.raw(`<section `, attr("id", "mode-"+string(m)), ` `, attr("class", classes("mode-section", hidden)), `>`)
	if s.View.Mode == m {
		switch m {
		case viewstate.ModeStudent:
			studentSection(w, s)
		case viewstate.ModeDepartment, viewstate.ModeYear, viewstate.ModeCollege:
			groupSection(w, s, m)
		case viewstate.ModeBatch:
			batchSection(w, s)
		case viewstate.ModeCRUD:
			crudSection(w, s)
		case viewstate.ModeUpload:
			uploadSection(w, s)
		}
	}
	w.raw(`</section>`)
}

// LoadingOverlay is the global busy indicator.
func LoadingOverlay(s app.Snapshot) templ.Component {
	return component(func(w *writer) {
		if !s.Loading.Visible {
			w.raw(`<div id="loading-overlay" class="loading-overlay hidden"></div>`)
			return
		}
		w.raw(`<div id="loading-overlay" class="loading-overlay"><div class="spinner"></div>`)
		w.el("p", `id="loading-message"`, s.Loading.Message)
		w.raw(`</div>`)
	})
}

// NoticeModal is the blocking message box.
func NoticeModal(s app.Snapshot) templ.Component {
	return component(func(w *writer) {
		if s.Notice == nil || !s.View.IsOpen(viewstate.ModalNotice) {
			w.raw(`<div id="notice-modal" class="modal hidden"></div>`)
			return
		}
		w.raw(`<div id="notice-modal" `, attr("class", "modal show notice-"+string(s.Notice.Kind)), `><div class="modal-content">`)
		w.el("p", `class="notice-message"`, s.Notice.Message)
		w.raw(`<button class="primary-btn" `, post("/notice/dismiss"), `>OK</button></div></div>`)
	})
}
