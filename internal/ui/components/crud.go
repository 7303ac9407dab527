package components

import (
	"fmt"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/render"
)

var crudTabs = []struct {
	Op    app.CRUDOp
	Label string
}{
	{app.CRUDCreate, "Create"},
	{app.CRUDRead, "Read"},
	{app.CRUDUpdate, "Update"},
	{app.CRUDDelete, "Delete"},
}

// crudSection switches tabs on the client through $crud.op; only the
// submitted operation reaches the server.
func crudSection(w *writer, s app.Snapshot) {
	w.raw(`<div class="panel"><h2>Manage Students</h2><div class="tabs">`)
	for _, t := range crudTabs {
		op := jsString(string(t.Op))
		w.raw(`<button class="tab-btn" `,
			attr("data-class:active", "$crud.op == "+op), ` `,
			attr("data-on:click", "$crud.op = "+op), `>`)
		w.text(t.Label)
		w.raw(`</button>`)
	}
	w.raw(`</div>`)

	if s.CRUD.Message != "" {
		w.el("p", `class="crud-message"`, s.CRUD.Message)
	}

	tab(w, app.CRUDCreate, func() {
		studentForm(w)
		w.raw(`<button class="primary-btn" `, post("/crud/create"), `>Create Student</button>`)
	})

	tab(w, app.CRUDRead, func() {
		w.raw(`<div class="search-row">`)
		input(w, "crud.rno", "Register No", "text")
		input(w, "crud.name", "Name", "text")
		w.raw(`<button class="primary-btn" `, post("/crud/read"), `>Search</button></div>`)
		if s.CRUD.Op == app.CRUDRead {
			table(w, render.StudentTable(s.CRUD.Students), true)
		}
	})

	tab(w, app.CRUDUpdate, func() {
		w.raw(`<div class="search-row">`)
		input(w, "crud.rno", "Register No", "text")
		w.raw(`<button class="secondary-btn" `, post("/crud/update/fetch"), `>Load</button></div>`)
		if s.CRUD.Op == app.CRUDUpdate && s.CRUD.Selected != nil {
			studentForm(w)
			w.raw(`<button class="primary-btn" `, post("/crud/update"), `>Save Changes</button>`)
		}
	})

	tab(w, app.CRUDDelete, func() {
		w.raw(`<div class="search-row">`)
		input(w, "crud.rno", "Register No", "text")
		w.raw(`<button class="secondary-btn" `, post("/crud/delete/fetch"), `>Load</button></div>`)
		if s.CRUD.Op == app.CRUDDelete && s.CRUD.Selected != nil {
			st := s.CRUD.Selected
			w.el("p", `class="meta"`, fmt.Sprintf("%s (%s) • %s • Year %d", st.Name, st.RNO, st.Dept, st.Year))
			w.raw(`<label class="field"><input type="checkbox" data-bind="crud.confirm"> I understand this cannot be undone</label>`)
			w.raw(`<button class="danger-btn" data-attr:disabled="!$crud.confirm" `, post("/crud/delete"), `>Delete Student</button>`)
		}
	})
	w.raw(`</div>`)
}

func tab(w *writer, op app.CRUDOp, body func()) {
	w.raw(`<div class="tab-panel" `, attr("data-show", "$crud.op == "+jsString(string(op))), `>`)
	body()
	w.raw(`</div>`)
}
