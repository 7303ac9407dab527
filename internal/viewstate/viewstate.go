// Package viewstate holds which top-level mode is active and which modals
// are open. All changes happen under one lock, so readers only ever see
// complete snapshots.
package viewstate

import (
	"fmt"
	"sort"
	"sync"
)

// ModeID names a top-level dashboard section.
type ModeID string

// Dashboard modes.
const (
	ModeStudent    ModeID = "student"
	ModeDepartment ModeID = "department"
	ModeYear       ModeID = "year"
	ModeCollege    ModeID = "college"
	ModeBatch      ModeID = "batch"
	ModeCRUD       ModeID = "crud"
	ModeUpload     ModeID = "upload"
)

// Modes lists every mode in navigation order.
func Modes() []ModeID {
	return []ModeID{ModeStudent, ModeDepartment, ModeYear, ModeCollege, ModeBatch, ModeCRUD, ModeUpload}
}

// ParseMode validates a mode name.
func ParseMode(s string) (ModeID, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// ModalID names an overlay dialog.
type ModalID string

// Modals.
const (
	ModalDrilldown     ModalID = "drilldown"
	ModalStudentDetail ModalID = "student-detail"
	ModalAlert         ModalID = "alert"
	ModalNotice        ModalID = "notice"
)

// Modals lists every modal.
func Modals() []ModalID {
	return []ModalID{ModalDrilldown, ModalStudentDetail, ModalAlert, ModalNotice}
}

// ParseModal validates a modal name.
func ParseModal(s string) (ModalID, error) {
	for _, m := range Modals() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown modal %q", s)
}

// Snapshot is an immutable copy of the registry.
type Snapshot struct {
	Mode ModeID
	Open []ModalID
}

// IsOpen reports whether id is open in this snapshot.
func (s Snapshot) IsOpen(id ModalID) bool {
	for _, m := range s.Open {
		if m == id {
			return true
		}
	}
	return false
}

// Registry owns mode and modal visibility.
type Registry struct {
	mu       sync.RWMutex
	mode     ModeID
	open     map[ModalID]bool
	onChange func(Snapshot)
}

// New creates a registry with initial active and no modals open.
func New(initial ModeID) *Registry {
	if _, err := ParseMode(string(initial)); err != nil {
		initial = ModeStudent
	}
	return &Registry{mode: initial, open: make(map[ModalID]bool)}
}

// OnChange registers fn to run after every effective change.
func (r *Registry) OnChange(fn func(Snapshot)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// ActivateMode makes id the only active mode.
func (r *Registry) ActivateMode(id ModeID) error {
	if _, err := ParseMode(string(id)); err != nil {
		return err
	}
	r.update(func() bool {
		if r.mode == id {
			return false
		}
		r.mode = id
		return true
	})
	return nil
}

// OpenModal shows id. Other modals are left as they are.
func (r *Registry) OpenModal(id ModalID) error {
	return r.setModal(id, true)
}

// CloseModal hides id. Closing a closed modal is a no-op.
func (r *Registry) CloseModal(id ModalID) error {
	return r.setModal(id, false)
}

func (r *Registry) setModal(id ModalID, open bool) error {
	if _, err := ParseModal(string(id)); err != nil {
		return err
	}
	r.update(func() bool {
		if r.open[id] == open {
			return false
		}
		if open {
			r.open[id] = true
		} else {
			delete(r.open, id)
		}
		return true
	})
	return nil
}

// Mode returns the active mode.
func (r *Registry) Mode() ModeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// IsOpen reports whether id is open.
func (r *Registry) IsOpen(id ModalID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.open[id]
}

// Snapshot returns a consistent copy.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() Snapshot {
	open := make([]ModalID, 0, len(r.open))
	for id := range r.open {
		open = append(open, id)
	}
	sort.Slice(open, func(i, j int) bool { return open[i] < open[j] })
	return Snapshot{Mode: r.mode, Open: open}
}

// update applies fn under the write lock and notifies if it changed anything.
func (r *Registry) update(fn func() bool) {
	r.mu.Lock()
	changed := fn()
	snap, notify := r.snapshotLocked(), r.onChange
	r.mu.Unlock()

	if changed && notify != nil {
		notify(snap)
	}
}
