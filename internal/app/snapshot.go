package app

import (
	"github.com/edumetric-labs/edumetric/internal/alertrules"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/loading"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	View      viewstate.Snapshot
	Loading   loading.Status
	Drilldown drilldown.State
	Notice    *Notice

	Stats   *core.Stats
	Student *core.PredictResult
	// Alert is set while the alert modal is open.
	Alert *alertrules.Assessment

	Groups  map[core.Scope]Group
	Batch   *BatchView
	CRUD    CRUDView
	Upload  *UploadView
	Preview *core.AnalyticsPreview
}

// Group is the last department, year or college analysis. Scope and
// ScopeValue are what its charts drill down on.
type Group struct {
	Scope      core.Scope
	ScopeValue string
	Title      string
	Analysis   core.GroupAnalysis
}

// BatchView is the last batch analysis.
type BatchView struct {
	BatchYear string
	Analysis  core.BatchAnalysis
}

// CRUDOp names the active CRUD form.
type CRUDOp string

// CRUD operations.
const (
	CRUDCreate CRUDOp = "create"
	CRUDRead   CRUDOp = "read"
	CRUDUpdate CRUDOp = "update"
	CRUDDelete CRUDOp = "delete"
)

// ParseCRUDOp validates an operation name.
func ParseCRUDOp(s string) (CRUDOp, bool) {
	switch CRUDOp(s) {
	case CRUDCreate, CRUDRead, CRUDUpdate, CRUDDelete:
		return CRUDOp(s), true
	default:
		return "", false
	}
}

// CRUDView is the outcome of the last CRUD operation.
type CRUDView struct {
	Op      CRUDOp
	Message string
	// Students holds read results.
	Students []core.Student
	// Selected is the record loaded for update or delete.
	Selected *core.Student
}

// UploadView is the outcome of the last batch upload.
type UploadView struct {
	Filename string
	Mode     core.UploadMode
	Result   core.UploadResult
}

// Group returns the analysis for scope, if any.
func (s Snapshot) Group(scope core.Scope) (Group, bool) {
	g, ok := s.Groups[scope]
	return g, ok
}
