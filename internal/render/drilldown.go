package render

import (
	"fmt"
	"strings"

	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
)

// DrilldownColumns are the drill-down table headers.
var DrilldownColumns = []string{
	"Register No", "Student Name", "Department", "Year",
	"Performance", "Risk Level", "Dropout Risk", "Actions",
}

// Drill-down modal texts.
const (
	DrilldownLoadingTitle = "LOADING STUDENT DETAILS"
	DrilldownLoadingCount = "Please wait..."
	DrilldownLoadingBody  = "Loading student details..."
	DrilldownEmpty        = "No students found for this filter"
	DrilldownErrorTitle   = "ERROR LOADING DATA"
	DrilldownErrorCount   = "Failed to load"
	DrilldownNetworkTitle = "NETWORK ERROR"
	DrilldownNetworkCount = "Connection failed"
	DrilldownViewAction   = "View Analytics"
)

// DrilldownRow is one student in the drill-down table.
type DrilldownRow struct {
	RNO         string
	Name        string
	Dept        string
	Year        string
	Performance string
	Risk        string
	Dropout     string
}

// Cells returns the row without the action column.
func (r DrilldownRow) Cells() []string {
	return []string{r.RNO, r.Name, r.Dept, r.Year, r.Performance, r.Risk, r.Dropout}
}

// DrilldownView is what the modal shows for a workflow state.
type DrilldownView struct {
	Visible bool
	Status  drilldown.Status
	Title   string
	Count   string
	// Message replaces the table body while loading, on error and when
	// the result is empty.
	Message  string
	Rows     []DrilldownRow
	CanRetry bool
}

// Drilldown builds the modal view for a state.
func Drilldown(st drilldown.State) DrilldownView {
	v := DrilldownView{Visible: st.ModalVisible(), Status: st.Status}

	switch st.Status {
	case drilldown.StatusLoading:
		v.Title = DrilldownLoadingTitle
		v.Count = DrilldownLoadingCount
		v.Message = DrilldownLoadingBody
	case drilldown.StatusError:
		v.CanRetry = true
		if st.ErrorKind == apiclient.KindApplication {
			v.Title = DrilldownErrorTitle
			v.Count = DrilldownErrorCount
			v.Message = "Failed to load student details: " + st.ErrorMessage
		} else {
			v.Title = DrilldownNetworkTitle
			v.Count = DrilldownNetworkCount
			v.Message = st.ErrorMessage
		}
	case drilldown.StatusSuccess:
		v.Title = drilldownTitle(st)
		v.Count = fmt.Sprintf("%d students", st.Count)
		if len(st.Result) == 0 {
			v.Message = DrilldownEmpty
		}
		v.Rows = make([]DrilldownRow, 0, len(st.Result))
		for _, s := range st.Result {
			v.Rows = append(v.Rows, DrilldownRow{
				RNO:         s.RNO.String(),
				Name:        s.Name.String(),
				Dept:        s.Dept.String(),
				Year:        s.Year.String(),
				Performance: s.PerformanceLabel,
				Risk:        s.RiskLabel,
				Dropout:     s.DropoutLabel,
			})
		}
	}
	return v
}

// drilldownTitle prefers the filter the server echoed and falls back to
// the request.
func drilldownTitle(st drilldown.State) string {
	kind, value := st.FilterInfo.Kind(), st.FilterInfo.Label()
	if kind == "" {
		kind = st.Request.Kind().Wire()
	}
	if value == "" {
		value = st.Request.Value()
	}
	kind = strings.Replace(kind, "_label", "", 1)
	kind = strings.Replace(kind, "_", " ", 1)
	return fmt.Sprintf("%s %s STUDENTS", Upper(value), Upper(kind))
}
