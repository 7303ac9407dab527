package render

import "github.com/edumetric-labs/edumetric/pkg/core"

// NoGroupData is the placeholder for an empty analytics table.
const NoGroupData = "No data available for this selection"

// TableRow is one rendered row. RNO drives the row's view action.
type TableRow struct {
	RNO   string
	Cells []string
	// Labels holds the raw performance, risk and dropout labels for styling.
	Labels [3]string
}

// Table is a rendered student table.
type Table struct {
	Columns     []string
	Rows        []TableRow
	Placeholder string
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// GroupColumns returns the analytics table headers.
func GroupColumns(includeDept bool) []string {
	cols := []string{"RNO", "Name"}
	if includeDept {
		cols = append(cols, "Dept")
	}
	return append(cols, "Year", "Sem", "Performance", "Risk", "Dropout", "Perf %", "Risk %", "Dropout %")
}

// GroupTable renders the student table of a department, year or college
// analysis. Labels are upper-cased and scores get one decimal.
func GroupTable(rows []core.StudentSummary, includeDept bool) Table {
	t := Table{Columns: GroupColumns(includeDept)}
	if len(rows) == 0 {
		t.Placeholder = NoGroupData
		return t
	}

	t.Rows = make([]TableRow, 0, len(rows))
	for _, r := range rows {
		perf := LabelOrUnknown(r.PerformanceLabel)
		risk := LabelOrUnknown(r.RiskLabel)
		drop := LabelOrUnknown(r.DropoutLabel)

		cells := []string{r.RNO.String(), r.Name.String()}
		if includeDept {
			cells = append(cells, r.Dept.String())
		}
		cells = append(cells,
			r.Year.String(),
			r.CurrSem.String(),
			Upper(perf),
			Upper(risk),
			Upper(drop),
			Pct(r.PerformanceOverall.Float()),
			Pct(r.RiskScore.Float()),
			Pct(r.DropoutScore.Float()),
		)
		t.Rows = append(t.Rows, TableRow{
			RNO:    r.RNO.String(),
			Cells:  cells,
			Labels: [3]string{perf, risk, drop},
		})
	}
	return t
}

// CRUDColumns are the headers of the read-student result table.
var CRUDColumns = []string{"RNO", "Name", "Email", "Dept", "Year", "Sem", "Mentor"}

// StudentTable renders full student records returned by a CRUD read.
func StudentTable(students []core.Student) Table {
	t := Table{Columns: CRUDColumns}
	if len(students) == 0 {
		t.Placeholder = "No students found"
		return t
	}
	for _, s := range students {
		t.Rows = append(t.Rows, TableRow{
			RNO: s.RNO.String(),
			Cells: []string{
				s.RNO.String(), s.Name.String(), s.Email.String(), s.Dept.String(),
				s.Year.String(), s.CurrSem.String(), s.Mentor.String(),
			},
		})
	}
	return t
}
