package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

// StudentCSVHeader is the header row of a single-student export.
var StudentCSVHeader = []string{
	"Name", "RNO", "Dept", "Year", "Semester",
	"Internal", "Attendance", "Behavior", "Performance", "Risk", "Dropout",
	"PerformanceLabel", "RiskLabel", "DropoutLabel",
}

// StudentCSVName returns the download name of a student export.
func StudentCSVName(rno string) string {
	return fmt.Sprintf("student_%s.csv", rno)
}

// WriteStudentCSV writes a one-row report of the analysed student.
func WriteStudentCSV(w io.Writer, r core.PredictResult) error {
	s, f, p := r.Student, r.Features, r.Predictions
	num := func(v core.FlexFloat) string { return strconv.FormatFloat(v.Float(), 'f', -1, 64) }

	cw := csv.NewWriter(w)
	if err := cw.Write(StudentCSVHeader); err != nil {
		return err
	}
	if err := cw.Write([]string{
		s.Name.String(), s.RNO.String(), s.Dept.String(), s.Year.String(), s.CurrSem.String(),
		num(f.InternalPct), num(f.AttendancePct), num(f.BehaviorPct),
		num(f.PerformanceOverall), num(f.RiskScore), num(f.DropoutScore),
		p.PerformanceLabel, p.RiskLabel, p.DropoutLabel,
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// XLSXSheet is the sheet name of table exports.
const XLSXSheet = "Students"

// StudentsXLSXHeader is the header row of table exports.
var StudentsXLSXHeader = []any{
	"RNO", "NAME", "DEPT", "YEAR", "CURR_SEM", "batch_year",
	"performance_label", "risk_label", "dropout_label",
	"performance_overall", "risk_score", "dropout_score",
}

// WriteStudentsXLSX writes an analytics table as a workbook.
func WriteStudentsXLSX(w io.Writer, rows []core.StudentSummary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(XLSXSheet, "A1", &StudentsXLSXHeader); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.RNO.String(), r.Name.String(), r.Dept.String(), int(r.Year), int(r.CurrSem), int(r.BatchYear),
			r.PerformanceLabel, r.RiskLabel, r.DropoutLabel,
			r.PerformanceOverall.Float(), r.RiskScore.Float(), r.DropoutScore.Float(),
		}
		if err := f.SetSheetRow(XLSXSheet, cell, &values); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
