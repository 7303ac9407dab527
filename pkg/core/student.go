package core

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Student records
// =============================================================================

// StudentSummary is the read-only projection returned by the drill-down
// endpoint and the analytics tables.
type StudentSummary struct {
	RNO                FlexString `json:"RNO"`
	Name               FlexString `json:"NAME"`
	Dept               FlexString `json:"DEPT"`
	Year               FlexInt    `json:"YEAR"`
	CurrSem            FlexInt    `json:"CURR_SEM"`
	BatchYear          FlexInt    `json:"batch_year"`
	PerformanceLabel   string     `json:"performance_label"`
	RiskLabel          string     `json:"risk_label"`
	DropoutLabel       string     `json:"dropout_label"`
	PerformanceOverall FlexFloat  `json:"performance_overall"`
	RiskScore          FlexFloat  `json:"risk_score"`
	DropoutScore       FlexFloat  `json:"dropout_score"`
}

// Student is the full record used by search, predict and CRUD.
type Student struct {
	Name        FlexString `json:"NAME" validate:"required"`
	RNO         FlexString `json:"RNO" validate:"required"`
	Email       FlexString `json:"EMAIL" validate:"required,email"`
	Dept        FlexString `json:"DEPT" validate:"required"`
	Year        FlexInt    `json:"YEAR" validate:"required,min=1,max=4"`
	CurrSem     FlexInt    `json:"CURR_SEM" validate:"required,min=1,max=8"`
	Mentor      FlexString `json:"MENTOR,omitempty"`
	MentorEmail FlexString `json:"MENTOR_EMAIL,omitempty" validate:"omitempty,email"`
	Sem1        OptFloat   `json:"SEM1"`
	Sem2        OptFloat   `json:"SEM2"`
	Sem3        OptFloat   `json:"SEM3"`
	Sem4        OptFloat   `json:"SEM4"`
	Sem5        OptFloat   `json:"SEM5"`
	Sem6        OptFloat   `json:"SEM6"`
	Sem7        OptFloat   `json:"SEM7"`
	Sem8        OptFloat   `json:"SEM8"`

	InternalMarks      FlexFloat `json:"INTERNAL_MARKS" validate:"min=0,max=30"`
	TotalDaysCurr      FlexFloat `json:"TOTAL_DAYS_CURR" validate:"min=0"`
	AttendedDaysCurr   FlexFloat `json:"ATTENDED_DAYS_CURR" validate:"min=0,ltefield=TotalDaysCurr"`
	PrevAttendancePerc FlexFloat `json:"PREV_ATTENDANCE_PERC" validate:"min=0,max=100"`
	BehaviorScore10    FlexFloat `json:"BEHAVIOR_SCORE_10" validate:"min=0,max=10"`
}

// Defaults applied by the create form when optional fields are left blank.
const (
	DefaultInternalMarks      = 20
	DefaultTotalDays          = 90
	DefaultAttendedDays       = 80
	DefaultPrevAttendancePerc = 85
	DefaultBehaviorScore      = 7
)

// NewStudent returns a record with the create-form defaults filled in.
func NewStudent() Student {
	return Student{
		InternalMarks:      DefaultInternalMarks,
		TotalDaysCurr:      DefaultTotalDays,
		AttendedDaysCurr:   DefaultAttendedDays,
		PrevAttendancePerc: DefaultPrevAttendancePerc,
		BehaviorScore10:    DefaultBehaviorScore,
	}
}

// Semesters returns SEM1..SEM8 in order.
func (s Student) Semesters() []OptFloat {
	return []OptFloat{s.Sem1, s.Sem2, s.Sem3, s.Sem4, s.Sem5, s.Sem6, s.Sem7, s.Sem8}
}

// SetSemester assigns the mark for semester n (1-based). Out-of-range n is ignored.
func (s *Student) SetSemester(n int, v OptFloat) {
	ptrs := []*OptFloat{&s.Sem1, &s.Sem2, &s.Sem3, &s.Sem4, &s.Sem5, &s.Sem6, &s.Sem7, &s.Sem8}
	if n >= 1 && n <= len(ptrs) {
		*ptrs[n-1] = v
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the fields required to create or update a student.
func (s Student) Validate() error {
	return translate(validate.Struct(s))
}

// translate converts the first validator failure into a ValidationError.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email address"
	case "min":
		msg = "must be at least " + fe.Param()
	case "max":
		msg = "must be at most " + fe.Param()
	case "ltefield":
		msg = "must not exceed " + fe.Param()
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

// =============================================================================
// Predictions
// =============================================================================

// Features are the derived metrics the server computes for one student.
type Features struct {
	PastAvg            FlexFloat `json:"past_avg"`
	PastCount          FlexInt   `json:"past_count"`
	InternalPct        FlexFloat `json:"internal_pct"`
	AttendancePct      FlexFloat `json:"attendance_pct"`
	BehaviorPct        FlexFloat `json:"behavior_pct"`
	PerformanceTrend   FlexFloat `json:"performance_trend"`
	PerformanceOverall FlexFloat `json:"performance_overall"`
	RiskScore          FlexFloat `json:"risk_score"`
	DropoutScore       FlexFloat `json:"dropout_score"`
	PresentAtt         FlexFloat `json:"present_att"`
	PrevAtt            FlexFloat `json:"prev_att"`
}

// Predictions are the three labels the server assigns.
type Predictions struct {
	PerformanceLabel string `json:"performance_label"`
	RiskLabel        string `json:"risk_label"`
	DropoutLabel     string `json:"dropout_label"`
}

// Label returns the prediction for one filter kind.
func (p Predictions) Label(k FilterKind) string {
	switch k {
	case FilterPerformance:
		return p.PerformanceLabel
	case FilterRisk:
		return p.RiskLabel
	case FilterDropout:
		return p.DropoutLabel
	default:
		return ""
	}
}

// PredictResult is the payload of POST /api/student/predict.
type PredictResult struct {
	Student     Student     `json:"student"`
	Features    Features    `json:"features"`
	Predictions Predictions `json:"predictions"`
	NeedAlert   bool        `json:"need_alert"`
}
