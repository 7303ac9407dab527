package core

// =============================================================================
// Response envelope
// =============================================================================

// Envelope is the {success, message} pair every endpoint carries.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// Drill-down
// =============================================================================

// FilterInfo echoes the filter the server applied. Older server builds
// send {type, value}; newer ones send {filter_type, filter_value}.
type FilterInfo struct {
	Type        string `json:"type,omitempty"`
	Value       string `json:"value,omitempty"`
	FilterType  string `json:"filter_type,omitempty"`
	FilterValue string `json:"filter_value,omitempty"`
}

// Kind returns whichever filter type field was populated.
func (f FilterInfo) Kind() string {
	if f.FilterType != "" {
		return f.FilterType
	}
	return f.Type
}

// Label returns whichever filter value field was populated.
func (f FilterInfo) Label() string {
	if f.FilterValue != "" {
		return f.FilterValue
	}
	return f.Value
}

// DrilldownResult is the success payload of POST /api/analytics/drilldown.
type DrilldownResult struct {
	Count      int              `json:"count"`
	FilterInfo FilterInfo       `json:"filter_info"`
	Students   []StudentSummary `json:"students"`
}

// =============================================================================
// Group analytics (department, year, college)
// =============================================================================

// GroupStats are the KPI tiles of a department, year or college analysis.
type GroupStats struct {
	TotalStudents  int       `json:"total_students"`
	AvgPerformance FlexFloat `json:"avg_performance"`
	HighPerformers int       `json:"high_performers"`
	HighRisk       int       `json:"high_risk"`
	HighDropout    int       `json:"high_dropout"`
}

// LabelCounts maps label values ("high", "medium", ...) to counts per kind.
type LabelCounts struct {
	Performance map[string]int `json:"performance"`
	Risk        map[string]int `json:"risk"`
	Dropout     map[string]int `json:"dropout"`
}

// For returns the counts for one filter kind.
func (l LabelCounts) For(k FilterKind) map[string]int {
	switch k {
	case FilterPerformance:
		return l.Performance
	case FilterRisk:
		return l.Risk
	case FilterDropout:
		return l.Dropout
	default:
		return nil
	}
}

// Scores holds the raw per-student scores used for box plots and histograms.
type Scores struct {
	Performance []float64 `json:"performance"`
	Risk        []float64 `json:"risk"`
	Dropout     []float64 `json:"dropout"`
}

// For returns the scores for one filter kind.
func (s Scores) For(k FilterKind) []float64 {
	switch k {
	case FilterPerformance:
		return s.Performance
	case FilterRisk:
		return s.Risk
	case FilterDropout:
		return s.Dropout
	default:
		return nil
	}
}

// GroupAnalysis is the payload of the department, year and college analyze
// endpoints. SampleSize and TotalSize are only set for college scope.
type GroupAnalysis struct {
	Stats       GroupStats       `json:"stats"`
	Table       []StudentSummary `json:"table"`
	LabelCounts LabelCounts      `json:"label_counts"`
	Scores      Scores           `json:"scores"`
	SampleSize  int              `json:"sample_size,omitempty"`
	TotalSize   int              `json:"total_size,omitempty"`
}

// =============================================================================
// Batch analytics
// =============================================================================

// BatchStats are the KPI tiles of a batch analysis.
type BatchStats struct {
	TotalStudents    int       `json:"total_students"`
	AvgPerformance   FlexFloat `json:"avg_performance"`
	HighRiskPct      FlexFloat `json:"high_risk_pct"`
	AvgDropout       FlexFloat `json:"avg_dropout"`
	TopPerformersPct FlexFloat `json:"top_performers_pct"`
}

// Insights is the narrative block of a batch analysis.
type Insights struct {
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// BatchAnalysis is the payload of POST /api/batch/analyze.
type BatchAnalysis struct {
	BatchYear     FlexInt     `json:"batch_year"`
	Stats         BatchStats  `json:"stats"`
	Distributions LabelCounts `json:"distributions"`
	SemesterTrend []OptFloat  `json:"semester_trend"`
	Insights      Insights    `json:"insights"`
}

// =============================================================================
// Dashboard, preview and CRUD payloads
// =============================================================================

// Stats is the payload of GET /api/stats.
type Stats struct {
	TotalStudents int          `json:"total_students"`
	Departments   []FlexString `json:"departments"`
	Years         []FlexInt    `json:"years"`
}

// PreviewStats are the header counts of GET /api/analytics/preview.
type PreviewStats struct {
	TotalStudents int `json:"total_students"`
	HighRisk      int `json:"high_risk"`
	HighDropout   int `json:"high_dropout"`
}

// AnalyticsPreview is the payload of GET /api/analytics/preview.
type AnalyticsPreview struct {
	Stats    PreviewStats     `json:"stats"`
	Students []StudentSummary `json:"students"`
}

// UploadMode selects how the server treats an uploaded spreadsheet.
type UploadMode string

// Upload modes.
const (
	UploadNormalize UploadMode = "normalize"
	UploadAnalytics UploadMode = "analytics"
)

// ParseUploadMode validates an upload mode string.
func ParseUploadMode(s string) (UploadMode, bool) {
	switch UploadMode(s) {
	case UploadNormalize, UploadAnalytics:
		return UploadMode(s), true
	default:
		return "", false
	}
}

// UploadResult is the payload of POST /api/batch-upload. Normalize mode
// fills Added, Updated and TotalRecords; analytics mode fills
// ProcessedRows and TotalStudents.
type UploadResult struct {
	Added         int    `json:"added"`
	Updated       int    `json:"updated"`
	TotalRecords  int    `json:"total_records"`
	ProcessedRows int    `json:"processed_rows"`
	TotalStudents int    `json:"total_students"`
	Message       string `json:"message"`
}

// ReadResult is the payload of POST /api/student/read.
type ReadResult struct {
	Count    int       `json:"count"`
	Students []Student `json:"students"`
}

// AlertRequest is the body of POST /api/send-alert.
type AlertRequest struct {
	Email       string      `json:"email"`
	Student     Student     `json:"student"`
	Predictions Predictions `json:"predictions"`
	Features    Features    `json:"features"`
}
