package testutil

// Canned backend responses shared by front-end tests.
const (
	StatsResponse = `{"total_students": 12, "departments": ["CSE", "ECE"], "years": [1, 2]}`

	SearchResponse = `{"success": true, "student": {"RNO": "24CS01", "NAME": "Asha", "EMAIL": "asha@example.edu",
		"DEPT": "CSE", "YEAR": 2, "CURR_SEM": 3, "MENTOR_EMAIL": "mentor@example.edu", "SEM1": 8.1, "SEM2": 7.4}}`

	PredictResponse = `{"success": true,
		"student": {"RNO": "24CS01", "NAME": "Asha", "EMAIL": "asha@example.edu", "DEPT": "CSE", "YEAR": 2,
			"CURR_SEM": 3, "MENTOR_EMAIL": "mentor@example.edu", "SEM1": 8.1, "SEM2": 7.4},
		"features": {"internal_pct": 70, "attendance_pct": 58, "behavior_pct": 80, "performance_overall": 62,
			"risk_score": 71, "dropout_score": 44, "present_att": 58, "prev_att": 80},
		"predictions": {"performance_label": "medium", "risk_label": "high", "dropout_label": "medium"},
		"need_alert": true}`

	DrilldownResponse = `{"success": true, "count": 2, "filter_info": {"type": "risk_label", "value": "high"}, "students": [
		{"RNO": "24CS01", "NAME": "Asha", "DEPT": "CSE", "YEAR": 2, "performance_label": "medium", "risk_label": "high", "dropout_label": "medium"},
		{"RNO": "24CS02", "NAME": "Ravi", "DEPT": "CSE", "YEAR": 2, "performance_label": "poor", "risk_label": "high", "dropout_label": "high"}]}`

	CollegeResponse = `{"success": true,
		"stats": {"total_students": 2, "avg_performance": 64.5, "high_performers": 0, "high_risk": 2, "high_dropout": 1},
		"table": [
			{"RNO": "24CS01", "NAME": "Asha", "DEPT": "CSE", "YEAR": 2, "performance_label": "medium", "risk_label": "high", "dropout_label": "medium"},
			{"RNO": "24CS02", "NAME": "Ravi", "DEPT": "CSE", "YEAR": 2, "performance_label": "poor", "risk_label": "high", "dropout_label": "high"}],
		"label_counts": {"performance": {"medium": 1, "poor": 1}, "risk": {"high": 2}, "dropout": {"medium": 1, "high": 1}},
		"scores": {"performance": [62, 67], "risk": [71, 80], "dropout": [44, 70]}}`

	BatchResponse = `{"success": true, "batch_year": 2024,
		"stats": {"total_students": 40, "avg_performance": 71.2, "high_risk_pct": 12.5, "avg_dropout": 18, "top_performers_pct": 20},
		"distributions": {"performance": {"high": 8, "medium": 27, "poor": 5}, "risk": {"high": 5, "low": 35}, "dropout": {"low": 40}},
		"semester_trend": [7.1, 7.4, null],
		"insights": {"summary": "A steady batch.", "insights": ["Attendance dipped in semester 3."], "recommendations": []}}`

	UploadResponse = `{"success": true, "added": 3, "updated": 1, "total_records": 4}`
)
