package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

// API paths.
const (
	PathDrilldown        = "/api/analytics/drilldown"
	PathStudentSearch    = "/api/student/search"
	PathStudentPredict   = "/api/student/predict"
	PathStudentCreate    = "/api/student/create"
	PathStudentRead      = "/api/student/read"
	PathStudentUpdate    = "/api/student/update"
	PathStudentDelete    = "/api/student/delete"
	PathDepartment       = "/api/department/analyze"
	PathYear             = "/api/year/analyze"
	PathCollege          = "/api/college/analyze"
	PathBatch            = "/api/batch/analyze"
	PathBatchUpload      = "/api/batch-upload"
	PathAnalyticsPreview = "/api/analytics/preview"
	PathStats            = "/api/stats"
	PathSendAlert        = "/api/send-alert"
)

// callOK performs a call and converts success:false into an ApplicationError.
func (c *Client) callOK(ctx context.Context, method, path string, body any) (*Response, error) {
	resp, err := c.Call(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Drilldown lists the students matching req.
func (c *Client) Drilldown(ctx context.Context, req core.FilterRequest) (*core.DrilldownResult, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathDrilldown, req)
	if err != nil {
		return nil, err
	}
	var out core.DrilldownResult
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Students == nil {
		out.Students = []core.StudentSummary{}
	}
	return &out, nil
}

// SearchStudent loads one student by register number.
func (c *Client) SearchStudent(ctx context.Context, rno string) (*core.Student, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathStudentSearch, map[string]string{"rno": rno})
	if err != nil {
		return nil, err
	}
	var s core.Student
	if err := resp.Field("student", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Predict asks the server to score a student.
func (c *Client) Predict(ctx context.Context, s core.Student) (*core.PredictResult, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathStudentPredict, s)
	if err != nil {
		return nil, err
	}
	var out core.PredictResult
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStudent stores a new student and returns the server message.
func (c *Client) CreateStudent(ctx context.Context, s core.Student) (string, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathStudentCreate, s)
	if err != nil {
		return "", err
	}
	return resp.Envelope().Message, nil
}

// ReadStudents looks students up by register number or name.
func (c *Client) ReadStudents(ctx context.Context, rno, name string) (*core.ReadResult, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathStudentRead, map[string]string{"rno": rno, "name": name})
	if err != nil {
		return nil, err
	}
	var out core.ReadResult
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStudent overwrites a student and returns the stored record.
func (c *Client) UpdateStudent(ctx context.Context, s core.Student) (*core.Student, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathStudentUpdate, s)
	if err != nil {
		return nil, err
	}
	out := s
	if resp.HasField("student") {
		if err := resp.Field("student", &out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// DeleteStudent removes a student and returns the deleted record.
func (c *Client) DeleteStudent(ctx context.Context, rno string) (*core.Student, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathStudentDelete, map[string]string{"rno": rno})
	if err != nil {
		return nil, err
	}
	out := core.Student{RNO: core.FlexString(rno)}
	if resp.HasField("deleted_student") {
		if err := resp.Field("deleted_student", &out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// AnalyzeDepartment aggregates one department, optionally for one year.
func (c *Client) AnalyzeDepartment(ctx context.Context, dept, year string) (*core.GroupAnalysis, error) {
	return c.group(ctx, http.MethodPost, PathDepartment, map[string]string{"dept": dept, "year": year})
}

// AnalyzeYear aggregates one year of study across departments.
func (c *Client) AnalyzeYear(ctx context.Context, year string) (*core.GroupAnalysis, error) {
	return c.group(ctx, http.MethodPost, PathYear, map[string]string{"year": year})
}

// AnalyzeCollege aggregates the whole college.
func (c *Client) AnalyzeCollege(ctx context.Context) (*core.GroupAnalysis, error) {
	return c.group(ctx, http.MethodGet, PathCollege, nil)
}

func (c *Client) group(ctx context.Context, method, path string, body any) (*core.GroupAnalysis, error) {
	resp, err := c.callOK(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var out core.GroupAnalysis
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeBatch aggregates one admission batch.
func (c *Client) AnalyzeBatch(ctx context.Context, batchYear string) (*core.BatchAnalysis, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathBatch, map[string]string{"batch_year": batchYear})
	if err != nil {
		return nil, err
	}
	var out core.BatchAnalysis
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyticsPreview returns the headline counts and a sample of students.
func (c *Client) AnalyticsPreview(ctx context.Context) (*core.AnalyticsPreview, error) {
	resp, err := c.callOK(ctx, http.MethodGet, PathAnalyticsPreview, nil)
	if err != nil {
		return nil, err
	}
	var out core.AnalyticsPreview
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the dashboard totals. This endpoint may omit the envelope;
// a missing success field is treated as success.
func (c *Client) Stats(ctx context.Context) (*core.Stats, error) {
	resp, err := c.Call(ctx, http.MethodGet, PathStats, nil)
	if err != nil {
		return nil, err
	}
	if resp.HasEnvelope() {
		if err := resp.Err(); err != nil {
			return nil, err
		}
	}
	var out core.Stats
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendAlert emails a mentor about an at-risk student.
func (c *Client) SendAlert(ctx context.Context, req core.AlertRequest) (string, error) {
	resp, err := c.callOK(ctx, http.MethodPost, PathSendAlert, req)
	if err != nil {
		return "", err
	}
	return resp.Envelope().Message, nil
}

// BatchUpload sends a CSV or XLSX file as multipart form data.
func (c *Client) BatchUpload(ctx context.Context, filename string, r io.Reader, mode core.UploadMode) (*core.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("failed to read %s: %w", filename, err)}
	}
	if err := mw.WriteField("mode", string(mode)); err != nil {
		return nil, &EncodingError{Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &EncodingError{Err: err}
	}

	resp, err := c.send(ctx, http.MethodPost, PathBatchUpload, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var out core.UploadResult
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
