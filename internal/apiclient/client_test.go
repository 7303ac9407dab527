package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumetric-labs/edumetric/internal/testutil"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

func newTestClient(t *testing.T, stub *testutil.StubAPI, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: stub.URL, Timeout: timeout, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: ""})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "localhost"})
	require.Error(t, err)
}

func TestCall_EmptyBodyIsEmptyObject(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	stub.JSON("/api/ping", http.StatusOK, "")
	c := newTestClient(t, stub, time.Second)

	resp, err := c.Call(context.Background(), http.MethodPost, "/api/ping", map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(resp.Body))
	assert.False(t, resp.HasEnvelope())
}

func TestCall_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(stub *testutil.StubAPI)
		body     any
		wantKind Kind
	}{
		{
			name:     "invalid JSON is a decoding error",
			setup:    func(stub *testutil.StubAPI) { stub.JSON("/api/x", http.StatusOK, "<html>oops</html>") },
			wantKind: KindDecoding,
		},
		{
			name:     "unserializable body is an encoding error",
			setup:    func(stub *testutil.StubAPI) { stub.JSON("/api/x", http.StatusOK, "{}") },
			body:     map[string]any{"bad": make(chan int)},
			wantKind: KindEncoding,
		},
		{
			name: "timeout is a network error",
			setup: func(stub *testutil.StubAPI) {
				stub.Handle("/api/x", func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-time.After(time.Second):
					case <-r.Context().Done():
					}
				})
			},
			wantKind: KindNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := testutil.NewStubAPI(t)
			tt.setup(stub)
			c := newTestClient(t, stub, 50*time.Millisecond)

			_, err := c.Call(context.Background(), http.MethodPost, "/api/x", tt.body)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestCall_ConnectionRefusedIsNetworkError(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	c := newTestClient(t, stub, time.Second)
	stub.Close()

	_, err := c.Call(context.Background(), http.MethodGet, "/api/stats", nil)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestCall_DoesNotInspectStatus(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	stub.JSON("/api/x", http.StatusInternalServerError, `{"success":true,"value":1}`)
	c := newTestClient(t, stub, time.Second)

	resp, err := c.Call(context.Background(), http.MethodPost, "/api/x", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.True(t, resp.Envelope().Success)
	assert.NoError(t, resp.Err())
}

func TestCall_SendsRequestID(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	var got string
	stub.Handle("/api/x", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(RequestIDHeader)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	c := newTestClient(t, stub, time.Second)

	_, err := c.Call(context.Background(), http.MethodPost, "/api/x", nil)
	require.NoError(t, err)
	assert.Len(t, got, 36)
}

func TestCall_SharesConcurrentGets(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	var hits int32
	release := make(chan struct{})
	stub.Handle(PathStats, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`{"total_students": 10}`))
	})
	c := newTestClient(t, stub, 2*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Stats(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestCall_SharedGetSurvivesOtherCallerCancel(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	var hits int32
	release := make(chan struct{})
	stub.Handle(PathStats, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`{"total_students": 10}`))
	})
	c := newTestClient(t, stub, 2*time.Second)

	ctxA, cancelA := context.WithCancel(context.Background())
	aDone := make(chan error, 1)
	go func() {
		_, err := c.Stats(ctxA)
		aDone <- err
	}()
	time.Sleep(30 * time.Millisecond)

	type outcome struct {
		stats *core.Stats
		err   error
	}
	bDone := make(chan outcome, 1)
	go func() {
		st, err := c.Stats(context.Background())
		bDone <- outcome{st, err}
	}()
	time.Sleep(30 * time.Millisecond)

	cancelA()
	errA := <-aDone
	require.Error(t, errA)
	assert.Equal(t, KindNetwork, KindOf(errA), "the cancelled caller sees its own cancellation")

	close(release)
	b := <-bDone
	require.NoError(t, b.err)
	assert.Equal(t, 10, b.stats.TotalStudents)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestDrilldown(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	stub.JSON(PathDrilldown, http.StatusOK, `{
		"success": true, "count": 2,
		"filter_info": {"type": "risk_label", "value": "high"},
		"students": [
			{"RNO": "21CS001", "NAME": "Asha", "DEPT": "CSE", "YEAR": 2, "risk_label": "high"},
			{"RNO": "21CS002", "NAME": "Ravi", "DEPT": "CSE", "YEAR": "2", "risk_label": "high"}
		]}`)
	c := newTestClient(t, stub, time.Second)

	req, err := core.NewFilterRequest("risk", "high", "batch", "2024")
	require.NoError(t, err)

	res, err := c.Drilldown(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Students, 2)
	assert.Equal(t, core.FlexString("Ravi"), res.Students[1].Name)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(stub.LastBody(PathDrilldown), &sent))
	assert.Equal(t, map[string]string{
		"filter_type":  "risk_label",
		"filter_value": "high",
		"scope":        "batch",
		"scope_value":  "2024",
	}, sent)
}

func TestDrilldown_ApplicationError(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	stub.JSON(PathDrilldown, http.StatusOK, `{"success": false, "message": "none found"}`)
	c := newTestClient(t, stub, time.Second)

	req, err := core.NewFilterRequest("risk", "high", "batch", "2024")
	require.NoError(t, err)

	_, err = c.Drilldown(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, KindApplication, KindOf(err))
	msg, ok := ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "none found", msg)
}

func TestStats_MissingEnvelopeIsSuccess(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	stub.JSON(PathStats, http.StatusOK, `{"total_students": 420, "departments": ["CSE","ECE"], "years": [1,2,"3"]}`)
	c := newTestClient(t, stub, time.Second)

	st, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 420, st.TotalStudents)
	assert.Len(t, st.Departments, 2)
	assert.Equal(t, core.FlexInt(3), st.Years[2])
}

func TestSearchStudent(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	stub.JSON(PathStudentSearch, http.StatusOK, `{"success": true, "student": {"RNO": "21CS001", "NAME": "Asha", "SEM1": 8.2, "SEM2": null}}`)
	c := newTestClient(t, stub, time.Second)

	s, err := c.SearchStudent(context.Background(), "21CS001")
	require.NoError(t, err)
	assert.Equal(t, core.FlexString("Asha"), s.Name)
	assert.True(t, s.Sem1.Valid)
	assert.False(t, s.Sem2.Valid)
}

func TestBatchUpload(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	var gotMode, gotName, gotContent string
	stub.Handle(PathBatchUpload, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotMode = r.FormValue("mode")
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		b, _ := io.ReadAll(f)
		gotName = hdr.Filename
		gotContent = string(b)
		_, _ = w.Write([]byte(`{"success": true, "added": 3, "updated": 1, "total_records": 4, "message": "done"}`))
	})
	c := newTestClient(t, stub, time.Second)

	res, err := c.BatchUpload(context.Background(), "/tmp/inbox/students.csv", strings.NewReader("RNO,NAME\n1,A\n"), core.UploadNormalize)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, "done", res.Message)
	assert.Equal(t, "normalize", gotMode)
	assert.Equal(t, "students.csv", gotName)
	assert.Contains(t, gotContent, "RNO,NAME")
}
