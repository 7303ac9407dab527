package batchwatch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/edumetric-labs/edumetric/internal/testutil"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

type upload struct {
	name string
	body string
	mode core.UploadMode
}

type fakeUploader struct {
	calls chan upload
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{calls: make(chan upload, 8)}
}

func (f *fakeUploader) UploadBatch(_ context.Context, filename string, r io.Reader, mode core.UploadMode) (*core.UploadResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.calls <- upload{name: filename, body: string(body), mode: mode}
	return &core.UploadResult{Added: 1}, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func writeXLSX(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"inbox/students.csv", true},
		{"inbox/students.XLSX", true},
		{"inbox/students.txt", false},
		{"inbox/.students.csv", false},
		{"inbox/~$students.xlsx", false},
		{"inbox/students", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.path))
		})
	}
}

func TestPreflight(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := writeFile(t, dir, "a.csv", "RNO,NAME\n1,Asha\n\n2,Ravi\n")
		n, err := Preflight(path)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("csv header only", func(t *testing.T) {
		path := writeFile(t, dir, "b.csv", "RNO,NAME\n")
		_, err := Preflight(path)
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("xlsx", func(t *testing.T) {
		path := writeXLSX(t, dir, "c.xlsx", [][]any{{"RNO", "NAME"}, {"1", "Asha"}, {"2", "Ravi"}, {"3", "Meena"}})
		n, err := Preflight(path)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("unsupported", func(t *testing.T) {
		path := writeFile(t, dir, "d.txt", "hello")
		_, err := Preflight(path)
		assert.ErrorContains(t, err, "unsupported")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Preflight(filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})
}

func TestNew_Validation(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "x.csv", "a\n1\n")
	up := newFakeUploader()

	tests := []struct {
		name string
		opts Options
	}{
		{"no uploader", Options{Dir: dir, Mode: core.UploadNormalize}},
		{"bad mode", Options{Dir: dir, Mode: "merge", Uploader: up}},
		{"missing dir", Options{Dir: filepath.Join(dir, "missing"), Mode: core.UploadNormalize, Uploader: up}},
		{"file not dir", Options{Dir: file, Mode: core.UploadNormalize, Uploader: up}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.Error(t, err)
		})
	}
}

func startWatcher(t *testing.T, opts Options) (stop func() error) {
	t.Helper()
	opts.Logger = testutil.NewTestLogger(t)
	opts.Debounce = 20 * time.Millisecond
	w, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	var once sync.Once
	var runErr error
	stop = func() error {
		once.Do(func() {
			cancel()
			runErr = <-done
		})
		return runErr
	}
	t.Cleanup(func() { _ = stop() })
	return stop
}

func TestWatcher_UploadsNewSpreadsheets(t *testing.T) {
	dir := t.TempDir()
	up := newFakeUploader()
	results := make(chan Result, 8)
	startWatcher(t, Options{
		Dir:      dir,
		Mode:     core.UploadAnalytics,
		Uploader: up,
		OnResult: func(r Result) { results <- r },
	})

	// Give fsnotify a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "batch.csv", "RNO,NAME\n1,Asha\n")

	select {
	case call := <-up.calls:
		assert.Equal(t, "batch.csv", call.name)
		assert.Equal(t, core.UploadAnalytics, call.mode)
		assert.Contains(t, call.body, "Asha")
	case <-time.After(3 * time.Second):
		t.Fatal("spreadsheet was not uploaded")
	}

	r := <-results
	require.NoError(t, r.Err)
	assert.Equal(t, 1, r.Rows)
	assert.Equal(t, 1, r.Upload.Added)

	select {
	case call := <-up.calls:
		t.Fatalf("unexpected upload of %s", call.name)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_ExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "old.csv", "RNO\n1\n2\n")
	up := newFakeUploader()
	startWatcher(t, Options{Dir: dir, Mode: core.UploadNormalize, Uploader: up, Existing: true})

	select {
	case call := <-up.calls:
		assert.Equal(t, "old.csv", call.name)
	case <-time.After(3 * time.Second):
		t.Fatal("existing spreadsheet was not uploaded")
	}
}

func TestWatcher_EmptySpreadsheetSkipsUpload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.csv", "RNO,NAME\n")
	up := newFakeUploader()
	results := make(chan Result, 1)
	startWatcher(t, Options{
		Dir: dir, Mode: core.UploadNormalize, Uploader: up, Existing: true,
		OnResult: func(r Result) { results <- r },
	})

	select {
	case r := <-results:
		assert.ErrorIs(t, r.Err, ErrNoRows)
		assert.Nil(t, r.Upload)
	case <-time.After(3 * time.Second):
		t.Fatal("no result reported")
	}
	assert.Empty(t, up.calls)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	stop := startWatcher(t, Options{Dir: t.TempDir(), Mode: core.UploadNormalize, Uploader: newFakeUploader()})
	assert.NoError(t, stop())
}
