package batchwatch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Extensions are the spreadsheet types the watcher uploads.
var Extensions = []string{".csv", ".xlsx"}

// ErrNoRows is returned for a spreadsheet with a header but no data.
var ErrNoRows = errors.New("spreadsheet has no data rows")

// Supported reports whether path has an uploadable extension. Hidden and
// Office lock files are never supported.
func Supported(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Preflight counts the data rows of a spreadsheet before it is uploaded.
// The first row is the header.
func Preflight(path string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvRows(path)
	case ".xlsx":
		return xlsxRows(path)
	default:
		return 0, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func csvRows(path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the watched directory
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if blank(rec) {
			continue
		}
		rows++
	}
	return dataRows(rows)
}

func xlsxRows(path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, ErrNoRows
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	rows := 0
	for _, rec := range all {
		if !blank(rec) {
			rows++
		}
	}
	return dataRows(rows)
}

func dataRows(rows int) (int, error) {
	if rows <= 1 {
		return 0, ErrNoRows
	}
	return rows - 1, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
