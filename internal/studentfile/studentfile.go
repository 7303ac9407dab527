// Package studentfile reads a student record from a JSON or YAML file.
// Keys are the API field names (NAME, RNO, EMAIL, ...); fields left out
// keep the defaults of core.NewStudent.
package studentfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Format is a file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension. Anything that is not
// .json is read as YAML, which also accepts JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and decodes the student at path.
func Load(path string) (core.Student, error) {
	f, err := os.Open(path) //nolint:gosec // path is given by the user
	if err != nil {
		return core.Student{}, fmt.Errorf("failed to open student file: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Decode(f, FormatOf(path))
	if err != nil {
		return core.Student{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode reads one student record.
func Decode(r io.Reader, format Format) (core.Student, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return core.Student{}, err
	}

	if format == FormatYAML {
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return core.Student{}, fmt.Errorf("invalid yaml: %w", err)
		}
		if doc == nil {
			return core.Student{}, fmt.Errorf("student file is empty")
		}
		if raw, err = json.Marshal(doc); err != nil {
			return core.Student{}, fmt.Errorf("invalid yaml: %w", err)
		}
	}

	s := core.NewStudent()
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&s); err != nil {
		return core.Student{}, fmt.Errorf("invalid student record: %w", err)
	}
	return s, nil
}
