// Package main provides tests for the EduMetric CLI.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/edumetric-labs/edumetric/internal/cli"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "EduMetric") {
		t.Errorf("version output should contain 'EduMetric', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}
	for _, name := range []string{"drilldown", "analyze", "batch", "tui", "ui"} {
		if !strings.Contains(output, name) {
			t.Errorf("help output should list %q, got: %s", name, output)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := execute(t, "frobnicate"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestInvalidConfigFile(t *testing.T) {
	if _, err := execute(t, "--config", "missing.yaml", "stats"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
