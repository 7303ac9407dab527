package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/studentfile"
)

// NewStudentCommand creates the student command group.
func NewStudentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Analyse individual students",
	}
	cmd.AddCommand(newStudentSearchCommand())
	cmd.AddCommand(newStudentPredictCommand())
	cmd.AddCommand(newStudentAlertCommand())
	cmd.AddCommand(newStudentExportCommand())
	return cmd
}

func newStudentSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "search <rno>",
		Short:   "Look up a student by register number and analyse them",
		Example: `  edumetric student search 24CS01`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			res, err := c.SearchStudent(cmd.Context(), args[0])
			if err != nil {
				return failed(c, err)
			}
			return e.r.Student(*res)
		},
	}
}

func newStudentPredictCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "predict --file <student.yaml>",
		Short: "Analyse a student record that is not stored on the server",
		Long: `Analyse a student record read from a JSON or YAML file. Keys are the API
field names (NAME, RNO, EMAIL, DEPT, YEAR, CURR_SEM, SEM1..SEM8, ...).`,
		Example: `  edumetric student predict --file asha.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			s, err := studentfile.Load(file)
			if err != nil {
				return err
			}
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			res, err := c.AnalyseStudent(cmd.Context(), s)
			if err != nil {
				return failed(c, err)
			}
			return e.r.Student(*res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Student record (.json, .yaml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newStudentAlertCommand() *cobra.Command {
	var send bool
	var email string

	cmd := &cobra.Command{
		Use:   "alert <rno>",
		Short: "Assess a student and optionally email their mentor",
		Example: `  # Show the alert assessment
  edumetric student alert 24CS01

  # Send it to a specific mentor
  edumetric student alert 24CS01 --send --email mentor@example.edu`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			if email != "" {
				cfg := *e.cfg
				cfg.Alert.MentorEmail = email
				e.cfg = &cfg
			}
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			if _, err := c.SearchStudent(cmd.Context(), args[0]); err != nil {
				return failed(c, err)
			}
			a, err := c.OpenAlert()
			if err != nil {
				return failed(c, err)
			}
			if err := e.r.Alert(*a, c.MentorEmail()); err != nil {
				return err
			}
			if !send {
				return nil
			}
			if _, err := c.SendAlert(cmd.Context()); err != nil {
				return failed(c, err)
			}
			succeeded(c, e.r)
			return nil
		},
	}
	cmd.Flags().BoolVar(&send, "send", false, "Email the alert to the mentor")
	cmd.Flags().StringVar(&email, "email", "", "Mentor address (default: alert.mentor_email or the student's mentor)")
	return cmd
}

func newStudentExportCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "export <rno>",
		Short:   "Write a student's analysis as CSV",
		Example: `  edumetric student export 24CS01 --dir reports`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			if _, err := c.SearchStudent(cmd.Context(), args[0]); err != nil {
				return failed(c, err)
			}
			return exportCSV(c, e, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the CSV into")
	return cmd
}

func exportCSV(c *app.Controller, e env, dir string) error {
	var buf bytes.Buffer
	name, err := c.ExportStudentCSV(&buf)
	if err != nil {
		return failed(c, err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	e.r.Success("Exported " + path)
	return nil
}
