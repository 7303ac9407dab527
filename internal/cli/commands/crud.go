package commands

import (
	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/cli/output"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/internal/studentfile"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// NewCRUDCommand creates the crud command group.
func NewCRUDCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crud",
		Short: "Create, read, update and delete student records",
	}
	cmd.AddCommand(newCRUDCreateCommand())
	cmd.AddCommand(newCRUDReadCommand())
	cmd.AddCommand(newCRUDUpdateCommand())
	cmd.AddCommand(newCRUDDeleteCommand())
	return cmd
}

func newCRUDCreateCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "create --file <student.yaml>",
		Short:   "Add a student record",
		Example: `  edumetric crud create --file asha.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return saveStudent(cmd, file, app.CRUDCreate)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Student record (.json, .yaml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCRUDUpdateCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "update --file <student.yaml>",
		Short:   "Overwrite a student record",
		Example: `  edumetric crud update --file asha.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return saveStudent(cmd, file, app.CRUDUpdate)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Student record (.json, .yaml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func saveStudent(cmd *cobra.Command, file string, op app.CRUDOp) error {
	e := getEnv(cmd)
	s, err := studentfile.Load(file)
	if err != nil {
		return err
	}
	c, err := e.newController(nil)
	if err != nil {
		return err
	}

	var out any
	if op == app.CRUDCreate {
		msg, err := c.CreateStudent(cmd.Context(), s)
		if err != nil {
			return failed(c, err)
		}
		out = map[string]string{"message": msg}
	} else {
		updated, err := c.UpdateStudent(cmd.Context(), s)
		if err != nil {
			return failed(c, err)
		}
		out = updated
	}
	if e.r.EffectiveMode() == output.ModeJSON {
		return e.r.JSON(out)
	}
	succeeded(c, e.r)
	return nil
}

func newCRUDReadCommand() *cobra.Command {
	var rno, name string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Find student records by register number or name",
		Example: `  edumetric crud read --rno 24CS01
  edumetric crud read --name Asha`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			res, err := c.ReadStudents(cmd.Context(), rno, name)
			if err != nil {
				return failed(c, err)
			}
			if e.r.EffectiveMode() == output.ModeJSON {
				return e.r.JSON(res)
			}
			e.r.Table(render.StudentTable(res.Students))
			return nil
		},
	}
	cmd.Flags().StringVar(&rno, "rno", "", "Register number")
	cmd.Flags().StringVar(&name, "name", "", "Name (partial match)")
	return cmd
}

func newCRUDDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <rno>",
		Short: "Delete a student record",
		Long: `Delete a student record. Without --yes the record is only shown, so you
can check it is the right one.`,
		Example: `  edumetric crud delete 24CS01 --yes`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			if !yes {
				s, err := c.FetchStudent(cmd.Context(), app.CRUDDelete, args[0])
				if err != nil {
					return failed(c, err)
				}
				e.r.Table(render.StudentTable([]core.Student{*s}))
				e.r.Warning("Re-run with --yes to delete this student")
				return nil
			}
			deleted, err := c.DeleteStudent(cmd.Context(), args[0])
			if err != nil {
				return failed(c, err)
			}
			if e.r.EffectiveMode() == output.ModeJSON {
				return e.r.JSON(deleted)
			}
			succeeded(c, e.r)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without showing the record first")
	return cmd
}
